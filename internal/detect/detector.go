package detect

import (
	"context"
	"errors"

	"logdam/internal/parse"
	"logdam/internal/util/logx"
)

// DefaultThreshold is the heuristic confidence at which the model is not
// consulted.
const DefaultThreshold = 0.6

// Result is a detected strategy plus where the answer came from.
type Result struct {
	Guess
	Origin string // "cache", "heuristics" or "openai"
}

// Detector chains the cache, offline heuristics and an optional model.
type Detector struct {
	AI        *OpenAIClient
	UseCache  bool
	Threshold float64
}

// Detect picks a strategy label for sample. path may be empty for sources
// that are not files; nothing is cached then.
func (d *Detector) Detect(ctx context.Context, path string, sample []string) Result {
	if d.UseCache && path != "" {
		if g, ok := LoadStrategyFromCache(path); ok {
			if _, known := parse.Canonical(g.Label); known {
				logx.Infof("detect: using cached strategy %s for %s", g.Label, path)
				return Result{Guess: g, Origin: "cache"}
			}
		}
	}
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	res := Result{Guess: Heuristics(sample), Origin: "heuristics"}
	logx.Debugf("detect: heuristics chose %s (%.2f)", res.Label, res.Confidence)
	if res.Confidence < threshold && d.AI != nil {
		g, err := d.AI.SuggestStrategy(ctx, sample, parse.Labels())
		switch {
		case err == nil:
			res = Result{Guess: g, Origin: "openai"}
			logx.Infof("detect: openai chose %s (%.2f)", g.Label, g.Confidence)
		case errors.Is(err, ErrDisabled):
		default:
			logx.Warnf("detect: %v", err)
		}
	}
	if d.UseCache && path != "" {
		if err := SaveStrategyToCache(path, res.Guess); err != nil {
			logx.Warnf("detect: cache save failed: %v", err)
		}
	}
	return res
}
