package ui

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"

	"logdam/internal/util/logx"
)

const clipboardLimit = 100 * 1024

func overlay(base, overlay string) string {
	// Draw overlay on top of base by replacing lines where overlay has content.
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(overlay, "\n")
	maxLen := len(bLines)
	if len(oLines) > maxLen {
		maxLen = len(oLines)
	}
	for len(bLines) < maxLen {
		bLines = append(bLines, "")
	}
	for len(oLines) < maxLen {
		oLines = append(oLines, "")
	}
	out := make([]string, maxLen)
	for i := 0; i < maxLen; i++ {
		// Treat whitespace-only overlay lines as transparent
		if strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}

// copy puts s on the clipboard with an OSC52 sequence, wrapped for tmux or
// screen when running inside one.
func (m *Model) copy(s string) {
	if m.out == nil {
		return
	}
	seq := clipboardSequence(stripANSI(s), os.Getenv("TMUX") != "", os.Getenv("TERM"))
	if _, err := seq.WriteTo(m.out); err != nil {
		logx.Warnf("ui: clipboard: %v", err)
		m.flash("copy failed")
		return
	}
	m.flash("copied to clipboard")
}

func clipboardSequence(s string, inTmux bool, term string) osc52.Sequence {
	seq := osc52.New(s).Limit(clipboardLimit)
	switch {
	case inTmux:
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}
	return seq
}

// openTTY returns a writer to the controlling terminal, falling back to
// stderr. Writing there keeps the renderer's stdout buffer intact.
func openTTY() (io.Writer, func()) {
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		return f, func() { _ = f.Close() }
	}
	return os.Stderr, func() {}
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}
