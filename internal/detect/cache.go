package detect

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"logdam/internal/util/logx"
)

// cacheDir returns a directory under the OS temp dir to store detected
// strategies. Tests point it elsewhere.
var cacheDir = func() string {
	return filepath.Join(os.TempDir(), "logdam-strategy-cache")
}

type cachedStrategy struct {
	Path       string    `json:"path"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Saved      time.Time `json:"saved"`
}

// cacheKey derives a stable key from the absolute file path.
func cacheKey(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", err
	}
	h := sha1.Sum([]byte(abs))
	return hex.EncodeToString(h[:]), nil
}

func cacheFile(key string) string {
	return filepath.Join(cacheDir(), fmt.Sprintf("strategy_%s.json", key))
}

// LoadStrategyFromCache returns the strategy remembered for filePath.
func LoadStrategyFromCache(filePath string) (Guess, bool) {
	key, err := cacheKey(filePath)
	if err != nil {
		return Guess{}, false
	}
	f, err := os.Open(cacheFile(key))
	if err != nil {
		return Guess{}, false
	}
	defer f.Close()
	var c cachedStrategy
	if err := json.NewDecoder(f).Decode(&c); err != nil || c.Label == "" {
		return Guess{}, false
	}
	return Guess{Label: c.Label, Confidence: c.Confidence}, true
}

// SaveStrategyToCache remembers g for filePath, replacing the file atomically.
func SaveStrategyToCache(filePath string, g Guess) error {
	key, err := cacheKey(filePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cacheDir(), 0o755); err != nil {
		return err
	}
	p := cacheFile(key)
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(filePath)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cachedStrategy{Path: abs, Label: g.Label, Confidence: g.Confidence, Saved: time.Now().UTC()}); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	logx.Infof("detect: cached strategy %s saved to %s", g.Label, p)
	return nil
}
