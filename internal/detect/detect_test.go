package detect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"logdam/internal/parse"
)

func TestHeuristics(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  string
	}{
		{"syslog", []string{
			"Oct 16 23:39:01 web01 sshd[1234]: Accepted publickey for alice",
			"Oct  6 23:39:02 web01 cron[99]: (root) CMD (run-parts)",
			"Oct 16 23:39:03 db01 kernel: eth0: link up",
		}, parse.LabelSysLog},
		{"tcpdump", []string{
			"23:39:01.123456 IP 10.0.0.1.40001 > 10.1.2.3.443: Flags [S], length 0",
			"23:39:01.223456 ARP, Request who-has 10.0.0.9 tell 10.0.0.1, length 28",
		}, parse.LabelTcpDump},
		{"weblog", []string{
			`10.0.0.1 - alice [06/Oct/2024:23:39:01 +0000] "GET /health HTTP/1.1" 200 12 "-" "curl/8.2.1"`,
			`10.0.0.2 - - [06/Oct/2024:23:39:02 +0000] "POST /login HTTP/1.1" 302 0 "-" "curl/8.2.1"`,
		}, parse.LabelWebLog},
		{"tabs", []string{"a\tb\tc", "d\te\tf"}, parse.LabelDefault},
		{"nothing", []string{"hello world", "", "another plain line"}, parse.LabelDefault},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := Heuristics(c.lines)
			if g.Label != c.want {
				t.Fatalf("label=%s want %s", g.Label, c.want)
			}
		})
	}
}

func TestHeuristicsNeedsMajority(t *testing.T) {
	g := Heuristics([]string{
		"Oct 16 23:39:01 web01 sshd[1234]: ok",
		"noise one",
		"noise two",
		"noise three",
	})
	if g.Label != parse.LabelDefault || g.Confidence != 0 {
		t.Fatalf("got %+v", g)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	old := cacheDir
	cacheDir = func() string { return dir }
	defer func() { cacheDir = old }()

	p := filepath.Join(dir, "app.log")
	if _, ok := LoadStrategyFromCache(p); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	if err := SaveStrategyToCache(p, Guess{Label: parse.LabelWebLog, Confidence: 0.9}); err != nil {
		t.Fatal(err)
	}
	g, ok := LoadStrategyFromCache(p)
	if !ok || g.Label != parse.LabelWebLog {
		t.Fatalf("got %+v ok=%v", g, ok)
	}
	if err := SaveStrategyToCache("  ", Guess{Label: "x"}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func fakeOpenAI(t *testing.T, reply string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			*seen = string(body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSuggestStrategy(t *testing.T) {
	var body string
	srv := fakeOpenAI(t, `{"label":"tcpdump","confidence":0.8,"reason":"arrows"}`, &body)
	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "test", 5*time.Second)
	g, err := c.SuggestStrategy(context.Background(), []string{"mail bob@example.com from 10.0.0.1"}, parse.Labels())
	if err != nil {
		t.Fatal(err)
	}
	if g.Label != parse.LabelTcpDump {
		t.Fatalf("label=%q", g.Label)
	}
	if strings.Contains(body, "bob@example.com") || strings.Contains(body, "10.0.0.1") {
		t.Fatalf("sample not redacted: %s", body)
	}
}

func TestSuggestStrategyRejectsUnknownLabel(t *testing.T) {
	srv := fakeOpenAI(t, `{"label":"csv"}`, nil)
	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "test", 5*time.Second)
	if _, err := c.SuggestStrategy(context.Background(), []string{"x"}, parse.Labels()); err == nil {
		t.Fatalf("expected error")
	}
	var nilClient *OpenAIClient
	if _, err := nilClient.SuggestStrategy(context.Background(), nil, nil); err != ErrDisabled {
		t.Fatalf("err=%v", err)
	}
}

func TestDetectorFallsBackToModelAndCaches(t *testing.T) {
	dir := t.TempDir()
	old := cacheDir
	cacheDir = func() string { return dir }
	defer func() { cacheDir = old }()

	srv := fakeOpenAI(t, `{"label":"SysLog","confidence":0.7}`, nil)
	d := &Detector{AI: NewOpenAIClient("sk-test", srv.URL+"/v1", "test", 5*time.Second), UseCache: true}
	path := filepath.Join(dir, "odd.log")

	res := d.Detect(context.Background(), path, []string{"unrecognisable", "lines"})
	if res.Origin != "openai" || res.Label != parse.LabelSysLog {
		t.Fatalf("got %+v", res)
	}
	res = d.Detect(context.Background(), path, []string{"a\tb"})
	if res.Origin != "cache" || res.Label != parse.LabelSysLog {
		t.Fatalf("second detect %+v", res)
	}
}

func TestDetectorConfidentHeuristicsSkipModel(t *testing.T) {
	d := &Detector{AI: NewOpenAIClient("sk-test", "http://127.0.0.1:1/v1", "test", time.Second)}
	res := d.Detect(context.Background(), "", []string{"a\tb", "c\td"})
	if res.Origin != "heuristics" || res.Label != parse.LabelDefault {
		t.Fatalf("got %+v", res)
	}
}
