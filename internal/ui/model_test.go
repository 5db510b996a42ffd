package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"logdam/internal/config"
	"logdam/internal/parse"
)

type chunkSource struct{ chunks [][]byte }

func (s *chunkSource) push(v string) { s.chunks = append(s.chunks, []byte(v)) }

func (s *chunkSource) Name() string { return "test" }

func (s *chunkSource) ReadAvailable() ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, nil
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *chunkSource) Close() error { return nil }

func testConfig(strategy string) *config.Config {
	cfg := config.Default()
	cfg.Strategy = strategy
	cfg.NoCache = true
	cfg.Offline = true
	return cfg
}

func newTestModel(t *testing.T, cfg *config.Config) (*Model, *chunkSource, *bytes.Buffer) {
	t.Helper()
	src := &chunkSource{}
	out := &bytes.Buffer{}
	m, err := newModel(context.Background(), cfg, src, out)
	if err != nil {
		t.Fatal(err)
	}
	return m, src, out
}

func tick(m *Model) {
	m.Update(tickMsg{})
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestTickMergesKeyedRowsAndRingsBell(t *testing.T) {
	cfg := testConfig(parse.LabelDefault)
	cfg.Bell = true
	m, src, out := newTestModel(t, cfg)

	src.push("a\tb\tc\n")
	tick(m)
	if m.rep.Len() != 1 || !strings.Contains(out.String(), "\a") {
		t.Fatalf("rows=%d out=%q", m.rep.Len(), out.String())
	}
	src.push("a\tb\td\n")
	tick(m)
	if m.rep.Len() != 1 || m.rep.Row(0)[2] != "d" {
		t.Fatalf("rows=%d row=%v", m.rep.Len(), m.rep.Row(0))
	}
	if m.rep.Paint(0, 2).Normal() {
		t.Fatalf("changed cell should be highlighted")
	}
	view := m.View()
	if !strings.Contains(view, "c0*") || !strings.Contains(view, "strategy Default") {
		t.Fatalf("view missing header or status:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.modalActive || m.modalKind != modalHistory {
		t.Fatalf("history modal not open")
	}
	if n := strings.Count(m.modalBody, "\n"); n != 2 {
		t.Fatalf("history lines=%d body=%q", n, m.modalBody)
	}
}

func TestPausedTickDoesNotAdvance(t *testing.T) {
	m, src, _ := newTestModel(t, testConfig(parse.LabelDefault))
	m.Update(runes(" "))
	src.push("x\ty\n")
	tick(m)
	if m.rep.Frame() != 0 || m.rep.Len() != 0 {
		t.Fatalf("paused model advanced: frame=%d rows=%d", m.rep.Frame(), m.rep.Len())
	}
	m.Update(runes(" "))
	tick(m)
	if m.rep.Len() != 1 {
		t.Fatalf("rows=%d after resume", m.rep.Len())
	}
}

func TestUpdateErrorPausesAndOpensPicker(t *testing.T) {
	cfg := testConfig(parse.LabelDefault)
	cfg.KeyColumn = 2
	m, src, _ := newTestModel(t, cfg)

	src.push("a\tb\n")
	tick(m)
	if !m.paused || !m.modalActive || m.modalKind != modalPicker {
		t.Fatalf("paused=%v modal=%v kind=%v", m.paused, m.modalActive, m.modalKind)
	}
	if !strings.Contains(m.pickerErr, "missing its key") {
		t.Fatalf("picker error %q", m.pickerErr)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.strategy != parse.LabelTcpDump || m.paused || m.modalActive {
		t.Fatalf("strategy=%s paused=%v modal=%v", m.strategy, m.paused, m.modalActive)
	}
	if m.tab.Pending() == 0 {
		t.Fatalf("swap should queue replay")
	}
	tick(m)
	if m.paused || m.rep.Len() != 0 {
		t.Fatalf("replay under tcpdump: paused=%v rows=%d", m.paused, m.rep.Len())
	}
}

func TestAutoDetectSwapsStrategy(t *testing.T) {
	m, src, _ := newTestModel(t, testConfig(config.StrategyAuto))
	src.push("Oct 16 23:39:01 web01 sshd[1]: one\n" +
		"Oct 16 23:39:02 web01 cron[2]: two\n" +
		"Oct 16 23:39:03 web01 sshd[1]: three\n")

	cmd := m.step()
	if cmd == nil || !m.detecting {
		t.Fatalf("first data should trigger detection")
	}
	var got *detectedMsg
	for _, msg := range runCmd(cmd) {
		if d, ok := msg.(detectedMsg); ok {
			got = &d
		}
	}
	if got == nil {
		t.Fatalf("no detection result")
	}
	m.Update(*got)
	if m.strategy != parse.LabelSysLog || m.rep.Len() != 0 {
		t.Fatalf("strategy=%s rows=%d", m.strategy, m.rep.Len())
	}
	if m.step() != nil {
		t.Fatalf("detection should run only once")
	}
	if m.rep.Len() != 2 {
		t.Fatalf("rows keyed by program = %d, want 2", m.rep.Len())
	}
}

func TestFilterAndCopy(t *testing.T) {
	m, src, out := newTestModel(t, testConfig(parse.LabelDefault))
	src.push("web\t200\napi\t500\ndb\t503\n")
	tick(m)

	m.applyFilter("expr: c1 >= 500")
	if len(m.visible) != 2 {
		t.Fatalf("visible=%v", m.visible)
	}
	m.Update(runes("F"))
	if len(m.visible) != 3 || m.eval != nil {
		t.Fatalf("filter not cleared: %v", m.visible)
	}

	m.Update(runes("y"))
	if !strings.Contains(out.String(), "\x1b]52;c;") {
		t.Fatalf("no OSC52 sequence written: %q", out.String())
	}
}

func TestExportKeyWritesVisibleRows(t *testing.T) {
	cfg := testConfig(parse.LabelDefault)
	cfg.ExportOut = filepath.Join(t.TempDir(), "rows.csv")
	m, src, _ := newTestModel(t, cfg)
	src.push("web\t200\napi\t500\n")
	tick(m)
	m.applyFilter("api")
	m.Update(runes("e"))
	b, err := os.ReadFile(cfg.ExportOut)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != "key,c0,c1\napi,api,500\n" {
		t.Fatalf("export = %q", got)
	}
}

func TestClearKeyEmptiesReport(t *testing.T) {
	m, src, _ := newTestModel(t, testConfig(parse.LabelDefault))
	src.push("a\t1\n")
	tick(m)
	m.Update(runes("c"))
	if m.rep.Len() != 0 || len(m.visible) != 0 {
		t.Fatalf("rows=%d visible=%d", m.rep.Len(), len(m.visible))
	}
}

func visibleKeys(m *Model) []string {
	var keys []string
	for _, ri := range m.visible {
		keys = append(keys, m.rep.RowKey(ri).Value)
	}
	return keys
}

func TestSortFollowsInPlaceUpdates(t *testing.T) {
	m, src, _ := newTestModel(t, testConfig(parse.LabelDefault))
	src.push("web\t3\napi\t1\ndb\t2\n")
	tick(m)

	m.Update(runes("o"))
	m.Update(runes("o"))
	if got := strings.Join(visibleKeys(m), ","); got != "api,db,web" {
		t.Fatalf("sorted by c1 = %s", got)
	}
	if view := m.View(); !strings.Contains(view, "c1▲") || !strings.Contains(view, "sort c1 asc") {
		t.Fatalf("sort not shown:\n%s", view)
	}

	src.push("api\t9\n")
	tick(m)
	if got := strings.Join(visibleKeys(m), ","); got != "db,web,api" {
		t.Fatalf("after update = %s", got)
	}

	m.Update(runes("O"))
	if got := strings.Join(visibleKeys(m), ","); got != "api,web,db" {
		t.Fatalf("descending = %s", got)
	}

	m.Update(runes("o"))
	if m.sortCol != -1 {
		t.Fatalf("sort column %d, want arrival order", m.sortCol)
	}
	if got := strings.Join(visibleKeys(m), ","); got != "web,api,db" {
		t.Fatalf("arrival order = %s", got)
	}
}

func TestCompareCells(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"2.5", "2.5", 0},
		{"10", "abc", -1},
		{"abc", "10", 1},
		{"b", "a", 1},
	}
	for _, c := range cases {
		if got := compareCells(c.a, c.b); got != c.want {
			t.Errorf("compareCells(%q, %q)=%d want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestKeylessDefaultAppendsEveryRow(t *testing.T) {
	cfg := testConfig(parse.LabelDefault)
	cfg.KeyColumn = parse.NoKey
	m, src, _ := newTestModel(t, cfg)
	src.push("a\tb\tc\na\tb\tc\n")
	tick(m)
	if m.rep.Len() != 2 {
		t.Fatalf("rows=%d, want 2", m.rep.Len())
	}
	if view := m.View(); strings.Contains(view, "c0*") {
		t.Fatalf("keyless table marks a key column:\n%s", view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.modalBody, "row has no key") {
		t.Fatalf("modal body %q", m.modalBody)
	}
}

func TestDetectionSampleUsesStrategyDecoding(t *testing.T) {
	cfg := testConfig(parse.LabelDefault)
	cfg.RecordDelimiter = ";"
	cfg.Encoding = "latin1"
	m, src, _ := newTestModel(t, cfg)
	src.push("caf\xe9;two;part")
	tick(m)
	got := m.sampleLines()
	if strings.Join(got, "|") != "café|two" {
		t.Fatalf("sample = %q", got)
	}
}

func TestColumnScopedFilterKeepsCriteria(t *testing.T) {
	m, src, _ := newTestModel(t, testConfig(parse.LabelDefault))
	src.push("web\t500\n500\t200\n")
	tick(m)
	m.applyFilter("c1:500")
	if len(m.visible) != 1 || m.rep.RowKey(m.visible[0]).Value != "web" {
		t.Fatalf("visible=%v", visibleKeys(m))
	}
	if got := m.criteriaText(); got != "c1:500" {
		t.Fatalf("criteria text %q", got)
	}
}

func TestFit(t *testing.T) {
	if got := fit("héllo", 3); got != "hé…" {
		t.Fatalf("fit truncate = %q", got)
	}
	if got := fit("a\tb", 5); got != "a b  " {
		t.Fatalf("fit pad = %q", got)
	}
}
