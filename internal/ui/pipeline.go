package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"logdam/internal/detect"
	"logdam/internal/export"
	"logdam/internal/ingest"
	"logdam/internal/parse"
	"logdam/internal/util/logx"
)

const detectSampleLines = 50

// step advances the report one frame. It returns a command when the frame
// needs follow-up work, namely strategy detection.
func (m *Model) step() tea.Cmd {
	table, err := m.rep.Update()
	if err != nil {
		logx.Errorf("ui: update under %s failed: %v", m.strategy, err)
		m.paused = true
		m.openPicker(err.Error())
		return nil
	}
	m.refreshVisible()
	if table.Empty() {
		return nil
	}
	if m.bell {
		m.ringBell()
	}
	m.flash(fmt.Sprintf("+%d rows", len(table.Rows)))
	if m.autoDetect {
		m.autoDetect = false
		return m.detectCmd(false)
	}
	return nil
}

// swapStrategy installs label on the running tabulator. The order matters:
// new config, then replay of every byte seen so far, then a clean report.
func (m *Model) swapStrategy(label string) error {
	pc, err := parse.New(label, m.src, m.cfg.ParseOptions())
	if err != nil {
		return err
	}
	m.tab.SetConfig(pc)
	m.tab.Replay()
	m.rep.Clear()
	m.strategy = pc.Name()
	m.cursor, m.offset, m.colOffset = 0, 0, 0
	m.refreshVisible()
	logx.Infof("ui: switched to %s (%s), replaying %d chunks", pc.Name(), parse.Describe(pc), m.tab.Pending())
	return nil
}

// sampleLines decodes the first records seen so far for detection, split
// and decoded the way the current strategy reads them.
func (m *Model) sampleLines() []string {
	records, _, err := m.tab.Config().ParseRecords(m.tab.History())
	if err != nil {
		logx.Warnf("ui: detection sample: %v", err)
		return nil
	}
	out := make([]string, 0, detectSampleLines)
	for _, r := range records {
		if s := strings.TrimRight(r, "\r"); s != "" {
			out = append(out, s)
		}
		if len(out) == detectSampleLines {
			break
		}
	}
	return out
}

func (m *Model) detectCmd(manual bool) tea.Cmd {
	sample := m.sampleLines()
	if len(sample) == 0 {
		return func() tea.Msg { return toastMsg{text: "no data yet to detect"} }
	}
	path := ""
	if so := m.cfg.SourceOptions(); so.Source == ingest.SourceFile {
		path = so.Path
	}
	d := *m.detector
	if manual {
		// a manual re-detect must not trust a stale cache entry
		d.UseCache = false
	}
	m.detecting = true
	ctx := m.ctx
	run := func() tea.Msg {
		res := d.Detect(ctx, path, sample)
		if manual && path != "" && m.detector.UseCache {
			if err := detect.SaveStrategyToCache(path, res.Guess); err != nil {
				logx.Warnf("ui: %v", err)
			}
		}
		return detectedMsg{res: res, manual: manual}
	}
	return tea.Batch(m.spin.Tick, run)
}

func (m *Model) applyDetection(msg detectedMsg) {
	m.detecting = false
	res := msg.res
	if res.Label == m.strategy {
		m.flash(fmt.Sprintf("strategy %s confirmed (%s)", res.Label, res.Origin))
		return
	}
	if err := m.swapStrategy(res.Label); err != nil {
		logx.Errorf("ui: %v", err)
		m.flash(err.Error())
		return
	}
	m.flash(fmt.Sprintf("strategy %s via %s (%.0f%%)", res.Label, res.Origin, res.Confidence*100))
}

func (m *Model) refreshVisible() {
	n := m.rep.Len()
	m.visible = m.visible[:0]
	for i := 0; i < n; i++ {
		if m.eval == nil || m.eval.Match(m.rep.Row(i), m.rep.RowKey(i).Value) {
			m.visible = append(m.visible, i)
		}
	}
	m.sortVisible()
	if m.follow || m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// sortVisible orders visible rows by sortCol. It runs on every refresh, so
// rows updated in place move to their new position. Numbers compare
// numerically, everything else as text; ties keep arrival order.
func (m *Model) sortVisible() {
	col := m.sortCol
	if col < 0 {
		return
	}
	cell := func(ri int) string {
		if row := m.rep.Row(ri); col < len(row) {
			return row[col]
		}
		return ""
	}
	sort.SliceStable(m.visible, func(i, j int) bool {
		c := compareCells(cell(m.visible[i]), cell(m.visible[j]))
		if m.sortDesc {
			return c > 0
		}
		return c < 0
	})
}

func compareCells(a, b string) int {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// exportVisible writes the rows passing the current filter.
func (m *Model) exportVisible() {
	rows := make([]export.Row, 0, len(m.visible))
	for _, ri := range m.visible {
		key := m.rep.RowKey(ri)
		r := export.Row{Key: key.Value, Keyed: key.Valid, Fields: m.rep.Row(ri)}
		if key.Valid {
			r.Updates = len(m.rep.History(key.Value))
		}
		rows = append(rows, r)
	}
	if err := export.Write(m.cfg.ExportOut, m.cfg.ExportFormat, rows); err != nil {
		logx.Warnf("ui: export: %v", err)
		m.flash("export failed: " + err.Error())
		return
	}
	logx.Infof("ui: exported %d rows to %s", len(rows), m.cfg.ExportOut)
	m.flash(fmt.Sprintf("exported %d rows to %s", len(rows), m.cfg.ExportOut))
}

func (m *Model) flash(text string) {
	m.lastMsg = text
	m.lastMsgAt = time.Now()
}

func (m *Model) ringBell() {
	if m.out != nil {
		_, _ = m.out.Write([]byte("\a"))
	}
}
