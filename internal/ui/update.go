package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"logdam/internal/filter"
	"logdam/internal/parse"
	"logdam/internal/util/logx"
)

func (m *Model) buildHelpItems() []helpItem {
	km := m.keymap
	return []helpItem{
		{group: "Navigation", text: "Previous row", key: tea.Key{Type: tea.KeyUp}},
		{group: "Navigation", text: "Next row", key: tea.Key{Type: tea.KeyDown}},
		{group: "Navigation", text: "Page up", key: tea.Key{Type: tea.KeyPgUp}},
		{group: "Navigation", text: "Page down", key: tea.Key{Type: tea.KeyPgDown}},
		{group: "Navigation", text: "Go to top", key: km.Top},
		{group: "Navigation", text: "Go to bottom (follow)", key: km.Bottom},
		{group: "Navigation", text: "Scroll columns left", key: tea.Key{Type: tea.KeyLeft}},
		{group: "Navigation", text: "Scroll columns right", key: tea.Key{Type: tea.KeyRight}},

		{group: "Filter", text: "Filter rows", key: km.Filter},
		{group: "Filter", text: "Clear filter", key: km.ClearFilter},
		{group: "Filter", text: "Cycle sort column", key: km.Sort},
		{group: "Filter", text: "Reverse sort", key: km.SortReverse},

		{group: "Views", text: "Key history", key: km.Inspect},
		{group: "Views", text: "Application logs", key: km.AppLogs},

		{group: "Control", text: "Pause/Resume", key: km.Pause},
		{group: "Control", text: "Choose strategy", key: km.Strategy},
		{group: "Control", text: "Re-detect strategy", key: km.Redetect},
		{group: "Control", text: "Clear report", key: km.Clear},
		{group: "Control", text: "Toggle bell", key: km.Bell},
		{group: "Control", text: "Help", key: km.Help},
		{group: "Control", text: "Quit", key: km.Quit},

		{group: "Actions", text: "Copy current row", key: km.CopyRow},
		{group: "Actions", text: "Export shown rows", key: km.Export},
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.ensureCursorVisible()
		if m.modalActive {
			m.resizeModal()
		}
		return m, nil
	case tickMsg:
		var cmd tea.Cmd
		if !m.paused {
			cmd = m.step()
		}
		return m, tea.Batch(m.tick(), cmd)
	case detectedMsg:
		m.applyDetection(msg)
		return m, nil
	case toastMsg:
		m.detecting = false
		m.flash(msg.text)
		return m, nil
	case spinner.TickMsg:
		if !m.detecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.modalActive {
			return m.updateModal(msg)
		}
		if m.inputOn {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modalKind {
	case modalHelp:
		switch {
		case msg.Type == tea.KeyUp:
			if m.helpSel > 0 {
				m.helpSel--
			}
		case msg.Type == tea.KeyDown:
			if m.helpSel+1 < len(m.helpItems) {
				m.helpSel++
			}
		case msg.Type == tea.KeyEnter:
			m.modalActive = false
			if len(m.helpItems) > 0 {
				return m, keyCmd(m.helpItems[m.helpSel].key)
			}
		case msg.Type == tea.KeyEsc || keyMatches(msg, m.keymap.Quit) || keyMatches(msg, m.keymap.Help):
			m.modalActive = false
		}
		m.modalVP.SetContent(m.renderHelp())
		return m, nil
	case modalPicker:
		labels := parse.Labels()
		switch msg.Type {
		case tea.KeyUp:
			if m.pickerSel > 0 {
				m.pickerSel--
			}
		case tea.KeyDown:
			if m.pickerSel+1 < len(labels) {
				m.pickerSel++
			}
		case tea.KeyEnter:
			label := labels[m.pickerSel]
			m.modalActive = false
			if err := m.swapStrategy(label); err != nil {
				m.openPicker(err.Error())
				return m, nil
			}
			m.autoDetect = false
			m.paused = false
			m.pickerErr = ""
			m.flash("strategy " + label)
		case tea.KeyEsc:
			m.modalActive = false
		}
		return m, nil
	}
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || keyMatches(msg, m.keymap.Quit) {
		m.modalActive = false
		return m, nil
	}
	if keyMatches(msg, m.keymap.CopyRow) {
		m.copy(m.modalBody)
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.inputOn = false
		m.input.Blur()
		m.applyFilter(m.input.Value())
		return m, nil
	case tea.KeyEsc:
		m.inputOn = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter(q string) {
	c := filter.ParseQuery(q)
	if c.Empty() {
		m.eval = nil
		m.refreshVisible()
		m.flash("filter cleared")
		return
	}
	ev, err := filter.NewEvaluator(c)
	if err != nil {
		logx.Warnf("ui: %v", err)
		m.flash(err.Error())
		return
	}
	m.eval = ev
	m.refreshVisible()
	m.flash(fmt.Sprintf("filter: %d of %d rows", len(m.visible), m.rep.Len()))
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	switch {
	case keyMatches(msg, km.Quit):
		return m, tea.Quit
	case keyMatches(msg, km.Pause):
		m.paused = !m.paused
		if m.paused {
			m.flash("paused")
		} else {
			m.flash("running")
		}
	case keyMatches(msg, km.Strategy):
		m.openPicker("")
	case keyMatches(msg, km.Redetect):
		if m.detecting {
			return m, nil
		}
		m.autoDetect = false
		return m, m.detectCmd(true)
	case keyMatches(msg, km.Clear):
		m.rep.Clear()
		m.refreshVisible()
		m.flash("report cleared")
	case keyMatches(msg, km.Inspect):
		m.openHistoryModal()
	case keyMatches(msg, km.Filter):
		m.inputOn = true
		m.input.SetValue(m.criteriaText())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case keyMatches(msg, km.ClearFilter):
		m.applyFilter("")
	case keyMatches(msg, km.CopyRow):
		if i, ok := m.selectedRow(); ok {
			m.copy(strings.Join(m.rep.Row(i), "\t"))
		}
	case keyMatches(msg, km.Sort):
		m.cycleSort()
	case keyMatches(msg, km.SortReverse):
		m.reverseSort()
	case keyMatches(msg, km.Export):
		m.exportVisible()
	case keyMatches(msg, km.Bell):
		m.bell = !m.bell
		m.flash(fmt.Sprintf("bell %v", m.bell))
	case keyMatches(msg, km.AppLogs):
		m.openAppLogsModal()
	case keyMatches(msg, km.Help):
		m.openHelpModal()
	case keyMatches(msg, km.Top):
		m.follow = false
		m.cursor = 0
	case keyMatches(msg, km.Bottom):
		m.follow = true
		m.cursor = len(m.visible) - 1
	case msg.Type == tea.KeyUp:
		m.moveCursor(-1)
	case msg.Type == tea.KeyDown:
		m.moveCursor(1)
	case msg.Type == tea.KeyPgUp:
		m.moveCursor(-m.bodyHeight())
	case msg.Type == tea.KeyPgDown:
		m.moveCursor(m.bodyHeight())
	case msg.Type == tea.KeyLeft:
		if m.colOffset > 0 {
			m.colOffset--
		}
	case msg.Type == tea.KeyRight:
		if m.colOffset+1 < m.rep.Width() {
			m.colOffset++
		}
	}
	m.ensureCursorVisible()
	return m, nil
}

func (m *Model) criteriaText() string {
	if m.eval == nil {
		return ""
	}
	return m.eval.Criteria().String()
}

// cycleSort steps the sort column through every report column and back to
// report order.
func (m *Model) cycleSort() {
	m.sortCol++
	if m.sortCol >= m.rep.Width() {
		m.sortCol = -1
	}
	m.refreshVisible()
	m.flash("sort " + m.sortText())
}

func (m *Model) reverseSort() {
	m.sortDesc = !m.sortDesc
	m.refreshVisible()
	m.flash("sort " + m.sortText())
}

func (m *Model) sortText() string {
	if m.sortCol < 0 {
		return "arrival"
	}
	dir := "asc"
	if m.sortDesc {
		dir = "desc"
	}
	return fmt.Sprintf("c%d %s", m.sortCol, dir)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.follow = m.cursor == len(m.visible)-1
}

func (m *Model) selectedRow() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

func (m *Model) ensureCursorVisible() {
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
