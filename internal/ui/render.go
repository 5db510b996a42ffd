package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"logdam/internal/parse"
	"logdam/internal/util/logx"
)

const (
	maxColWidth = 40
	minColWidth = 3
	flashFor    = 3 * time.Second
)

func (m *Model) View() string {
	v := m.renderTable()
	if m.modalActive {
		// Dim the background content while keeping it visible
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

// bodyHeight is the number of data rows on screen: header and status take
// one line each, the filter prompt one more while open.
func (m *Model) bodyHeight() int {
	h := m.termHeight - 2
	if m.inputOn {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) renderTable() string {
	widths := m.columnWidths()
	var b strings.Builder
	b.WriteString(m.renderHeader(widths))
	b.WriteByte('\n')
	end := m.offset + m.bodyHeight()
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for vi := m.offset; vi < end; vi++ {
		b.WriteString(m.renderRow(m.visible[vi], widths, vi == m.cursor))
		b.WriteByte('\n')
	}
	for vi := end; vi < m.offset+m.bodyHeight(); vi++ {
		b.WriteByte('\n')
	}
	if m.inputOn {
		b.WriteString(m.input.View())
		b.WriteByte('\n')
	}
	b.WriteString(m.renderStatus())
	return b.String()
}

// columnWidths sizes each on-screen column to its widest cell among the
// rows currently displayed, starting from colOffset and stopping at the
// terminal edge.
func (m *Model) columnWidths() []int {
	var widths []int
	used := 0
	for c := m.colOffset; c < m.rep.Width(); c++ {
		w := runewidth.StringWidth(m.headerTitle(c, m.keyColumn()))
		for vi := m.offset; vi < len(m.visible) && vi < m.offset+m.bodyHeight(); vi++ {
			row := m.rep.Row(m.visible[vi])
			if c < len(row) {
				if cw := runewidth.StringWidth(row[c]); cw > w {
					w = cw
				}
			}
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		if w < minColWidth {
			w = minColWidth
		}
		if used+w > m.termWidth && len(widths) > 0 {
			break
		}
		widths = append(widths, w)
		used += w + 1
	}
	return widths
}

func (m *Model) keyColumn() int {
	md := m.tab.Config().Metadata(nil)
	if col, ok := md.Key(); ok {
		return col
	}
	return -1
}

func colTitle(c, key int) string {
	if c == key {
		return fmt.Sprintf("c%d*", c)
	}
	return fmt.Sprintf("c%d", c)
}

// headerTitle adds the sort arrow to the sorted column.
func (m *Model) headerTitle(c, key int) string {
	t := colTitle(c, key)
	if c == m.sortCol {
		if m.sortDesc {
			return t + "▼"
		}
		return t + "▲"
	}
	return t
}

func (m *Model) renderHeader(widths []int) string {
	key := m.keyColumn()
	cells := make([]string, len(widths))
	for i, w := range widths {
		c := m.colOffset + i
		st := m.styles.Header
		if c == key {
			st = m.styles.KeyHeader
		}
		cells[i] = st.Render(fit(m.headerTitle(c, key), w))
	}
	return strings.Join(cells, " ")
}

func (m *Model) renderRow(ri int, widths []int, selected bool) string {
	row := m.rep.Row(ri)
	cells := make([]string, len(widths))
	for i, w := range widths {
		c := m.colOffset + i
		text := ""
		if c < len(row) {
			text = row[c]
		}
		cells[i] = m.styles.Cell(fit(text, w), m.rep.Paint(ri, c))
	}
	line := strings.Join(cells, " ")
	if selected {
		return m.styles.Selected.Render(line)
	}
	return line
}

// fit truncates or pads s to exactly w terminal cells.
func fit(s string, w int) string {
	s = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}

func (m *Model) renderStatus() string {
	state := "running"
	if m.paused {
		state = "paused"
	}
	parts := []string{
		state,
		"strategy " + m.strategy,
		"src " + m.src.Name(),
		fmt.Sprintf("rows %d/%d", len(m.visible), m.rep.Len()),
		fmt.Sprintf("frame %d", m.rep.Frame()),
	}
	if m.eval != nil {
		parts = append(parts, "filter "+m.criteriaText())
	}
	if m.sortCol >= 0 {
		parts = append(parts, "sort "+m.sortText())
	}
	if m.bell {
		parts = append(parts, "bell")
	}
	if m.detecting {
		parts = append(parts, m.spin.View()+" detecting")
	}
	s := m.styles.Status.Render(strings.Join(parts, " · "))
	if m.lastMsg != "" && time.Since(m.lastMsgAt) < flashFor {
		s += "  " + m.styles.StatusWarn.Render(m.lastMsg)
	}
	return s + m.styles.Help.Render("  ?=help")
}

func (m *Model) renderHelp() string {
	var b strings.Builder
	group := ""
	for i, it := range m.helpItems {
		if it.group != group {
			if group != "" {
				b.WriteByte('\n')
			}
			group = it.group
			b.WriteString(m.styles.Header.Render(group))
			b.WriteByte('\n')
		}
		line := fmt.Sprintf("  %-8s %s", keyLabel(it.key), it.text)
		if i == m.helpSel {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderPicker() string {
	var b strings.Builder
	if m.pickerErr != "" {
		b.WriteString(m.styles.PopupError.Render(m.pickerErr))
		b.WriteString("\n\n")
	}
	for i, label := range parse.Labels() {
		line := "  " + label
		if label == m.strategy {
			line += " (current)"
		}
		if i == m.pickerSel {
			line = m.styles.Selected.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) openModal(kind modalKind, title, body string) {
	m.modalActive = true
	m.modalKind = kind
	m.modalTitle = title
	m.modalBody = body
	m.resizeModal()
}

func (m *Model) openHelpModal() {
	m.helpSel = 0
	m.openModal(modalHelp, "Help", m.renderHelp())
}

func (m *Model) openPicker(errText string) {
	m.pickerErr = errText
	m.pickerSel = 0
	for i, l := range parse.Labels() {
		if l == m.strategy {
			m.pickerSel = i
		}
	}
	title := "Choose strategy"
	if errText != "" {
		title = "Strategy failed, choose another"
	}
	m.openModal(modalPicker, title, "")
}

func (m *Model) openHistoryModal() {
	ri, ok := m.selectedRow()
	if !ok {
		m.flash("no row selected")
		return
	}
	key := m.rep.RowKey(ri)
	var b strings.Builder
	if !key.Valid {
		b.WriteString("row has no key; current value:\n")
		b.WriteString(strings.Join(m.rep.Row(ri), " | "))
		m.openModal(modalHistory, "Row", b.String())
		return
	}
	hist := m.rep.History(key.Value)
	for i, row := range hist {
		fmt.Fprintf(&b, "%4d  %s\n", i+1, strings.Join(row, " | "))
	}
	m.openModal(modalHistory, fmt.Sprintf("History for key %s (%d updates)", key, len(hist)), b.String())
	m.modalVP.GotoBottom()
}

func (m *Model) openAppLogsModal() {
	m.openModal(modalLogs, "Application logs", strings.Join(logx.Lines(), "\n"))
	m.modalVP.GotoBottom()
}

func (m *Model) resizeModal() {
	w := m.termWidth - 6
	h := m.termHeight - 6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.modalVP = viewport.New(w-4, h-4)
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
	case modalPicker:
		m.modalVP.SetContent(m.renderPicker())
	default:
		m.modalVP.SetContent(m.modalBody)
	}
}

func (m *Model) renderModal() string {
	var content string
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
		content = m.modalVP.View() + "\n[esc]=close  [enter]=run"
	case modalPicker:
		m.modalVP.SetContent(m.renderPicker())
		content = m.modalVP.View() + "\n[↑/↓]=choose  [enter]=apply  [esc]=close"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close  [y]=copy"
	}
	boxW := m.termWidth - 6
	if boxW < 20 {
		boxW = 20
	}
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}
