package ui

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"logdam/internal/config"
	"logdam/internal/detect"
	"logdam/internal/filter"
	"logdam/internal/ingest"
	"logdam/internal/report"
	"logdam/internal/tabulate"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalPicker
	modalHistory
	modalLogs
)

type Model struct {
	ctx context.Context
	cfg *config.Config
	// out receives terminal side-channel writes (bell, OSC52) so they do
	// not interleave with the renderer's stdout.
	out io.Writer

	// Pipeline
	src      ingest.Source
	tab      *tabulate.Tabulator
	rep      *report.Report
	detector *detect.Detector
	strategy string

	// Detection
	autoDetect bool // run once on the first non-empty table
	detecting  bool

	paused bool
	bell   bool

	// Filter and sort
	eval     *filter.Evaluator
	visible  []int // report row indices passing the filter, in display order
	sortCol  int   // -1 keeps report order
	sortDesc bool

	// View
	styles     Styles
	keymap     KeyMap
	input      textinput.Model
	inputOn    bool
	spin       spinner.Model
	cursor     int // index into visible
	offset     int // first visible row on screen
	colOffset  int
	follow     bool // keep the cursor on the newest row
	termWidth  int
	termHeight int

	lastMsg   string
	lastMsgAt time.Time

	// Modal popup
	modalActive bool
	modalKind   modalKind
	modalVP     viewport.Model
	modalTitle  string
	modalBody   string
	pickerSel   int
	pickerErr   string

	helpItems []helpItem
	helpSel   int
}

type helpItem struct {
	group string
	text  string
	key   tea.Key
}

type tickMsg time.Time

type detectedMsg struct {
	res    detect.Result
	manual bool
}

type toastMsg struct{ text string }

func keyCmd(k tea.Key) tea.Cmd {
	return func() tea.Msg {
		if k.Type == tea.KeyRunes {
			return tea.KeyMsg{Type: k.Type, Runes: k.Runes}
		}
		return tea.KeyMsg{Type: k.Type}
	}
}

func keyLabel(k tea.Key) string {
	switch k.Type {
	case tea.KeyRunes:
		if len(k.Runes) == 1 {
			r := k.Runes[0]
			if r == ' ' {
				return "space"
			}
			return string(r)
		}
		return strings.ToLower(string(k.Runes))
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyLeft:
		return "left"
	case tea.KeyRight:
		return "right"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	default:
		return strings.ToLower(k.String())
	}
}
