package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"logdam/internal/config"
	"logdam/internal/detect"
	"logdam/internal/ingest"
	"logdam/internal/parse"
	"logdam/internal/report"
	"logdam/internal/tabulate"
	"logdam/internal/util/logx"
)

// newModel wires source → tabulator → aggregator → report for cfg.
func newModel(ctx context.Context, cfg *config.Config, src ingest.Source, out io.Writer) (*Model, error) {
	label := cfg.InitialStrategy()
	pc, err := parse.New(label, src, cfg.ParseOptions())
	if err != nil {
		return nil, err
	}
	tab := tabulate.New(pc)
	m := &Model{
		ctx:        ctx,
		cfg:        cfg,
		out:        out,
		src:        src,
		tab:        tab,
		rep:        report.New(report.NewAggregator(tab)),
		strategy:   label,
		autoDetect: cfg.AutoDetect(),
		paused:     cfg.Paused,
		bell:       cfg.Bell,
		follow:     true,
		sortCol:    -1,
		styles:     NewStyles(cfg.Theme == config.ThemeDark),
		keymap:     DefaultKeyMap(),
		input:      textinput.New(),
		spin:       spinner.New(),
		termWidth:  120,
		termHeight: 30,
	}
	m.detector = &detect.Detector{UseCache: !cfg.NoCache}
	if !cfg.Offline && cfg.OpenAIKey() != "" {
		m.detector.AI = detect.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)
	}
	m.spin.Spinner = spinner.Dot
	m.input.Placeholder = "text, /regex/ or expr: c8 >= 500"
	m.input.CharLimit = 256
	m.input.Prompt = "filter> "
	m.modalVP = viewport.New(80, 20)
	m.helpItems = m.buildHelpItems()
	logx.Infof("ui: strategy %s (%s) source %s", label, parse.Describe(pc), src.Name())
	return m, nil
}

func Run(ctx context.Context, cfg *config.Config) error {
	src, err := ingest.Open(ctx, cfg.SourceOptions())
	if err != nil {
		return err
	}
	defer src.Close()
	out, closeOut := openTTY()
	defer closeOut()
	m, err := newModel(ctx, cfg, src, out)
	if err != nil {
		return err
	}
	var opts []tea.ProgramOption
	opts = append(opts, tea.WithContext(ctx), tea.WithAltScreen())
	if cfg.Stdin {
		// stdin carries data, so keys come from the terminal
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("ui: stdin is piped and no terminal is available: %w", err)
		}
		defer tty.Close()
		opts = append(opts, tea.WithInput(tty))
	}
	_, err = tea.NewProgram(m, opts...).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
