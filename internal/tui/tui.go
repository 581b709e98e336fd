package tui

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"jobtrack/internal/board"
	"jobtrack/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Remote board.Remote
	Params model.ListParams
	// Logger must not write to the terminal the board is drawn on.
	Logger *slog.Logger
}

func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newBoardModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

const reloadInterval = 5 * time.Second

type reloadTickMsg struct{}

type refreshedMsg struct{ err error }

type settledMsg struct{ out board.Outcome }

func tickReload() tea.Cmd {
	return tea.Tick(reloadInterval, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

// statusLine is the board's ErrorReporter. Reports arrive from commit goroutines.
type statusLine struct {
	mu  sync.Mutex
	msg string
	err bool
}

func (s *statusLine) Report(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = err.Error()
	s.err = true
}

func (s *statusLine) Set(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	s.err = false
}

func (s *statusLine) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg, s.err
}

type dragState struct {
	itemID string
	source board.Location
	target board.Location
}

type boardModel struct {
	ctx    context.Context
	coord  *board.Coordinator
	status *statusLine
	logger *slog.Logger

	width  int
	height int

	sel     selection
	drag    *dragState
	pending int

	searching bool
	search    textinput.Model
	detail    bool

	keys keyMap
	help help.Model
}

func newBoardModel(ctx context.Context, opts Options) boardModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	status := &statusLine{}
	coord := board.NewCoordinator(nil, opts.Remote, status, logger)
	coord.SetParams(opts.Params)

	search := textinput.New()
	search.Placeholder = "company, position or notes"
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 40

	return boardModel{
		ctx:    ctx,
		coord:  coord,
		status: status,
		logger: logger,
		search: search,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}
