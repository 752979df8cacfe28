package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/fxyaml/log"
)

const (
	prompt       = "➜ "
	defaultWidth = 80
	charLimit    = 4096
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config configures [Run].
type Config struct {
	Session *Session
	History *History

	// In and Out default to the process's standard streams.
	In  io.Reader
	Out io.Writer

	Logger log.Logger
}

// Run reads lines from cfg.In and executes them in cfg.Session until the
// input ends, a quit command is entered, or ctx is done.
//
// When In is a terminal, Run presents an interactive line editor with
// history and tab completion. Otherwise each input line is executed in
// turn and its reply printed, so scripts can be piped in.
func Run(ctx context.Context, cfg Config) error {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}

	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	if cfg.History == nil {
		cfg.History = NewHistory("")
	}

	if cfg.Logger.Logger == nil {
		cfg.Logger = log.FromContext(ctx)
	}

	if err := cfg.History.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	if f, ok := cfg.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cfg.Logger.TraceContext(ctx, "repl start",
			slog.Bool("terminal", true),
			slog.Int("history", cfg.History.Len()),
		)

		p := tea.NewProgram(
			newModel(ctx, cfg),
			tea.WithContext(ctx),
			tea.WithInput(cfg.In),
			tea.WithOutput(cfg.Out),
		)

		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}

		return err
	}

	cfg.Logger.TraceContext(ctx, "repl start", slog.Bool("terminal", false))

	return runLines(ctx, cfg)
}

// runLines executes each line of cfg.In without line editing.
func runLines(ctx context.Context, cfg Config) error {
	scanner := bufio.NewScanner(cfg.In)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		reply, err := cfg.Session.Exec(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintln(cfg.Out, "error: "+err.Error())

			continue
		}

		if reply.Quit {
			return nil
		}

		if reply.Text != "" {
			fmt.Fprintln(cfg.Out, reply.Text)
		}
	}

	return scanner.Err()
}

// model is the Bubble Tea model for the interactive REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *Session
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

func newModel(ctx context.Context, cfg Config) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    cfg.Session,
		logger:     cfg.Logger,
		history:    cfg.History,
		historyIdx: cfg.History.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		hint := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)) +
			"/" + strconv.Itoa(m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Enter a formula, name: =formula, or :help"))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.selected(), m.width))
	}

	b.WriteString("\n")

	return b.String()
}

// selected returns the highlighted candidate, or -1 when not tab-cycling.
func (m model) selected() int {
	if !m.tabActive {
		return -1
	}

	return m.suggIdx
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			// Lock in the current candidate without executing.
			m.tabActive = false
			m.refresh()

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(m.historyIdx - 1), nil

	case tea.KeyDown:
		return m.recall(m.historyIdx + 1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refresh()
		}

		return m, nil
	}

	var cmd tea.Cmd

	// Typing ends tab-cycling with the current candidate in place.
	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// cycle moves the tab selection by step, starting tab-cycling if needed.
func (m model) cycle(step int) model {
	switch len(m.matches) {
	case 0:
		return m

	case 1:
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = -1
		if step < 0 {
			m.suggIdx = 0
		}
	}

	n := len(m.matches)
	m.suggIdx = ((m.suggIdx+step)%n + n) % n
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word with s and moves the cursor to its
// end.
func (m *model) replaceWord(s string) {
	input := m.input.Value()
	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refresh recomputes the completion matches for the current input.
func (m *model) refresh() {
	m.matches, m.wordStart, m.wordEnd = complete(
		m.session, m.input.Value(), m.input.Position(),
	)

	if !m.tabActive {
		m.suggIdx = -1
	}
}

// recall shows history entry i, or clears the input past the newest entry.
func (m model) recall(i int) model {
	if i < 0 {
		return m
	}

	m.tabActive = false
	m.historyIdx = min(i, m.history.Len())

	line, err := m.history.Entry(m.historyIdx)
	if err != nil {
		line = ""
	}

	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.refresh()

	return m
}

func (m model) execute() (model, tea.Cmd) {
	ctx := m.ctxFunc()

	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(line); err != nil {
		m.logger.WarnContext(ctx, "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	reply, err := m.session.Exec(ctx, line)

	switch {
	case err != nil:
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))

	case reply.Quit:
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case reply.Clear:
		return m, tea.ClearScreen

	case reply.Text == "":
		return m, echo

	default:
		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(reply.Text)))
	}
}
