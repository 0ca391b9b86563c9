package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pet-arcade/internal/core"
	"github.com/vovakirdan/pet-arcade/internal/session"
)

// serviceTimeout bounds each entitlement or submission call.
const serviceTimeout = 10 * time.Second

// maxFrameDT caps the time fed to the engine per frame, so a stalled
// terminal does not fast-forward the game.
const maxFrameDT = 250 * time.Millisecond

// Service answers carry the controller that asked, so an answer that
// arrives after its game was left still reaches it.
type startResultMsg struct {
	ctrl *session.Controller
	resp session.StartResponse
	err  error
}

type submitResultMsg struct {
	ctrl *session.Controller
	req  session.SubmitRequest
	resp session.SubmitResponse
	err  error
}

// Model is the Bubble Tea model that hosts one session controller.
// All controller calls happen in Update; only service calls run in commands.
type Model struct {
	ctrl       *session.Controller
	service    session.Service
	kind       core.GameKind
	screen     *core.Screen
	tickRate   int
	keys       KeyMapper
	hold       HoldTracker
	resultKeys ResultKeyMap
	help       help.Model
	spinner    spinner.Model
	inputFrame core.InputFrame
	lastTick   time.Time
	standalone bool // quit the program when the controller closes
	done       bool
}

// NewModel creates a model for ctrl. service must be the controller's Service.
func NewModel(ctrl *session.Controller, service session.Service, cfg core.RuntimeConfig, standalone bool) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 30
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	kind := core.GameKind(ctrl.Game().ID())
	return Model{
		ctrl:       ctrl,
		service:    service,
		kind:       kind,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		tickRate:   cfg.TickRate,
		keys:       NewKeyMapper(kind),
		hold:       NewHoldTracker(0),
		resultKeys: DefaultResultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		inputFrame: core.NewInputFrame(),
		standalone: standalone,
	}
}

// Init asks for entitlement and starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.spinner.Tick, tickCmd(m.tickRate))
}

// Done reports whether the session has been closed.
func (m Model) Done() bool {
	return m.done
}

// Controller returns the hosted controller.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// startCmd moves the controller to checking and queries the service off-loop.
func (m Model) startCmd() tea.Cmd {
	req, err := m.ctrl.RequestStart()
	if err != nil {
		return nil
	}
	ctrl, svc := m.ctrl, m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		resp, err := svc.StartSession(ctx, req)
		return startResultMsg{ctrl: ctrl, resp: resp, err: err}
	}
}

// submitCmd sends the pending result, if any, off-loop.
func (m Model) submitCmd() tea.Cmd {
	req, ok := m.ctrl.PendingSubmission()
	if !ok {
		return nil
	}
	ctrl, svc := m.ctrl, m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()
		resp, err := svc.SubmitResult(ctx, req)
		return submitResultMsg{ctrl: ctrl, req: req, resp: resp, err: err}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height-1)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case startResultMsg:
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		//nolint:errcheck // outcome is reflected in phase and notice
		m.ctrl.ApplyStart(msg.resp, msg.err)
		m.lastTick = time.Time{}
		m.hold.Release()
		return m, m.afterTransition()

	case submitResultMsg:
		applySubmission(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func applySubmission(msg submitResultMsg) {
	//nolint:errcheck // outcome is reflected in the result and notice
	msg.ctrl.ApplySubmission(msg.req, msg.resp, msg.err)
}

// afterTransition finishes the model once the controller has closed.
func (m *Model) afterTransition() tea.Cmd {
	if m.ctrl.Phase() != session.PhaseClosed {
		return nil
	}
	if n, ok := m.ctrl.Notice(); ok && n.Level == session.NoticeBlocking {
		// keep the notice up until a key is pressed
		return nil
	}
	return m.finish()
}

func (m *Model) finish() tea.Cmd {
	m.done = true
	if m.standalone {
		return tea.Quit
	}
	return nil
}

// handleKey processes keyboard input according to the controller phase.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	switch m.ctrl.Phase() {
	case session.PhaseRunning:
		return m.handleGameKey(msg)

	case session.PhaseResult:
		switch {
		case key.Matches(msg, m.resultKeys.Restart):
			return m, m.startCmd()
		case key.Matches(msg, m.resultKeys.Quit):
			m.ctrl.Exit()
			return m, m.finish()
		}

	case session.PhaseIdle:
		switch msg.String() {
		case "enter", "r":
			return m, m.startCmd()
		case "q", "esc", "ctrl+c":
			m.ctrl.Exit()
			return m, m.finish()
		}

	case session.PhaseClosed:
		m.ctrl.ClearNotice()
		return m, m.finish()

	case session.PhaseChecking:
		if msg.String() == "ctrl+c" {
			m.ctrl.Exit()
			return m, m.finish()
		}
	}

	return m, nil
}

func (m Model) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit || action == core.ActionBack {
		m.ctrl.Exit()
		return m, m.finish()
	}

	switch {
	case action == core.ActionNone:
	case m.keys.Holds(action):
		if m.hold.Press(action, time.Now()) {
			m.inputFrame.Set(action)
		}
	case action == core.ActionRelease:
		m.hold.Release()
		m.inputFrame.Set(action)
	default:
		m.inputFrame.Set(action)
	}
	return m, nil
}

// handleTick advances the running game by the wall time since the last tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	dt := time.Second / time.Duration(m.tickRate)
	if !m.lastTick.IsZero() {
		dt = min(now.Sub(m.lastTick), maxFrameDT)
	}
	m.lastTick = now

	if m.ctrl.Phase() == session.PhaseRunning {
		if m.hold.Expired(now) {
			m.inputFrame.Set(core.ActionRelease)
		}
		m.ctrl.Advance(dt, m.inputFrame)
		m.inputFrame.Clear()
	}

	cmds := []tea.Cmd{tickCmd(m.tickRate)}
	if m.ctrl.Phase() == session.PhaseResult {
		m.hold.Release()
		cmds = append(cmds, m.submitCmd())
	}
	return m, tea.Batch(cmds...)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.ctrl.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".petarcade", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	filename := fmt.Sprintf("%s_%s.txt", m.kind, time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current phase.
func (m Model) View() string {
	if m.done {
		return ""
	}

	switch m.ctrl.Phase() {
	case session.PhaseChecking:
		return m.centered(fmt.Sprintf("%s Checking your plays for %s...", m.spinner.View(), m.ctrl.Game().Title()))

	case session.PhaseRunning:
		m.ctrl.Render(m.screen)
		return RenderScreen(m.screen) + "\n" + m.statusLine()

	case session.PhaseResult:
		return m.centered(m.resultView())

	default:
		return m.centered(m.noticeView())
	}
}

func (m Model) statusLine() string {
	ent := m.ctrl.Entitlement()
	plays := "unlimited"
	if ent.RemainingPlays >= 0 {
		plays = fmt.Sprintf("%d", ent.RemainingPlays)
	}
	line := fmt.Sprintf(" Score %d  |  Gold %d  |  Plays left today %s  |  p pause  q exit",
		m.ctrl.LiveScore(), m.ctrl.Balance().Value(), plays)
	return statusStyle.Render(line)
}

func (m Model) resultView() string {
	res := m.ctrl.Result()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.Game().Title() + " - Game Over"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score       %d\n", res.Score)
	fmt.Fprintf(&b, "Gold earned %d  (%d per point)\n", res.Money, m.ctrl.GoldPerPoint())
	fmt.Fprintf(&b, "Time        %ds\n", res.TimeSpent)
	fmt.Fprintf(&b, "Balance     %d\n\n", m.ctrl.Balance().Value())

	switch {
	case res.Submitted:
		b.WriteString(okStyle.Render("Result saved."))
	case res.Failed:
		b.WriteString(errorStyle.Render("Your score could not be saved."))
	default:
		b.WriteString(m.spinner.View() + " Saving result...")
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.resultKeys))

	return boxStyle.Render(b.String())
}

func (m Model) noticeView() string {
	n, ok := m.ctrl.Notice()
	if !ok {
		return ""
	}

	style := noticeStyle
	keys := m.resultKeys
	keys.Restart.SetEnabled(false)
	if n.Level == session.NoticeBlocking {
		style = errorStyle
		keys.Quit.SetHelp("any key", "leave")
	} else {
		keys.Retry.SetEnabled(true)
	}
	return boxStyle.Render(style.Render(n.Message) + "\n\n" + m.help.View(keys))
}

func (m Model) centered(s string) string {
	return lipgloss.Place(m.screen.Width(), m.screen.Height()+1, lipgloss.Center, lipgloss.Center, s)
}

// Run starts a Bubble Tea program hosting ctrl until the session closes.
func Run(ctrl *session.Controller, service session.Service, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewModel(ctrl, service, cfg, true),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
