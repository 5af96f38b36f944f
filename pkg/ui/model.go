// Package ui is the interactive terminal viewer: a bubbletea program that
// draws the scatter on a character grid, offers filter and hover controls,
// and reports load state, errors and the hovered word.
package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/affectmap/pkg/app"
	"github.com/vanderheijden86/affectmap/pkg/debug"
	"github.com/vanderheijden86/affectmap/pkg/loader"
	"github.com/vanderheijden86/affectmap/pkg/metrics"
	"github.com/vanderheijden86/affectmap/pkg/scene"
	"github.com/vanderheijden86/affectmap/pkg/surface"
	"github.com/vanderheijden86/affectmap/pkg/watcher"
)

// Layout thresholds
const (
	PanelThreshold = 100 // Show the detail panel beside the chart at this width
	panelWidth     = 30
	headerHeight   = 1
)

// ErrorDisplayDuration is how long a load error stays on screen.
const ErrorDisplayDuration = 5 * time.Second

const frameInterval = 16 * time.Millisecond

// User-facing status text.
const (
	msgLoading    = "加载中..."
	msgRetrying   = "重试中..."
	msgHoverHint  = "将鼠标悬停在词汇上查看详情"
	msgCopied     = "已复制"
	msgCopyFailed = "复制失败"
	msgNoMatch    = "未找到"
)

// LoadedMsg carries a finished acquisition back to the update loop.
type LoadedMsg struct {
	Result app.LoadResult
}

// FileChangedMsg is sent when the dataset file changes on disk
type FileChangedMsg struct{}

// ReadyTimeoutMsg is sent after a short delay to ensure the UI becomes ready
// even if the terminal doesn't send WindowSizeMsg promptly.
type ReadyTimeoutMsg struct{}

type dismissMsg struct{ id int }

type animTickMsg time.Time

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// LoadCmd fetches src off the update loop.
func LoadCmd(ctx context.Context, src loader.Fetcher) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Result: app.Fetch(ctx, src)}
	}
}

func dismissCmd(id int) tea.Cmd {
	return tea.Tick(ErrorDisplayDuration, func(time.Time) tea.Msg {
		return dismissMsg{id: id}
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// Options configures a Model.
type Options struct {
	Fetcher loader.Fetcher
	// App configures the chart; its Sink is replaced by the viewer's own.
	App     app.Options
	Watcher *watcher.Watcher
	// Context bounds every fetch; cancelled by Stop.
	Context context.Context
}

// Model is the main Bubble Tea model for affectmap
type Model struct {
	app     *app.App
	canvas  *surface.Canvas
	status  *statusSink
	fetcher loader.Fetcher
	watcher *watcher.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	search   textinput.Model
	helpView viewport.Model

	width, height int
	ready         bool
	showHelp      bool
	searching     bool
	retrying      bool
	animating     bool
	lastFrame     time.Time
	loadedAt      time.Time
	now           func() time.Time
}

// NewModel creates the viewer. The first load starts in Init.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	canvas := surface.NewCanvas()
	status := &statusSink{}
	appOpts := opts.App
	appOpts.Sink = status
	a := app.New(canvas, appOpts)
	a.DrawFrame(scene.FrameOptions{Ticks: false, AxisTitles: true})

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "词汇"
	search.CharLimit = 32

	return Model{
		app:      a,
		canvas:   canvas,
		status:   status,
		fetcher:  opts.Fetcher,
		watcher:  opts.Watcher,
		ctx:      ctx,
		cancel:   cancel,
		theme:    DefaultTheme(lipgloss.DefaultRenderer()),
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		search:   search,
		helpView: viewport.New(0, 0),
		now:      time.Now,
	}
}

// App exposes the application state, mainly for tests and the CLI.
func (m Model) App() *app.App { return m.app }

// Stop cancels pending fetches and stops the file watcher.
func (m Model) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.startLoad(), ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// startLoad claims the load slot and returns the fetch command, or nil when
// a load is already running.
func (m *Model) startLoad() tea.Cmd {
	if m.fetcher == nil {
		return nil
	}
	if err := m.app.BeginLoad(); err != nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, LoadCmd(m.ctx, m.fetcher))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case ReadyTimeoutMsg:
		if !m.ready {
			m.resize(80, 24)
		}

	case spinner.TickMsg:
		if m.app.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case LoadedMsg:
		m.app.Finish(msg.Result)
		m.retrying = false
		m.loadedAt = m.now()

	case FileChangedMsg:
		debug.Log("ui: dataset changed on disk, reloading")
		cmds = append(cmds, m.startLoad())
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case dismissMsg:
		m.status.dismiss(msg.id)

	case animTickMsg:
		m.animating = false
		now := time.Time(msg)
		dt := now.Sub(m.lastFrame).Seconds()
		if m.lastFrame.IsZero() || dt > 0.1 {
			dt = frameInterval.Seconds()
		}
		m.lastFrame = now
		m.app.Step(float32(dt))

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.settle()...)
	return m, tea.Batch(cmds...)
}

// settle schedules timers owed after a state change: message dismissal and
// highlight animation frames.
func (m *Model) settle() []tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.status.takeUnscheduled() {
		cmds = append(cmds, dismissCmd(id))
	}
	if m.app.Animating() && !m.animating {
		m.animating = true
		m.lastFrame = m.now()
		cmds = append(cmds, animTickCmd())
	}
	m.keys.Retry.SetEnabled(!m.app.Loading())
	return cmds
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.ready = true
	m.help.Width = w
	m.helpView.Width = w
	m.helpView.Height = max(h-2, 1)
	m.helpView.SetContent(renderHelp(min(w-4, 80)))
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), msg.String() == "esc", msg.String() == "q":
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.helpView.GotoTop()
	case key.Matches(msg, m.keys.NextCategory):
		m.app.CycleCategory(1)
	case key.Matches(msg, m.keys.PrevCategory):
		m.app.CycleCategory(-1)
	case key.Matches(msg, m.keys.NextLevel):
		m.app.CycleLevel(1)
	case key.Matches(msg, m.keys.PrevLevel):
		m.app.CycleLevel(-1)
	case key.Matches(msg, m.keys.ResetFilter):
		m.app.ResetFilter()
	case key.Matches(msg, m.keys.NextPoint):
		m.stepHover(1)
	case key.Matches(msg, m.keys.PrevPoint):
		m.stepHover(-1)
	case key.Matches(msg, m.keys.Release):
		m.app.Release()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Reset()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Copy):
		m.copyDetail()
	case key.Matches(msg, m.keys.Retry):
		m.retrying = true
		return m, m.startLoad()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if _, ok := findWord(m.search.Value(), m.app.Visible()); !ok && m.search.Value() != "" {
			m.status.Error(fmt.Sprintf("%s: %s", msgNoMatch, m.search.Value()))
		}
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.app.Release()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if p, ok := findWord(m.search.Value(), m.app.Visible()); ok {
		m.app.Hover(p.Key())
	}
	return m, cmd
}

// stepHover moves the highlight through the visible points in order.
func (m *Model) stepHover(dir int) {
	visible := m.app.Visible()
	if len(visible) == 0 {
		return
	}
	idx := -1
	if d := m.app.Detail(); d != nil {
		k := d.Key()
		for i, p := range visible {
			if p.Key() == k {
				idx = i
				break
			}
		}
	}
	n := len(visible)
	switch {
	case idx < 0 && dir < 0:
		idx = n - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + dir + n) % n
	}
	m.app.Hover(visible[idx].Key())
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.ready || m.showHelp {
		return
	}
	if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
		return
	}
	g := m.grid()
	row := msg.Y - headerHeight
	if msg.X < 0 || msg.X >= g.Cols || row < 0 || row >= g.Rows {
		m.app.Release()
		return
	}
	x, y := g.Point(msg.X, row)
	cw, ch := g.CellSize()
	m.app.HoverAt(x, y, math.Hypot(cw, ch)/2)
}

func (m *Model) copyDetail() {
	d := m.app.Detail()
	if d == nil {
		return
	}
	if err := copyToClipboard(strings.Join(d.Lines(), "\n")); err != nil {
		debug.Log("ui: clipboard: %v", err)
		m.status.Error(fmt.Sprintf("%s: %v", msgCopyFailed, err))
		return
	}
	m.status.Notice(fmt.Sprintf("%s: %s", msgCopied, d.Summary()))
}

func (m Model) showPanel() bool {
	return m.width >= PanelThreshold
}

// grid returns the character grid the chart occupies.
func (m Model) grid() surface.Grid {
	cols := m.width
	if m.showPanel() {
		cols -= panelWidth + 1
	}
	rows := m.height - headerHeight - lipgloss.Height(m.renderFooter(cols))
	return surface.Grid{Layout: m.app.Layout(), Cols: max(cols, 0), Rows: max(rows, 0)}
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	defer metrics.Timer(metrics.UIRender)()

	if m.showHelp {
		return m.theme.Title.Render("帮助") + "  " + m.theme.MutedText.Render("? / esc 关闭") + "\n" + m.helpView.View()
	}

	g := m.grid()
	chart := m.renderChart(g)
	if m.showPanel() {
		chart = lipgloss.JoinHorizontal(lipgloss.Top, chart, " ", m.renderPanel(g.Rows))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		chart,
		m.renderFooter(g.Cols),
	)
}

func (m Model) renderHeader() string {
	sel := m.app.Selection()
	counts := m.status.counts
	parts := []string{
		m.theme.Header.Render(scene.ChartTitle),
		m.theme.Label.Render("类别 ") + m.theme.Value.Render(sel.Category),
		m.theme.Label.Render("强度 ") + m.theme.Value.Render(sel.Level),
		m.theme.MutedText.Render(fmt.Sprintf("%d/%d", counts.Visible, counts.Total)),
	}
	if m.status.loading {
		label := msgLoading
		if m.retrying {
			label = msgRetrying
		}
		parts = append(parts, m.spinner.View()+" "+m.theme.Notice.Render(label))
	}
	return clip(strings.Join(parts, "  "), m.width)
}

func (m Model) renderChart(g surface.Grid) string {
	if g.Cols <= 0 || g.Rows <= 0 {
		return ""
	}
	out := surface.RenderTerminal(m.canvas, g)
	if !m.status.loading {
		return out
	}
	lines := strings.Split(out, "\n")
	for i, ln := range lines {
		lines[i] = m.theme.Dimmed.Render(ln)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPanel(height int) string {
	var body string
	if d := m.status.detail; d != nil {
		lines := d.Lines()
		lines[0] = m.theme.Selected.Render(lines[0])
		body = strings.Join(lines, "\n")
	} else {
		body = m.theme.MutedText.Render(msgHoverHint)
	}
	return m.theme.Panel.
		Width(panelWidth - 2).
		Height(max(height-2, 1)).
		Render(body)
}

func (m Model) renderFooter(width int) string {
	lines := []string{RenderDivider(width)}

	stats := m.app.Snapshot().Summary().String()
	if res, ok := m.app.LastLoad(); ok {
		stats += " · " + res.Source
		if !m.loadedAt.IsZero() {
			stats += " · " + humanize.RelTime(m.loadedAt, m.now(), "ago", "from now")
		}
	}
	lines = append(lines, m.theme.MutedText.Render(truncate(stats, width)))

	if !m.showPanel() {
		if d := m.status.detail; d != nil {
			lines = append(lines, clip(m.theme.Selected.Render(d.Summary())+"  "+strings.Join(d.Lines()[3:], "  "), width))
		} else {
			lines = append(lines, m.theme.MutedText.Render(truncate(msgHoverHint, width)))
		}
	}

	if legend := RenderLegend(m.app.Palette().Legend(m.app.Snapshot().Categories()), width); legend != "" {
		lines = append(lines, legend)
	}

	for _, msg := range m.status.messages {
		style := m.theme.Error
		if msg.notice {
			style = m.theme.Notice
		}
		lines = append(lines, style.Render(truncate(msg.text, width)))
	}

	if m.searching {
		lines = append(lines, m.search.View())
	} else {
		lines = append(lines, m.help.View(m.keys))
	}
	return strings.Join(lines, "\n")
}
