package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pixsort/internal/logging"
	"pixsort/internal/media"
	"pixsort/internal/session"
)

// Options configures a new App.
type Options struct {
	Dir       string
	Extension string
	Sizes     []int
	Selected  int
}

type listedMsg struct {
	dir   string
	paths []string
	err   error
}

type pollMsg time.Time

// App is the main TUI application model
type App struct {
	poller *session.Poller[*Item]
	ext    string
	sizes  []int

	dir     string
	items   []*Item
	cursor  int
	zoom    int
	loading bool
	ticking bool

	completed int
	total     int
	status    string
	err       error
	write     bool

	progress progress.Model
	help     help.Model

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(poller *session.Poller[*Item], opts Options) *App {
	zoom := opts.Selected
	if zoom < 0 || zoom >= len(opts.Sizes) {
		zoom = 0
	}
	return &App{
		poller:   poller,
		ext:      opts.Extension,
		sizes:    opts.Sizes,
		dir:      opts.Dir,
		zoom:     zoom,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
	}
}

// Init lists the starting folder, if any
func (a *App) Init() tea.Cmd {
	if a.dir == "" {
		return nil
	}
	return a.list(a.dir)
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.progress.Width = max(10, min(60, msg.Width-24))
		a.help.Width = msg.Width
		return a, nil

	case listedMsg:
		return a, a.start(msg)

	case pollMsg:
		return a, a.poll()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		a.poller.Cancel()
		return a, tea.Quit

	case key.Matches(msg, Keys.Write):
		if a.loading {
			a.status = "Wait for the load to finish before writing"
			return a, nil
		}
		a.write = true
		return a, tea.Quit

	case key.Matches(msg, Keys.Cancel):
		if a.poller.Active() {
			a.poller.Cancel()
			a.status = "Cancelling..."
		}

	case key.Matches(msg, Keys.Reload):
		if a.dir != "" {
			return a, a.list(a.dir)
		}

	case key.Matches(msg, Keys.ZoomIn):
		a.setZoom(a.zoom + 1)

	case key.Matches(msg, Keys.ZoomOut):
		a.setZoom(a.zoom - 1)

	case key.Matches(msg, Keys.MoveUp):
		if a.cursor > 0 {
			a.items = Move(a.items, a.cursor, a.cursor-1)
			a.cursor--
		}

	case key.Matches(msg, Keys.MoveDown):
		if a.cursor < len(a.items)-1 {
			a.items = Move(a.items, a.cursor, a.cursor+1)
			a.cursor++
		}

	case key.Matches(msg, Keys.Left):
		a.moveCursor(-1)

	case key.Matches(msg, Keys.Right):
		a.moveCursor(1)

	case key.Matches(msg, Keys.Up):
		a.moveCursor(-a.columns())

	case key.Matches(msg, Keys.Down):
		a.moveCursor(a.columns())
	}

	return a, nil
}

func (a *App) list(dir string) tea.Cmd {
	ext := a.ext
	return func() tea.Msg {
		paths, err := media.ListImages(dir, ext)
		return listedMsg{dir: dir, paths: paths, err: err}
	}
}

func (a *App) start(msg listedMsg) tea.Cmd {
	if msg.err != nil {
		logging.Warn("Listing %s failed: %v", msg.dir, msg.err)
		a.err = msg.err
		return nil
	}

	a.err = nil
	a.dir = msg.dir
	a.items = nil
	a.cursor = 0
	s := a.poller.Start(msg.paths)
	a.completed, a.total = 0, s.Total
	a.loading = true
	a.status = ""
	return a.scheduleTick()
}

// scheduleTick keeps at most one tick chain alive.
func (a *App) scheduleTick() tea.Cmd {
	if a.ticking {
		return nil
	}
	a.ticking = true
	return tea.Tick(a.poller.Config().Interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (a *App) poll() tea.Cmd {
	a.ticking = false
	ev := a.poller.Tick()

	switch ev.Kind {
	case session.EventProgress:
		a.completed, a.total = ev.Completed, ev.Total
		return a.scheduleTick()

	case session.EventCompleted:
		a.items = ev.Results
		for _, item := range a.items {
			item.Select(a.zoom)
		}
		a.cursor = 0
		a.completed, a.total = ev.Completed, ev.Total
		a.loading = false
		a.status = fmt.Sprintf("Loaded %d images", len(a.items))

	case session.EventCancelled:
		a.items = nil
		a.dir = ""
		a.cursor = 0
		a.completed, a.total = 0, 0
		a.loading = false
		a.status = "Load cancelled"

	case session.EventIdle:
		a.loading = false
	}
	return nil
}

func (a *App) setZoom(i int) {
	if i < 0 || i >= len(a.sizes) || i == a.zoom {
		return
	}
	a.zoom = i
	for _, item := range a.items {
		item.Select(i)
	}
}

func (a *App) moveCursor(delta int) {
	if len(a.items) == 0 {
		return
	}
	a.cursor = max(0, min(len(a.items)-1, a.cursor+delta))
}

func (a *App) cellWidth() int {
	if len(a.sizes) == 0 {
		return Columns(0)
	}
	return Columns(a.sizes[a.zoom])
}

// columns returns how many cells fit on a grid row.
func (a *App) columns() int {
	width := a.width
	if width == 0 {
		width = 80
	}
	return max(1, (width-2)/(a.cellWidth()+2))
}

// Move moves the element at from to index to, shifting the ones in
// between, and returns the slice. It reorders in place. Out of range
// indices leave s unchanged.
func Move[T any](s []T, from, to int) []T {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) || from == to {
		return s
	}
	v := s[from]
	s = slices.Delete(s, from, from+1)
	return slices.Insert(s, to, v)
}

// Items returns the loaded items in display order.
func (a *App) Items() []*Item {
	return a.items
}

// Order returns the paths of the loaded items in display order.
func (a *App) Order() []string {
	paths := make([]string, len(a.items))
	for i, item := range a.items {
		paths[i] = item.Path
	}
	return paths
}

// WriteRequested reports whether the user quit with the write key.
func (a *App) WriteRequested() bool {
	return a.write
}

// Dir returns the loaded folder, empty after a cancelled load.
func (a *App) Dir() string {
	return a.dir
}

// Loading reports whether a load is in progress.
func (a *App) Loading() bool {
	return a.loading
}

// Zoom returns the selected preview size index.
func (a *App) Zoom() int {
	return a.zoom
}

// Close cancels any load and releases its workers.
func (a *App) Close() {
	a.poller.Cancel()
	a.poller.Tick()
}

// View renders the grid
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(Title.Render("pixsort"))
	if a.dir != "" {
		b.WriteString("  " + Subtitle.Render(a.dir))
	}
	b.WriteString("\n")

	if a.loading {
		pct := 0.0
		if a.total > 0 {
			pct = float64(a.completed) / float64(a.total)
		}
		b.WriteString(a.progress.ViewAs(pct))
		b.WriteString(fmt.Sprintf("  %d/%d (%d%%)\n", a.completed, a.total, int(pct*100)))
	}

	if grid := a.renderGrid(); grid != "" {
		b.WriteString(grid)
		b.WriteString("\n")
	}

	switch {
	case a.err != nil:
		b.WriteString(StatusError.Render("Error: " + a.err.Error()))
	case a.status != "":
		b.WriteString(Status.Render(a.status))
	}
	b.WriteString("\n")
	b.WriteString(a.help.View(Keys))

	return Frame.Render(b.String())
}

func (a *App) renderGrid() string {
	if len(a.items) == 0 {
		return ""
	}

	cols := a.columns()
	cursorRow := a.cursor / cols

	visible := len(a.items)/cols + 1
	if a.height > 0 {
		// header, progress, status and help take about six lines
		rowHeight := a.cellWidth()/2 + 3
		visible = max(1, (a.height-6)/rowHeight)
	}
	first := max(0, cursorRow-visible+1)

	var rows []string
	for r := first; r < first+visible; r++ {
		start := r * cols
		if start >= len(a.items) {
			break
		}
		end := min(start+cols, len(a.items))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, a.renderCell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderCell(i int) string {
	item := a.items[i]
	w := a.cellWidth()

	nameStyle := CellName
	if item.Failed {
		nameStyle = CellNameFailed
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		item.Preview(),
		nameStyle.Render(truncate(item.Name, w)),
	)

	style := Cell
	if i == a.cursor {
		style = CellSelected
	}
	return style.Width(w).Render(content)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
