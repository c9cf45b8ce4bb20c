package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/tui/components"
	"github.com/Veraticus/geoscope/internal/tui/themes"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// View identifies the active pane.
type View int

const (
	ViewMap View = iota
	ViewScatter
	ViewPCP
	ViewClusters
)

var viewTitles = []string{"Map", "Scatter", "PCP", "Clusters"}

// Model holds the main dashboard state. All cross-view configuration
// lives in the shared store; the model routes input to it and re-renders
// the panes from fresh snapshots.
type Model struct {
	repo        *repository.Repository
	store       *viewstate.Store
	curve       *model.ErrorCurve
	theme       themes.Theme
	keymap      KeyMap
	mapView     components.MapViewModel
	scatterView components.ScatterViewModel
	pcpView     components.PCPViewModel
	clusterView components.ClusterViewModel
	view        View
	width       int
	height      int
	showHelp    bool
	quitting    bool
}

// newModel creates the dashboard model.
func newModel(cfg Config) Model {
	theme := cfg.Theme
	return Model{
		repo:        cfg.Repo,
		store:       cfg.Store,
		theme:       theme,
		keymap:      DefaultKeyMap(),
		mapView:     components.NewMapViewModel(theme),
		scatterView: components.NewScatterViewModel(theme),
		pcpView:     components.NewPCPViewModel(theme),
		clusterView: components.NewClusterViewModel(theme),
	}
}

// Init starts the one-time data load.
func (m Model) Init() tea.Cmd {
	m.store.SetLoading(true)
	return tea.Batch(tea.EnterAltScreen, m.loadData())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.paneSize()
		m.mapView = m.mapView.SetSize(cols, rows)
		m.scatterView = m.scatterView.SetSize(cols, rows)
		m.pcpView = m.pcpView.SetSize(cols, rows)
		m.clusterView = m.clusterView.SetSize(cols, rows)
		return m.refresh(), nil

	case dataLoadedMsg:
		m.store.SetLoading(false)
		if msg.err != nil {
			m.store.SetError(fmt.Sprintf("data load failed: %v", msg.err))
			return m.refresh(), nil
		}
		m.store.SetError("")
		return m.refresh(), m.loadCurve()

	case curveLoadedMsg:
		m.curve = msg.curve
		return m.refresh(), nil

	case stateChangedMsg:
		return m.refresh(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keymap.NextView):
		m.view = (m.view + 1) % View(len(viewTitles))
		return m.refresh(), nil

	case key.Matches(msg, m.keymap.PrevView):
		m.view = (m.view + View(len(viewTitles)) - 1) % View(len(viewTitles))
		return m.refresh(), nil

	case key.Matches(msg, m.keymap.Reload):
		m.repo.ClearCache()
		m.curve = nil
		m.store.SetLoading(true)
		return m.refresh(), m.loadData()

	case key.Matches(msg, m.keymap.ClearSelection):
		m.store.SetSelectedCountries(nil)
		return m.refresh(), nil

	case key.Matches(msg, m.keymap.CycleFeature):
		st := m.store.Snapshot()
		m.store.SetMapFeature(nextField(st.MapFeature))
		return m.refresh(), nil

	case key.Matches(msg, m.keymap.ToggleAxis):
		st := m.store.Snapshot()
		if st.CurrentAxis == viewstate.AxisX {
			m.store.SetCurrentAxis(viewstate.AxisY)
		} else {
			m.store.SetCurrentAxis(viewstate.AxisX)
		}
		return m, nil

	case key.Matches(msg, m.keymap.CycleVariable):
		st := m.store.Snapshot()
		if st.CurrentAxis == viewstate.AxisX {
			m.store.SetXVar(nextField(st.XVar))
		} else {
			m.store.SetYVar(nextField(st.YVar))
		}
		// The error curve depends on the axis pair; the old one stays
		// up until its replacement arrives.
		return m.refresh(), m.loadCurve()
	}

	if k := digitK(msg.String()); k > 0 {
		m.store.SetK(k)
		return m.refresh(), nil
	}

	if m.view == ViewMap {
		return m.handleMapKey(msg)
	}
	return m, nil
}

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.mapView = m.mapView.MoveCursor(0, -1)
	case key.Matches(msg, m.keymap.Down):
		m.mapView = m.mapView.MoveCursor(0, 1)
	case key.Matches(msg, m.keymap.Left):
		m.mapView = m.mapView.MoveCursor(-1, 0)
	case key.Matches(msg, m.keymap.Right):
		m.mapView = m.mapView.MoveCursor(1, 0)
	case key.Matches(msg, m.keymap.ZoomIn):
		m.mapView = m.mapView.Zoom(1.25)
	case key.Matches(msg, m.keymap.ZoomOut):
		m.mapView = m.mapView.Zoom(1 / 1.25)
	case key.Matches(msg, m.keymap.PanUp):
		m.mapView = m.mapView.Pan(0, 0.1)
	case key.Matches(msg, m.keymap.PanDown):
		m.mapView = m.mapView.Pan(0, -0.1)
	case key.Matches(msg, m.keymap.PanLeft):
		m.mapView = m.mapView.Pan(0.1, 0)
	case key.Matches(msg, m.keymap.PanRight):
		m.mapView = m.mapView.Pan(-0.1, 0)
	case key.Matches(msg, m.keymap.Select):
		name := m.mapView.CountryUnderCursor()
		if name != "" && m.repo.Dataset().HasCountry(name) {
			m.store.ToggleCountry(name)
			return m.refresh(), nil
		}
	}
	return m, nil
}

// handleMouse routes clicks on the clusters pane to a k selection: each
// bar covers one candidate cluster count.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.view != ViewClusters || msg.Y < 1 {
		return m, nil
	}
	if k := m.clusterView.KForColumn(msg.X); k > 0 {
		m.store.SetK(k)
		return m.refresh(), nil
	}
	return m, nil
}

// refresh re-renders every pane from fresh snapshots. Redraw is a full
// reconstruction, so dropping or coalescing refreshes is always safe.
func (m Model) refresh() Model {
	ds := m.repo.Dataset()
	st := m.store.Snapshot()

	m.mapView = m.mapView.SetData(ds, st)
	m.scatterView = m.scatterView.SetData(ds, st)
	m.pcpView = m.pcpView.SetData(ds, st)
	m.clusterView = m.clusterView.SetCurve(m.curve, st.K)
	return m
}

// paneSize reserves rows for the tab bar and status line.
func (m Model) paneSize() (int, int) {
	cols := m.width
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	st := m.store.Snapshot()

	var body string
	switch {
	case st.IsLoading:
		body = m.theme.StatusInfo.Render("loading data...")
	case st.Error != "":
		body = m.theme.Banner.Render(st.Error)
	default:
		switch m.view {
		case ViewMap:
			body = m.mapView.View()
		case ViewScatter:
			body = m.scatterView.View()
		case ViewPCP:
			body = m.pcpView.View()
		case ViewClusters:
			body = m.clusterView.View()
		}
	}

	if m.showHelp {
		body = m.helpView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.tabBar(), body, m.statusLine(st))
}

func (m Model) tabBar() string {
	tabs := make([]string, len(viewTitles))
	for i, title := range viewTitles {
		if View(i) == m.view {
			tabs[i] = m.theme.ActiveTab.Render(title)
		} else {
			tabs[i] = m.theme.InactiveTab.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) statusLine(st viewstate.State) string {
	axis := "x"
	if st.CurrentAxis == viewstate.AxisY {
		axis = "y"
	}
	parts := []string{
		fmt.Sprintf("map: %s", st.MapFeature),
		fmt.Sprintf("x: %s", st.XVar),
		fmt.Sprintf("y: %s", st.YVar),
		fmt.Sprintf("axis: %s", axis),
		fmt.Sprintf("k: %d", st.K),
	}
	if n := len(st.SelectedCountries); n > 0 {
		parts = append(parts, fmt.Sprintf("selected: %d", n))
	}
	return m.theme.Subtitle.Render(strings.Join(parts, " · ") + "  (? for help)")
}

func (m Model) helpView() string {
	lines := []string{
		m.theme.Title.Render("geoscope"),
		"",
		"tab / shift+tab   switch view",
		"arrows / hjkl     move map cursor",
		"enter             toggle country selection",
		"c                 clear selection",
		"+ / -             zoom, HJKL pan",
		"f                 cycle map feature",
		"a, v              pick axis, cycle its variable",
		"1-9, 0            set cluster count k (0 = 10)",
		"click a bar       set k from the clusters view",
		"r                 reload data",
		"q                 quit",
	}
	return m.theme.Box.Render(strings.Join(lines, "\n"))
}

func nextField(f model.Field) model.Field {
	return model.Field((int(f) + 1) % len(model.Fields))
}

func digitK(s string) int {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0
	}
	if s == "0" {
		return repository.MaxClusterCount
	}
	return int(s[0] - '0')
}
