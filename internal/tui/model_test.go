package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/tui/themes"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

func testModel() Model {
	repo := repository.New(&config.Config{
		APIBaseURL:    "http://localhost:1",
		DataDir:       ".",
		RetryAttempts: 1,
	})
	return newModel(Config{
		Repo:  repo,
		Store: viewstate.NewStore(),
		Theme: themes.Default,
	})
}

func keyMsg(s string) tea.KeyMsg {
	if s == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDigitK(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "1", want: 1},
		{input: "9", want: 9},
		{input: "0", want: 10},
		{input: "a", want: 0},
		{input: "12", want: 0},
		{input: "", want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, digitK(tt.input), "input %q", tt.input)
	}
}

func TestNextFieldCycles(t *testing.T) {
	f := model.FieldCo2Emissions
	seen := make(map[model.Field]bool)
	for i := 0; i < len(model.Fields); i++ {
		seen[f] = true
		f = nextField(f)
	}
	assert.Len(t, seen, len(model.Fields))
	assert.Equal(t, model.FieldCo2Emissions, f)
}

func TestDigitKeysSetClusterCount(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(keyMsg("7"))
	next := updated.(Model)
	assert.Equal(t, 7, next.store.Snapshot().K)

	updated, _ = next.Update(keyMsg("0"))
	next = updated.(Model)
	assert.Equal(t, 10, next.store.Snapshot().K)
}

func TestTabCyclesViews(t *testing.T) {
	m := testModel()
	require.Equal(t, ViewMap, m.view)

	for _, want := range []View{ViewScatter, ViewPCP, ViewClusters, ViewMap} {
		updated, _ := m.Update(keyMsg("tab"))
		m = updated.(Model)
		assert.Equal(t, want, m.view)
	}
}

func TestAxisRouting(t *testing.T) {
	m := testModel()

	// v edits the x axis by default.
	updated, _ := m.Update(keyMsg("v"))
	m = updated.(Model)
	st := m.store.Snapshot()
	assert.Equal(t, model.FieldGDP, st.XVar)
	assert.Equal(t, model.FieldPopulation, st.YVar)

	// After a, v edits the y axis.
	updated, _ = m.Update(keyMsg("a"))
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("v"))
	m = updated.(Model)
	st = m.store.Snapshot()
	assert.Equal(t, model.FieldGDP, st.XVar)
	assert.Equal(t, model.FieldLifeExpectancy, st.YVar)
}

func TestClearSelectionKey(t *testing.T) {
	m := testModel()
	m.store.SetSelectedCountries([]string{"Aland", "Borduria"})

	updated, _ := m.Update(keyMsg("c"))
	m = updated.(Model)
	assert.Empty(t, m.store.Snapshot().SelectedCountries)
}

func TestDataLoadErrorShowsBanner(t *testing.T) {
	m := testModel()
	m.width, m.height = 80, 24

	updated, _ := m.Update(dataLoadedMsg{err: assert.AnError})
	m = updated.(Model)

	st := m.store.Snapshot()
	assert.Contains(t, st.Error, "data load failed")
	assert.Contains(t, m.View(), "data load failed")
}

func TestCurveMessageStored(t *testing.T) {
	m := testModel()
	curve := &model.ErrorCurve{
		Points:   []model.ErrorCurvePoint{{K: 1, MSE: 2}},
		OptimalK: 1,
	}

	updated, _ := m.Update(curveLoadedMsg{curve: curve})
	m = updated.(Model)
	assert.Equal(t, curve, m.curve)
}

var ansiSeq = regexp.MustCompile("\x1b\\[[^m]*m")

func plainText(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

// loadedTestModel builds a sized model over a repository with real data.
func loadedTestModel(t *testing.T) Model {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/countries":
			_, _ = w.Write([]byte(`[
				{"country": "Aland", "co2_emissions": 1200, "gdp": 2.1e9, "population": 1.1e6, "life_expectancy": 71.2},
				{"country": "Borduria", "co2_emissions": 8500, "gdp": 5.1e10, "population": 4.1e7, "life_expectancy": 68.4},
				{"country": "Cydonia", "co2_emissions": 124000, "gdp": 1.2e12, "population": 8.2e7, "life_expectancy": 81.5}
			]`))
		case "/api/map/geojson":
			_, _ = w.Write([]byte(`{"type": "FeatureCollection", "features": [
				{"type": "Feature", "properties": {"NAME": "Aland"},
				 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	repo := repository.New(&config.Config{
		APIBaseURL:     srv.URL,
		DataDir:        t.TempDir(),
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	_, err := repo.LoadAll(context.Background())
	require.NoError(t, err)

	m := newModel(Config{Repo: repo, Store: viewstate.NewStore(), Theme: themes.Default})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func TestExternalStateChangeRedraws(t *testing.T) {
	m := loadedTestModel(t)
	m.view = ViewScatter

	events := m.store.Subscribe()

	before := plainText(m.scatterView.View())
	require.Contains(t, before, "Co2-Emissions")

	// A mutation made outside the key handlers reaches the model as a
	// subscription tick, delivered back in as stateChangedMsg.
	m.store.SetXVar(model.FieldGDP)
	select {
	case <-events:
	default:
		t.Fatal("store mutation did not notify subscribers")
	}

	updated, _ := m.Update(stateChangedMsg{})
	m = updated.(Model)
	after := plainText(m.scatterView.View())
	assert.Contains(t, after, "GDP")
	assert.NotContains(t, after, "Co2-Emissions")
}

func TestClusterBarClickSetsK(t *testing.T) {
	m := loadedTestModel(t)

	curve := &model.ErrorCurve{OptimalK: 2}
	for k := 1; k <= 10; k++ {
		curve.Points = append(curve.Points, model.ErrorCurvePoint{K: k, MSE: float64(11 - k)})
	}
	updated, _ := m.Update(curveLoadedMsg{curve: curve})
	m = updated.(Model)
	m.view = ViewClusters

	press := func(x, y int, button tea.MouseButton) tea.MouseMsg {
		return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: button}
	}

	// Column 44 of 100 maps into the fifth bar of the scene.
	updated, _ = m.Update(press(44, 2, tea.MouseButtonLeft))
	m = updated.(Model)
	assert.Equal(t, 5, m.store.Snapshot().K)

	// Left margin, outside the bars.
	updated, _ = m.Update(press(1, 2, tea.MouseButtonLeft))
	m = updated.(Model)
	assert.Equal(t, 5, m.store.Snapshot().K)

	// The tab bar row is not part of the pane.
	updated, _ = m.Update(press(60, 0, tea.MouseButtonLeft))
	m = updated.(Model)
	assert.Equal(t, 5, m.store.Snapshot().K)

	// Only left clicks select.
	updated, _ = m.Update(press(60, 2, tea.MouseButtonRight))
	m = updated.(Model)
	assert.Equal(t, 5, m.store.Snapshot().K)
}

func TestCycleVariableReloadsCurve(t *testing.T) {
	m := testModel()

	_, cmd := m.Update(keyMsg("v"))
	assert.NotNil(t, cmd, "changing an axis must request a fresh error curve")
}
