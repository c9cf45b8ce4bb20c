// Package viewstate is the single source of truth for cross-view
// configuration and selection. Renderer hosts subscribe and redraw on
// change; they never talk to each other directly.
package viewstate

import (
	"sync"

	"github.com/Veraticus/geoscope/internal/model"
)

// Axis names which scatter axis a control is currently editing.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// State is one consistent snapshot of the shared view configuration.
// Every mutation replaces the whole value, so a reader never observes a
// half-applied change.
type State struct {
	Error             string
	SelectedCountries []string
	MapFeature        model.Field
	XVar              model.Field
	YVar              model.Field
	K                 int
	CurrentAxis       Axis
	IsLoading         bool
}

// DefaultState returns the documented defaults.
func DefaultState() State {
	return State{
		MapFeature: model.FieldCo2Emissions,
		XVar:       model.FieldCo2Emissions,
		YVar:       model.FieldPopulation,
		K:          4,
	}
}

// Store holds the shared state and fans change notifications out to
// subscribers. Setters do not validate beyond type shape; callers pass
// only valid enum values and keep K within [1, 10].
type Store struct {
	mu    sync.RWMutex
	state State
	subs  []chan struct{}
}

// NewStore creates a store seeded with the defaults.
func NewStore() *Store {
	return &Store{state: DefaultState()}
}

// Snapshot returns the current state. The selection slice is copied so a
// reader can hold the snapshot across later mutations.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.state
	snap.SelectedCountries = append([]string(nil), s.state.SelectedCountries...)
	return snap
}

// Subscribe returns a channel that receives a tick after every mutation.
// Notifications are best-effort: if a subscriber is behind, ticks coalesce
// rather than block the mutator.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) replace(mutate func(*State)) {
	s.mu.Lock()
	next := s.state
	next.SelectedCountries = append([]string(nil), s.state.SelectedCountries...)
	mutate(&next)
	s.state = next
	subs := s.subs
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SetSelectedCountries replaces the selection, preserving caller order.
func (s *Store) SetSelectedCountries(names []string) {
	copied := append([]string(nil), names...)
	s.replace(func(st *State) { st.SelectedCountries = copied })
}

// ToggleCountry removes name if selected, otherwise appends it.
func (s *Store) ToggleCountry(name string) {
	s.replace(func(st *State) {
		for i, existing := range st.SelectedCountries {
			if existing == name {
				st.SelectedCountries = append(st.SelectedCountries[:i], st.SelectedCountries[i+1:]...)
				return
			}
		}
		st.SelectedCountries = append(st.SelectedCountries, name)
	})
}

// SetMapFeature picks the choropleth feature.
func (s *Store) SetMapFeature(f model.Field) {
	s.replace(func(st *State) { st.MapFeature = f })
}

// SetXVar picks the scatter x axis.
func (s *Store) SetXVar(f model.Field) {
	s.replace(func(st *State) { st.XVar = f })
}

// SetYVar picks the scatter y axis.
func (s *Store) SetYVar(f model.Field) {
	s.replace(func(st *State) { st.YVar = f })
}

// SetK picks the cluster count.
func (s *Store) SetK(k int) {
	s.replace(func(st *State) { st.K = k })
}

// SetCurrentAxis records which axis the next field choice applies to.
func (s *Store) SetCurrentAxis(a Axis) {
	s.replace(func(st *State) { st.CurrentAxis = a })
}

// SetLoading flips the loading gate.
func (s *Store) SetLoading(loading bool) {
	s.replace(func(st *State) { st.IsLoading = loading })
}

// SetError records a user-visible error banner; empty clears it.
func (s *Store) SetError(msg string) {
	s.replace(func(st *State) { st.Error = msg })
}

// ClearData resets everything to the documented defaults.
func (s *Store) ClearData() {
	s.replace(func(st *State) { *st = DefaultState() })
}
