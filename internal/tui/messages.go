package tui

import (
	"github.com/Veraticus/geoscope/internal/model"
)

// Data loading messages.
type dataLoadedMsg struct {
	err     error
	dataset *model.Dataset
}

type curveLoadedMsg struct {
	curve *model.ErrorCurve
}

// stateChangedMsg signals a store mutation made outside the key handlers,
// delivered through the store's subscription channel.
type stateChangedMsg struct{}
