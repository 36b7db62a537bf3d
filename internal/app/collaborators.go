package app

import (
	"context"
	"errors"
	"time"

	"github.com/briangreenhill/mapty/internal/workout"
)

var ErrPositionUnavailable = errors.New("position unavailable")

// Locator is the one-shot device location request. Exactly one of success
// and failure is called, possibly after CurrentPosition has returned.
type Locator interface {
	CurrentPosition(ctx context.Context, success func(workout.Coords), failure func(error))
}

// FixedLocator answers with a configured position, or fails when none is set.
type FixedLocator struct {
	Position *workout.Coords
}

func (l FixedLocator) CurrentPosition(_ context.Context, success func(workout.Coords), failure func(error)) {
	if l.Position == nil {
		failure(ErrPositionUnavailable)
		return
	}
	success(*l.Position)
}

type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

type Popup struct {
	Content      string `json:"content"`
	MaxWidth     int    `json:"maxWidth"`
	MinWidth     int    `json:"minWidth"`
	AutoClose    bool   `json:"autoClose"`
	CloseOnClick bool   `json:"closeOnClick"`
	ClassName    string `json:"className"`
}

type Pan struct {
	Animate  bool          `json:"animate"`
	Duration time.Duration `json:"duration"`
}

// Mapper creates the map display.
type Mapper interface {
	Open(center workout.Coords, zoom int) (Map, error)
}

// Map is the handle of an open map display.
type Map interface {
	AddTileLayer(layer TileLayer)
	OnClick(fn func(workout.Coords))
	PlaceMarker(workoutID string, at workout.Coords, popup Popup)
	SetView(center workout.Coords, zoom int, pan Pan)
}

// Surface is the form and list rendering surface.
type Surface interface {
	OnSubmit(fn func(context.Context, FormInput) error)
	OnTypeChange(fn func(workout.Type))
	OnListClick(fn func(rowID string))

	// ShowForm reveals the form and focuses the distance input.
	ShowForm()
	// HideForm clears the inputs and hides the form, suppressing its
	// display until restoreAfter has passed.
	HideForm(restoreAfter time.Duration)
	// ShowFieldsFor shows the cadence input for running and the elevation
	// input for cycling.
	ShowFieldsFor(t workout.Type)
	RenderRow(w workout.Workout)
	Alert(msg string)
	// Reset discards everything rendered and every listener.
	Reset()
}
