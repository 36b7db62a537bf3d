// Package app is the workout tracker controller. It owns the workout list,
// the map handle and the form state, and reacts to events raised by the map
// and the rendering surface. All methods must be called from one goroutine
// at a time.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/briangreenhill/mapty/internal/observability"
	"github.com/briangreenhill/mapty/internal/store"
	"github.com/briangreenhill/mapty/internal/workout"
)

const (
	DefaultZoom        = 13
	DefaultStoreKey    = "workouts"
	FormRestoreDelay   = time.Second
	PanDuration        = time.Second
	popupMaxWidth      = 250
	popupMinWidth      = 100
	DefaultTileURL     = "https://{s}.tile.openstreetmap.fr/hot/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

type Options struct {
	StoreKey string
	Zoom     int
	Tiles    TileLayer
	Now      func() time.Time
}

type App struct {
	logger  *slog.Logger
	store   store.Store
	locator Locator
	mapper  Mapper
	surface Surface

	key   string
	zoom  int
	tiles TileLayer
	now   func() time.Time

	m        Map
	pending  *workout.Coords
	workouts []workout.Workout
}

func New(logger *slog.Logger, st store.Store, locator Locator, mapper Mapper, surface Surface, opts Options) *App {
	a := &App{
		logger:  logger,
		store:   st,
		locator: locator,
		mapper:  mapper,
		surface: surface,
		key:     opts.StoreKey,
		zoom:    opts.Zoom,
		tiles:   opts.Tiles,
		now:     opts.Now,
	}
	if a.key == "" {
		a.key = DefaultStoreKey
	}
	if a.zoom == 0 {
		a.zoom = DefaultZoom
	}
	if a.tiles.URL == "" {
		a.tiles = TileLayer{URL: DefaultTileURL, Attribution: DefaultAttribution}
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Start restores the stored list, requests the device position and
// registers the surface listeners. The map loads whenever the locator
// answers.
func (a *App) Start(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}

	a.surface.OnSubmit(a.Submit)
	a.surface.OnTypeChange(a.ChangeType)
	a.surface.OnListClick(a.MoveToWorkout)

	a.locator.CurrentPosition(ctx, a.loadMap, a.positionFailed)
	return nil
}

// Reset clears the stored list and starts again from nothing.
func (a *App) Reset(ctx context.Context) error {
	if err := a.store.Remove(ctx, a.key); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	a.m = nil
	a.pending = nil
	a.workouts = nil
	a.surface.Reset()
	a.logger.Info("Reset workouts")

	return a.Start(ctx)
}

func (a *App) loadMap(center workout.Coords) {
	m, err := a.mapper.Open(center, a.zoom)
	if err != nil {
		a.logger.Error("Error opening map", slog.Any("error", err))
		return
	}
	m.AddTileLayer(a.tiles)
	m.OnClick(a.showForm)
	a.m = m
	a.logger.Info("Map loaded", slog.String("center", center.String()))

	for _, w := range a.workouts {
		a.renderMarker(w)
	}
}

func (a *App) positionFailed(err error) {
	a.logger.Warn("Error getting position", slog.Any("error", err))
	a.surface.Alert(MsgNoPosition)
}

func (a *App) showForm(at workout.Coords) {
	a.pending = &at
	a.surface.ShowForm()
}

func (a *App) hideForm() {
	a.pending = nil
	a.surface.HideForm(FormRestoreDelay)
}

// ChangeType switches the type specific input.
func (a *App) ChangeType(t workout.Type) {
	a.surface.ShowFieldsFor(t)
}

// Submit creates a workout at the pending map location. Validation failures
// are alerted on the surface and returned without changing any state.
func (a *App) Submit(ctx context.Context, in FormInput) error {
	if a.pending == nil {
		observability.RecordRejected("no_location")
		return ErrNoPendingLocation
	}

	f, err := readForm(in)
	if err != nil {
		observability.RecordRejected("unknown_type")
		a.logger.Warn("Rejected workout", slog.String("type", in.Type), slog.Any("error", err))
		return err
	}
	if err := f.validate(); err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			observability.RecordRejected("missing_fields")
			a.surface.Alert(MsgMissingFields)
		case errors.Is(err, ErrNotPositive):
			observability.RecordRejected("not_positive")
			a.surface.Alert(MsgNotPositive)
		}
		a.logger.Warn("Rejected workout", slog.String("type", string(f.typ)), slog.Any("error", err))
		return err
	}

	var w workout.Workout
	if f.typ == workout.Running {
		w = workout.NewRunning(a.now(), *a.pending, f.distance, f.duration, f.third)
	} else {
		w = workout.NewCycling(a.now(), *a.pending, f.distance, f.duration, f.third)
	}

	a.workouts = append(a.workouts, w)
	a.renderMarker(w)
	a.surface.RenderRow(w)
	a.hideForm()
	observability.RecordCreated(string(w.Type))
	a.logger.Info("Added workout", slog.String("id", w.ID), slog.String("description", w.Description))

	return a.persist(ctx)
}

// MoveToWorkout recenters the map on the workout of a clicked row. An empty
// row ID means the click landed outside every row.
func (a *App) MoveToWorkout(rowID string) {
	if rowID == "" || a.m == nil {
		return
	}
	w, ok := a.Find(rowID)
	if !ok {
		a.logger.Warn("Clicked unknown workout", slog.String("id", rowID))
		return
	}
	a.m.SetView(w.Coords, a.zoom, Pan{Animate: true, Duration: PanDuration})
}

func (a *App) renderMarker(w workout.Workout) {
	if a.m == nil {
		return
	}
	a.m.PlaceMarker(w.ID, w.Coords, Popup{
		Content:      w.Type.Icon() + " " + w.Description,
		MaxWidth:     popupMaxWidth,
		MinWidth:     popupMinWidth,
		AutoClose:    false,
		CloseOnClick: false,
		ClassName:    string(w.Type) + "-popup",
	})
}

func (a *App) persist(ctx context.Context) error {
	data, err := workout.EncodeList(a.workouts)
	if err != nil {
		observability.RecordPersistFailure()
		return err
	}
	if err := a.store.Set(ctx, a.key, data); err != nil {
		observability.RecordPersistFailure()
		a.logger.Error("Error saving workouts", slog.Any("error", err))
		return fmt.Errorf("saving workouts: %w", err)
	}
	return nil
}

// restore replaces the list with the stored one and renders a row for each.
func (a *App) restore(ctx context.Context) error {
	workouts, skipped, err := Load(ctx, a.store, a.key, a.logger)
	if err != nil {
		return err
	}
	observability.RecordRestored(len(workouts), skipped)

	a.workouts = workouts
	for _, w := range a.workouts {
		a.surface.RenderRow(w)
	}
	return nil
}

// Load reads the stored list under key. A missing key or a stored value that
// is not a list reads as no workouts. Entries that fail to decode are logged,
// skipped and counted.
func Load(ctx context.Context, st store.Store, key string, logger *slog.Logger) ([]workout.Workout, int, error) {
	data, err := st.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("loading workouts: %w", err)
	}

	workouts, skipped, err := workout.DecodeList(data)
	if err != nil {
		logger.Warn("Ignoring stored workouts", slog.Any("error", err))
		return nil, 0, nil
	}
	for _, e := range skipped {
		logger.Warn("Skipping stored workout", slog.Any("error", e))
	}
	return workouts, len(skipped), nil
}

// Workouts returns the list in insertion order.
func (a *App) Workouts() []workout.Workout {
	out := make([]workout.Workout, len(a.workouts))
	copy(out, a.workouts)
	return out
}

func (a *App) Find(id string) (workout.Workout, bool) {
	for _, w := range a.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return workout.Workout{}, false
}

// Form returns the form state and, when open, the pending coordinates.
func (a *App) Form() (FormState, workout.Coords) {
	if a.pending == nil {
		return FormHidden, workout.Coords{}
	}
	return FormOpen, *a.pending
}

func (a *App) MapReady() bool {
	return a.m != nil
}
