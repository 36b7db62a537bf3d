// Package view keeps the rendered state of the tracker page: the form, the
// workout list, pending alerts and the map display. A Page is the surface,
// map and locator the controller talks to, and front ends feed user events
// into it.
package view

import (
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/briangreenhill/mapty/internal/app"
	"github.com/briangreenhill/mapty/internal/workout"
)

var (
	ErrMapNotReady     = errors.New("map is not loaded")
	ErrNotStarted      = errors.New("page has no listeners")
	ErrNoLocateRequest = errors.New("no position was requested")
	errPositionDenied  = errors.New("position denied")
)

type Row struct {
	ID   string        `json:"id"`
	Type workout.Type  `json:"type"`
	Text string        `json:"text"`
	HTML template.HTML `json:"html"`
}

type Form struct {
	Hidden          bool          `json:"hidden"`
	Focus           string        `json:"focus,omitempty"`
	Fields          workout.Type  `json:"fields"`
	Input           app.FormInput `json:"input"`
	SuppressedUntil time.Time     `json:"-"`
}

type Marker struct {
	WorkoutID string         `json:"workoutId"`
	Coords    workout.Coords `json:"coords"`
	Popup     app.Popup      `json:"popup"`
	Open      bool           `json:"open"`
}

type MapState struct {
	Center  workout.Coords `json:"center"`
	Zoom    int            `json:"zoom"`
	Pan     app.Pan        `json:"pan"`
	Tiles   *app.TileLayer `json:"tiles,omitempty"`
	Markers []Marker       `json:"markers"`
}

type Page struct {
	now func() time.Time

	form   Form
	rows   []Row
	alerts []string
	mapped *MapState

	onSubmit   func(context.Context, app.FormInput) error
	onType     func(workout.Type)
	onList     func(string)
	onMapClick func(workout.Coords)

	locateSuccess func(workout.Coords)
	locateFailure func(error)
}

func NewPage(now func() time.Time) *Page {
	if now == nil {
		now = time.Now
	}
	p := &Page{now: now}
	p.Reset()
	return p
}

// Surface

func (p *Page) OnSubmit(fn func(context.Context, app.FormInput) error) { p.onSubmit = fn }
func (p *Page) OnTypeChange(fn func(workout.Type))                     { p.onType = fn }
func (p *Page) OnListClick(fn func(string))                            { p.onList = fn }

func (p *Page) ShowForm() {
	p.form.Hidden = false
	p.form.Focus = "distance"
}

func (p *Page) HideForm(restoreAfter time.Duration) {
	p.form.Input.Distance = ""
	p.form.Input.Duration = ""
	p.form.Input.Cadence = ""
	p.form.Input.Elevation = ""
	p.form.Hidden = true
	p.form.Focus = ""
	p.form.SuppressedUntil = p.now().Add(restoreAfter)
}

func (p *Page) ShowFieldsFor(t workout.Type) {
	p.form.Fields = t
}

// RenderRow inserts the row right after the form, above older rows.
func (p *Page) RenderRow(w workout.Workout) {
	html, err := RenderRow(w)
	if err != nil {
		html = template.HTML(template.HTMLEscapeString(RowText(w)))
	}
	row := Row{ID: w.ID, Type: w.Type, Text: RowText(w), HTML: html}
	p.rows = append([]Row{row}, p.rows...)
}

func (p *Page) Alert(msg string) {
	p.alerts = append(p.alerts, msg)
}

func (p *Page) Reset() {
	p.form = Form{Hidden: true, Fields: workout.Running, Input: app.FormInput{Type: string(workout.Running)}}
	p.rows = nil
	p.alerts = nil
	p.mapped = nil
	p.onSubmit, p.onType, p.onList, p.onMapClick = nil, nil, nil, nil
	p.locateSuccess, p.locateFailure = nil, nil
}

// Mapper and Map

func (p *Page) Open(center workout.Coords, zoom int) (app.Map, error) {
	p.mapped = &MapState{Center: center, Zoom: zoom, Markers: []Marker{}}
	p.onMapClick = nil
	return p, nil
}

func (p *Page) AddTileLayer(layer app.TileLayer) {
	if p.mapped != nil {
		p.mapped.Tiles = &layer
	}
}

func (p *Page) OnClick(fn func(workout.Coords)) { p.onMapClick = fn }

// PlaceMarker adds a marker with its popup opened.
func (p *Page) PlaceMarker(workoutID string, at workout.Coords, popup app.Popup) {
	if p.mapped == nil {
		return
	}
	if popup.AutoClose {
		for i := range p.mapped.Markers {
			p.mapped.Markers[i].Open = false
		}
	}
	p.mapped.Markers = append(p.mapped.Markers, Marker{WorkoutID: workoutID, Coords: at, Popup: popup, Open: true})
}

func (p *Page) SetView(center workout.Coords, zoom int, pan app.Pan) {
	if p.mapped == nil {
		return
	}
	p.mapped.Center = center
	p.mapped.Zoom = zoom
	p.mapped.Pan = pan
}

// Locator

// CurrentPosition parks the request until a front end reports a position.
func (p *Page) CurrentPosition(_ context.Context, success func(workout.Coords), failure func(error)) {
	p.locateSuccess = success
	p.locateFailure = failure
}

// Events

func (p *Page) ReportPosition(at workout.Coords) error {
	success := p.locateSuccess
	if success == nil {
		return ErrNoLocateRequest
	}
	p.locateSuccess, p.locateFailure = nil, nil
	success(at)
	return nil
}

func (p *Page) ReportPositionError(reason string) error {
	failure := p.locateFailure
	if failure == nil {
		return ErrNoLocateRequest
	}
	p.locateSuccess, p.locateFailure = nil, nil
	err := errPositionDenied
	if reason != "" {
		err = errors.New(reason)
	}
	failure(err)
	return nil
}

func (p *Page) ClickMap(at workout.Coords) error {
	if p.mapped == nil || p.onMapClick == nil {
		return ErrMapNotReady
	}
	p.onMapClick(at)
	return nil
}

// Submit fills the form with in and submits it.
func (p *Page) Submit(ctx context.Context, in app.FormInput) error {
	if p.onSubmit == nil {
		return ErrNotStarted
	}
	p.form.Input = in
	return p.onSubmit(ctx, in)
}

func (p *Page) SelectType(t workout.Type) error {
	if p.onType == nil {
		return ErrNotStarted
	}
	p.form.Input.Type = string(t)
	p.onType(t)
	return nil
}

// ClickList reports a click in the list. rowID is the ID of the row the
// click landed in, or empty outside every row.
func (p *Page) ClickList(rowID string) {
	if p.onList != nil {
		p.onList(rowID)
	}
}

// Inspection

func (p *Page) Rows() []Row {
	out := make([]Row, len(p.rows))
	copy(out, p.rows)
	return out
}

// DrainAlerts returns pending alerts and forgets them.
func (p *Page) DrainAlerts() []string {
	alerts := p.alerts
	p.alerts = nil
	return alerts
}

func (p *Page) FormState() Form { return p.form }

// Map returns a copy of the map state, or nil before the map is opened.
func (p *Page) Map() *MapState {
	if p.mapped == nil {
		return nil
	}
	m := *p.mapped
	m.Markers = append([]Marker(nil), p.mapped.Markers...)
	return &m
}

type Snapshot struct {
	Form          Form      `json:"form"`
	FormDisplay   string    `json:"formDisplay"`
	Rows          []Row     `json:"rows"`
	Alerts        []string  `json:"alerts"`
	Map           *MapState `json:"map"`
	AwaitPosition bool      `json:"awaitPosition"`
}

// Snapshot captures everything a front end needs to draw the page. Pending
// alerts and a pending pan are reported once.
func (p *Page) Snapshot() Snapshot {
	display := "grid"
	if p.now().Before(p.form.SuppressedUntil) {
		display = "none"
	}
	rows := p.Rows()
	alerts := p.DrainAlerts()
	if alerts == nil {
		alerts = []string{}
	}
	m := p.Map()
	if p.mapped != nil {
		p.mapped.Pan = app.Pan{}
	}
	return Snapshot{
		Form:          p.form,
		FormDisplay:   display,
		Rows:          rows,
		Alerts:        alerts,
		Map:           m,
		AwaitPosition: p.locateSuccess != nil,
	}
}
