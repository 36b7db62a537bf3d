package workout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	Running Type = "running"
	Cycling Type = "cycling"
)

var months = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

// ParseType accepts the values of the workout type selector.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Running:
		return Running, nil
	case Cycling:
		return Cycling, nil
	}
	return "", fmt.Errorf("unknown workout type %q", s)
}

// Title is the capitalized type name.
func (t Type) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Icon is the emoji shown in popups and list rows.
func (t Type) Icon() string {
	if t == Running {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// Coords is a latitude, longitude pair. It is stored as a two element array.
type Coords struct {
	Lat float64
	Lng float64
}

func (c Coords) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coords) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coords: want 2 values, got %d", len(pair))
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

func (c Coords) String() string {
	return fmt.Sprintf("%s,%s", FormatNumber(c.Lat), FormatNumber(c.Lng))
}

type RunningStats struct {
	Cadence float64
	Pace    float64
}

type CyclingStats struct {
	Elevation float64
	Speed     float64
}

// Workout is the shared record of both variants. Exactly one of Running and
// Cycling is set, matching Type.
type Workout struct {
	ID          string
	Date        time.Time
	Coords      Coords
	Distance    float64
	Duration    float64
	Description string
	Type        Type

	Running *RunningStats
	Cycling *CyclingStats
}

func newWorkout(t Type, at time.Time, coords Coords, distance, duration float64) Workout {
	return Workout{
		ID:          NewID(at),
		Date:        at,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Type:        t,
		Description: Describe(t, at),
	}
}

// NewRunning builds a running workout. Inputs must already be validated.
func NewRunning(at time.Time, coords Coords, distance, duration, cadence float64) Workout {
	w := newWorkout(Running, at, coords, distance, duration)
	w.Running = &RunningStats{Cadence: cadence, Pace: duration / distance}
	return w
}

// NewCycling builds a cycling workout. Inputs must already be validated.
func NewCycling(at time.Time, coords Coords, distance, duration, elevation float64) Workout {
	w := newWorkout(Cycling, at, coords, distance, duration)
	w.Cycling = &CyclingStats{Elevation: elevation, Speed: distance / (duration / 60)}
	return w
}

// NewID keeps the last ten digits of the creation time in unix milliseconds.
func NewID(at time.Time) string {
	id := strconv.FormatInt(at.UnixMilli(), 10)
	if len(id) > 10 {
		id = id[len(id)-10:]
	}
	return id
}

// Describe returns "<Type> on <Month> <Day>" for the given date.
func Describe(t Type, at time.Time) string {
	return fmt.Sprintf("%s on %s %d", t.Title(), months[at.Month()-1], at.Day())
}

// Metric is the derived value of the variant: pace for running, speed for cycling.
func (w Workout) Metric() float64 {
	switch {
	case w.Running != nil:
		return w.Running.Pace
	case w.Cycling != nil:
		return w.Cycling.Speed
	}
	return 0
}

// FormatNumber prints a number the way the form displays it back: no
// trailing zeros, no exponent for ordinary values.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// record is the persisted layout shared by both variants.
type record struct {
	Coords      Coords    `json:"coords"`
	Distance    float64   `json:"distance"`
	Duration    float64   `json:"duration"`
	Date        time.Time `json:"date"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Type        Type      `json:"type"`
	Cadence     *float64  `json:"cadence,omitempty"`
	Pace        *float64  `json:"pace,omitempty"`
	Elevation   *float64  `json:"elevation,omitempty"`
	Speed       *float64  `json:"speed,omitempty"`
}

func (w Workout) MarshalJSON() ([]byte, error) {
	r := record{
		Coords:      w.Coords,
		Distance:    w.Distance,
		Duration:    w.Duration,
		Date:        w.Date,
		ID:          w.ID,
		Description: w.Description,
		Type:        w.Type,
	}
	switch w.Type {
	case Running:
		if w.Running == nil {
			return nil, fmt.Errorf("workout %s: missing running stats", w.ID)
		}
		r.Cadence, r.Pace = &w.Running.Cadence, &w.Running.Pace
	case Cycling:
		if w.Cycling == nil {
			return nil, fmt.Errorf("workout %s: missing cycling stats", w.ID)
		}
		r.Elevation, r.Speed = &w.Cycling.Elevation, &w.Cycling.Speed
	default:
		return nil, fmt.Errorf("workout %s: unknown type %q", w.ID, w.Type)
	}
	return json.Marshal(r)
}

// UnmarshalJSON copies the stored fields back as data. Derived values are
// taken as stored and never recomputed.
func (w *Workout) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*w = Workout{
		ID:          r.ID,
		Date:        r.Date,
		Coords:      r.Coords,
		Distance:    r.Distance,
		Duration:    r.Duration,
		Description: r.Description,
		Type:        r.Type,
	}
	switch r.Type {
	case Running:
		w.Running = &RunningStats{Cadence: deref(r.Cadence), Pace: deref(r.Pace)}
	case Cycling:
		w.Cycling = &CyclingStats{Elevation: deref(r.Elevation), Speed: deref(r.Speed)}
	default:
		return fmt.Errorf("workout %s: unknown type %q", r.ID, r.Type)
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
