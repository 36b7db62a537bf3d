package app

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/briangreenhill/mapty/internal/workout"
)

const (
	MsgMissingFields = "Please enter values for all three fields!"
	MsgNotPositive   = "Inputs have to be positive numbers!"
	MsgNoPosition    = "Could not get your position"
)

var (
	ErrMissingFields     = errors.New("missing field values")
	ErrNotPositive       = errors.New("inputs must be positive numbers")
	ErrUnknownType       = errors.New("unknown workout type")
	ErrNoPendingLocation = errors.New("no map location selected")
)

// FormInput holds the form values as typed.
type FormInput struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

type FormState int

const (
	FormHidden FormState = iota
	FormOpen
)

func (s FormState) String() string {
	if s == FormOpen {
		return "open"
	}
	return "hidden"
}

// parseField coerces an input value to a number: blank is 0, anything
// unparsable is NaN.
func parseField(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

type fields struct {
	typ      workout.Type
	distance float64
	duration float64
	third    float64
}

func readForm(in FormInput) (fields, error) {
	typ, err := workout.ParseType(in.Type)
	if err != nil {
		return fields{}, ErrUnknownType
	}
	f := fields{
		typ:      typ,
		distance: parseField(in.Distance),
		duration: parseField(in.Duration),
	}
	if typ == workout.Running {
		f.third = parseField(in.Cadence)
	} else {
		f.third = parseField(in.Elevation)
	}
	return f, nil
}

// validate requires finite values and positive distance and duration. The
// third value must be positive for running only; elevation gain may be zero
// or negative.
func (f fields) validate() error {
	values := [3]float64{f.distance, f.duration, f.third}
	valid := true
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			valid = false
			break
		}
		if i == 2 && f.typ == workout.Cycling {
			continue
		}
		if v <= 0 {
			valid = false
			break
		}
	}
	if valid {
		return nil
	}
	for _, v := range values {
		if v == 0 {
			return ErrMissingFields
		}
	}
	return ErrNotPositive
}
