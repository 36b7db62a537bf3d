package workout

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EncodeList serializes the full list in insertion order.
func EncodeList(workouts []Workout) (string, error) {
	if workouts == nil {
		workouts = []Workout{}
	}
	data, err := json.Marshal(workouts)
	if err != nil {
		return "", fmt.Errorf("encoding workouts: %w", err)
	}
	return string(data), nil
}

// DecodeList reads a stored list. A value that is not a JSON array is an
// error. Entries that cannot be decoded are left out and reported in skipped.
func DecodeList(data string) (workouts []Workout, skipped []error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding workouts: %w", err)
	}
	workouts = make([]Workout, 0, len(raw))
	for i, entry := range raw {
		var w Workout
		if err := json.Unmarshal(entry, &w); err != nil {
			skipped = append(skipped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, skipped, nil
}

type yamlWorkout struct {
	ID          string     `yaml:"id"`
	Type        Type       `yaml:"type"`
	Description string     `yaml:"description"`
	Date        string     `yaml:"date"`
	Coords      [2]float64 `yaml:"coords,flow"`
	Distance    float64    `yaml:"distance_km"`
	Duration    float64    `yaml:"duration_min"`
	Cadence     *float64   `yaml:"cadence_spm,omitempty"`
	Pace        *float64   `yaml:"pace_min_per_km,omitempty"`
	Elevation   *float64   `yaml:"elevation_m,omitempty"`
	Speed       *float64   `yaml:"speed_km_per_h,omitempty"`
}

// WriteYAML writes the list as a YAML sequence.
func WriteYAML(w io.Writer, workouts []Workout) error {
	out := make([]yamlWorkout, 0, len(workouts))
	for _, wk := range workouts {
		y := yamlWorkout{
			ID:          wk.ID,
			Type:        wk.Type,
			Description: wk.Description,
			Date:        wk.Date.Format("2006-01-02T15:04:05Z07:00"),
			Coords:      [2]float64{wk.Coords.Lat, wk.Coords.Lng},
			Distance:    wk.Distance,
			Duration:    wk.Duration,
		}
		if wk.Running != nil {
			y.Cadence, y.Pace = &wk.Running.Cadence, &wk.Running.Pace
		}
		if wk.Cycling != nil {
			y.Elevation, y.Speed = &wk.Cycling.Elevation, &wk.Cycling.Speed
		}
		out = append(out, y)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
