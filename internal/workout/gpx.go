package workout

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"
)

// Track is what a recorded GPX track contributes to a new workout.
type Track struct {
	Name     string // track name, else document name
	Start    Coords
	Distance float64 // km
	Duration float64 // min
	Uphill   float64 // m
}

// ReadTrack summarizes the first track of a GPX document.
func ReadTrack(data []byte) (Track, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return Track{}, fmt.Errorf("parsing gpx: %w", err)
	}

	if len(g.Tracks) == 0 || len(g.Tracks[0].Segments) == 0 || len(g.Tracks[0].Segments[0].Points) == 0 {
		return Track{}, fmt.Errorf("gpx has no track points")
	}
	first := g.Tracks[0].Segments[0].Points[0]
	name := g.Tracks[0].Name
	if name == "" {
		name = g.Name
	}

	moving := g.MovingData()
	seconds := moving.MovingTime
	if seconds == 0 {
		seconds = g.Duration()
	}

	return Track{
		Name:     name,
		Start:    Coords{Lat: first.Latitude, Lng: first.Longitude},
		Distance: moving.MovingDistance / 1000.0,
		Duration: seconds / 60,
		Uphill:   g.UphillDownhill().Uphill,
	}, nil
}

// ExportGPX writes every workout as a waypoint at its coordinates.
func ExportGPX(workouts []Workout) ([]byte, error) {
	g := gpx.GPX{
		Name:    "Workouts",
		Creator: "mapty",
	}
	for _, w := range workouts {
		p := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  w.Coords.Lat,
				Longitude: w.Coords.Lng,
			},
			Timestamp:   w.Date,
			Name:        w.Description,
			Type:        string(w.Type),
			Description: summary(w),
		}
		g.Waypoints = append(g.Waypoints, p)
	}

	data, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("encoding gpx: %w", err)
	}
	return data, nil
}

func summary(w Workout) string {
	s := fmt.Sprintf("%s km in %s min", FormatNumber(w.Distance), FormatNumber(w.Duration))
	switch {
	case w.Running != nil:
		s += fmt.Sprintf(", %.1f min/km, %s spm", w.Running.Pace, FormatNumber(w.Running.Cadence))
	case w.Cycling != nil:
		s += fmt.Sprintf(", %.1f km/h, %s m", w.Cycling.Speed, FormatNumber(w.Cycling.Elevation))
	}
	return s
}
