package view

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/briangreenhill/mapty/internal/workout"
)

var rowTemplate = template.Must(template.New("row").Funcs(template.FuncMap{
	"num":   workout.FormatNumber,
	"fixed": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).Parse(`<li class="workout workout--{{.Type}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Description}}</h2>
  <div class="workout__details">
    <span class="workout__icon">{{.Type.Icon}}</span>
    <span class="workout__value">{{num .Distance}}</span>
    <span class="workout__unit">km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⏳</span>
    <span class="workout__value">{{num .Duration}}</span>
    <span class="workout__unit">min</span>
  </div>
{{- with .Running}}
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{fixed .Pace}}</span>
    <span class="workout__unit">min/km</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">🦶🏼</span>
    <span class="workout__value">{{num .Cadence}}</span>
    <span class="workout__unit">spm</span>
  </div>
{{- end}}
{{- with .Cycling}}
  <div class="workout__details">
    <span class="workout__icon">⚡️</span>
    <span class="workout__value">{{fixed .Speed}}</span>
    <span class="workout__unit">km/h</span>
  </div>
  <div class="workout__details">
    <span class="workout__icon">⛰</span>
    <span class="workout__value">{{num .Elevation}}</span>
    <span class="workout__unit">m</span>
  </div>
{{- end}}
</li>`))

// RenderRow returns the list row markup of a workout.
func RenderRow(w workout.Workout) (template.HTML, error) {
	var buf bytes.Buffer
	if err := rowTemplate.Execute(&buf, w); err != nil {
		return "", fmt.Errorf("rendering workout %s: %w", w.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// RowText is the one line plain text form of a row.
func RowText(w workout.Workout) string {
	s := fmt.Sprintf("%s  %s %s km  ⏳ %s min", w.Description, w.Type.Icon(), workout.FormatNumber(w.Distance), workout.FormatNumber(w.Duration))
	switch {
	case w.Running != nil:
		s += fmt.Sprintf("  ⚡️ %.1f min/km  🦶🏼 %s spm", w.Running.Pace, workout.FormatNumber(w.Running.Cadence))
	case w.Cycling != nil:
		s += fmt.Sprintf("  ⚡️ %.1f km/h  ⛰ %s m", w.Cycling.Speed, workout.FormatNumber(w.Cycling.Elevation))
	}
	return s
}
