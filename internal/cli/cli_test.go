package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/briangreenhill/mapty/internal/app"
	"github.com/briangreenhill/mapty/internal/config"
	"github.com/briangreenhill/mapty/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(withHome bool) config.Config {
	cfg := config.Config{
		Store: config.StoreConfig{Driver: "memory", Key: "workouts"},
		Map:   config.MapConfig{Zoom: 13},
	}
	if withHome {
		lat, lng := 51.5, -0.12
		cfg.Home = config.HomeConfig{Lat: &lat, Lng: &lng}
	}
	return cfg
}

func newTestCLI(st store.Store, withHome bool) (*CLI, *bytes.Buffer) {
	var buf bytes.Buffer
	c := NewCLI(&buf, st, testConfig(withHome), slog.New(slog.NewTextHandler(io.Discard, nil)))
	at := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		at = at.Add(time.Second)
		return at
	}
	return c, &buf
}

func TestAddAndList(t *testing.T) {
	st := store.NewMemory()
	c, out := newTestCLI(st, true)
	ctx := context.Background()

	require.NoError(t, c.Run(ctx, []string{"add", "--distance", "5", "--duration", "30", "--cadence", "170"}))
	assert.Contains(t, out.String(), "Added Running on March 2")
	assert.Contains(t, out.String(), "6.0 min/km")

	require.NoError(t, c.Run(ctx, []string{"add", "--type", "cycling", "--distance", "5", "--duration", "20", "--elevation", "-10", "--lat", "48.85", "--lng", "2.35"}))
	assert.Contains(t, out.String(), "15.0 km/h")

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"list"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Cycling on March 2")
	assert.Contains(t, lines[1], "Running on March 2")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	c, out := newTestCLI(store.NewMemory(), true)
	ctx := context.Background()

	err := c.Run(ctx, []string{"add", "--distance", "0", "--duration", "20", "--cadence", "5"})
	require.ErrorIs(t, err, app.ErrMissingFields)
	assert.Contains(t, out.String(), app.MsgMissingFields)

	err = c.Run(ctx, []string{"add", "--distance", "-3", "--duration", "20", "--cadence", "5"})
	require.ErrorIs(t, err, app.ErrNotPositive)
	assert.Contains(t, out.String(), app.MsgNotPositive)

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "No workouts yet")
}

func TestAddWithoutPosition(t *testing.T) {
	c, out := newTestCLI(store.NewMemory(), false)

	err := c.Run(context.Background(), []string{"add", "--distance", "5", "--duration", "30", "--cadence", "170"})
	require.ErrorIs(t, err, ErrMapUnavailable)
	assert.Contains(t, out.String(), app.MsgNoPosition)
}

func TestAddWithCoordinatesOnly(t *testing.T) {
	c, out := newTestCLI(store.NewMemory(), false)

	err := c.Run(context.Background(), []string{"add", "--distance", "5", "--duration", "30", "--cadence", "170", "--lat", "40.4", "--lng", "-3.7"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added Running")
}

func TestAddBadArguments(t *testing.T) {
	c, _ := newTestCLI(store.NewMemory(), true)
	ctx := context.Background()

	require.Error(t, c.Run(ctx, []string{"add", "--type", "swimming"}))
	require.Error(t, c.Run(ctx, []string{"add", "--lat", "40.4"}))
	require.Error(t, c.Run(ctx, []string{"add", "--gpx", filepath.Join(t.TempDir(), "missing.gpx")}))
	require.Error(t, c.Run(ctx, []string{"add", "--gpx", t.TempDir()}))
}

const track = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Lunch Run</name>
    <trkseg>
      <trkpt lat="51.5000" lon="-0.1200"><ele>10</ele><time>2024-03-02T09:00:00Z</time></trkpt>
      <trkpt lat="51.5045" lon="-0.1200"><ele>14</ele><time>2024-03-02T09:02:30Z</time></trkpt>
      <trkpt lat="51.5090" lon="-0.1200"><ele>12</ele><time>2024-03-02T09:05:00Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestAddFromGPX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.gpx")
	require.NoError(t, os.WriteFile(path, []byte(track), 0644))

	st := store.NewMemory()
	c, out := newTestCLI(st, false)
	ctx := context.Background()

	require.NoError(t, c.Run(ctx, []string{"add", "--gpx", path, "--cadence", "170"}))
	assert.Contains(t, out.String(), `Imported track "Lunch Run"`)
	assert.Contains(t, out.String(), "Added Running on March 2")

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"export", "--format", "json"}))
	var exported []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, []any{51.5, -0.12}, exported[0]["coords"])
	assert.InDelta(t, 1.0, exported[0]["distance"], 0.1)
}

func TestExportFormats(t *testing.T) {
	st := store.NewMemory()
	c, out := newTestCLI(st, true)
	ctx := context.Background()
	require.NoError(t, c.Run(ctx, []string{"add", "--distance", "5", "--duration", "30", "--cadence", "170"}))

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"export", "--format", "yaml"}))
	assert.Contains(t, out.String(), "description: Running on March 2")

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"export", "--format", "gpx"}))
	assert.Contains(t, out.String(), "<wpt")

	require.Error(t, c.Run(ctx, []string{"export", "--format", "csv"}))
}

func TestExportIsNotMixedWithLogs(t *testing.T) {
	st := store.NewMemory()
	c, out := newTestCLI(st, true)
	c.logger = slog.New(slog.NewTextHandler(out, nil))
	ctx := context.Background()

	require.NoError(t, c.Run(ctx, []string{"add", "--distance", "5", "--duration", "30", "--cadence", "170"}))
	require.Contains(t, out.String(), "Map loaded")

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"export", "--format", "json"}))
	var exported []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "running", exported[0]["type"])
}

func TestExportEmptyJSON(t *testing.T) {
	c, out := newTestCLI(store.NewMemory(), true)
	require.NoError(t, c.Run(context.Background(), []string{"export"}))
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestReset(t *testing.T) {
	st := store.NewMemory()
	c, out := newTestCLI(st, true)
	ctx := context.Background()
	require.NoError(t, c.Run(ctx, []string{"add", "--distance", "5", "--duration", "30", "--cadence", "170"}))

	require.NoError(t, c.Run(ctx, []string{"reset"}))
	assert.Contains(t, out.String(), "Workouts cleared")
	_, err := st.Get(ctx, "workouts")
	require.ErrorIs(t, err, store.ErrNotFound)

	out.Reset()
	require.NoError(t, c.Run(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "No workouts yet")
}

func TestUsage(t *testing.T) {
	c, out := newTestCLI(store.NewMemory(), true)
	require.NoError(t, c.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Usage: mapty")

	out.Reset()
	require.NoError(t, c.Run(context.Background(), []string{"bogus"}))
	assert.Contains(t, out.String(), "Usage: mapty")
}
