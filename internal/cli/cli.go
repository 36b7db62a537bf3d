package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/briangreenhill/mapty/internal/api"
	"github.com/briangreenhill/mapty/internal/app"
	"github.com/briangreenhill/mapty/internal/config"
	"github.com/briangreenhill/mapty/internal/store"
	"github.com/briangreenhill/mapty/internal/view"
	"github.com/briangreenhill/mapty/internal/workout"
)

var ErrMapUnavailable = errors.New("map is unavailable: set home.lat/home.lng or pass --lat and --lng")

type CLI struct {
	writer io.Writer
	store  store.Store
	cfg    config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewCLI(w io.Writer, st store.Store, cfg config.Config, logger *slog.Logger) *CLI {
	return &CLI{
		writer: w,
		store:  st,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.Usage()
		return nil
	}

	switch args[0] {
	case "add":
		return c.AddWorkout(ctx, args[1:])
	case "list":
		return c.List(ctx)
	case "export":
		return c.Export(ctx, args[1:])
	case "reset":
		return c.Reset(ctx)
	case "api":
		return c.RunAPI(ctx)
	default:
		c.Usage()
	}
	return nil
}

func (c *CLI) Usage() {
	fmt.Fprintf(c.writer, "Usage: mapty [command] [flags]\n--help show this message\n\n"+
		"\tadd --type running|cycling --distance --duration --cadence|--elevation [--lat --lng] [--gpx]\n"+
		"\tlist\n\texport --format json|yaml|gpx\n\treset\n\tapi\n")
}

func (c *CLI) options() app.Options {
	return app.Options{
		StoreKey: c.cfg.Store.Key,
		Zoom:     c.cfg.Map.Zoom,
		Tiles:    app.TileLayer{URL: c.cfg.Map.TileURL, Attribution: c.cfg.Map.Attribution},
		Now:      c.now,
	}
}

func (c *CLI) home() *workout.Coords {
	if !c.cfg.Home.IsSet() {
		return nil
	}
	return &workout.Coords{Lat: *c.cfg.Home.Lat, Lng: *c.cfg.Home.Lng}
}

// start builds a controller on a fresh page. position is what the
// command line reports as the device location; nil means unknown.
func (c *CLI) start(ctx context.Context, position *workout.Coords) (*app.App, *view.Page, error) {
	page := view.NewPage(c.now)
	a := app.New(c.logger, c.store, app.FixedLocator{Position: position}, page, page, c.options())
	if err := a.Start(ctx); err != nil {
		return nil, nil, err
	}
	return a, page, nil
}

func (c *CLI) printAlerts(page *view.Page) {
	for _, msg := range page.DrainAlerts() {
		fmt.Fprintln(c.writer, msg)
	}
}

func (c *CLI) AddWorkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.writer)
	fs.Usage = c.Usage

	var in app.FormInput
	var gpxFile string
	var lat, lng string
	fs.StringVar(&in.Type, "type", string(workout.Running), "running or cycling")
	fs.StringVar(&in.Distance, "distance", "", "distance in km")
	fs.StringVar(&in.Duration, "duration", "", "duration in min")
	fs.StringVar(&in.Cadence, "cadence", "", "cadence in steps/min (running)")
	fs.StringVar(&in.Elevation, "elevation", "", "elevation gain in m (cycling)")
	fs.StringVar(&lat, "lat", "", "latitude of the workout")
	fs.StringVar(&lng, "lng", "", "longitude of the workout")
	fs.StringVar(&gpxFile, "gpx", "", "path to gpx file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := workout.ParseType(in.Type)
	if err != nil {
		return err
	}

	var at *workout.Coords
	if lat != "" || lng != "" {
		var p workout.Coords
		if _, err := fmt.Sscanf(lat+" "+lng, "%g %g", &p.Lat, &p.Lng); err != nil {
			return fmt.Errorf("invalid --lat/--lng: %w", err)
		}
		at = &p
	}

	if gpxFile != "" {
		c.logger.Info("Reading gpx file", slog.String("gpx_file", gpxFile))
		track, err := readTrack(gpxFile)
		if err != nil {
			return err
		}
		in.Distance = workout.FormatNumber(track.Distance)
		in.Duration = workout.FormatNumber(track.Duration)
		if t == workout.Cycling && in.Elevation == "" {
			in.Elevation = workout.FormatNumber(track.Uphill)
		}
		if at == nil {
			at = &track.Start
		}
		if track.Name != "" {
			fmt.Fprintf(c.writer, "Imported track %q\n", track.Name)
		}
	}

	position := c.home()
	if position == nil {
		position = at
	}
	if at == nil {
		at = position
	}

	a, page, err := c.start(ctx, position)
	if err != nil {
		return err
	}
	if !a.MapReady() {
		c.printAlerts(page)
		return ErrMapUnavailable
	}

	if err := page.ClickMap(*at); err != nil {
		return err
	}
	if err := page.SelectType(t); err != nil {
		return err
	}
	err = page.Submit(ctx, in)
	c.printAlerts(page)
	if err != nil {
		return err
	}

	rows := page.Rows()
	fmt.Fprintf(c.writer, "Added %s\n", rows[0].Text)
	return nil
}

func (c *CLI) List(ctx context.Context) error {
	_, page, err := c.start(ctx, c.home())
	if err != nil {
		return err
	}
	page.DrainAlerts()

	rows := page.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(c.writer, "No workouts yet")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(c.writer, "%s  %s\n", row.ID, row.Text)
	}
	return nil
}

func (c *CLI) Export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(c.writer)
	var format string
	fs.StringVar(&format, "format", "json", "json, yaml or gpx")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key := c.cfg.Store.Key
	if key == "" {
		key = app.DefaultStoreKey
	}
	workouts, _, err := app.Load(ctx, c.store, key, c.logger)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(c.writer)
		enc.SetIndent("", "  ")
		if workouts == nil {
			workouts = []workout.Workout{}
		}
		return enc.Encode(workouts)
	case "yaml":
		return workout.WriteYAML(c.writer, workouts)
	case "gpx":
		data, err := workout.ExportGPX(workouts)
		if err != nil {
			return err
		}
		_, err = c.writer.Write(data)
		return err
	}
	return fmt.Errorf("unknown export format %q", format)
}

func (c *CLI) Reset(ctx context.Context) error {
	a, page, err := c.start(ctx, c.home())
	if err != nil {
		return err
	}
	if err := a.Reset(ctx); err != nil {
		return err
	}
	page.DrainAlerts()
	fmt.Fprintln(c.writer, "Workouts cleared")
	return nil
}

func (c *CLI) RunAPI(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	page := view.NewPage(c.now)
	a := app.New(c.logger, c.store, page, page, page, c.options())
	if err := a.Start(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    c.cfg.Server.Addr,
		Handler: api.New(a, page, c.cfg.Server.UI, c.logger),
	}

	go func() {
		<-ctx.Done()
		c.logger.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("Error shutting down server", slog.Any("error", err))
		}
	}()

	c.logger.Info("Starting server", slog.String("addr", c.cfg.Server.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		c.logger.Error("Error starting server", slog.Any("error", err))
		cancel()
		return err
	}

	return nil
}

func readTrack(gpxFile string) (workout.Track, error) {
	info, err := os.Stat(gpxFile)
	if err != nil {
		return workout.Track{}, fmt.Errorf("error reading gpx file: %w", err)
	}

	if info.IsDir() {
		return workout.Track{}, fmt.Errorf("gpx file is a directory")
	}

	contents, err := os.ReadFile(gpxFile)
	if err != nil {
		return workout.Track{}, err
	}

	return workout.ReadTrack(contents)
}
