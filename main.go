package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/camera"
	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/output"
	"github.com/df07/go-tile-raytracer/pkg/params"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// options are the command-line settings that are not part of the render config
type options struct {
	configPath string
	verbose    bool
	help       bool
	overrides  config.RenderConfig
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "JSON render config; flags override its fields")
	fs.BoolVar(&opts.verbose, "v", false, "Log per-pass diagnostics")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	o := &opts.overrides
	fs.StringVar(&o.Scene, "scene", "", "Scene: "+strings.Join(scene.Names(), ", "))
	fs.IntVar(&o.Width, "width", 0, "Image width")
	fs.IntVar(&o.Height, "height", 0, "Image height")
	fs.IntVar(&o.SPP, "spp", 0, "Samples per pixel per frame")
	fs.IntVar(&o.Frames, "frames", 0, "Progressive frames to accumulate")
	fs.IntVar(&o.TileSize, "tile", 0, "Tile size in pixels (power of two)")
	fs.StringVar(&o.Strategy, "strategy", "", "Execution strategy: "+strategyNames())
	fs.StringVar(&o.Integrator, "integrator", "", "Shading model: "+strings.Join(integrator.Names(), ", "))
	fs.StringVar(&o.Output, "output", "", "Output image ("+strings.Join(output.Formats(), ", ")+")")
	fs.IntVar(&o.Workers, "workers", 0, "Tile workers (0 = physical cores)")
	fs.Float64Var(&o.Scale, "scale", 0, "Resample the image by this factor before saving")

	err := fs.Parse(args)
	return opts, err
}

func strategyNames() string {
	var names []string
	for _, s := range renderer.Strategies() {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if opts.help {
		printHelp()
		return
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Tile Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	_, _ = parseFlags([]string{"-h"}, os.Stdout)
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, name := range scene.Names() {
		fmt.Printf("  %s\n", name)
	}
}

func loadConfig(opts options) (config.RenderConfig, error) {
	base := config.Default()
	if opts.configPath != "" {
		var err error
		if base, err = config.Load(opts.configPath); err != nil {
			return config.RenderConfig{}, err
		}
	}
	return config.Resolve(base, opts.overrides)
}

// setup builds the scene, camera and renderer described by cfg
func setup(cfg config.RenderConfig) (*renderer.ProgressiveRaytracer, error) {
	s, err := scene.Build(cfg.Scene)
	if err != nil {
		return nil, err
	}

	cam := &camera.PerspectiveCamera{}
	aspect := float64(cfg.Width) / float64(cfg.Height)
	if err := cam.Commit(s.Camera.Clone().Set("aspect", aspect)); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	strategy, err := renderer.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	r, err := renderer.New(strategy)
	if err != nil {
		return nil, err
	}
	p := s.Renderer.Clone().Merge(params.New().
		Set("world", s.World).
		Set("camera", cam).
		Set("integrator", cfg.Integrator).
		Set("spp", cfg.SPP).
		Set("tileSize", cfg.TileSize))
	if err := r.Commit(p); err != nil {
		r.Close()
		return nil, err
	}

	progressiveConfig := renderer.DefaultProgressiveConfig()
	progressiveConfig.MaxPasses = cfg.Frames
	progressiveConfig.NumWorkers = cfg.Workers
	pr, err := renderer.NewProgressiveRaytracer(r, cfg.Width, cfg.Height, progressiveConfig)
	if err != nil {
		r.Close()
		return nil, err
	}
	return pr, nil
}

// run renders every frame of cfg and saves the final image
func run(ctx context.Context, cfg config.RenderConfig) error {
	log := core.Logger()
	pr, err := setup(cfg)
	if err != nil {
		return err
	}
	defer pr.Close()

	startTime := time.Now()
	passChan, _, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	var final *image.NRGBA
	for pass := range passChan {
		final = pass.Image
		log.Debug("frame finished", "frame", pass.Stats.Frame, "tiles", pass.Stats.Tiles,
			"jobs", pass.Stats.Jobs, "duration", pass.Stats.Duration)
	}
	if err := <-errChan; err != nil {
		return err
	}
	if final == nil {
		return errors.New("no frames rendered")
	}

	if w, h := cfg.OutputSize(); w != cfg.Width || h != cfg.Height {
		final = output.Resample(final, w, h)
	}
	if err := output.Save(cfg.Output, final); err != nil {
		return err
	}

	log.Info("render saved", "path", cfg.Output, "scene", cfg.Scene, "strategy", cfg.Strategy,
		"integrator", cfg.Integrator, "frames", cfg.Frames, "elapsed", time.Since(startTime))
	return nil
}
