package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/engine"
	"seismic-sim/internal/render"
	"seismic-sim/internal/reservoir"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// runOptions controls a headless benchmark.
type runOptions struct {
	Section   string
	Seed      int64
	Runs      int
	Parallel  int
	Frames    int
	Trials    int
	FireEvery int
	Drill     int
	Draw      bool
	FPS       int
}

// runResult summarises one benchmark run.
type runResult struct {
	Seed      int64
	Stats     reservoir.Stats
	Frames    int
	Elapsed   time.Duration
	Workers   int
	Busy      float64
	Energy    float64
	Extracted [reservoir.NumPhase]float32
	Cash      float32
}

var runOpts = runOptions{
	Section:   "anticline",
	Seed:      42,
	Runs:      1,
	Parallel:  1,
	Frames:    600,
	Trials:    4,
	FireEvery: 120,
	Drill:     0,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless and report frame timings",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		results, err := benchmark(cmd.Context(), cfg, runOpts)
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		report(cmd.OutOrStdout(), results)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.Section, "section", runOpts.Section, "geology generator")
	f.Int64Var(&runOpts.Seed, "seed", runOpts.Seed, "seed of the first run; run i uses seed+i*trials")
	f.IntVar(&runOpts.Runs, "runs", runOpts.Runs, "number of independent areas to simulate")
	f.IntVar(&runOpts.Parallel, "parallel", runOpts.Parallel, "runs simulated at the same time")
	f.IntVar(&runOpts.Frames, "frames", runOpts.Frames, "frames per run")
	f.IntVar(&runOpts.Trials, "trials", runOpts.Trials, "candidate areas per run")
	f.IntVar(&runOpts.FireEvery, "fire-every", runOpts.FireEvery, "frames between airgun shots (0 never fires)")
	f.IntVar(&runOpts.Drill, "drill", runOpts.Drill, "depth to drill at the rig before the first frame")
	f.BoolVar(&runOpts.Draw, "draw", runOpts.Draw, "render every frame into an offscreen canvas")
	f.IntVar(&runOpts.FPS, "fps", runOpts.FPS, "pace frames at this rate (0 runs flat out)")
	rootCmd.AddCommand(runCmd)
}

// benchmark simulates opts.Runs areas, at most opts.Parallel at a time.
func benchmark(ctx context.Context, cfg config.Config, opts runOptions) ([]runResult, error) {
	factory, ok := core.Sections()[opts.Section]
	if !ok {
		return nil, fmt.Errorf("unknown section %q", opts.Section)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]runResult, max(opts.Runs, 0))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallel, 1))
	for i := range results {
		seed := opts.Seed + int64(i*max(opts.Trials, 1))
		g.Go(func() error {
			r, err := simulate(ctx, cfg, factory, seed, opts)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func simulate(ctx context.Context, cfg config.Config, factory core.SectionFactory, seed int64, opts runOptions) (runResult, error) {
	e, err := engine.New(cfg)
	if err != nil {
		return runResult{}, err
	}
	defer e.Close()
	stats, err := e.NewArea(factory, seed, opts.Trials)
	if err != nil {
		return runResult{}, err
	}
	for i := 0; i < 4*opts.Drill; i++ {
		if _, depth := e.Rig(); depth >= opts.Drill {
			break
		}
		e.Drill(1)
	}

	var canvas *image.RGBA
	req := core.Update
	if opts.Draw {
		size := e.VisibleSize()
		canvas = render.NewCanvas(size.W, size.H)
		req |= core.Draw
	}
	var pace *core.FixedStep
	if opts.FPS > 0 {
		pace = core.NewFixedStep(opts.FPS)
	}

	r := runResult{Seed: seed, Stats: stats}
	x, _ := e.Rig()
	start := time.Now()
	for r.Frames < opts.Frames {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		if pace != nil && !pace.ShouldStep() {
			time.Sleep(pace.Step() / 4)
			continue
		}
		if opts.FireEvery > 0 && r.Frames%opts.FireEvery == 0 {
			e.Fire(x, 2)
		}
		out := e.Frame(req, canvas)
		for k, v := range out.Extracted {
			r.Extracted[k] += v
		}
		r.Workers, r.Busy = out.Workers, out.Busy
		r.Frames++
	}
	r.Elapsed = time.Since(start)
	r.Energy = e.Field().Energy()
	r.Cash = e.Cash()
	logrus.Debugf("seed %d: %d frames in %v", seed, r.Frames, r.Elapsed)
	return r, nil
}

func report(w io.Writer, results []runResult) {
	fmt.Fprintf(w, "%-8s %6s %9s %7s %5s %10s %8s %8s %9s\n",
		"seed", "frames", "ms/frame", "workers", "busy", "energy", "gas", "oil", "cash")
	for _, r := range results {
		perFrame := 0.0
		if r.Frames > 0 {
			perFrame = float64(r.Elapsed.Microseconds()) / 1000 / float64(r.Frames)
		}
		fmt.Fprintf(w, "%-8d %6d %9.3f %7d %4.0f%% %10.4g %8.3f %8.3f %9.1f\n",
			r.Seed, r.Frames, perFrame, r.Workers, 100*r.Busy, r.Energy,
			r.Extracted[reservoir.Gas], r.Extracted[reservoir.Oil], r.Cash)
	}
}
