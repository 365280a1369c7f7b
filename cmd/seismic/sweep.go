package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/engine"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// layout is one decomposition of the wavefield.
type layout struct {
	panels     int
	tileHeight int
	tileWidth  int
	kernel     string
}

func (l layout) String() string {
	return fmt.Sprintf("panels=%d tile=%dx%d kernel=%s", l.panels, l.tileHeight, l.tileWidth, l.kernel)
}

type sweepResult struct {
	layout   layout
	perCell  float64 // nanoseconds per cell-step
	perFrame time.Duration
	err      error
}

type sweepOptions struct {
	Section string
	Seed    int64
	Frames  int
	Workers int
	Threads int
	Panels  []int
	Heights []int
	Widths  []int
	Kernels []string
}

var sweepOpts = sweepOptions{
	Section: "anticline",
	Seed:    1337,
	Frames:  60,
	Workers: runtime.NumCPU(),
	Threads: 1,
	Panels:  []int{4, 8, 12, 16},
	Heights: []int{5, 7, 11},
	Widths:  []int{56, 112, 224},
	Kernels: []string{"scalar", "unrolled"},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Time every panel and tile layout and list the fastest",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := sweep(cmd.OutOrStdout(), cfg, sweepOpts); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
	},
}

func init() {
	f := sweepCmd.Flags()
	f.StringVar(&sweepOpts.Section, "section", sweepOpts.Section, "geology generator")
	f.Int64Var(&sweepOpts.Seed, "seed", sweepOpts.Seed, "section seed shared by every layout")
	f.IntVar(&sweepOpts.Frames, "frames", sweepOpts.Frames, "frames timed per layout")
	f.IntVar(&sweepOpts.Workers, "workers", sweepOpts.Workers, "layouts timed at the same time")
	f.IntVar(&sweepOpts.Threads, "threads", sweepOpts.Threads, "pool workers per layout")
	f.IntSliceVar(&sweepOpts.Panels, "sweep-panels", sweepOpts.Panels, "panel counts to try")
	f.IntSliceVar(&sweepOpts.Heights, "tile-heights", sweepOpts.Heights, "tile heights to try")
	f.IntSliceVar(&sweepOpts.Widths, "tile-widths", sweepOpts.Widths, "tile widths to try")
	f.StringSliceVar(&sweepOpts.Kernels, "kernels", sweepOpts.Kernels, "interior kernels to try")
	rootCmd.AddCommand(sweepCmd)
}

func sweep(w io.Writer, base config.Config, opts sweepOptions) error {
	factory, ok := core.Sections()[opts.Section]
	if !ok {
		return fmt.Errorf("unknown section %q", opts.Section)
	}
	section := factory(core.Size{W: base.Grid.Width, H: base.Grid.Height}, opts.Seed)
	if section == nil {
		return fmt.Errorf("section %q produced nothing for seed %d", opts.Section, opts.Seed)
	}

	var layouts []layout
	for _, p := range opts.Panels {
		for _, th := range opts.Heights {
			for _, tw := range opts.Widths {
				for _, k := range opts.Kernels {
					layouts = append(layouts, layout{panels: p, tileHeight: th, tileWidth: tw, kernel: k})
				}
			}
		}
	}
	fmt.Fprintf(w, "Sweeping %d layouts (%d workers, %d frames)\n", len(layouts), opts.Workers, opts.Frames)

	jobs := make(chan layout)
	results := make(chan sweepResult)
	var wg sync.WaitGroup
	for i := 0; i < max(opts.Workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range jobs {
				results <- timeLayout(base, section, l, opts)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, l := range layouts {
			jobs <- l
		}
		close(jobs)
	}()

	start := time.Now()
	var all []sweepResult
	for res := range results {
		if res.err != nil {
			logrus.Debugf("skipping %v: %v", res.layout, res.err)
			continue
		}
		all = append(all, res)
	}
	if len(all) == 0 {
		return fmt.Errorf("no valid layout among %d", len(layouts))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].perCell < all[j].perCell })

	fmt.Fprintf(w, "\nTop 5 layouts (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(all) && i < 5; i++ {
		fmt.Fprintf(w, "%2d) %.2fns per cell-step, %v per frame, %s\n", i+1, all[i].perCell, all[i].perFrame, all[i].layout)
	}
	fmt.Fprintf(w, "\nSkipped %d invalid layouts\n", len(layouts)-len(all))
	return nil
}

func timeLayout(base config.Config, s core.Section, l layout, opts sweepOptions) sweepResult {
	cfg := base
	cfg.Wave.Panels = l.panels
	cfg.Wave.TileHeight = l.tileHeight
	cfg.Wave.TileWidth = l.tileWidth
	cfg.Wave.Kernel = l.kernel
	cfg.Throttle.InitialWorkers = max(opts.Threads, 1)
	cfg.Throttle.MaxWorkers = cfg.Throttle.InitialWorkers
	res := sweepResult{layout: l}

	e, err := engine.New(cfg)
	if err != nil {
		res.err = err
		return res
	}
	defer e.Close()
	if _, err := e.Reset(s); err != nil {
		res.err = err
		return res
	}
	x, _ := e.Rig()
	e.Fire(x, 2)

	frames := max(opts.Frames, 1)
	start := time.Now()
	for i := 0; i < frames; i++ {
		e.Frame(core.Update, nil)
	}
	elapsed := time.Since(start)
	cells := cfg.Grid.Width * (cfg.Grid.Height + 1) * e.Field().PumpFactor() * frames
	res.perFrame = elapsed / time.Duration(frames)
	res.perCell = float64(elapsed.Nanoseconds()) / float64(max(cells, 1))
	return res
}
