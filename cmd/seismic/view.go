//go:build ebiten

package main

import (
	"errors"

	"seismic-sim/internal/app"
	"seismic-sim/internal/engine"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var viewCfg = app.NewConfig()

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the interactive viewer",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		factory, err := viewCfg.Factory()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		e, err := engine.New(cfg)
		if err != nil {
			logrus.Fatalf("Engine setup failed: %v", err)
		}
		defer e.Close()
		game, err := app.New(e, factory, *viewCfg)
		if err != nil {
			logrus.Fatalf("New area failed: %v", err)
		}

		size := e.VisibleSize()
		ebiten.SetWindowTitle("seismic - " + viewCfg.Section)
		ebiten.SetTPS(viewCfg.TPS)
		ebiten.SetWindowSize(size.W*viewCfg.Scale+viewCfg.HUDWidth, size.H*viewCfg.Scale)
		if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	viewCfg.Bind(viewCmd.Flags())
	rootCmd.AddCommand(viewCmd)
}
