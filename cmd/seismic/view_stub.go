//go:build !ebiten

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the interactive viewer (requires the ebiten build tag)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("the viewer requires building with -tags ebiten")
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
