// Command emu runs an iNES ROM image in an ebiten window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/haldane-cart/nescore/console"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emu ROMFILE",
		Short: "Run an iNES ROM image",
		Args:  cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	return cmd
}

func run(romFile string) error {
	data, err := os.ReadFile(romFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", romFile, err)
	}

	emu, err := console.New(data)
	if err != nil {
		return fmt.Errorf("loading %s: %w", romFile, err)
	}
	glog.Infof("loaded %s", romFile)

	g := newGame(emu)
	ebiten.SetWindowSize(512, 480)
	ebiten.SetWindowTitle("nescore")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running emulator: %w", err)
	}
	return nil
}

func main() {
	defer glog.Flush()

	// glog registers its flags on the standard flag.CommandLine;
	// fold them into the cobra command so -v/-logtostderr work
	// alongside the ROMFILE argument.
	root := newRootCmd()
	root.Flags().AddGoFlagSet(flag.CommandLine)

	if err := root.Execute(); err != nil {
		glog.Errorf("%v", err)
		os.Exit(1)
	}
}
