// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/db47h/gridsim"
	"github.com/db47h/gridsim/hwlib"
	"github.com/db47h/gridsim/internal/config"
	"github.com/db47h/gridsim/internal/layout"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	cfg   config.Config
	log   *zap.Logger
	ticks int
	debug bool

	// the tick count was given explicitly and is not extended to cover all
	// input vectors.
	fixedTicks bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "gridsim",
		Short:         "Run grid logic layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.debug {
				cfg.LogLevel = "debug"
			}
			_, opts.fixedTicks = os.LookupEnv("GRIDSIM_TICKS")
			if cmd.Flags().Changed("ticks") {
				cfg.Ticks = opts.ticks
				opts.fixedTicks = true
			}
			if err = cfg.Validate(); err != nil {
				return err
			}
			if opts.log, err = cfg.Logger(); err != nil {
				return err
			}
			gridsim.SetLogger(opts.log)
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	run := &cobra.Command{
		Use:   "run [layout.yaml]",
		Short: "Load a layout and tick it, printing its outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.OutOrStdout(), opts, args[0])
		},
	}
	run.Flags().IntVarP(&opts.ticks, "ticks", "n", 1, "number of ticks to run (default from GRIDSIM_TICKS)")

	parts := &cobra.Command{
		Use:   "parts",
		Short: "List library parts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			listParts(cmd.OutOrStdout())
		},
	}

	root.AddCommand(run, parts)
	return root
}

func runLayout(w io.Writer, opts *options, name string) error {
	d, err := layout.Load(name)
	if err != nil {
		return err
	}
	d.MaxEvaluations = opts.cfg.MaxEvaluations
	bp, err := d.Blueprint()
	if err != nil {
		return err
	}
	nIn, nOut := len(bp.Inputs(gridsim.R0)), len(bp.Outputs(gridsim.R0))
	opts.log.Info("layout loaded",
		zap.String("name", d.Name),
		zap.Int("components", bp.Simulation().Size()),
		zap.Int("inputs", nIn),
		zap.Int("outputs", nOut))

	gst := gridsim.NewGlobalStateTable()
	ticks := opts.cfg.Ticks
	if ticks < len(d.Vectors) && !opts.fixedTicks {
		ticks = len(d.Vectors)
	}
	for tick := 0; tick < ticks; tick++ {
		in := d.Vector(tick)
		for i := 0; i < nIn; i++ {
			v := gridsim.Off
			if i < len(in) {
				v = in[i]
			}
			bp.SetInputBuffer(i, v)
		}
		if sc := bp.Tick(gst); sc != nil {
			opts.log.Warn("short circuit", zap.Int("tick", tick), zap.Error(sc))
			return errors.Wrapf(sc, "tick %d", tick)
		}
		out := make([]string, nOut)
		for i := range out {
			out[i] = bp.OutputBuffer(i).String()
		}
		fmt.Fprintf(w, "%d: %s\n", tick, strings.Join(out, " "))
	}
	return nil
}

func listParts(w io.Writer) {
	for _, n := range hwlib.Names() {
		bp, _ := hwlib.ByName(n)
		kind := bp.Descriptor().String()
		if bp.Custom() {
			kind = "custom"
		}
		fmt.Fprintf(w, "%-12s %-8s in=%d out=%d\n", n, kind, len(bp.Inputs(gridsim.R0)), len(bp.Outputs(gridsim.R0)))
	}
}
