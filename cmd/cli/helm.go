package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/deepwake/sub-engine/internal/audio"
	"github.com/deepwake/sub-engine/internal/config"
	"github.com/deepwake/sub-engine/internal/console"
	"github.com/deepwake/sub-engine/internal/vessel"
)

func newHelmCmd(a *app) *cobra.Command {
	var (
		id      string
		depth   float32
		logFile string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "helm",
		Short: "Drive a vessel from the keyboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The terminal belongs to the gauges, so logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			log := a.logger(w)

			v, err := a.cfg.NewVessel(id, vessel.Transform{Y: -depth})
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			var sound console.Sound
			if a.cfg.Console.Sound {
				m := audio.NewManager(a.cfg.Console.Volume, log)
				if err := m.Init(); err != nil {
					// Non-fatal, the helm works without sound
					log.Warn("audio disabled", "err", err)
				} else {
					defer m.Close()
					sound = m
				}
			}

			con := console.New(screen, v, a.cfg, sound, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer cancel() // quitting the helm stops the watcher
				return con.Run(gctx)
			})
			if watch && a.configPath != "" {
				g.Go(func() error {
					return config.Watch(gctx, a.configPath, log, con.Reload)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&id, "id", "u1", "vessel id")
	cmd.Flags().Float32Var(&depth, "depth", 20, "starting depth")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")
	return cmd
}
