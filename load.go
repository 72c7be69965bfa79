package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pixsort/internal/logging"
	"pixsort/internal/media"
	"pixsort/internal/session"
	"pixsort/internal/startup"
	"pixsort/internal/thumbnail"
	"pixsort/internal/tui"
)

func newLoadCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load DIR",
		Short: "Load a folder",
		Long: `Load every image of DIR that has the configured extension.

With --headless (or without a terminal) the grid is not shown; each image
is printed once its previews are ready, in folder order:

  a.png 80x60 rendered 150x113 rendered 250x188 cache

Example:
  pixsort load --headless ~/Pictures/scans`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
}

func runHeadless(cmd *cobra.Command, cfg *startup.Config, dir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths, err := media.ListImages(dir, cfg.Extension)
	if err != nil {
		return err
	}

	p := startPipeline(ctx, cfg)
	defer p.Close("load finished")

	poller := session.NewPoller(p.pool, p.run, func(set thumbnail.Set) thumbnail.Set { return set }, cfg.SessionConfig())
	poller.Start(paths)

	sets, err := poller.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, set := range sets {
		fmt.Fprintln(out, describeSet(set))
	}
	return nil
}

// describeSet formats one result as "name WxH source WxH source ...".
func describeSet(set thumbnail.Set) string {
	var b strings.Builder
	b.WriteString(set.Name)
	for i, preview := range set.Previews {
		bounds := preview.Bounds()
		fmt.Fprintf(&b, " %dx%d %s", bounds.Dx(), bounds.Dy(), set.Sources[i])
	}
	return b.String()
}

func runInteractive(cmd *cobra.Command, cfg *startup.Config, dir string) error {
	restoreLogs := redirectLogs(cfg.DefaultLogFile())
	defer restoreLogs()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	p := startPipeline(ctx, cfg)
	defer p.Close("user quit")

	poller := session.NewPoller(p.pool, p.run, tui.NewItem, cfg.SessionConfig())
	app := tui.NewApp(poller, tui.Options{
		Dir:       dir,
		Extension: cfg.Extension,
		Sizes:     cfg.ThumbSizes,
		Selected:  cfg.DefaultSizeIndex,
	})
	defer app.Close()

	prog := tea.NewProgram(app, tea.WithAltScreen(), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("ui error: %w", err)
	}

	if app.WriteRequested() {
		out := cmd.OutOrStdout()
		for _, path := range app.Order() {
			fmt.Fprintln(out, path)
		}
	}
	return nil
}

// redirectLogs points logging at path while the grid owns the terminal.
// Logs are discarded if the file cannot be opened.
func redirectLogs(path string) func() {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				logging.SetOutput(f)
				return func() {
					logging.SetOutput(os.Stderr)
					_ = f.Close()
				}
			}
		}
	}
	logging.SetOutput(io.Discard)
	return func() { logging.SetOutput(os.Stderr) }
}
