package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pixsort/internal/logging"
	"pixsort/internal/startup"
)

// options holds the persistent flags and, once PersistentPreRunE has
// run, the resolved configuration.
type options struct {
	configPath  string
	cacheDir    string
	ext         string
	workers     int
	metricsAddr string
	size        int
	logFile     string
	logLevel    string
	headless    bool

	cfg *startup.Config
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pixsort [dir]",
		Short: "Reorder a folder of images by eye",
		Long: `pixsort shows every image of a folder as a thumbnail grid so the
images can be put in order by eye.

Thumbnails are produced in the background and cached on disk, keyed by
path, modification time and size, so reopening a folder is instant.
Press w to quit and print the chosen order, one path per line.

Without a terminal, or with --headless, the folder is loaded without the
grid and one line per image is printed instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for commands that need no config
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return opts.run(cmd, dir)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "TOML config file (default: "+startup.DefaultConfigPath()+")")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "thumbnail cache directory")
	flags.StringVarP(&opts.ext, "ext", "e", "", "image extension to list (default .png)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "thumbnail workers (default CPUs - 1)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.IntVarP(&opts.size, "size", "s", 0, "initial preview size index")
	flags.StringVar(&opts.logFile, "log-file", "", "log file used while the grid is shown")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default from PIXSORT_LOG_LEVEL)")
	flags.BoolVar(&opts.headless, "headless", false, "print results instead of showing the grid")

	root.AddCommand(newLoadCommand(opts), newCacheCommand(opts), newVersionCommand())
	return root
}

// load resolves the configuration; flags set on the command line win over
// the environment and the config file.
func (o *options) load(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, ok := logging.ParseLevel(o.logLevel)
		if !ok {
			return fmt.Errorf("configuration error: unknown log level %q", o.logLevel)
		}
		logging.SetLevel(level)
	}
	cfg, err := startup.LoadConfig(o.configPath, func(c *startup.Config) {
		if flags.Changed("cache-dir") {
			c.CacheDir = o.cacheDir
		}
		if flags.Changed("ext") {
			c.Extension = o.ext
		}
		if flags.Changed("workers") {
			c.Workers = o.workers
		}
		if flags.Changed("metrics-addr") {
			c.MetricsAddr = o.metricsAddr
		}
		if flags.Changed("size") {
			c.DefaultSizeIndex = o.size
		}
		if flags.Changed("log-file") {
			c.LogFile = o.logFile
		}
	})
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	o.cfg = cfg
	return nil
}

func (o *options) run(cmd *cobra.Command, dir string) error {
	if o.headless || !interactiveTerminal() {
		return runHeadless(cmd, o.cfg, dir)
	}
	return runInteractive(cmd, o.cfg, dir)
}

// interactiveTerminal reports whether the grid can be drawn. The grid is
// drawn on stderr so stdout stays free for the written order.
func interactiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}
