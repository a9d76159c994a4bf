package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aretw0/tagnote"
)

// cli carries the persistent flags shared by every subcommand.
type cli struct {
	vault      string
	adapter    string
	format     string
	variant    string
	versioning bool
	verbose    bool
	logFile    string

	logger  *slog.Logger
	closers []io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "tagnote",
		Short: "A headless note store that groups notes by tag",
		Long: `tagnote keeps a flat collection of notes, each with at most one tag,
persisted as a single document in a vault (files, bbolt or memory).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setupLogging(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			for _, cl := range c.closers {
				_ = cl.Close()
			}
			c.closers = nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.vault, "vault", "", "Vault directory (default: nearest root above the working directory)")
	flags.StringVar(&c.adapter, "adapter", "fs", "Storage adapter: fs, bolt or memory")
	flags.StringVar(&c.format, "format", "json", "Document format: json or yaml")
	flags.StringVar(&c.variant, "variant", "standard", "App variant: standard or compact")
	flags.BoolVar(&c.versioning, "versioning", false, "Commit every write with git")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&c.logFile, "log-file", "", "Also write logs to this file (rotated)")

	root.AddCommand(
		newAddCmd(c),
		newEditCmd(c),
		newRmCmd(c),
		newShowCmd(c),
		newListCmd(c),
		newSearchCmd(c),
		newTagsCmd(c),
		newTagCmd(c),
		newSettingsCmd(c),
		newAudioCmd(c),
		newWatchCmd(c),
		newInitCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setupLogging(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = cmd.ErrOrStderr()
	if c.logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   c.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		c.closers = append(c.closers, rotator)
		w = io.MultiWriter(w, rotator)
	}

	c.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.logger)
	return nil
}

// root resolves the vault directory: the flag, else the nearest vault root,
// else the working directory.
func (c *cli) root() (string, error) {
	if c.vault != "" {
		return c.vault, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := tagnote.FindVaultRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

// options merges tagnote.yaml with the flags the user actually set.
func (c *cli) options(cmd *cobra.Command, root string) ([]tagnote.Option, error) {
	cfg, err := tagnote.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	opts := append([]tagnote.Option{
		tagnote.WithLogger(c.logger),
	}, cfg.Options()...)

	flags := cmd.Flags()
	if flags.Changed("adapter") || cfg.Adapter == "" {
		opts = append(opts, tagnote.WithAdapter(c.adapter))
	}
	if flags.Changed("format") || cfg.Format == "" {
		opts = append(opts, tagnote.WithFormat(c.format))
	}
	if flags.Changed("variant") || cfg.Variant == "" {
		opts = append(opts, tagnote.WithVariant(c.variant))
	}
	if flags.Changed("versioning") {
		opts = append(opts, tagnote.WithVersioning(c.versioning))
	}
	return opts, nil
}

// open loads the app for a command. The caller must close it.
func (c *cli) open(cmd *cobra.Command, extra ...tagnote.Option) (*tagnote.App, error) {
	root, err := c.root()
	if err != nil {
		return nil, err
	}
	opts, err := c.options(cmd, root)
	if err != nil {
		return nil, err
	}
	opts = append(opts, tagnote.WithAutoInit(true))
	opts = append(opts, extra...)

	app, err := tagnote.New(root, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return app, nil
}

// withApp opens the app, runs fn and closes the app.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *tagnote.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := c.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(ctx); err != nil {
			c.logger.Warn("failed to close vault", "error", err)
		}
	}()
	return fn(ctx, app)
}
