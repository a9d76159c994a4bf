package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
	"github.com/aretw0/tagnote/internal/platform"
)

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a vault",
		Long: `Initialize a vault in --vault or the working directory. The chosen
adapter, format, variant and versioning are saved to tagnote.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.vault
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = wd
			}

			opts, err := c.options(cmd, root)
			if err != nil {
				return err
			}
			opts = append(opts, tagnote.WithAutoInit(true))

			app, err := tagnote.New(root, opts...)
			if err != nil {
				return fmt.Errorf("failed to initialize vault: %w", err)
			}
			if err := app.Close(context.Background()); err != nil {
				return err
			}

			if _, err := os.Stat(filepath.Join(root, platform.ConfigFile)); os.IsNotExist(err) {
				cfg := tagnote.FileConfig{
					Adapter: c.adapter,
					Format:  c.format,
					Variant: c.variant,
				}
				if cmd.Flags().Changed("versioning") {
					versioning := c.versioning
					cfg.Versioning = &versioning
				}
				if err := os.MkdirAll(root, 0755); err != nil {
					return err
				}
				if err := platform.WriteConfig(root, cfg); err != nil {
					return fmt.Errorf("failed to write %s: %w", platform.ConfigFile, err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized tagnote vault in", root)
			return nil
		},
	}
}
