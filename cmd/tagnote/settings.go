package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
	"github.com/aretw0/tagnote/pkg/settings"
)

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change display settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "font [size]",
		Short: fmt.Sprintf("Show or set the font size (%d-%d)", settings.MinFontSize, settings.MaxFontSize),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				if len(args) == 1 {
					size, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("font size must be a number: %w", err)
					}
					if err := app.Settings.SetFontSize(ctx, size); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), app.Settings.FontSize(ctx))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "background [id]",
		Short: "Show or set the background image (" + strings.Join(settings.Backgrounds(), ", ") + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				if len(args) == 1 {
					if err := app.Settings.SetBackground(ctx, args[0]); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), app.Settings.Background(ctx))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default font size and background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				if err := app.Settings.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", app.Settings.FontSize(ctx), app.Settings.Background(ctx))
				return nil
			})
		},
	})

	return cmd
}
