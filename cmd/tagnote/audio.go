package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
)

func newAudioCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Background audio",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tracks",
		Short: "List the tracks of the selected variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				w := cmd.OutOrStdout()
				for _, t := range app.Audio.Tracks() {
					fmt.Fprint(w, t.Name)
					dimColor.Fprintf(w, "  %s\n", t.Asset)
				}
				return nil
			})
		},
	})

	return cmd
}
