package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
	eventsource "github.com/aretw0/tagnote/pkg/adapters/lifecycle"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the notes count whenever another process changes the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				src, err := app.Source(ctx)
				if err != nil {
					return err
				}
				if err := src.Start(ctx); err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				c.logger.Info("watching vault", "notes", len(app.Notes.Notes()))
				for e := range src.Events() {
					change, ok := e.(eventsource.ChangeEvent)
					if !ok {
						fmt.Fprintln(w, e.String())
						continue
					}
					idColor.Fprint(w, change.Event.String())
					fmt.Fprintf(w, ": %d note(s), %d tag(s)\n", change.Notes, change.Tags)
				}
				return nil
			})
		},
	}
}
