package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
)

type tagSummary struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

func newTagsCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show notes grouped by tag, largest group first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				groups := app.Notes.GroupByTag()
				w := cmd.OutOrStdout()

				if asJSON {
					out := make([]tagSummary, 0, len(groups))
					for _, g := range groups {
						out = append(out, tagSummary{Tag: g.Tag, Label: g.Label(), Count: g.Count()})
					}
					return printJSON(w, out)
				}

				for _, g := range groups {
					tagColor.Fprintf(w, "%s", g.Label())
					dimColor.Fprintf(w, " (%d)\n", g.Count())
					for _, n := range g.Notes {
						fmt.Fprint(w, "  ")
						printNote(w, n)
					}
				}

				// Created tags nobody uses yet.
				for _, t := range app.Notes.Tags() {
					if len(app.Notes.FilterByTag(t)) == 0 {
						tagColor.Fprintf(w, "%s", t)
						dimColor.Fprintln(w, " (0)")
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newTagCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				if err := app.Notes.CreateTag(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tag '%s' created.\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a tag on every note that carries it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				n, err := app.Notes.RenameTag(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tag '%s' renamed to '%s' on %d note(s).\n", args[0], args[1], n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a tag from every note (the notes are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				n, err := app.Notes.DeleteTag(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tag '%s' removed from %d note(s).\n", args[0], n)
				return nil
			})
		},
	})

	return cmd
}
