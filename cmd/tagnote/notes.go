package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
	"github.com/aretw0/tagnote/pkg/core"
	"github.com/aretw0/tagnote/pkg/git"
)

// reasonFlags are the commit message flags of writing commands.
type reasonFlags struct {
	message string
	ctype   string
	scope   string
}

func (r *reasonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.message, "message", "m", "", "Change reason (commit message when versioned)")
	cmd.Flags().StringVarP(&r.ctype, "type", "t", "", "Change type (feat, fix, etc)")
	cmd.Flags().StringVarP(&r.scope, "scope", "s", "", "Commit scope")
}

// apply attaches the change reason to ctx. Without flags the store picks one.
func (r *reasonFlags) apply(ctx context.Context, subject string) context.Context {
	switch {
	case r.ctype != "":
		scope := r.scope
		if scope == "" {
			scope = "notes"
		}
		msg := r.message
		if msg == "" {
			msg = subject
		}
		return core.WithChangeReason(ctx, git.FormatCommitMessage(r.ctype, scope, msg, ""))
	case r.message != "":
		return core.WithChangeReason(ctx, git.AppendFooter(r.message))
	}
	return ctx
}

var (
	idColor  = color.New(color.FgCyan)
	tagColor = color.New(color.FgYellow)
	dimColor = color.New(color.Faint)
)

func printNote(w io.Writer, n core.Note) {
	idColor.Fprint(w, n.ID)
	fmt.Fprintf(w, "  %s", n.Title)
	if n.Tag != "" {
		tagColor.Fprintf(w, "  #%s", n.Tag)
	}
	fmt.Fprintln(w)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAddCmd(c *cli) *cobra.Command {
	var content, tag string
	var reason reasonFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a note",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				note, err := app.Notes.Add(reason.apply(ctx, "add note"), title, content, tag)
				if err != nil {
					return err
				}
				printNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Note content")
	cmd.Flags().StringVar(&tag, "tag", "", "Note tag")
	reason.register(cmd)
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var title, content, tag string
	var reason reasonFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, content or tag of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch core.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = tagnote.String(title)
			}
			if cmd.Flags().Changed("content") {
				patch.Content = tagnote.String(content)
			}
			if cmd.Flags().Changed("tag") {
				patch.Tag = tagnote.String(tag)
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change: pass --title, --content or --tag")
			}

			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				id := args[0]
				if _, err := app.Notes.Get(id); err != nil {
					return err
				}
				if err := app.Notes.Update(reason.apply(ctx, "update note "+id), id, patch); err != nil {
					return err
				}
				note, _ := app.Notes.Get(id)
				printNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVar(&tag, "tag", "", "New tag (empty clears it)")
	reason.register(cmd)
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	var reason reasonFlags

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				id := args[0]
				if _, err := app.Notes.Get(id); err != nil {
					return err
				}
				if err := app.Notes.Delete(reason.apply(ctx, "delete note "+id), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Note '%s' deleted.\n", id)
				return nil
			})
		},
	}
	reason.register(cmd)
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				note, err := app.Notes.Get(args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return printJSON(w, note)
				}
				printNote(w, note)
				dimColor.Fprintf(w, "created %s, updated %s\n", note.CreatedAt.Format("2006-01-02 15:04"), note.UpdatedAt.Format("2006-01-02 15:04"))
				if note.Content != "" {
					fmt.Fprintln(w)
					fmt.Fprintln(w, note.Content)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var filterTag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally only those with a tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				notes := app.Notes.Notes()
				if cmd.Flags().Changed("tag") {
					notes = app.Notes.FilterByTag(filterTag)
				}
				return renderNotes(cmd.OutOrStdout(), notes, asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&filterTag, "tag", "", "Only notes with this tag (empty means untagged)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes whose title or tag contains the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, app *tagnote.App) error {
				return renderNotes(cmd.OutOrStdout(), app.Notes.Search(strings.Join(args, " ")), asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func renderNotes(w io.Writer, notes []core.Note, asJSON bool) error {
	if asJSON {
		if notes == nil {
			notes = []core.Note{}
		}
		return printJSON(w, notes)
	}
	for _, n := range notes {
		printNote(w, n)
	}
	return nil
}
