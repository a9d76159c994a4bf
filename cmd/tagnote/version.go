package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tagnote"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tagnote",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tagnote version %s\n", tagnote.Version)
		},
	}
}
