package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockroom",
		Short: "Stockroom is an inventory record service with photo attachments",
	}

	cmd.Version = "0.1.0"
	cmd.AddCommand(newServeCmd())

	return cmd
}
