package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framelab/scenic"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the scenic version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scenic version %s\n", scenic.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
