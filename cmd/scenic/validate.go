package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framelab/scenic/pkg/lexicon"
	"github.com/framelab/scenic/pkg/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the scenario scripts and report every script error",
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptsDir, _ := cmd.Flags().GetString("scripts")
		lexiconPath, _ := cmd.Flags().GetString("lexicon")

		registry, err := script.LoadDir(scriptsDir)
		if err != nil {
			return err
		}
		if _, err := lexicon.Load(lexiconPath); err != nil {
			return err
		}

		names := registry.Names()
		fmt.Printf("OK: %d scenario(s) loaded\n", len(names))
		for _, name := range names {
			fmt.Printf("  - %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
