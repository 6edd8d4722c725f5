package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scenic",
	Short: "Scenic is a frame-based dialogue engine driven by scenario scripts",
	Long: `Scenic executes declarative dialogue scenarios: each line the bot
speaks offers a set of acceptable response frames, and caller answers
are matched lexically, semantically, and by pattern to fill them.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("scripts", "scripts", "Directory containing scenario scripts")
	rootCmd.PersistentFlags().String("lexicon", "lexicon.yaml", "Path to the lexical resource file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
