package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framelab/scenic"
	"github.com/framelab/scenic/internal/cli"
	"github.com/framelab/scenic/internal/logging"
	"github.com/framelab/scenic/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run an interactive dialogue session on stdin/stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptsDir, _ := cmd.Flags().GetString("scripts")
		lexiconPath, _ := cmd.Flags().GetString("lexicon")
		level, _ := cmd.Flags().GetString("log-level")
		scenario, _ := cmd.Flags().GetString("scenario")
		retries, _ := cmd.Flags().GetInt("retries")
		depth, _ := cmd.Flags().GetInt("depth")
		plain, _ := cmd.Flags().GetBool("plain")

		if len(args) > 0 {
			scenario = args[0]
		}
		if scenario == "" {
			return fmt.Errorf("a scenario name is required (argument or --scenario)")
		}

		logger := logging.New(logging.ParseLevel(level))
		engine, lex, err := cli.BuildEngine(cli.EngineOptions{
			ScriptsDir:  scriptsDir,
			LexiconPath: lexiconPath,
			MaxRetries:  retries,
			Depth:       depth,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		runner := &scenic.Runner{
			Input:  os.Stdin,
			Output: os.Stdout,
			Tagger: lex.Tag,
		}
		if !plain {
			tui.PrintBanner()
			runner.Renderer = tui.NewRenderer()
		}

		return runner.Run(context.Background(), engine, scenario)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("scenario", "", "Entry scenario name")
	runCmd.Flags().Int("retries", 0, "Re-prompt budget per line (0 = default)")
	runCmd.Flags().Int("depth", 0, "Hypernym closure depth bound (0 = default)")
	runCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
