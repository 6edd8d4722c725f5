package main

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/framelab/scenic/internal/adapters/http"
	"github.com/framelab/scenic/internal/cli"
	"github.com/framelab/scenic/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP for an external transport layer",
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptsDir, _ := cmd.Flags().GetString("scripts")
		lexiconPath, _ := cmd.Flags().GetString("lexicon")
		level, _ := cmd.Flags().GetString("log-level")
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")
		redact, _ := cmd.Flags().GetStringSlice("redact")
		audit, _ := cmd.Flags().GetBool("audit")

		var encryptKey []byte
		if hexKey := os.Getenv("SCENIC_SESSION_KEY"); hexKey != "" {
			k, err := hex.DecodeString(hexKey)
			if err != nil {
				return fmt.Errorf("SCENIC_SESSION_KEY: %w", err)
			}
			encryptKey = k
		}

		logger := logging.New(logging.ParseLevel(level))
		engine, lex, err := cli.BuildEngine(cli.EngineOptions{
			ScriptsDir:     scriptsDir,
			LexiconPath:    lexiconPath,
			RedisAddr:      redisAddr,
			RedisTTL:       ttl,
			Metrics:        true,
			RedactPatterns: redact,
			EncryptKey:     encryptKey,
			Audit:          audit,
			Logger:         logger,
		})
		if err != nil {
			return err
		}

		handler := httpadapter.NewHandler(engine, lex.Tag, httpadapter.WithLogger(logger))
		logger.Info("listening", "addr", addr)
		return http.ListenAndServe(addr, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("redis", "", "Redis address for session state (empty = in-memory)")
	serveCmd.Flags().Duration("session-ttl", 30*time.Minute, "Idle session expiry when using Redis")
	serveCmd.Flags().StringSlice("redact", nil, "Regexps of frame.field keys to mask before persisting")
	serveCmd.Flags().Bool("audit", false, "Log every engine lifecycle event")
}
