// Command causaltrace runs rubric evaluations and manages stored templates
// and evaluation records from the terminal.
package main

import (
	"context"
	"os"

	"causaltrace/internal/config"
	"causaltrace/internal/gemini"
	"causaltrace/internal/llm"
	"causaltrace/internal/logging"
	"causaltrace/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	_ = config.Load() // .env is optional
	logging.Init(config.LogLevel())

	root := newRootCmd(deps{
		openStore: func() (*store.Store, error) {
			return store.Open(config.StoreBackend(), config.DataDir(), config.SQLitePath())
		},
		newCompleter: func(ctx context.Context, apiKey string) (llm.Completer, error) {
			c, err := gemini.New(ctx, apiKey, config.CallTimeout())
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		apiKey: config.GeminiAPIKey,
	})
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
