package main

import (
	"context"
	"os"

	"causaltrace/internal/api"
	"causaltrace/internal/config"
	"causaltrace/internal/evaluate"
	"causaltrace/internal/frames"
	"causaltrace/internal/gemini"
	"causaltrace/internal/llm"
	"causaltrace/internal/logging"
	"causaltrace/internal/store"
	"causaltrace/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	loadErr := config.Load()
	logging.Init(config.LogLevel())
	if loadErr != nil {
		log.Info().Err(loadErr).Msg("no .env loaded")
	}
	if os.Getenv("CAUSALTRACE_COOKIE_SECRET") == "" {
		log.Warn().Msg("CAUSALTRACE_COOKIE_SECRET not set; using dev default")
	}
	if config.GeminiAPIKey() == "" {
		log.Warn().Msg("GEMINI_API_KEY not set; users must configure their own key")
	}

	st, err := store.Open(config.StoreBackend(), config.DataDir(), config.SQLitePath())
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()
	if t, created, err := st.EnsureDefaultTemplate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("seed default template")
	} else if created {
		log.Info().Str("template_id", t.ID).Msg("created default template")
	}

	username, password, defaulted := config.AdminCredentials()
	if defaulted {
		log.Warn().Str("username", username).Msg("using default admin password; set CAUSALTRACE_ADMIN_PASSWORD")
	}
	admin, err := users.NewUser(username, password)
	if err != nil {
		log.Fatal().Err(err).Msg("create admin user")
	}

	srv := api.New(api.Options{
		Store: st,
		Users: users.NewMemoryStore(admin),
		NewCompleter: func(ctx context.Context, apiKey string) (llm.Completer, error) {
			c, err := gemini.New(ctx, apiKey, config.CallTimeout())
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		UploadsDir:    config.UploadsDir(),
		CookieSecret:  config.CookieSecret(),
		SecureCookies: config.SecureCookies(),
		SessionTTL:    config.SessionTTL(),
		ServerAPIKey:  config.GeminiAPIKey(),
		DefaultModel:  config.Model(),
		Models:        config.Models(),
		MaxFrames:     config.MaxFrames(),
		EvalOptions: []evaluate.Option{
			evaluate.WithInterval(config.Pacing()),
			evaluate.WithSelector(frames.Selector{MaxFrames: config.MaxFrames(), VerifyImages: true}),
		},
	})

	r := gin.Default()
	r.MaxMultipartMemory = config.MaxMultipartMemory
	srv.Routes(r)

	addr := config.Addr()
	log.Info().Str("addr", addr).Str("store", config.StoreBackend()).Msg("listening")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
