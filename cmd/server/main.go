package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futureme/internal/audio"
	"github.com/futureme/internal/config"
	"github.com/futureme/internal/db"
	"github.com/futureme/internal/handler"
	"github.com/futureme/internal/router"
	"github.com/futureme/internal/service"
	"github.com/futureme/internal/state"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	store := state.NewStore(db.DB, cfg.StateSlot)
	coach := service.NewCoachService(state.NewContainer(store), service.NewLocalAuthenticator(db.DB))

	textModel := ""
	if cfg.AIProvider == service.AIProviderGemini {
		textModel = cfg.TextModel
	}
	gemini := service.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, textModel, cfg.SpeechModel)
	generator := service.NewTextGenerator(cfg.AIProvider, gemini, cfg.OpenAIAPIKey, cfg.DeepSeekAPIKey, cfg.TextModel)
	if cfg.GeminiAPIKey == "" {
		log.Printf("[CONFIG] GEMINI_API_KEY is empty, speech will be silent")
	}

	messages := service.NewMessageService(generator)
	voice := service.NewVoiceService(gemini, audio.NewPlayer(nil))
	api := handler.NewAPI(coach, messages, voice)

	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (slot=%s, provider=%s)", cfg.ListenAddr, store.Key(), cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	voice.Close()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
