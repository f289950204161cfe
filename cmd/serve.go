/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Regeleardealului/diabetes-agent/config"
	"github.com/Regeleardealului/diabetes-agent/database"
	"github.com/Regeleardealului/diabetes-agent/handler"
	"github.com/Regeleardealului/diabetes-agent/middleware"
	"github.com/Regeleardealului/diabetes-agent/service"
	"github.com/Regeleardealului/diabetes-agent/static"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question-answering server",
	Long:  `Starts the HTTP server exposing the chat API, the websocket endpoint and the web UI.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.Weaviate, cfg.Retrieval.MinCertainty)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure Weaviate schema: %v", err)
		}

		embedder, generator, err := newAIServices(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI services: %v", err)
		}

		// Initialize services
		retriever := service.NewRetriever(embedder, weaviateDb)
		assembler := service.NewContextAssembler(cfg.Retrieval.MaxContextSize)
		queryService := service.NewQueryService(retriever, assembler, generator, cfg.Retrieval.TopK)
		wsService := service.NewWebSocketService(queryService, cfg.RequestTimeout)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(queryService, cfg.RequestTimeout)
		healthHandler := handler.NewHealthHandler()
		statsHandler := handler.NewStatsHandler(weaviateDb)

		// Setup routes
		mux := http.NewServeMux()
		mux.Handle("/chat", chatHandler.HandleChat())
		mux.Handle("/ws", http.HandlerFunc(wsService.HandleChat))
		mux.Handle("/healthz", healthHandler.HandleHealth())
		mux.Handle("/api/index/stats", statsHandler.HandleStats())
		mux.Handle("/", static.Handler())

		// Apply global middleware
		root := middleware.Recovery(middleware.Logging(corsHandler.CorsMiddleware(mux)))

		// No ReadTimeout here: it would cut long-lived websocket
		// connections. Request budgets are enforced per handler.
		server := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Printf("Starting server on port %s...", cfg.Port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server error: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Forced shutdown: %v", err)
		}
	},
}

// newAIServices builds the embedding and generation backends for the
// configured provider. Gemini serves both roles with one client.
func newAIServices(ctx context.Context, cfg *config.Config) (service.Embedder, service.Generator, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		gemini, err := service.NewGeminiService(ctx, cfg.AI.GoogleAPIKey, cfg.AI.EmbeddingModel, cfg.AI.GenerationModel)
		if err != nil {
			return nil, nil, err
		}
		return gemini, gemini, nil
	case config.ProviderOpenAI:
		openAI := service.NewOpenAIService(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.EmbeddingModel, cfg.AI.GenerationModel)
		return openAI, openAI, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider: %s", cfg.AI.Provider)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
