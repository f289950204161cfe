/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Regeleardealului/diabetes-agent/config"
	"github.com/Regeleardealului/diabetes-agent/database"
	"github.com/Regeleardealului/diabetes-agent/repository"
	"github.com/Regeleardealului/diabetes-agent/service"
	"github.com/Regeleardealului/diabetes-agent/types"
	"github.com/spf13/cobra"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index documents into the knowledge base",
	Long: `Reads every supported document (PDF, CSV, TXT, MD) from the source
directory, splits it into page-bound chunks, embeds each chunk and
upserts the result into Weaviate. Record IDs are derived from source,
page and sequence, so re-running over an unchanged corpus overwrites
records in place instead of duplicating them.`,
	Run: func(cmd *cobra.Command, args []string) {
		sourceDir, _ := cmd.Flags().GetString("source-dir")
		reinit, _ := cmd.Flags().GetBool("reinit")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if sourceDir != "" {
			cfg.Ingest.SourceDir = sourceDir
		}

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.Weaviate, cfg.Retrieval.MinCertainty)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if reinit {
			if err := weaviateDb.ReInit(ctx); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate class: %v", err)
			}
			log.Println("Dropped and recreated class", database.KNOWLEDGE_CLASS)
		}

		embedder, _, err := newAIServices(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI services: %v", err)
		}

		repo := repository.NewDocumentRepo(cfg.Ingest.SourceDir)
		chunker := service.NewChunkerService(types.ChunkerConfig{
			MaxChunkSize: cfg.Chunking.MaxChunkSize,
			OverlapSize:  cfg.Chunking.OverlapSize,
		})
		ingestService := service.NewIngestService(repo, chunker, embedder, weaviateDb, cfg.Ingest.EmbedBatchSize)

		report, err := ingestService.Run(ctx)
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}

		fmt.Printf("Ingested %d documents (%d skipped), %d chunks; index now holds %d records\n",
			report.Documents, report.Skipped, report.Chunks, report.IndexRecords)
		if report.Skipped > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("source-dir", "s", "", "directory of documents to ingest (overrides config)")
	ingestCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the database")
}
