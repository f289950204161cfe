/*
Copyright © 2025 Regeleardealului
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "diabetes-agent",
	Short: "Retrieval-augmented diabetes assistant",
	Long: `diabetes-agent answers diabetes questions from an indexed document
corpus. Index PDF, CSV, text or Markdown sources into Weaviate with
"diabetes-agent ingest", then serve the chat API and web UI with
"diabetes-agent serve".

Answers are generated from retrieved document chunks only and always
carry source citations pointing back at the corpus.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}
