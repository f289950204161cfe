/*
Copyright © 2025 Regeleardealului
*/
package main

import (
	"github.com/Regeleardealului/diabetes-agent/cmd"
	"github.com/joho/godotenv"
)

func main() {
	cmd.Execute()
}

func init() {
	// Optional .env for local development; deployments set real
	// environment variables instead.
	_ = godotenv.Load()
}
