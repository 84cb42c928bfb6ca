package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	rootCmd := &cobra.Command{
		Use:   "contenthub",
		Short: "ContentHub API server",
		Long:  `ContentHub serves users, authors, content and Stripe-backed subscriptions over HTTP.`,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
