package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	root := &cobra.Command{
		Use:          "medicare-pms",
		Short:        "Patient management API for the clinic and medical store dashboards",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), reportCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
