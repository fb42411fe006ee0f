package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodcart/core/cmd/api/commands"
)

// @title FoodCart API
// @version 1.0
// @description Food catalog, accounts and shopping carts

// @host localhost:3000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "foodcart",
		Short: "FoodCart API Server",
		Long:  `FoodCart serves a food catalog, user accounts and per-user shopping carts over HTTP/JSON.`,
	}
	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./foodcart.{yaml,json,toml} if present)")

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand(opts))
	rootCmd.AddCommand(commands.NewInitCommand(opts))
	rootCmd.AddCommand(commands.NewMigrateCommand(opts))
	rootCmd.AddCommand(commands.NewUserCommand(opts))
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
