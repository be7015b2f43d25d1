package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/commentsapp/backend/internal/config"
	"github.com/commentsapp/backend/internal/database"
	"github.com/commentsapp/backend/internal/logger"
	"github.com/commentsapp/backend/internal/seed"
)

var rootCmd = &cobra.Command{
	Use:   "comments",
	Short: "Admin CLI for the comments service",
	Long: `Administrative tasks for the comments service: run schema
migrations and seed development data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "no .env file found, using system environment")
		}
		if err := logger.Initialize("info", ""); err != nil {
			return err
		}
		cfg := config.Load()
		return database.Initialize(cfg.DatabaseURL)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = database.Close()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("migrations complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the development database with users and comment threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		seeder := seed.NewSeeder(database.DB)
		if clean, _ := cmd.Flags().GetBool("clean"); clean {
			if err := seeder.Clean(); err != nil {
				return fmt.Errorf("clean failed: %w", err)
			}
			fmt.Println("existing data removed")
		}
		if err := seeder.SeedDev(context.Background()); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		fmt.Println("seed complete")
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("clean", false, "Delete existing comments and users first")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
