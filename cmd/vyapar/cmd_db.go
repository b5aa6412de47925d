package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/database/seeders"
	"github.com/shashiranjanraj/vyapar/pkg/mongodb"
)

func connectDB(ctx context.Context) (*mongodb.Handle, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return mongodb.Connect(ctx, config.MongoURI(), config.MongoDB())
}

// vyapar db:ping verifies the MongoDB connection.
var dbPingCmd = &cobra.Command{
	Use:   "db:ping",
	Short: "Verify the MongoDB connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		db, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close(context.Background()) //nolint:errcheck

		fmt.Printf("OK: %s/%s reachable\n", config.MongoURI(), config.MongoDB())
		return nil
	},
}

// vyapar seed runs all registered database seeders.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all registered database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close(context.Background()) //nolint:errcheck

		repo := repositories.NewUserRepository(db.Database())
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}

		svc := services.NewUserService(repo, nil)
		return seeders.Run(ctx, svc)
	},
}
