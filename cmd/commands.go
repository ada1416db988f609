package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agromarket/internal/app"
	"agromarket/internal/auth"
	"agromarket/internal/models"
	"agromarket/internal/repository/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(cmd.Context(), app.WithConfig(cfg), app.WithLogger(logger))
	if err != nil {
		return err
	}
	return a.Run()
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or revert the postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd, (*postgres.Store).MigrateUp)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd, (*postgres.Store).MigrateDown)
	},
}

func migrate(cmd *cobra.Command, run func(*postgres.Store) error) error {
	pgCfg := cfg.PostgresConfig
	pgCfg.AutoMigrateUp = false
	pgCfg.AutoMigrateDown = false

	store, err := postgres.NewStore(cmd.Context(), nil, &pgCfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err = run(store); err != nil {
		return err
	}
	logger.Info("migration finished", zap.String("direction", cmd.Name()))
	return nil
}

var (
	tokenId   string
	tokenRole string
	tokenName string
	tokenCode string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development token for a user",
	Long: `Issues a signed bearer token for the given user. There is no login flow;
the token is trusted as is by the API.

Demo users (user-1 .. user-4) only need --id.

Example:
  agromarket token --id user-2
  agromarket token --id buyer-7 --role buyer --name "Fresh Foods"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, ok := app.DemoUser(tokenId)
		if !ok {
			actor = models.Actor{ID: tokenId}
		}
		if tokenRole != "" {
			actor.Role = models.Role(tokenRole)
		}
		if tokenName != "" {
			actor.Name = tokenName
		}
		if tokenCode != "" {
			actor.Code = tokenCode
		}

		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.TokenTTL
		}

		token, err := auth.NewIssuer(cfg.JWTSecret).Issue(actor, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	tokenCmd.Flags().StringVar(&tokenId, "id", "", "user id (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", fmt.Sprintf("user role: %s or %s", models.RoleBuyer, models.RoleSeller))
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "display name")
	tokenCmd.Flags().StringVar(&tokenCode, "code", "", "public seller code")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("id")
}
