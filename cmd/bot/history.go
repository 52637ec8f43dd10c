package main

import (
	"context"
	"fmt"
	"time"

	"homework-bot/internal/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyCmd = &cobra.Command{
	Use:   "history <homework_name>",
	Short: "Show journaled notifications for a homework",
	Long: `Print the notifications recorded in the MongoDB journal for one homework,
newest first. Requires MONGODB_URI (or mongodb_uri in the settings file).`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int64P("limit", "n", 20, "maximum number of entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, l := loadConfig(cmd)
	defer func() { _ = l.Sync() }()

	if cfg.MongoDBURI == "" {
		return fmt.Errorf("journal is disabled: MONGODB_URI is not set")
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	defer func() { _ = database.Close(ctx) }()

	limit, _ := cmd.Flags().GetInt64("limit")
	entries, err := database.History(ctx, args[0], limit)
	if err != nil {
		l.Error("failed to read journal", zap.Error(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no notifications recorded for %s\n", args[0])
		return nil
	}

	for _, e := range entries {
		delivered := "sent"
		if !e.Delivered {
			delivered = "failed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s %-6s %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Verdict, delivered, e.Text)
	}

	return nil
}
