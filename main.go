package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"lotto/cmd"
	"lotto/config"
	"lotto/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Check for draw administration subcommands
	if len(os.Args) > 1 && os.Args[1] == "draw" {
		if len(os.Args) < 3 {
			log.Fatal("usage: lotto draw [trigger|create-next]")
		}
		if err := cmd.RunDrawCommand(ctx, os.Args[2]); err != nil {
			log.Fatal("Draw command error: ", err)
		}
		return
	}

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: lotto migrate [up|down|status] [args...]")
	}

	cfg := config.Get()
	cmd.ConfigureLogging(cfg)
	databaseURL := cfg.GetDatabaseURL()

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := 1
		if len(os.Args) > 3 {
			n, err := strconv.Atoi(os.Args[3])
			if err != nil {
				return fmt.Errorf("invalid steps value %q: %w", os.Args[3], err)
			}
			steps = n
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		status, err := database.GetMigrationStatus(databaseURL)
		if err != nil {
			return err
		}
		if !status.Applied {
			log.Info("No migrations applied")
			return nil
		}
		log.WithFields(log.Fields{
			"version": status.Version,
			"dirty":   status.Dirty,
		}).Info("Migration status")
		return nil
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
