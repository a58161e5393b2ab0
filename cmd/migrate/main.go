package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crm/internal/config"
	"crm/internal/logging"
	"crm/internal/store/pg"
)

func main() {
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: migrate [up|down|status|redo|version]\n")
	}
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg := config.LoadMigrate()
	logging.Init("migrate", cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pg.OpenSQL(cfg.DBDSN)
	if err != nil {
		slog.Error("migrate db open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db, command); err != nil {
		slog.Error("migrate failed", "command", command, "err", err)
		os.Exit(1)
	}
	slog.Info("migrate done", "command", command)
}
