package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"TickPull/internal/di"
	"TickPull/internal/usecase"
	"TickPull/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	backfill := flag.String("backfill", "", "run a one-shot historical backfill for these comma-separated symbols and exit")
	fromStr := flag.String("from", "", "backfill window start (RFC3339)")
	toStr := flag.String("to", "", "backfill window end (RFC3339)")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s", cfg.Environment, cfg.Backend.Type)

	if *backfill != "" {
		runBackfill(cfg, strings.Split(*backfill, ","), *fromStr, *toStr)
		return
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s\n", cfg.ClickHouse.Database)
	log.Printf("kafka: connected brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

// runBackfill loads historical ticks from the vendor API into ClickHouse.
func runBackfill(cfg *config.Config, symbols []string, fromStr, toStr string) {
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		log.Fatalf("invalid -from: %v", err)
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		log.Fatalf("invalid -to: %v", err)
	}

	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer chClient.Close()

	storage := di.ProvideTickStorage(chClient, cfg)
	provider := di.ProvideHistoryProvider(cfg)
	uc := usecase.NewBackfillUseCase(provider, storage)

	res, err := uc.Run(context.Background(), usecase.BackfillParams{
		Symbols: symbols,
		From:    from,
		To:      to,
	})
	if err != nil {
		log.Fatalf("backfill failed: %v", err)
	}
	for sym, n := range res.Loaded {
		log.Printf("backfill %s: %d ticks", sym, n)
	}
}
