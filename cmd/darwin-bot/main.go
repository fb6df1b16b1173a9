package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/evoquant/darwin-bot/internal/config"
	"github.com/evoquant/darwin-bot/internal/engine"
	"github.com/evoquant/darwin-bot/internal/logger"
	"github.com/evoquant/darwin-bot/internal/monitoring"
	"github.com/evoquant/darwin-bot/pkg/data"
	"github.com/evoquant/darwin-bot/pkg/reporting"
	"github.com/evoquant/darwin-bot/pkg/types"
)

func main() {
	var (
		symbol    = flag.String("symbol", "BTCUSDT", "Trading symbol")
		dataFile  = flag.String("data", "", "CSV file with base-timeframe OHLCV candles")
		envFile   = flag.String("env", ".env", "Environment file path (default: .env)")
		logDir    = flag.String("logs", "logs", "Directory for session log files")
		outputDir = flag.String("output", "results", "Directory for the session report workbook")
		window    = flag.Int("window", 500, "Base-timeframe window length per cycle")
		seed      = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		interval  = flag.Duration("interval", 0, "Wall-clock pause between cycles (0 = replay as fast as possible)")
	)
	flag.Parse()

	if *dataFile == "" {
		log.Fatal("Please specify a candle CSV with the -data flag")
	}

	// Load environment variables from .env file
	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	fmt.Println("🧬 Darwin Bot Starting...")

	cfg := config.Load()

	sessionLog, err := logger.NewLogger(*symbol, *logDir)
	if err != nil {
		log.Fatalf("Failed to create session logger: %v", err)
	}
	defer sessionLog.Close()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))
	sessionLog.Info("session seed: %d", rngSeed)

	candles, err := data.LoadCSV(*dataFile)
	if err != nil {
		log.Fatalf("Failed to load candle data: %v", err)
	}
	if len(candles) < *window {
		log.Fatalf("Need at least %d candles, got %d", *window, len(candles))
	}
	fmt.Printf("📊 Loaded %d candles from %s\n", len(candles), *dataFile)

	eng := engine.New(*symbol, cfg, sessionLog, rng)

	// Prometheus metrics endpoint
	go func() {
		http.Handle("/metrics", monitoring.NewMetricsHandler())
		addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
		if err := http.ListenAndServe(addr, nil); err != nil {
			sessionLog.LogError("METRICS", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Replay the candle history one cycle per base candle, stopping early
	// on shutdown signal.
	cycles := 0
replay:
	for end := *window; end <= len(candles); end++ {
		select {
		case sig := <-sigChan:
			fmt.Printf("\n🛑 Received %v, shutting down...\n", sig)
			break replay
		default:
		}

		base := candles[end-*window : end]
		windows := map[string][]types.OHLCV{
			types.TimeframeBase:   base,
			types.TimeframeHigher: data.Resample(base, 4),
			types.TimeframeMacro:  data.Resample(base, 16),
		}

		eng.Cycle(windows)
		cycles++

		if cycles%100 == 0 {
			eng.PrintLastDecision()
			eng.PrintStatus()
		}

		if *interval > 0 {
			time.Sleep(*interval)
		}
	}

	fmt.Printf("\n✅ Replay complete: %d cycles\n", cycles)
	eng.PrintLastDecision()
	eng.PrintStatus()

	// Session report
	pop := eng.Population()
	members := pop.Members()
	scores := make(map[string]float64, len(members))
	for _, g := range members {
		scores[g.Name] = pop.Score(g.Name)
	}
	reportPath := reporting.DefaultWorkbookPath(*outputDir, *symbol)
	if err := eng.ExcelReporter().WriteWorkbook(reportPath, members, scores); err != nil {
		log.Printf("Warning: Failed to write session report: %v", err)
	} else {
		fmt.Printf("📁 Session report saved to: %s\n", reportPath)
	}
}
