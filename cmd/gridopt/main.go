// gridopt computes risk-bounded grid bot parameters for a crypto asset:
// GBM price bounds, fee-aware grid spacing and line count, a stop-loss and
// liquidation floor, and a constrained-Kelly capital allocation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/app"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/cfg"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/common"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange/binance"
	"github.com/genes3e7/Closed-Loop-Leverage-Grid-Bot-Optimizer/internal/exchange/sniffer"
)

func main() {
	var (
		exchangeID = flag.String("exchange", common.DefaultExchange, "Exchange to sniff fees from (binance, bybit, okx; others fall back to manual fee entry)")
		days       = flag.Int("days", common.DefaultHorizonDays, "Duration to run the bot in days")
		portfolio  = flag.Float64("portfolio", 0, "Total portfolio size; omit to compute the minimum required capital")
		neutral    = flag.Bool("neutral", false, "Force a neutral grid (ignore historical drift)")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] TICKER\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "TICKER is the asset symbol, e.g. BTC or SOL/USDT.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Optional .env for config overrides; absence is not an error.
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	a := app.New(
		settings,
		binance.NewHistoryClient(settings.RESTTimeout),
		sniffer.New(settings.RESTTimeout),
		app.NewTerminalFeeResolver(os.Stdin, os.Stdout),
		os.Stdout,
	)

	opts := app.Options{
		Ticker:    flag.Arg(0),
		Exchange:  *exchangeID,
		Days:      *days,
		Portfolio: *portfolio,
		Neutral:   *neutral,
	}
	if err := a.Run(context.Background(), opts); err != nil {
		log.Error().Err(err).Msg("analysis failed")
		os.Exit(1)
	}
}
