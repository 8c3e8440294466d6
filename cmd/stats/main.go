// Command stats prints the reinforcement statistics of one Warfish game.
//
//	stats -game http://warfish.net/war/play/game?gid=12345
//	stats -game 12345 -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hordestats/internal/logger"
	"github.com/freeeve/hordestats/internal/service"
	"github.com/freeeve/hordestats/internal/view"
	"github.com/freeeve/hordestats/internal/warfish"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "stats:", err)
		os.Exit(1)
	}
}

// defaults are the environment settings the flags fall back to.
type defaults struct {
	WarfishURL string `env:"WARFISH_URL" envDefault:"http://warfish.net/war"`
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var def defaults
	if err := env.Parse(&def); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	var (
		game     string
		baseURL  string
		jsonOut  bool
		verbose  bool
		timeout  time.Duration
		maxTries uint
	)
	fs.StringVar(&game, "game", "", "Warfish game URL or id")
	fs.StringVar(&baseURL, "warfish", def.WarfishURL, "Warfish base URL")
	fs.BoolVar(&jsonOut, "json", false, "Print the full report as JSON")
	fs.BoolVar(&verbose, "v", false, "Log Warfish calls")
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	fs.UintVar(&maxTries, "tries", 3, "Attempts per Warfish call")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if game == "" && fs.NArg() > 0 {
		game = fs.Arg(0)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level})

	gameID, err := warfish.ParseGameID(game)
	if err != nil {
		return fmt.Errorf("%w in %q", err, game)
	}

	client := warfish.NewClient(baseURL, warfish.Options{Timeout: timeout, MaxTries: maxTries})
	report, err := service.NewStatsService(warfish.NewLoader(client), nil).Report(ctx, gameID)
	if err != nil {
		log.Debug().Err(err).Str("gameId", gameID).Msg("Report failed")
		return errors.New(service.UserMessage(err))
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	data := view.BuildStatsData(report, warfish.Links{BaseURL: baseURL})
	fmt.Fprintf(out, "Game %s (%s), %d units on the board\n\n", data.GameID, data.GameURL, data.TotalUnits)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PLAYER\tUNITS\tTERRITORIES\tCONTINENTS\tNEXT TURN\t")
	for _, p := range data.Players {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", p.Name, p.TotalUnits, p.Territories, p.Continents, p.NextTurnUnits)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, p := range data.Players {
		if len(p.Bonuses) == 0 {
			continue
		}
		names := make([]string, 0, len(p.Bonuses))
		for _, b := range p.Bonuses {
			names = append(names, fmt.Sprintf("%s +%d", b.Name, b.BonusUnits))
		}
		fmt.Fprintf(out, "\n%s: %s\n", p.Name, strings.Join(names, ", "))
	}
	return nil
}
