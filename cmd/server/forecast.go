package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/api"
	"github.com/phrazzld/scry-scheduler/internal/domain"
	"github.com/phrazzld/scry-scheduler/internal/domain/fsrs"
	"github.com/phrazzld/scry-scheduler/internal/forecast"
	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/spf13/cobra"
)

type forecastFlags struct {
	cardsPath     string
	days          int
	seed          uint64
	profile       string
	retention     float64
	referenceDate string
}

func newForecastCmd(opts *rootOptions) *cobra.Command {
	flags := &forecastFlags{}

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project the daily review load of a card snapshot",
		Long: `forecast reads a JSON array of cards and prints the number of reviews
expected on each of the following days. The same seed always yields the
same forecast.

Each card has the form:
  {"state": "review", "stability": 12.5, "difficulty": 5.1,
   "due": "2025-01-10", "last_reviewed": "2024-12-29"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			// Stdout carries the result, so logs go to stderr.
			level, _ := logger.ParseLevel(cfg.Server.LogLevel)
			log := logger.New(cmd.ErrOrStderr(), level)

			days := flags.days
			if days == 0 {
				days = cfg.Forecast.DefaultDays
			}
			if days < 0 || days > cfg.Forecast.MaxDays {
				return fmt.Errorf("--days must be between 1 and %d", cfg.Forecast.MaxDays)
			}

			profile := cfg.Scheduler.DefaultProfile
			if flags.profile != "" {
				profile = flags.profile
			}
			retention := cfg.Scheduler.DefaultRequestRetention
			if flags.retention != 0 {
				retention = flags.retention
			}
			fsrsCfg, err := fsrs.NewConfig(domain.ProfileName(profile), retention)
			if err != nil {
				return err
			}

			loc, err := cfg.Scheduler.Location()
			if err != nil {
				return err
			}
			reference := time.Now().In(loc)
			reference = time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, loc)
			if flags.referenceDate != "" {
				reference, err = time.ParseInLocation(forecast.DateLayout, flags.referenceDate, loc)
				if err != nil {
					return fmt.Errorf("--reference-date must be YYYY-MM-DD: %w", err)
				}
			}

			seed := flags.seed
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}

			cards, err := readCards(cmd.InOrStdin(), flags.cardsPath)
			if err != nil {
				return err
			}

			w := cfg.Forecast.RatingWeights
			loads, err := forecast.Run(cmd.Context(), cards, days, reference, rand.New(rand.NewPCG(seed, seed)),
				forecast.Options{
					Config: fsrsCfg,
					Distribution: forecast.RatingDistribution{
						Again: w.Again,
						Hard:  w.Hard,
						Good:  w.Good,
						Easy:  w.Easy,
					},
					Logger: log,
				})
			if err != nil {
				return err
			}

			log.Debug("forecast computed",
				slog.Int("cards", len(cards)),
				slog.Int("days", days),
				slog.Uint64("seed", seed))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.ForecastResponse{
				ReferenceDate: reference.Format(forecast.DateLayout),
				Seed:          seed,
				Days:          loads,
			})
		},
	}

	cmd.Flags().StringVar(&flags.cardsPath, "cards", "", "JSON file with the card snapshot, or - for stdin")
	cmd.Flags().IntVar(&flags.days, "days", 0, "number of days to simulate (default: forecast.default_days)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed (default: random, printed in the output)")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "weight profile: standard or intensive")
	cmd.Flags().Float64Var(&flags.retention, "retention", 0, "requested retention in (0.5, 0.995)")
	cmd.Flags().StringVar(&flags.referenceDate, "reference-date", "", "first simulated day, YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("cards")

	return cmd
}

// readCards decodes a JSON array of cards from path, or from stdin when path
// is "-".
func readCards(stdin io.Reader, path string) ([]forecast.Card, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cards file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var cards []forecast.Card
	if err := json.NewDecoder(r).Decode(&cards); err != nil {
		return nil, fmt.Errorf("failed to decode cards: %w", err)
	}
	return cards, nil
}
