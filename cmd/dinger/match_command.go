package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dinger/internal/history"
	"dinger/internal/logging"
	"dinger/internal/matchcache"
	"dinger/internal/matcher"
	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

type matchOutput struct {
	Matched   bool             `json:"matched"`
	VideoID   string           `json:"video_id,omitempty"`
	Title     string           `json:"title,omitempty"`
	URL       string           `json:"url,omitempty"`
	Score     float64          `json:"score"`
	Category  string           `json:"category"`
	Strategy  string           `json:"strategy,omitempty"`
	Breakdown []scoring.Factor `json:"breakdown,omitempty"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		gamePK      int64
		description string
		event       string
		batter      string
		timestamp   string
		atBat       int
		playIndex   int
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a play description to a highlight clip",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if gamePK <= 0 {
				return errors.New("--game is required and must be positive")
			}
			if strings.TrimSpace(description) == "" {
				return errors.New("--description is required")
			}

			logger, err := logging.New(logging.Options{
				Level:  "warn",
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			client, err := statsapi.New(cfg.StatsAPI.BaseURL,
				statsapi.WithLogger(logger),
				statsapi.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.StatsAPI.TimeoutSeconds) * time.Second}),
				statsapi.WithMinInterval(time.Duration(cfg.StatsAPI.MinIntervalMillis)*time.Millisecond),
				statsapi.WithRetry(cfg.StatsAPI.MaxAttempts,
					time.Duration(cfg.StatsAPI.RetryBaseMillis)*time.Millisecond,
					time.Duration(cfg.StatsAPI.RetryMaxMillis)*time.Millisecond))
			if err != nil {
				return err
			}

			opts := []matcher.Option{
				matcher.WithLogger(logger),
				matcher.WithPolicy(matcher.Policy{
					MinScore:        cfg.Matcher.MinScore,
					RelaxedMinScore: cfg.Matcher.RelaxedMinScore,
					TemporalWindow:  time.Duration(cfg.Matcher.TemporalWindowSeconds) * time.Second,
				}),
			}
			if cfg.History.Enabled && cfg.History.Path != "" {
				store, err := history.Open(cfg.History.Path, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, matcher.WithRecorder(store))
			}
			m := matcher.New(client, matchcache.New(matchcache.Options{}), opts...)

			play := scoring.Play{
				Description: description,
				Event:       event,
				BatterName:  batter,
				AtBatIndex:  atBat,
				PlayIndex:   playIndex,
			}
			if ts := strings.TrimSpace(timestamp); ts != "" {
				parsed, err := time.Parse(time.RFC3339, ts)
				if err != nil {
					return fmt.Errorf("parse --timestamp: %w", err)
				}
				play.Timestamp = parsed
			}

			result := m.FindVideoForPlay(cmd.Context(), gamePK, play)
			return writeMatchResult(cmd, result, jsonOut)
		},
	}

	cmd.Flags().Int64Var(&gamePK, "game", 0, "Game identifier (gamePk)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Play description text")
	cmd.Flags().StringVar(&event, "event", "", "Play event label (e.g. Groundout)")
	cmd.Flags().StringVar(&batter, "batter", "", "Batter name")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Play timestamp (RFC 3339)")
	cmd.Flags().IntVar(&atBat, "at-bat", 0, "At-bat index within the game")
	cmd.Flags().IntVar(&playIndex, "play-index", 0, "Play index within the at-bat")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func writeMatchResult(cmd *cobra.Command, result scoring.MatchResult, jsonOut bool) error {
	output := matchOutput{
		Matched:   result.Matched(),
		Score:     result.Score,
		Category:  result.Category.String(),
		Strategy:  result.Strategy,
		Breakdown: result.Breakdown,
	}
	if result.Matched() {
		output.VideoID = result.Video.ID
		output.Title = result.Video.Title
		if playback, ok := statsapi.SelectPlayback(result.Video.Playbacks); ok {
			output.URL = playback.URL
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut || !stdoutIsTerminal() {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	if !output.Matched {
		fmt.Fprintf(out, "No match (best score %.3f, category %s)\n", output.Score, output.Category)
		return nil
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Video", "Title", "Score", "Strategy", "Category"},
		[][]string{{
			output.VideoID,
			output.Title,
			fmt.Sprintf("%.3f", output.Score),
			output.Strategy,
			output.Category,
		}},
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	if output.URL != "" {
		fmt.Fprintf(out, "Playback: %s\n", output.URL)
	}

	if len(output.Breakdown) > 0 {
		rows := make([][]string, 0, len(output.Breakdown))
		for _, factor := range output.Breakdown {
			rows = append(rows, []string{factor.Name, fmt.Sprintf("%.3f", factor.Value)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Factor", "Contribution"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
	}
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
