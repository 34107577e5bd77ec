package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dinger/internal/config"
	"dinger/internal/logging"
	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// Request and response shapes for the match API.
type playPayload struct {
	Description string `json:"description"`
	Event       string `json:"event"`
	BatterName  string `json:"batter_name"`
	PitcherName string `json:"pitcher_name"`
	AtBatIndex  int    `json:"at_bat_index"`
	PlayIndex   int    `json:"play_index"`
	Timestamp   string `json:"timestamp"`
}

type matchRequest struct {
	GamePK int64       `json:"game_pk"`
	Play   playPayload `json:"play"`
}

type videoPayload struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	DurationSeconds int    `json:"duration_seconds"`
}

type factorPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type matchResponse struct {
	Matched   bool            `json:"matched"`
	Video     *videoPayload   `json:"video,omitempty"`
	Score     float64         `json:"score"`
	Category  string          `json:"category"`
	Strategy  string          `json:"strategy,omitempty"`
	Breakdown []factorPayload `json:"breakdown,omitempty"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/match", srv.withRequestID(srv.handleMatch))
	mux.HandleFunc("/api/v1/games/", srv.withRequestID(srv.handleGameReset))
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil || s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// withRequestID tags each request with a correlation id for log tracing.
func (s *apiServer) withRequestID(next func(http.ResponseWriter, *http.Request, *slog.Logger)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		logger := s.logger.With(logging.String(logging.FieldCorrelationID, requestID))
		next(w, r, logger)
	}
}

func (s *apiServer) handleMatch(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GamePK <= 0 {
		s.writeError(w, http.StatusBadRequest, "game_pk must be positive")
		return
	}

	play := scoring.Play{
		Description: req.Play.Description,
		Event:       req.Play.Event,
		BatterName:  req.Play.BatterName,
		PitcherName: req.Play.PitcherName,
		AtBatIndex:  req.Play.AtBatIndex,
		PlayIndex:   req.Play.PlayIndex,
	}
	if ts := strings.TrimSpace(req.Play.Timestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "timestamp must be RFC 3339")
			return
		}
		play.Timestamp = parsed
	}

	logger.Info("match request",
		logging.Int64(logging.FieldGamePK, req.GamePK),
		logging.Int("at_bat_index", play.AtBatIndex),
		logging.Int("play_index", play.PlayIndex))

	result := s.daemon.matcher.FindVideoForPlay(r.Context(), req.GamePK, play)
	s.writeJSON(w, http.StatusOK, toMatchResponse(result))
}

func (s *apiServer) handleGameReset(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/games/")
	gamePKStr, action, found := strings.Cut(rest, "/")
	if !found || action != "reset" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	gamePK, err := strconv.ParseInt(gamePKStr, 10, 64)
	if err != nil || gamePK <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid game pk")
		return
	}

	s.daemon.matcher.ResetGame(gamePK)
	logger.Info("game reset", logging.Int64(logging.FieldGamePK, gamePK))
	if err := s.daemon.notifier.NotifyGameReset(r.Context(), gamePK); err != nil {
		logger.Warn("reset notification failed", logging.Error(err))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"reset": true, "game_pk": gamePK})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toMatchResponse(result scoring.MatchResult) matchResponse {
	resp := matchResponse{
		Matched:  result.Matched(),
		Score:    result.Score,
		Category: result.Category.String(),
		Strategy: result.Strategy,
	}
	for _, factor := range result.Breakdown {
		resp.Breakdown = append(resp.Breakdown, factorPayload{Name: factor.Name, Value: factor.Value})
	}
	if result.Matched() {
		video := &videoPayload{
			ID:              result.Video.ID,
			Title:           result.Video.Title,
			DurationSeconds: int(result.Video.Duration.Seconds()),
		}
		if playback, ok := statsapi.SelectPlayback(result.Video.Playbacks); ok {
			video.URL = playback.URL
		}
		resp.Video = video
	}
	return resp
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
