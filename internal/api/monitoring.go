// Package api поднимает служебный HTTP-сервер рядом с ботом:
// метрики Prometheus и проверка живости базы.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mcstatbot/internal/config"
	"mcstatbot/internal/database"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type MonitoringServer struct {
	cfg    config.MonitoringConfig
	db     *database.DB
	server *http.Server
	logger *zerolog.Logger
}

func NewMonitoringServer(cfg config.MonitoringConfig, db *database.DB, logger *zerolog.Logger) *MonitoringServer {
	srv := &MonitoringServer{cfg: cfg, db: db, logger: logger}

	// Размер аудитории считается по требованию, прямо из базы
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mcstatbot_users_total",
		Help: "Number of registered bot users",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		count, err := db.CountUsers(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Не удалось посчитать пользователей для метрики")
			return 0
		}
		return float64(count)
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", srv.handleHealthz)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *MonitoringServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("monitoring server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("Monitoring server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MonitoringServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *MonitoringServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
