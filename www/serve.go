package www

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"node.town/relay/youtube"
)

type LiveStatusLookup interface {
	LiveStatus(ctx context.Context, channelID string) (youtube.Status, error)
}

// NewRouter serves the relay websocket on "/" and "/ws", plus the liveness
// check and the channel status lookup.
func NewRouter(relay http.Handler, lookup LiveStatusLookup, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if websocket.IsWebSocketUpgrade(req) {
			relay.ServeHTTP(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "relay ok")
	})

	r.Get("/ws", relay.ServeHTTP)

	r.Get("/api/youtube/status", handleYouTubeStatus(lookup, logger))

	return r
}

func handleYouTubeStatus(lookup LiveStatusLookup, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := r.URL.Query().Get("channelId")
		if channelID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "channelId is required",
			})
			return
		}

		status, err := lookup.LiveStatus(r.Context(), channelID)
		if err != nil {
			logger.Error("youtube status", "channel", channelID, "error", err)
			message := "failed to query youtube"
			if errors.Is(err, youtube.ErrMissingKey) {
				message = "youtube API key not configured"
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": message,
			})
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Serve runs handler on addr until ctx is cancelled, then gives open
// requests shutdownTimeout to finish.
func Serve(
	ctx context.Context,
	addr string,
	handler http.Handler,
	shutdownTimeout time.Duration,
	logger *log.Logger,
) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
