package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// NewServer creates and configures the HTTP server for the Moody JSON API.
// The visual UI is an external collaborator; this server only carries
// already-computed data and accepts user input on its behalf.
func NewServer(h *Handlers, bind string, port int) *http.Server {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /api/entries", h.HandleListEntries)
	mux.HandleFunc("POST /api/entries", h.HandleAddEntry)
	mux.HandleFunc("GET /api/entries/weekly", h.HandleWeeklyEntries)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/insights", h.HandleInsights)
	mux.HandleFunc("GET /api/crisis", h.HandleCrisisCheck)

	mux.HandleFunc("GET /api/routine", h.HandleGetRoutine)
	mux.HandleFunc("PUT /api/routine", h.HandlePutRoutine)
	mux.HandleFunc("GET /api/routine/today", h.HandleTodayRoutine)
	mux.HandleFunc("POST /api/routine/today/{taskID}/toggle", h.HandleToggleTask)
	mux.HandleFunc("DELETE /api/routine/today/{taskID}", h.HandleRemoveTask)

	mux.HandleFunc("GET /api/reminders", h.HandleListReminders)
	mux.HandleFunc("POST /api/reminders", h.HandleAddReminder)
	mux.HandleFunc("DELETE /api/reminders/{id}", h.HandleRemoveReminder)

	mux.HandleFunc("POST /api/chat", h.HandleChat)

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("Moody API running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
