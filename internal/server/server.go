// Package server exposes the HTTP surface: liveness, payment result
// pages and the gateway webhooks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"blesk-bot/internal/platega"
	"blesk-bot/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reconciler consumes normalized paid events.
type Reconciler interface {
	HandlePaymentConfirmed(ctx context.Context, evt platega.WebhookEvent) error
}

type Server struct {
	reconciler Reconciler
	verifier   platega.Verifier
	logger     *zap.Logger
	httpServer *http.Server
}

func New(addr string, reconciler Reconciler, verifier platega.Verifier, logger *zap.Logger) *Server {
	s := &Server{
		reconciler: reconciler,
		verifier:   verifier,
		logger:     logger,
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleLiveness)
	r.Get("/success", s.handleSuccessPage)
	r.Get("/fail", s.handleFailPage)
	r.Post("/webhook/payment", s.handlePaymentWebhook)
	r.Get("/webhook/platega", s.handlePaymentWebhook)
	r.Post("/webhook/platega", s.handlePaymentWebhook)

	return r
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening",
		zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePaymentWebhook ingests a payment status notification. Any
// event that decodes but cannot be acted upon is still acknowledged
// with 200: the gateway retries on non-2xx and an unresolved payment
// is an operator problem, not a delivery problem.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("Failed to read webhook body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch s.verifier.Verify(body, r.Header.Get("X-Signature")) {
	case platega.Rejected:
		s.logger.Warn("Webhook signature rejected")
		w.WriteHeader(http.StatusForbidden)
		return
	case platega.Unverified:
		// Known gap: events accepted without authentication.
		s.logger.Warn("Webhook accepted without signature verification")
	case platega.Verified:
	}

	var evt platega.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		s.logger.Error("Failed to decode webhook", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !platega.IsPaid(evt.Status) {
		s.logger.Info("Ignoring non-paid webhook status",
			zap.String("status", evt.Status),
			zap.String("transaction_id", evt.Transaction()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ignored"))
		return
	}

	if err := s.reconciler.HandlePaymentConfirmed(ctx, evt); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Logged and alerted downstream; acknowledge anyway.
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("unresolved"))
			return
		}
		s.logger.Error("Failed to process payment webhook",
			zap.String("transaction_id", evt.Transaction()),
			zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
