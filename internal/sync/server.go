package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/wcap/internal/core/item"
)

// Server exposes the sync surface over HTTP: sync-code exchange and
// bearer-authenticated item pull/push/delete, keyed by user ID.
type Server struct {
	docs   DocStore
	codes  *CodeRegistry
	tokens *TokenSigner
	log    zerolog.Logger

	httpServer *http.Server
	listener   net.Listener
	addr       string
}

// NewServer creates a sync server bound to the given address.
func NewServer(addr string, docs DocStore, codes *CodeRegistry, tokens *TokenSigner, log zerolog.Logger) *Server {
	s := &Server{
		docs:   docs,
		codes:  codes,
		tokens: tokens,
		log:    log.With().Str("cmp", "sync-server").Logger(),
		addr:   addr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/connect", s.handleConnect)
	mux.HandleFunc("GET /api/sync", s.withAuth(s.handlePull))
	mux.HandleFunc("POST /api/sync", s.withAuth(s.handlePush))
	mux.HandleFunc("DELETE /api/sync", s.withAuth(s.handleDelete))

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// IssueCode creates a sync code linking the given user to this server's
// document store.
func (s *Server) IssueCode(ctx context.Context, userID string) (string, error) {
	return s.codes.Issue(ctx, userID)
}

// Handler returns the HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("starting sync server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("sync server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down sync server")
	return s.httpServer.Shutdown(ctx)
}

type connectRequest struct {
	SyncCode string `json:"syncCode"`
}

type connectResponse struct {
	Token string `json:"token"`
}

type itemsResponse struct {
	Items []item.Item `json:"items"`
}

type pushRequest struct {
	Items []item.Item `json:"items"`
}

type deleteRequest struct {
	ItemID string `json:"itemId"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SyncCode == "" {
		writeError(w, http.StatusBadRequest, "Sync code is required")
		return
	}

	userID, err := s.codes.Exchange(r.Context(), req.SyncCode)
	if err != nil {
		if errors.Is(err, ErrCodeInvalid) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired sync code")
			return
		}
		s.log.Error().Err(err).Msg("sync code exchange failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := s.tokens.Issue(userID)
	if err != nil {
		s.log.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.log.Info().Str("user", userID).Msg("sync code exchanged")
	writeJSON(w, http.StatusOK, connectResponse{Token: token})
}

// withAuth verifies the bearer token and passes the user ID through the
// request context. Auth failures are explicit 401s; nothing local is
// touched.
func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next(w, r, userID)
	}
}

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request, userID string) {
	docs, err := s.docs.List(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("list items failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	items := make([]item.Item, 0, len(docs))
	for _, doc := range docs {
		var it item.Item
		if err := json.Unmarshal(doc.Data, &it); err != nil {
			s.log.Warn().Str("doc", doc.ID).Msg("skipping undecodable item document")
			continue
		}
		items = append(items, it)
	}

	writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request, userID string) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Items == nil {
		writeError(w, http.StatusBadRequest, "Invalid items format")
		return
	}

	docs := make([]Document, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ID == "" {
			writeError(w, http.StatusBadRequest, "Item ID is required")
			return
		}
		data, err := json.Marshal(it)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid items format")
			return
		}
		docs = append(docs, Document{Parent: userID, ID: it.ID, Data: data})
	}

	if err := s.docs.BatchWrite(r.Context(), docs); err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("batch write failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.log.Debug().Str("user", userID).Int("count", len(docs)).Msg("items pushed")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, userID string) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	if err := s.docs.Delete(r.Context(), userID, req.ItemID); err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("delete item failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
