// Package api serves registries over a read-only HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/conduit-lang/enumbler/internal/catalog"
	"github.com/conduit-lang/enumbler/internal/enumble"
)

// Server routes lookup requests to the catalog's registries
type Server struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	mux     chi.Router
}

// NewServer creates a server for cat. A nil logger disables request logs.
func NewServer(cat *catalog.Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{catalog: cat, logger: logger, mux: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Use(middleware.RequestID)
	s.mux.Use(requestLogger(s.logger))
	s.mux.Use(middleware.Recoverer)

	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Route("/models", func(r chi.Router) {
		r.Get("/", s.handleListModels)
		r.Route("/{model}", func(r chi.Router) {
			r.Get("/", s.handleShowModel)
			r.Get("/entries", s.handleListEntries)
			r.Get("/entries/{key}", s.handleShowEntry)
			r.Get("/resolve", s.handleResolve)
		})
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"status": "ok", "models": s.catalog.Len()})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	regs := s.catalog.All()
	out := make([]ModelResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, newModelResponse(reg, false))
	}
	renderJSON(w, http.StatusOK, out)
}

func (s *Server) handleShowModel(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registry(w, r)
	if !ok {
		return
	}
	renderJSON(w, http.StatusOK, newModelResponse(reg, true))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registry(w, r)
	if !ok {
		return
	}
	renderJSON(w, http.StatusOK, newEntryResponses(reg.All()))
}

func (s *Server) handleShowEntry(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registry(w, r)
	if !ok {
		return
	}
	resolver, err := resolverFor(reg, r)
	if err != nil {
		renderError(w, http.StatusBadRequest, err, "invalid_parameter")
		return
	}

	entry, err := resolver.FindOneStrict(chi.URLParam(r, "key"))
	if err != nil {
		renderError(w, http.StatusNotFound, err, "not_resolved")
		return
	}
	renderJSON(w, http.StatusOK, newEntryResponse(entry))
}

// handleResolve resolves every distinct ?key= value. Entries lists the
// resolved ones; IDs keeps a slot per key. With strict=true the first
// unresolved key fails the request.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	reg, ok := s.registry(w, r)
	if !ok {
		return
	}
	resolver, err := resolverFor(reg, r)
	if err != nil {
		renderError(w, http.StatusBadRequest, err, "invalid_parameter")
		return
	}
	strict, err := boolParam(r, "strict")
	if err != nil {
		renderError(w, http.StatusBadRequest, err, "invalid_parameter")
		return
	}

	raw := r.URL.Query()["key"]
	keys := make([]any, len(raw))
	for i, k := range raw {
		keys[i] = k
	}

	resp := ResolveResponse{Model: reg.Model().Name}
	if strict {
		entries, err := resolver.FindStrict(keys...)
		if err != nil {
			renderError(w, http.StatusNotFound, err, "not_resolved")
			return
		}
		resp.Entries = newEntryResponses(entries)
	} else {
		resp.Entries = newEntryResponses(resolved(resolver.Find(keys...)))
	}
	resp.IDs = resolver.IDsFrom(keys...)
	if resp.IDs == nil {
		resp.IDs = []*int{}
	}
	renderJSON(w, http.StatusOK, resp)
}

// resolved drops the slots that did not resolve
func resolved(found []*enumble.Entry) []*enumble.Entry {
	out := make([]*enumble.Entry, 0, len(found))
	for _, e := range found {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// registry looks up the {model} parameter, rendering 404 when unknown
func (s *Server) registry(w http.ResponseWriter, r *http.Request) (*enumble.Registry, bool) {
	reg, err := s.catalog.Get(chi.URLParam(r, "model"))
	if err != nil {
		renderError(w, http.StatusNotFound, err, "unknown_model")
		return nil, false
	}
	return reg, true
}

func resolverFor(reg *enumble.Registry, r *http.Request) (*enumble.Resolver, error) {
	caseSensitive, err := boolParam(r, "case_sensitive")
	if err != nil {
		return nil, err
	}
	return reg.Resolver().CaseSensitive(caseSensitive), nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got: %s", name, v)
	}
	return b, nil
}
