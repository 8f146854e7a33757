package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/bitrig"
	"github.com/aretw0/bitrig/internal/logging"
	"github.com/aretw0/bitrig/internal/presentation/graph"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes stored scenes over HTTP: listing, inspection and builds.
type Server struct {
	Scenes   *session.Manager
	Options  []bitrig.Option // applied to every engine the server opens
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{
			"app":     "bitrig-http",
			"version": strings.TrimSpace(bitrig.Version),
		})
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/scenes", func(r chi.Router) {
		r.Get("/", s.listScenes)
		r.Route("/{scene}/characters", func(r chi.Router) {
			r.Get("/", s.listCharacters)
			r.Get("/{character}/modules", s.modules)
			r.Get("/{character}/graph", s.graph)
			r.Post("/{character}/build", s.build)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CharacterView is the JSON form of a character root.
type CharacterView struct {
	Name          string       `json:"name"`
	Bit           domain.BitID `json:"bit"`
	SkeletonGroup string       `json:"skeleton_group"`
	RigGroup      string       `json:"rig_group"`
}

// ModuleView is the JSON form of a module and its bits.
type ModuleView struct {
	Name     string         `json:"name"`
	Root     domain.BitID   `json:"root"`
	Priority int            `json:"priority"`
	Implicit bool           `json:"implicit,omitempty"`
	Bits     []domain.BitID `json:"bits"`
}

// BuildResponse is returned by the build endpoint.
type BuildResponse struct {
	Report *domain.BuildReport `json:"report"`
	// Errors maps failed modules to their error.
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) listScenes(w http.ResponseWriter, r *http.Request) {
	names, err := s.Scenes.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) open(ctx context.Context, scene string) (*bitrig.Engine, error) {
	return bitrig.Open(ctx, s.Scenes, scene, s.Options...)
}

func (s *Server) listCharacters(w http.ResponseWriter, r *http.Request) {
	eng, err := s.open(r.Context(), chi.URLParam(r, "scene"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	chars, err := eng.Characters()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]CharacterView, 0, len(chars))
	for _, c := range chars {
		out = append(out, CharacterView{Name: c.Name, Bit: c.Bit, SkeletonGroup: c.SkeletonGroup, RigGroup: c.RigGroup})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) modules(w http.ResponseWriter, r *http.Request) {
	eng, err := s.open(r.Context(), chi.URLParam(r, "scene"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sets, err := eng.Modules(chi.URLParam(r, "character"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]ModuleView, 0, len(sets))
	for _, m := range sets {
		out = append(out, ModuleView{Name: m.Name, Root: m.Root, Priority: m.Priority, Implicit: m.Implicit, Bits: m.Bits})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// graph renders the character's built skeleton and rig as Mermaid.
func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	eng, err := s.open(r.Context(), chi.URLParam(r, "scene"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ch, err := eng.Character(chi.URLParam(r, "character"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var roots []domain.BitID
	for _, name := range []string{ch.SkeletonGroup, ch.RigGroup} {
		if id, ok := eng.Scene().Exists(name); ok {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		http.Error(w, "character has not been built", http.StatusNotFound)
		return
	}
	out, err := graph.GenerateMermaid(eng.Scene(), roots, graph.Options{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// build builds a character and stores the result, failed modules included:
// builds are not rolled back.
func (s *Server) build(w http.ResponseWriter, r *http.Request) {
	scene, character := chi.URLParam(r, "scene"), chi.URLParam(r, "character")
	logger := s.Logger.With("scene", scene, "character", character, "request_id", middleware.GetReqID(r.Context()))

	var report *domain.BuildReport
	var buildErr error
	err := s.Scenes.Update(r.Context(), scene, func(ctx context.Context, doc *domain.SceneDocument) (*domain.SceneDocument, error) {
		eng, err := bitrig.OpenDocument(doc, s.Options...)
		if err != nil {
			return nil, err
		}
		report, buildErr = eng.Build(ctx, character)
		if report == nil {
			return nil, buildErr
		}
		return eng.Snapshot(scene)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := BuildResponse{Report: report}
	status := http.StatusOK
	if buildErr != nil {
		status = http.StatusUnprocessableEntity
		resp.Errors = make(map[string]string)
		for _, m := range report.Failed() {
			resp.Errors[m.Module] = m.Err.Error()
		}
		if len(resp.Errors) == 0 {
			resp.Errors[""] = buildErr.Error()
		}
		logger.Warn("build failed", "err", buildErr)
	} else {
		logger.Info("build stored", "created", report.Created(), "reparented", report.Reparented())
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSceneNotFound), errors.Is(err, domain.ErrNotCharacter):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoRootModule), errors.Is(err, domain.ErrBrokenLink), errors.Is(err, domain.ErrCycle):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
