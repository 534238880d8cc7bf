package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/make-ready-tech/oppintel/internal/model"
	"github.com/make-ready-tech/oppintel/internal/pipeline"
	"github.com/make-ready-tech/oppintel/internal/store"
)

var servePort int

// topicsRunner and newsRunner are what the API needs from the pipelines;
// tests substitute fakes.
type topicsRunner interface {
	Run(ctx context.Context, params pipeline.TopicsParams) (*model.RunSummary, error)
}

type newsRunner interface {
	Run(ctx context.Context) (*model.RunSummary, error)
}

// apiServer exposes the operator trigger surface: start a scraper, inspect
// run history. Runs execute asynchronously against the server's base
// context, so they outlive the triggering request but stop on shutdown.
type apiServer struct {
	base   context.Context
	store  store.Store
	topics topicsRunner
	news   newsRunner
	busy   sync.Map
}

func (s *apiServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/scrapers/{name}/run", s.handleTrigger)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/{id}", s.handleGetRun)

	return r
}

type triggerRequest struct {
	Mode string `json:"mode,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (s *apiServer) handleTrigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req triggerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	var start func(context.Context) (*model.RunSummary, error)
	switch name {
	case "topics", pipeline.SourceTopics:
		params := pipeline.TopicsParams{Mode: model.RunMode(req.Mode)}
		var err error
		if params.From, err = parseDateFlag(req.From); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if params.To, err = parseDateFlag(req.To); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		start = func(ctx context.Context) (*model.RunSummary, error) {
			return s.topics.Run(ctx, params)
		}
	case "news", pipeline.SourceNews:
		start = s.news.Run
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown scraper %q", name)})
		return
	}

	// One run per scraper at a time; these sources are rate-limited and
	// overlapping runs would fight over the same session.
	if _, loaded := s.busy.LoadOrStore(name, true); loaded {
		writeJSON(w, http.StatusConflict, map[string]string{"error": fmt.Sprintf("scraper %q is already running", name)})
		return
	}

	go func() {
		defer s.busy.Delete(name)
		summary, err := start(s.base)
		if err != nil {
			zap.L().Error("triggered run failed", zap.String("scraper", name), zap.Error(err))
			return
		}
		zap.L().Info("triggered run finished",
			zap.String("scraper", name),
			zap.Int("created", summary.Created),
			zap.Int("updated", summary.Updated),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "scraper": name})
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Scraper: q.Get("scraper"),
		Status:  model.RunStatus(q.Get("status")),
	}
	if limit := q.Get("limit"); limit != "" {
		fmt.Sscanf(limit, "%d", &filter.Limit) //nolint:errcheck
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the operator trigger API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		topics, err := newTopicsPipeline(st)
		if err != nil {
			return err
		}

		api := &apiServer{
			base:   ctx,
			store:  st,
			topics: topics,
			news:   newNewsPipeline(st),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
