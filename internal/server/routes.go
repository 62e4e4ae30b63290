package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"the-game/internal/database"
	"the-game/internal/sim"

	"github.com/sirupsen/logrus"
)

// Run statuses reported by GET /api/simulations/{id}.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// RunStatus tracks a simulation launched over HTTP.
type RunStatus struct {
	RunID   string      `json:"run_id"`
	Status  string      `json:"status"`
	Config  sim.Config  `json:"config"`
	Summary sim.Summary `json:"summary"`
	Error   string      `json:"error,omitempty"`
}

// API serves stored results and launches simulations whose events stream to the hub.
type API struct {
	db       *database.Service
	hub      *Hub
	defaults sim.Config
	logger   logrus.FieldLogger
	ctx      context.Context // cancels background runs on shutdown

	wg   sync.WaitGroup
	mu   sync.Mutex
	runs map[string]*RunStatus
}

// NewAPI creates the HTTP API. defaults fill any field a launch request omits.
func NewAPI(ctx context.Context, db *database.Service, hub *Hub, defaults sim.Config, logger logrus.FieldLogger) *API {
	return &API{
		db:       db,
		hub:      hub,
		defaults: defaults,
		logger:   logger,
		ctx:      ctx,
		runs:     make(map[string]*RunStatus),
	}
}

// HandleRoutes registers every endpoint on mux.
func HandleRoutes(mux *http.ServeMux, api *API) {
	mux.HandleFunc("GET /api/results", api.GetResultsHandler)
	mux.HandleFunc("GET /api/results/{id}", api.GetResultHandler)
	mux.HandleFunc("GET /api/results/strategy/{name}", api.GetResultsByStrategyHandler)
	mux.HandleFunc("GET /api/results/run/{id}", api.GetResultsByRunHandler)
	mux.HandleFunc("GET /api/stats", api.GetStatsHandler)
	mux.HandleFunc("POST /api/simulations", api.CreateSimulationHandler)
	mux.HandleFunc("GET /api/simulations/{id}", api.GetSimulationHandler)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(api.hub, w, r)
	})

	api.logger.Info("Registered routes: /api/results, /api/stats, /api/simulations, /ws")
}

// Wait blocks until every launched simulation has returned.
func (a *API) Wait() {
	a.wg.Wait()
}

func (a *API) GetResultsHandler(w http.ResponseWriter, r *http.Request) {
	results, err := a.db.GetAll()
	if err != nil {
		a.logger.WithError(err).Error("Failed to fetch results")
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []database.GameResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) GetResultHandler(w http.ResponseWriter, r *http.Request) {
	result, err := a.db.GetByID(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Result not found", http.StatusNotFound)
			return
		}
		a.logger.WithError(err).Error("Failed to fetch result")
		http.Error(w, "Failed to fetch result", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) GetResultsByStrategyHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		http.Error(w, "Strategy name is required", http.StatusBadRequest)
		return
	}
	results, err := a.db.GetByStrategy(name)
	a.writeResults(w, results, err, "No results found for strategy")
}

func (a *API) GetResultsByRunHandler(w http.ResponseWriter, r *http.Request) {
	results, err := a.db.GetByRun(r.PathValue("id"))
	a.writeResults(w, results, err, "No results found for run")
}

func (a *API) writeResults(w http.ResponseWriter, results []database.GameResult, err error, notFound string) {
	if err != nil {
		// Not found
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, notFound, http.StatusNotFound)
			return
		}
		a.logger.WithError(err).Error("Failed to fetch results")
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.db.Stats()
	if err != nil {
		a.logger.WithError(err).Error("Failed to compute stats")
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []database.StrategyStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// CreateSimulationHandler validates a run request and plays it in the background.
func (a *API) CreateSimulationHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.defaults
	if cfg.Seed != nil {
		seed := *cfg.Seed
		cfg.Seed = &seed // decoding must not write through to the defaults
	}
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid simulation request", http.StatusBadRequest)
		return
	}

	runner, err := sim.NewRunner(cfg, a.hub, a.db, a.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status := &RunStatus{RunID: runner.RunID, Status: StatusRunning, Config: runner.Config()}
	a.mu.Lock()
	a.runs[runner.RunID] = status
	snapshot := *status
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		summary, err := runner.Run(a.ctx)
		a.mu.Lock()
		defer a.mu.Unlock()
		status.Summary = summary
		status.Status = StatusFinished
		if err != nil {
			status.Status = StatusFailed
			status.Error = err.Error()
		}
	}()

	writeJSON(w, http.StatusAccepted, snapshot)
}

func (a *API) GetSimulationHandler(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	status, ok := a.runs[r.PathValue("id")]
	var snapshot RunStatus
	if ok {
		snapshot = *status
	}
	a.mu.Unlock()

	if !ok {
		http.Error(w, "Simulation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
