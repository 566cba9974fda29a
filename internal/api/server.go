package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"NetSimDash/internal/metrics"
	"NetSimDash/internal/model"

	"github.com/gorilla/mux"
)

// Backend is the simulation surface the API drives.
type Backend interface {
	Snapshot() model.SimulationSnapshot
	Tick() model.SimulationSnapshot
	SetAttackMode(mode model.AttackMode) error
	AddFirewallRule(req model.RuleRequest) (model.FirewallRule, error)
	AddAppServer() (model.NodeState, error)
	Reachable(from, to string) bool
}

// Server exposes the simulation over HTTP.
type Server struct {
	backend Backend
	metrics *metrics.Registry
	router  *mux.Router
}

// NewServer builds the router. When reg is non-nil, requests are measured
// and the registry is served at metricsPath.
func NewServer(backend Backend, reg *metrics.Registry, metricsPath string) *Server {
	s := &Server{backend: backend, metrics: reg, router: mux.NewRouter()}

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	v1.HandleFunc("/tick", s.handleTick).Methods(http.MethodPost)
	v1.HandleFunc("/attack-modes", s.handleAttackModes).Methods(http.MethodGet)
	v1.HandleFunc("/attack-mode", s.handleSetAttackMode).Methods(http.MethodPut)
	v1.HandleFunc("/firewall/rules", s.handleListRules).Methods(http.MethodGet)
	v1.HandleFunc("/firewall/rules", s.handleAddRule).Methods(http.MethodPost)
	v1.HandleFunc("/topology/services", s.handleAddService).Methods(http.MethodPost)
	v1.HandleFunc("/topology/reachable", s.handleReachable).Methods(http.MethodGet)

	if reg != nil {
		s.router.Handle(metricsPath, reg.Handler()).Methods(http.MethodGet)
		s.router.Use(s.measure)
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Snapshot())
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Tick())
}

func (s *Server) handleAttackModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.AttackModeCatalog)
}

func (s *Server) handleSetAttackMode(w http.ResponseWriter, r *http.Request) {
	var req AttackModeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.backend.SetAttackMode(model.AttackMode(req.Mode)); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": req.Mode})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Snapshot().FirewallRules)
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var req FirewallRuleRequest
	if !decode(w, r, &req) {
		return
	}
	rule, err := s.backend.AddFirewallRule(model.RuleRequest{StartIP: req.StartIP, EndIP: req.EndIP, Label: req.Label})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleAddService(w http.ResponseWriter, r *http.Request) {
	node, err := s.backend.AddAppServer()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleReachable(w http.ResponseWriter, r *http.Request) {
	q := ReachableQuery{From: r.URL.Query().Get("from"), To: r.URL.Query().Get("to")}
	if err := validateRequest(q); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":      q.From,
		"to":        q.To,
		"reachable": s.backend.Reachable(q.From, q.To),
	})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := validateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		s.metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(rec.status), time.Since(start))
	})
}
