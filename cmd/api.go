package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/completeness"
	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/flow"
	"github.com/youcodecowboy/disco-grid-sub000/internal/gateway"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/pipeline"
	"github.com/youcodecowboy/disco-grid-sub000/internal/store"
)

// apiServer serves the JSON API over a coreEnv.
type apiServer struct {
	env     *coreEnv
	maxBody int64
	now     func() time.Time
	newKey  func() string
}

// buildRouter returns the HTTP handler for the API.
func buildRouter(env *coreEnv, origins []string, maxBody int64) http.Handler {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	s := &apiServer{
		env:     env,
		maxBody: maxBody,
		now:     func() time.Time { return time.Now().UTC() },
		newKey:  uuid.NewString,
	}
	return s.routes(origins)
}

func (s *apiServer) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", s.extract)
		r.Get("/prompts/{context}", s.prompt)
		r.Post("/workflows", s.workflow)

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", s.listContracts)
			r.Post("/", s.createContract)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", s.getContract)
				r.Patch("/", s.patchContract)
				r.Delete("/", s.deleteContract)
				r.Post("/extract", s.extractInto)
				r.Get("/extractions", s.listExtractions)
				r.Post("/complete", s.completeContract)
				r.Get("/completeness", s.completeness)
				r.Post("/questions/next", s.nextQuestion)
			})
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// intParam reads a non-negative integer query parameter. Absent means 0.
func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, eris.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func (s *apiServer) health(w http.ResponseWriter, _ *http.Request) {
	llmStatus := "disabled"
	if s.env.Gateway != nil {
		llmStatus = "enabled"
	}
	respond(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"llm":      llmStatus,
		"breakers": s.env.Breakers.Snapshots(),
	})
}

func (s *apiServer) extract(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if !s.decode(w, r, &req) {
		return
	}
	req, err := s.env.request(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, s.env.Pipeline.Extract(r.Context(), req))
}

func (s *apiServer) prompt(w http.ResponseWriter, r *http.Request) {
	contextName := chi.URLParam(r, "context")
	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = s.env.DefaultStrategy
	}
	p, err := s.env.Prompts.Build(contextName, strategy)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]string{"context": contextName, "strategy": strategy, "prompt": p})
}

type workflowRequest struct {
	Description string `json:"description"`
	Industry    string `json:"industry"`
}

func (s *apiServer) workflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := pipeline.ValidateInput(req.Description, s.env.MinTextLength); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.env.Gateway == nil {
		respondError(w, http.StatusServiceUnavailable, "workflow generation needs an llm provider")
		return
	}
	wf, err := s.env.Gateway.GenerateWorkflow(r.Context(), req.Description, req.Industry)
	if err != nil {
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error(), "kind": string(gateway.KindOf(err))})
		return
	}
	respond(w, http.StatusOK, wf)
}

// loadContract fetches the {key} contract, answering 404 or 500 itself.
func (s *apiServer) loadContract(w http.ResponseWriter, r *http.Request) (model.Contract, bool) {
	key := chi.URLParam(r, "key")
	c, err := s.env.Store.GetContract(r.Context(), key)
	if err != nil {
		s.storeError(w, err)
		return model.Contract{}, false
	}
	return *c, true
}

func (s *apiServer) save(w http.ResponseWriter, r *http.Request, c model.Contract) bool {
	if err := s.env.Store.SaveContract(r.Context(), c); err != nil {
		s.storeError(w, err)
		return false
	}
	return true
}

func (s *apiServer) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "contract not found")
		return
	}
	zap.L().Error("store failure", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "store failure")
}

func (s *apiServer) listContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter store.ContractFilter
	if v := q.Get("complete"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "complete must be true or false")
			return
		}
		filter.Complete = &b
	}
	var err error
	if filter.Limit, err = intParam(r, "limit"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Offset, err = intParam(r, "offset"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.env.Store.ListContracts(r.Context(), filter)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if list == nil {
		list = []store.ContractSummary{}
	}
	respond(w, http.StatusOK, list)
}

type createRequest struct {
	IdempotencyKey string `json:"idempotencyKey"`
}

// createContract starts a session. Creating an existing key returns the
// stored contract unchanged.
func (s *apiServer) createContract(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get("Idempotency-Key")
	}
	if key == "" {
		key = s.newKey()
	}

	existing, err := s.env.Store.GetContract(r.Context(), key)
	switch {
	case err == nil:
		respond(w, http.StatusOK, existing)
		return
	case !errors.Is(err, store.ErrNotFound):
		s.storeError(w, err)
		return
	}

	c := contract.NewAt(key, s.now())
	if !s.save(w, r, c) {
		return
	}
	respond(w, http.StatusCreated, c)
}

func (s *apiServer) getContract(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadContract(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, c)
}

func (s *apiServer) deleteContract(w http.ResponseWriter, r *http.Request) {
	if err := s.env.Store.DeleteContract(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type patchRequest struct {
	Path   string `json:"path"`
	Value  any    `json:"value"`
	Commit bool   `json:"commit"`
}

func (s *apiServer) patchContract(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	c, ok := s.loadContract(w, r)
	if !ok {
		return
	}
	next, err := contract.PatchContract(c, req.Path, req.Value)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Commit {
		next = contract.CommitField(next, req.Path)
	}
	next.Metadata.UpdatedAt = s.now()
	if !s.save(w, r, next) {
		return
	}
	respond(w, http.StatusOK, next)
}

type extractIntoResponse struct {
	Result   *model.ExtractionResult `json:"result"`
	Contract model.Contract          `json:"contract"`
	Skipped  []contract.Skip         `json:"skipped"`
	Report   completeness.Report     `json:"completeness"`
}

// extractInto runs extraction and applies the entities to the contract.
func (s *apiServer) extractInto(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if !s.decode(w, r, &req) {
		return
	}
	req, err := s.env.request(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, ok := s.loadContract(w, r)
	if !ok {
		return
	}

	res := s.env.Pipeline.Extract(r.Context(), req)
	next, skipped, err := contract.ApplyEntities(c, res.Entities)
	if err != nil {
		zap.L().Error("apply entities", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not apply entities")
		return
	}
	next.Metadata.UpdatedAt = s.now()
	if !s.save(w, r, next) {
		return
	}
	if _, err := s.env.Store.RecordExtraction(r.Context(), next.Metadata.IdempotencyKey, req.Context, res); err != nil {
		zap.L().Warn("record extraction", zap.Error(err))
	}
	if skipped == nil {
		skipped = []contract.Skip{}
	}
	respond(w, http.StatusOK, extractIntoResponse{
		Result:   res,
		Contract: next,
		Skipped:  skipped,
		Report:   s.env.Completeness.Analyze(next),
	})
}

func (s *apiServer) listExtractions(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.env.Store.ListExtractions(r.Context(), chi.URLParam(r, "key"), limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if list == nil {
		list = []store.Extraction{}
	}
	respond(w, http.StatusOK, list)
}

func (s *apiServer) completeContract(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadContract(w, r)
	if !ok {
		return
	}
	if !contract.IsComplete(c) {
		c = contract.MarkComplete(c, s.now())
		if !s.save(w, r, c) {
			return
		}
	}
	respond(w, http.StatusOK, c)
}

func (s *apiServer) completeness(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadContract(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, auditContract(s.env, c))
}

type nextRequest struct {
	Questions    []model.Question `json:"questions"`
	CurrentIndex int              `json:"currentIndex"`
	Direction    string           `json:"direction"`
}

type nextResponse struct {
	Index    int             `json:"index"`
	Done     bool            `json:"done"`
	Question *model.Question `json:"question,omitempty"`
	Trace    []flow.Step     `json:"trace"`
}

func (s *apiServer) nextQuestion(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, ok := s.loadContract(w, r)
	if !ok {
		return
	}

	var idx int
	switch req.Direction {
	case "", "next":
		idx = flow.NextVisibleIndex(req.Questions, req.CurrentIndex, c)
	case "previous", "prev":
		idx = flow.PreviousVisibleIndex(req.Questions, req.CurrentIndex, c)
	default:
		respondError(w, http.StatusBadRequest, "direction must be next or previous")
		return
	}

	resp := nextResponse{Index: idx, Done: idx >= len(req.Questions), Trace: flow.Trace(req.Questions, c)}
	if !resp.Done {
		resp.Question = &req.Questions[idx]
	}
	respond(w, http.StatusOK, resp)
}
