// Package httpserver exposes the calculator over HTTP and WebSocket.
package httpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/coachpo/materialcalc/internal/calculator"
	"github.com/coachpo/materialcalc/internal/geometry"
	"github.com/coachpo/materialcalc/internal/infra/config"
	"github.com/coachpo/materialcalc/internal/observability"
	"github.com/coachpo/materialcalc/internal/telemetry"
)

const (
	defaultMaxBodyBytes int64 = 1 << 20 // 1 MiB
	defaultMaxBatchSize       = 64

	estimatePath         = "/estimate"
	batchPath            = "/estimate/batch"
	materialsPath        = "/materials"
	materialDetailPrefix = materialsPath + "/"
	unitsPath            = "/units"
	healthPath           = "/healthz"
	streamPath           = "/ws/estimate"
	openAPIPath          = "/docs/openapi.json"
)

// Options tunes the handler built by NewHandler.
type Options struct {
	Environment  config.Environment
	MaxBatchSize int
	MaxBodyBytes int64
	RateLimit    config.RateLimitConfig
	Metrics      *telemetry.CalculatorMetrics
	Logger       observability.Logger
}

type handlerFunc func(http.ResponseWriter, *http.Request)

type httpServer struct {
	calc         *calculator.Calculator
	environment  config.Environment
	maxBatch     int
	maxBodyBytes int64
	limiter      *limiter
	metrics      *telemetry.CalculatorMetrics
	logger       observability.Logger
}

// NewHandler builds the routed handler for calc.
func NewHandler(calc *calculator.Calculator, opts Options) http.Handler {
	server := &httpServer{
		calc:         calc,
		environment:  opts.Environment,
		maxBatch:     opts.MaxBatchSize,
		maxBodyBytes: opts.MaxBodyBytes,
		limiter:      newLimiter(opts.RateLimit),
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
	if server.maxBatch <= 0 {
		server.maxBatch = defaultMaxBatchSize
	}
	if server.maxBodyBytes <= 0 {
		server.maxBodyBytes = defaultMaxBodyBytes
	}
	if server.logger == nil {
		server.logger = observability.Log()
	}

	mux := http.NewServeMux()
	mux.Handle(estimatePath, server.methodHandlers(map[string]handlerFunc{
		http.MethodPost: server.estimate,
	}))
	mux.Handle(batchPath, server.methodHandlers(map[string]handlerFunc{
		http.MethodPost: server.estimateBatch,
	}))
	mux.Handle(materialsPath, server.methodHandlers(map[string]handlerFunc{
		http.MethodGet: server.listMaterials,
	}))
	mux.Handle(materialDetailPrefix, server.methodHandlers(map[string]handlerFunc{
		http.MethodGet: server.getMaterial,
	}))
	mux.Handle(unitsPath, server.methodHandlers(map[string]handlerFunc{
		http.MethodGet: server.listUnits,
	}))
	mux.Handle(healthPath, server.methodHandlers(map[string]handlerFunc{
		http.MethodGet: server.health,
	}))
	mux.Handle(streamPath, server.methodHandlers(map[string]handlerFunc{
		http.MethodGet: server.stream,
	}))

	if opts.Environment == config.EnvDev {
		mux.Handle(openAPIPath, http.HandlerFunc(server.serveOpenAPI))
	}

	return withCORS(withRequestID(server.withMetrics(server.withRateLimit(mux))))
}

func (s *httpServer) methodHandlers(handlers map[string]handlerFunc) http.Handler {
	allowed := allowedMethods(handlers)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler(w, r)
			return
		}
		methodNotAllowed(w, allowed...)
	})
}

func allowedMethods(handlers map[string]handlerFunc) []string {
	if len(handlers) == 0 {
		return nil
	}
	allowed := make([]string, 0, len(handlers))
	for method := range handlers {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)
	return allowed
}

type estimateResponse struct {
	RequestID string             `json:"requestId"`
	Outcome   calculator.Outcome `json:"outcome"`
}

type batchRequest struct {
	Items []calculator.Input `json:"items"`
}

type batchResponse struct {
	RequestID string               `json:"requestId"`
	Count     int                  `json:"count"`
	Valid     int                  `json:"valid"`
	Outcomes  []calculator.Outcome `json:"outcomes"`
}

func (s *httpServer) estimate(w http.ResponseWriter, r *http.Request) {
	var in calculator.Input
	if err := s.decode(w, r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}
	outcome := s.evaluate(r.Context(), in, telemetry.TransportHTTP)
	status := http.StatusOK
	if !outcome.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, estimateResponse{RequestID: requestID(r.Context()), Outcome: outcome})
}

func (s *httpServer) estimateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items required")
		return
	}
	if len(req.Items) > s.maxBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch of %d exceeds limit of %d", len(req.Items), s.maxBatch))
		return
	}

	ctx := r.Context()
	mapper := iter.Mapper[calculator.Input, calculator.Outcome]{MaxGoroutines: batchWorkers(len(req.Items))}
	outcomes := mapper.Map(req.Items, func(in *calculator.Input) calculator.Outcome {
		return s.evaluate(ctx, *in, telemetry.TransportBatch)
	})

	valid := 0
	for _, outcome := range outcomes {
		if outcome.Valid {
			valid++
		}
	}
	s.logger.Debug("batch evaluated",
		observability.Field{Key: "request_id", Value: requestID(ctx)},
		observability.Field{Key: "items", Value: len(outcomes)},
		observability.Field{Key: "valid", Value: valid})
	writeJSON(w, http.StatusOK, batchResponse{
		RequestID: requestID(ctx),
		Count:     len(outcomes),
		Valid:     valid,
		Outcomes:  outcomes,
	})
}

func batchWorkers(items int) int {
	if items < 8 {
		return items
	}
	return 8
}

// evaluate runs one estimate and records its outcome.
func (s *httpServer) evaluate(ctx context.Context, in calculator.Input, transport string) calculator.Outcome {
	start := time.Now()
	outcome := s.calc.Compute(in)
	errorType := ""
	if outcome.Failure != nil {
		errorType = string(outcome.Failure.Code)
	}
	s.metrics.RecordEstimate(ctx, s.calculatorLabel(in, outcome), transport, errorType, time.Since(start))
	return outcome
}

// calculatorLabel keeps the metric attribute to the closed set of calculator
// kinds rather than echoing caller text.
func (s *httpServer) calculatorLabel(in calculator.Input, outcome calculator.Outcome) string {
	if outcome.Result != nil {
		return string(outcome.Result.Calculator)
	}
	if kind, err := calculator.ParseKind(in.Calculator); err == nil {
		return string(kind)
	}
	if material, err := s.calc.Catalog().Lookup(in.Material); err == nil {
		return string(material.Calculator)
	}
	return "unknown"
}

type materialView struct {
	Name         string `json:"name"`
	Calculator   string `json:"calculator"`
	Description  string `json:"description,omitempty"`
	Depth        string `json:"depth,omitempty"`
	DepthUnit    string `json:"depthUnit,omitempty"`
	BagSize      string `json:"bagSize,omitempty"`
	BagUnit      string `json:"bagUnit,omitempty"`
	CoverageRate string `json:"coverageRate,omitempty"`
	RateUnit     string `json:"rateUnit,omitempty"`
	Coats        int64  `json:"coats,omitempty"`
	WastePercent string `json:"wastePercent"`
}

func newMaterialView(m calculator.Material) materialView {
	view := materialView{
		Name:         m.Name,
		Calculator:   string(m.Calculator),
		Description:  m.Description,
		DepthUnit:    string(m.DepthUnit),
		BagUnit:      string(m.BagUnit),
		RateUnit:     string(m.RateUnit),
		Coats:        m.Coats,
		WastePercent: calculator.ExactDecimal(m.WastePercent.ToScaled()).String(),
	}
	if m.Depth.Sign() > 0 {
		view.Depth = calculator.ExactDecimal(m.Depth.ToScaled()).String()
	}
	if m.HasBag() {
		view.BagSize = calculator.ExactDecimal(m.BagSize.ToScaled()).String()
	}
	if m.CoverageRate.Sign() > 0 {
		view.CoverageRate = calculator.ExactDecimal(m.CoverageRate.ToScaled()).String()
	}
	return view
}

func (s *httpServer) listMaterials(w http.ResponseWriter, _ *http.Request) {
	materials := s.calc.Catalog().List()
	views := make([]materialView, 0, len(materials))
	for _, m := range materials {
		views = append(views, newMaterialView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": views})
}

func (s *httpServer) getMaterial(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, materialDetailPrefix), "/")
	if name == "" {
		writeError(w, http.StatusNotFound, "material name required")
		return
	}
	material, err := s.calc.Catalog().Lookup(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	writeJSON(w, http.StatusOK, newMaterialView(material))
}

func (s *httpServer) listUnits(w http.ResponseWriter, _ *http.Request) {
	shapes := make(map[string][]string)
	for _, kind := range geometry.Kinds() {
		shapes[string(kind)] = geometry.Fields(kind)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"units":  calculator.UnitTags(),
		"shapes": shapes,
	})
}

func (s *httpServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"environment": string(s.environment),
	})
}

func (s *httpServer) decode(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	defer func() {
		_ = r.Body.Close()
	}()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	if err := decodeJSON(bytes.NewReader(data), target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if isRequestTooLarge(err) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func isRequestTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
