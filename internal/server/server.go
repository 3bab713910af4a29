package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/internal/config"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/output"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	svc            *calculator.Service
	maxRequestSize int64
	version        string
}

type calculation func(ctx context.Context, req calculator.Request) (interface{}, error)

// NewHandler constructs the HTTP handler that serves the calculation API.
func NewHandler(logger *zap.Logger, svc *calculator.Service, maxRequestSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if svc == nil {
		svc = calculator.NewService(logger, nil)
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, svc: svc, maxRequestSize: maxRequestSize, version: trimmedVersion}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/affordability", h.calculationHandler("server.handleAffordability",
		func(ctx context.Context, req calculator.Request) (interface{}, error) {
			return svc.Affordability(ctx, req)
		}))
	mux.HandleFunc("/api/schedule", h.calculationHandler("server.handleSchedule",
		func(ctx context.Context, req calculator.Request) (interface{}, error) {
			return svc.Schedule(ctx, req)
		}))
	mux.HandleFunc("/api/budget", h.calculationHandler("server.handleBudget",
		func(ctx context.Context, req calculator.Request) (interface{}, error) {
			return svc.Budget(ctx, req)
		}))
	mux.HandleFunc("/api/compare", h.calculationHandler("server.handleCompare",
		func(ctx context.Context, req calculator.Request) (interface{}, error) {
			return svc.CompareRates(ctx, req)
		}))

	mux.HandleFunc("/api/labels", h.handleLabels)
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type calculationResponse struct {
	Result   interface{} `json:"result"`
	CSV      string      `json:"csv"`
	Warnings []string    `json:"warnings,omitempty"`
	Duration string      `json:"duration"`
}

// calculationHandler accepts a JSON request body, or a YAML configuration
// document when the content type names YAML.
func (h *handler) calculationHandler(op string, calc calculation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
				return
			}
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
			return
		}

		req, warnings, err := decodeRequest(r.Header.Get("Content-Type"), body)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}

		result, err := calc(r.Context(), req)
		if err != nil {
			h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
			return
		}

		var csvBuf bytes.Buffer
		monthly, _ := strconv.ParseBool(r.URL.Query().Get("monthly"))
		if err := output.Render(&csvBuf, constants.OutputFormatCSV, result, output.Options{Monthly: monthly}); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
			return
		}

		duration := time.Since(start)
		h.logger.Debug("calculation completed",
			zap.String("op", op),
			zap.Duration("duration", duration),
		)

		h.writeJSON(w, http.StatusOK, calculationResponse{
			Result:   result,
			CSV:      csvBuf.String(),
			Warnings: warnings,
			Duration: duration.String(),
		})
	}
}

func decodeRequest(contentType string, body []byte) (calculator.Request, []string, error) {
	if strings.Contains(strings.ToLower(contentType), "yaml") {
		conf, err := config.LoadConfigurationFromReader(bytes.NewReader(body))
		if err != nil {
			return calculator.Request{}, nil, err
		}
		return calculator.RequestFromConfig(conf), conf.ValidateConfiguration(), nil
	}

	var req calculator.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return calculator.Request{}, nil, fmt.Errorf("failed to decode request: %v", err)
	}
	return req, nil, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, calculator.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, calculator.ErrCannotSimulate), errors.Is(err, calculator.ErrNoBudgetSolution):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) handleLabels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	labels, err := h.svc.Labels(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleLabels")
		return
	}
	h.writeJSON(w, http.StatusOK, labels)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
