package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/convert"
	"github.com/ombuds/enrichment-engine/internal/model"
	"github.com/ombuds/enrichment-engine/internal/resilience"
)

// maxBodyBytes caps JSON request bodies. Documents travel by URL.
const maxBodyBytes = 5 << 20

type handlers struct {
	enricher Enricher
	store    Pinger
	version  string
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Store   string `json:"store"`
	Circuit string `json:"circuit,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: h.version, Store: "ok"}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if h.store == nil {
		resp.Store = "unconfigured"
		resp.Status = "degraded"
	} else if err := h.store.Ping(ctx); err != nil {
		zap.L().Warn("api: health ping failed", zap.Error(err))
		resp.Store = "unreachable"
		resp.Status = "degraded"
	}
	if b, ok := h.store.(breakerState); ok {
		state := b.State()
		resp.Circuit = state.String()
		if state == resilience.CircuitOpen {
			resp.Status = "degraded"
		}
	}

	// Degraded storage does not fail enrichment, so health stays 200.
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) document(w http.ResponseWriter, r *http.Request) {
	var in model.DocumentInput
	if !decode(w, r, &in) {
		return
	}
	zap.L().Info("api: enriching document",
		zap.String("mime_type", in.MimeType),
		zap.Any("client_id", in.ClientID),
		zap.Any("proceeding_id", in.ProceedingID),
	)
	res, err := h.enricher.EnrichDocument(r.Context(), in)
	respond(w, "Document", res, err)
}

func (h *handlers) notices(w http.ResponseWriter, r *http.Request) {
	var in model.NoticeInput
	if !decode(w, r, &in) {
		return
	}
	res, err := h.enricher.EnrichNotices(r.Context(), in)
	respond(w, "PJe", res, err)
}

func (h *handlers) transcript(w http.ResponseWriter, r *http.Request) {
	var in model.TranscriptInput
	if !decode(w, r, &in) {
		return
	}
	res, err := h.enricher.EnrichTranscript(r.Context(), in)
	respond(w, "Transcript", res, err)
}

func (h *handlers) agenda(w http.ResponseWriter, r *http.Request) {
	var in model.AgendaInput
	if !decode(w, r, &in) {
		return
	}
	res, err := h.enricher.EnrichAgenda(r.Context(), in)
	respond(w, "Agenda", res, err)
}

func (h *handlers) message(w http.ResponseWriter, r *http.Request) {
	var in model.MessageInput
	if !decode(w, r, &in) {
		return
	}
	res, err := h.enricher.EnrichMessage(r.Context(), in)
	respond(w, "Message", res, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, label string, res any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("api: enrichment failed", zap.String("category", label), zap.Error(err))
	}
	writeDetail(w, status, fmt.Sprintf("%s enrichment failed: %s", label, err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, convert.ErrUnsupportedFormat),
		errors.Is(err, convert.ErrFileTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}
