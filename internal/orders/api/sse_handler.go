package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dinehub/internal/logger"
	"dinehub/internal/models"
	"dinehub/internal/sse"

	"github.com/go-chi/chi/v5"
)

// SSEHandler streams realtime domain events to browsers. Staff dashboards
// watch the tenant stream; the customer app watches its table's stream.
type SSEHandler struct {
	Logger       *logger.Logger
	EventEmitter *sse.EventEmitter
}

func NewSSEHandler(log *logger.Logger, emitter *sse.EventEmitter) *SSEHandler {
	return &SSEHandler{Logger: log, EventEmitter: emitter}
}

func (h *SSEHandler) HandleTenantEvents(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if tenantID == "" {
		http.Error(w, "Tenant ID is required", http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)
	ctx := r.Context()
	eventChan := h.EventEmitter.SubscribeToTenant(ctx, tenantID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"tenantID\":\"%s\"}\n\n", tenantID)
	w.(http.Flusher).Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to tenant stream: %s", tenantID))
	h.stream(w, ctx.Done(), eventChan, tenantID)
}

func (h *SSEHandler) HandleTableEvents(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "tableID")
	if tableID == "" {
		http.Error(w, "Table ID is required", http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)
	ctx := r.Context()
	eventChan := h.EventEmitter.SubscribeToTable(ctx, tableID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"tableID\":\"%s\"}\n\n", tableID)
	w.(http.Flusher).Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to table stream: %s", tableID))
	h.stream(w, ctx.Done(), eventChan, tableID)
}

func (h *SSEHandler) stream(w http.ResponseWriter, done <-chan struct{}, events chan models.DomainEvent, scope string) {
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for %s", scope))
				return
			}

			jsonData, err := json.Marshal(evt)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize event: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Kind, jsonData)
			w.(http.Flusher).Flush()

		case <-done:
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from %s", scope))
			return
		}
	}
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
