package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dinehub/internal/logger"
	"dinehub/internal/tables"
	"dinehub/internal/tables/qr"
	"dinehub/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TableService *tables.Service
	QR           *qr.QRGenerator
	Logger       *logger.Logger
}

// ListTables serves the staff floor overview.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	list, err := h.TableService.ListTables(tenantID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTables: %v", err))
		http.Error(w, "Failed to list tables: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tables", list))
}

// Scan resolves a scanned QR token and opens (or joins) the table's
// ordering session.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := h.QR.DecodeToken(req.Token)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Scan: bad token: %v", err))
		http.Error(w, "Invalid table token", http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Scan: tenant=%s table=%s", payload.TenantID, payload.TableID))

	session, err := h.TableService.StartSession(r.Context(), payload.TenantID, payload.TableID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Scan: %v", err))
		http.Error(w, "Failed to start session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Session started", session))
}

// EndSession closes a table's open session from the staff dashboard.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	tableID := chi.URLParam(r, "tableID")
	h.Logger.Info("API", fmt.Sprintf("EndSession: table=%s", tableID))

	if err := h.TableService.EndSession(r.Context(), tenantID, tableID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("EndSession: %v", err))
		http.Error(w, "Failed to end session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Session ended", nil))
}

// SetStatus is the staff override for table state.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	tableID := chi.URLParam(r, "tableID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.TableService.SetStatus(r.Context(), tenantID, tableID, req.Status); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SetStatus: %v", err))
		http.Error(w, "Failed to update table: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Table updated", nil))
}

// TableQR serves the printable QR code for one table as a PNG.
func (h *Handler) TableQR(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	tableID := chi.URLParam(r, "tableID")

	png, err := h.QR.GenerateTableQR(tenantID, tableID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TableQR: %v", err))
		http.Error(w, "Failed to generate QR: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
