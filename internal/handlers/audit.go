package handlers

import (
	"net/http"
	"strconv"

	"github.com/caps-platform/scheduling-backend/internal/services"
)

// AuditLogResponse represents the recent scheduling audit rows
type AuditLogResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entries []services.AuditEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// GetAuditLog handles GET /api/admin/audit?limit= (admin)
func GetAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := services.ListAudit(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit log")
		return
	}
	if entries == nil {
		entries = []services.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, AuditLogResponse{Success: true, Entries: entries, Total: len(entries)})
}
