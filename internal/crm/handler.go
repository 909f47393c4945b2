package crm

import (
	"encoding/json"
	"net/http"

	"github.com/dsergienko/leadgate/internal/leads"
	"github.com/dsergienko/leadgate/pkg/logging"
)

// Handler exposes the connector forwarder as POST /crm/lead, mirroring the
// endpoint the legacy page posted to directly.
type Handler struct {
	client *Client
	logger *logging.Logger
}

// NewHandler creates a forwarder handler.
func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

// ForwardLead handles POST /crm/lead.
func (h *Handler) ForwardLead(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		http.Error(w, "crm connector not configured", http.StatusServiceUnavailable)
		return
	}

	var lead leads.LeadRecord
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("crm forward request", "product", lead.ProductName)

	if err := h.client.SubmitLead(r.Context(), lead); err != nil {
		http.Error(w, "crm forward failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"result": "success"})
}
