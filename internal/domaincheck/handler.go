package domaincheck

import (
	"encoding/json"
	"net/http"

	"github.com/dsergienko/leadgate/pkg/logging"
)

// Handler exposes the domain gate as POST /check-email, the contract the
// landing page used: {"email": ...} in, {"status": "ok"|"fail"} out.
type Handler struct {
	checker Checker
	logger  *logging.Logger
}

// NewHandler creates a check-email handler.
func NewHandler(checker Checker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{checker: checker, logger: logger}
}

// CheckEmail handles POST /check-email.
func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := "ok"
	if err := h.checker.Check(r.Context(), req.Email); err != nil {
		status = "fail"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
