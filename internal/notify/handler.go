package notify

import (
	"encoding/json"
	"net/http"

	"github.com/dsergienko/leadgate/pkg/logging"
)

// MailRequest is the legacy mail relay contract: the page posts the lead
// fields plus a recipient and gets {"result": "success"|"error"} back.
type MailRequest struct {
	Title     string `json:"title"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Message   string `json:"message,omitempty"`
	Recipient string `json:"recipient"`
}

// Handler exposes the mail relay endpoint.
type Handler struct {
	sender EmailSender
	logger *logging.Logger
}

// NewHandler creates a mail relay handler.
func NewHandler(sender EmailSender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{sender: sender, logger: logger}
}

// SendMail handles POST /mail.
func (h *Handler) SendMail(w http.ResponseWriter, r *http.Request) {
	var req MailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("mail relay request", "recipient", req.Recipient, "title", req.Title)

	if req.Recipient == "" {
		http.Error(w, "recipient is required", http.StatusBadRequest)
		return
	}

	msg := EmailMessage{
		To:      req.Recipient,
		Subject: req.Title,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Message: req.Message,
	}

	result := "success"
	status := http.StatusOK
	if err := h.sender.Send(r.Context(), msg); err != nil {
		h.logger.Error("mail relay send failed", "error", err, "recipient", req.Recipient)
		result = "error"
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"result": result})
}
