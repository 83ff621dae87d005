package http

import (
	"net/http"

	"github.com/slicelab/pizzeria/internal/api/service"
	"github.com/slicelab/pizzeria/pkg/httpx"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

// StreamTicketHandler issues the short-lived ticket a client presents when
// opening the notifications stream. The ticket stands in for the bearer
// credential so the token itself never appears in a URL.
type StreamTicketHandler struct {
	TicketService *service.StreamTicketService
}

type streamTicketResponse struct {
	Success bool   `json:"success"`
	Ticket  string `json:"ticket"`
}

func (h *StreamTicketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromCtx(ctx)
	tenant := httpx.TenantFromCtx(ctx)

	ticket, err := h.TicketService.Issue(ctx, subject, tenant)
	if err != nil {
		log.Error("issue stream ticket", "subject_id", subject, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, streamTicketResponse{
		Success: true,
		Ticket:  ticket.Token,
	})
}
