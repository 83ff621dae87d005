package service

import (
	"context"
	"fmt"

	"github.com/slicelab/pizzeria/internal/api/session"
	"github.com/slicelab/pizzeria/pkg/cryptox"
)

// StreamTicketService hands out the short-lived tickets the notifications
// stream handshake uses instead of full bearer credentials. A ticket is
// looked up by its own value and consumed on redemption.
type StreamTicketService struct {
	Sessions *session.Store
}

func (s *StreamTicketService) Issue(ctx context.Context, subject string, tenant int64) (session.Ticket, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return session.Ticket{}, fmt.Errorf("generate stream ticket: %w", err)
	}

	ticket := session.Ticket{
		Token:     token,
		SubjectID: subject,
		TenantID:  tenant,
	}
	if err := s.Sessions.PutTicket(ctx, ticket); err != nil {
		return session.Ticket{}, err
	}

	return ticket, nil
}

// Redeem looks a ticket up by value and consumes it.
func (s *StreamTicketService) Redeem(ctx context.Context, token string) (session.Ticket, error) {
	ticket, err := s.Sessions.GetTicket(ctx, token)
	if err != nil {
		return session.Ticket{}, err
	}

	if err := s.Sessions.DeleteTicket(ctx, token); err != nil {
		return session.Ticket{}, err
	}

	return ticket, nil
}
