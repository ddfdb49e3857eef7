package feedback

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Mailer delivers the optional notice mail to a recipient.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func NewService(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@evalportal.local"}
}

func (s *Service) ListTypes(ctx context.Context) ([]Type, error) {
	return s.store.ListTypes(ctx)
}

// Send stores a note from senderID to in.EmployeeID and returns its id.
func (s *Service) Send(ctx context.Context, senderID string, in Input) (string, error) {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.CycleID = strings.TrimSpace(in.CycleID)
	in.TypeID = strings.TrimSpace(in.TypeID)
	in.Content = strings.TrimSpace(in.Content)

	if senderID == "" {
		return "", ErrMissingSender
	}
	if in.EmployeeID == "" {
		return "", ErrRecipientNotFound
	}
	if in.EmployeeID == senderID {
		return "", ErrSelfFeedback
	}
	if in.Content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(in.Content) > maxContentLength {
		return "", ErrContentTooLong
	}

	recipient, err := s.store.Recipient(ctx, in.EmployeeID)
	if err != nil {
		return "", err
	}
	if !recipient.IsActive {
		return "", ErrInactiveAddress
	}
	ok, err := s.store.TypeExists(ctx, in.TypeID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrTypeNotFound
	}
	if in.CycleID != "" {
		ok, err := s.store.CycleExists(ctx, in.CycleID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrCycleNotFound
		}
	}

	id, err := s.store.Create(ctx, senderID, in)
	if err != nil {
		return "", err
	}
	s.notify(ctx, recipient)
	return id, nil
}

// notify never fails the send; delivery problems are only logged.
func (s *Service) notify(ctx context.Context, recipient Recipient) {
	if s.Mailer == nil || recipient.Email == "" {
		return
	}
	body := "Hello " + recipient.FullName + ",\n\nyou have received new feedback in the evaluation portal."
	if err := s.Mailer.Send(ctx, s.DefaultFrom, recipient.Email, "New feedback received", body); err != nil {
		slog.Warn("feedback notice send failed", "err", err)
	}
}

// ListReceived returns notes addressed to employeeID, hiding who sent the
// anonymous ones.
func (s *Service) ListReceived(ctx context.Context, employeeID string, limit, offset int) ([]Feedback, error) {
	items, err := s.store.ListReceived(ctx, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].IsAnonymous {
			items[i].SenderID = ""
			items[i].SenderName = ""
		}
	}
	return items, nil
}

func (s *Service) ListSent(ctx context.Context, senderID string, limit, offset int) ([]Feedback, error) {
	return s.store.ListSent(ctx, senderID, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
