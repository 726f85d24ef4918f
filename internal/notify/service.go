package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

// Service turns booking confirmations into notification jobs and hands them to
// a Dispatcher: a Deliverer for inline sends, or a QueueDispatcher for async
// and SQS modes.
type Service struct {
	dispatcher Dispatcher
	logger     *logging.Logger
}

// NewService creates a notification service.
func NewService(dispatcher Dispatcher, logger *logging.Logger) *Service {
	if dispatcher == nil {
		panic("notify: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{dispatcher: dispatcher, logger: logger}
}

// SendEmail dispatches a single email.
func (s *Service) SendEmail(ctx context.Context, msg EmailMessage) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("notify: email recipient required")
	}
	job := NewEmailJob(msg)
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		return fmt.Errorf("notify: dispatch email %s: %w", job.ID, err)
	}
	s.logger.Debug("email notification dispatched", "job_id", job.ID)
	return nil
}

// SendChat dispatches a single chat message to an international number.
func (s *Service) SendChat(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("notify: chat recipient required")
	}
	job := NewChatJob(to, body)
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		return fmt.Errorf("notify: dispatch chat %s: %w", job.ID, err)
	}
	s.logger.Debug("chat notification dispatched", "job_id", job.ID)
	return nil
}
