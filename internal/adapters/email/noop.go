package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// noopRetained bounds how many accepted messages the sender keeps around
// for inspection.
const noopRetained = 20

// NoopSender accepts sends without delivering anything. It stands in for
// Resend in local development and the browser tests, where real outbound
// mail would be noise. Accepted messages are counted and the most recent
// ones retained so a test can assert what would have gone out.
type NoopSender struct {
	mu       sync.Mutex
	accepted int
	recent   []SendRequest
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send accepts the email without delivering it.
// PRE: req is a valid SendRequest
// POST: Returns a synthetic result; the message is retained, not delivered
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	id := s.accept(req)
	slog.Info("email_send_skipped", "message_id", id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

// SendBatch accepts every request without delivering any.
// PRE: reqs is a slice of SendRequests
// POST: Returns one synthetic result per request
func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, SendResult{MessageID: s.accept(req), SentAt: time.Now()})
	}
	slog.Info("email_batch_skipped", "count", len(reqs))
	return results, nil
}

// Accepted returns how many messages the sender has taken so far.
func (s *NoopSender) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Last returns the most recently accepted message, if any.
func (s *NoopSender) Last() (SendRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recent) == 0 {
		return SendRequest{}, false
	}
	return s.recent[len(s.recent)-1], true
}

func (s *NoopSender) accept(req SendRequest) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted++
	s.recent = append(s.recent, req)
	if len(s.recent) > noopRetained {
		s.recent = s.recent[len(s.recent)-noopRetained:]
	}
	return fmt.Sprintf("dev-%d", s.accepted)
}
