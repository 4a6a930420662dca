package memory

import (
	"context"
	"sort"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

type messageRepo struct{ s *Store }

func (r *messageRepo) Append(_ context.Context, msg *domain.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[msg.SessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if session.Closed() {
		return repository.ErrTransitionRejected
	}
	msg.ID = newID()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.s.now()
	}
	r.s.messages[msg.SessionID] = append(r.s.messages[msg.SessionID], messageRecord{msg: *msg, seq: r.s.nextSeq()})
	return nil
}

func (r *messageRepo) ListBySession(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	r.s.mu.Lock()
	records := append([]messageRecord(nil), r.s.messages[sessionID]...)
	r.s.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.msg.Timestamp.Equal(b.msg.Timestamp) {
			return a.msg.Timestamp.Before(b.msg.Timestamp)
		}
		return a.seq < b.seq
	})

	result := make([]domain.ChatMessage, 0, len(records))
	for _, rec := range records {
		result = append(result, rec.msg)
	}
	return result, nil
}
