package ask

import (
	"context"
	"log/slog"

	"bookchat/internal/chat"
)

type Composer interface {
	Ask(ctx context.Context, sessionID, question string) (*chat.Answer, error)
}

type Repository interface {
	Save(ctx context.Context, entry *HistoryEntry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error)
}

type Service struct {
	composer Composer
	repo     Repository
}

func NewService(composer Composer, repo Repository) *Service {
	return &Service{composer: composer, repo: repo}
}

// Ask answers one question in a session and persists the turn. A failed
// history write does not fail the answer; the durable log is best-effort.
func (s *Service) Ask(ctx context.Context, userID int64, sessionID, question string) (*chat.Answer, error) {
	answer, err := s.composer.Ask(ctx, sessionID, question)
	if err != nil {
		return nil, err
	}

	entry := &HistoryEntry{
		SessionID: sessionID,
		UserID:    userID,
		Question:  question,
		Answer:    answer.Answer,
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to persist chat turn", "session_id", sessionID, "error", err)
	}

	return answer, nil
}

func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListBySession(ctx, sessionID, limit)
}
