package chat

import "sync"

// Turn is one question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// Memory holds per-session conversation windows. Each session keeps at
// most limit turns, oldest evicted first; limit <= 0 means unbounded.
// State is process-scoped; durable history lives in the chat repository.
type Memory struct {
	mu       sync.Mutex
	limit    int
	sessions map[string][]Turn
}

func NewMemory(limit int) *Memory {
	return &Memory{
		limit:    limit,
		sessions: make(map[string][]Turn),
	}
}

func (m *Memory) Append(sessionID string, turn Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := append(m.sessions[sessionID], turn)
	if m.limit > 0 && len(turns) > m.limit {
		turns = turns[len(turns)-m.limit:]
	}
	m.sessions[sessionID] = turns
}

// Recent returns the session's turns oldest first, newest last.
func (m *Memory) Recent(sessionID string) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
