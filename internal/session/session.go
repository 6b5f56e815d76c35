// Package session holds per-user document QA state: the current index, the chat
// history, and the Empty -> Ingesting -> Ready lifecycle around them.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/docqa/internal/answer"
	"github.com/hyperjump/docqa/internal/indexer"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/search"
	"github.com/hyperjump/docqa/internal/vector"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// ErrClosed is returned by an ingestion that finishes after its session was closed.
var ErrClosed = errors.New("session closed")

// State is a session lifecycle state.
type State int

const (
	StateEmpty State = iota
	StateIngesting
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIngesting:
		return "ingesting"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Deps are the collaborators a session runs its pipeline with. They are stateless with
// respect to any one session and may be shared.
type Deps struct {
	Indexer     *indexer.Indexer
	Synthesizer answer.Synthesizer
	TopK        int
	Logger      *zap.Logger
}

// Snapshot is a point-in-time copy of a session's observable state.
type Snapshot struct {
	ID       string                `json:"id"`
	State    State                 `json:"state"`
	Document *indexer.IngestResult `json:"document,omitempty"`
	Chunks   int                   `json:"chunks"`
	History  []models.ChatTurn     `json:"history"`
}

// Session is one user's document and conversation. At most one ingestion runs at a time;
// a second request while one is in flight fails with models.ErrIngestionInProgress.
type Session struct {
	id        string
	deps      Deps
	retriever *search.Retriever
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	index    vector.Index
	document *indexer.IngestResult
	history  []models.ChatTurn
	// generation increments with every installed index so that an answer computed
	// against a replaced index is not appended to the new document's history.
	generation uint64
	lastUsed   time.Time
	closed     bool
}

// New creates an empty session.
func New(id string, deps Deps) *Session {
	logger := utils.LoggerOrNop(deps.Logger).With(zap.String("session", id))
	if deps.TopK <= 0 {
		deps.TopK = 4
	}
	return &Session{
		id:        id,
		deps:      deps,
		retriever: search.NewRetriever(deps.Indexer.Embedder(), logger),
		logger:    logger,
		state:     StateEmpty,
		lastUsed:  time.Now(),
	}
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the chat history.
func (s *Session) History() []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatTurn(nil), s.history...)
}

// Snapshot returns a copy of the session's observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:      s.id,
		State:   s.state,
		History: append([]models.ChatTurn{}, s.history...),
	}
	if s.index != nil {
		snap.Chunks = s.index.Size()
	}
	if s.document != nil {
		doc := *s.document
		snap.Document = &doc
	}
	return snap
}

// LastUsed returns when the session last started an operation.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Ingest replaces the session's document with content. On success the new index is
// installed, history is cleared, and the state becomes Ready. On failure the previous
// state, index, and history are left untouched.
func (s *Session) Ingest(ctx context.Context, content []byte) (*indexer.IngestResult, error) {
	s.mu.Lock()
	if s.state == StateIngesting {
		s.mu.Unlock()
		return nil, models.ErrIngestionInProgress
	}
	prev := s.state
	s.state = StateIngesting
	s.lastUsed = time.Now()
	s.mu.Unlock()

	s.logger.Debug("ingestion started", zap.Int("bytes", len(content)), zap.Stringer("prev_state", prev))
	idx, res, err := s.deps.Indexer.Ingest(ctx, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if idx != nil {
			_ = idx.Close()
		}
		return nil, ErrClosed
	}
	if err != nil {
		s.state = prev
		s.logger.Warn("ingestion failed", zap.Stringer("state", prev), zap.Error(err))
		return nil, err
	}
	// The replaced index is not closed here: an in-flight Ask may still be searching it.
	s.index = idx
	s.document = res
	s.history = nil
	s.generation++
	s.state = StateReady
	return res, nil
}

// Ask answers question from the current document. k <= 0 uses the configured top-k.
// It fails with models.ErrNotReady unless the session is Ready. On success the question
// and the answer are appended to the history; on failure history is unchanged.
func (s *Session) Ask(ctx context.Context, question string, k int) (*models.AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, models.InvalidArgument("question", "must not be empty")
	}
	if k <= 0 {
		k = s.deps.TopK
	}
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return nil, models.ErrNotReady
	}
	idx := s.index
	gen := s.generation
	history := append([]models.ChatTurn(nil), s.history...)
	s.lastUsed = time.Now()
	s.mu.Unlock()

	start := time.Now()
	chunks, err := s.retriever.Retrieve(ctx, question, idx, k)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Synthesizer.Answer(ctx, question, chunks, history)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.history = append(s.history,
			models.ChatTurn{Role: models.RoleUser, Content: question},
			models.ChatTurn{Role: models.RoleAssistant, Content: res.Text},
		)
	}
	s.mu.Unlock()
	s.logger.Info("question answered",
		zap.Int("question_len", len(question)),
		zap.Int("k", k),
		zap.Int("context_chunks", len(res.UsedContext)),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

// Close releases the session's index. The session must not be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.index != nil {
		err = s.index.Close()
	}
	s.index = nil
	s.document = nil
	s.history = nil
	s.state = StateEmpty
	s.closed = true
	return err
}
