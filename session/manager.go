package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/depositbot/memory"
	"github.com/poiesic/depositbot/rag"
	"github.com/poiesic/depositbot/storage"
)

// DefaultIdleTimeout is how long an unused chat stays cached in memory.
const DefaultIdleTimeout = 30 * time.Minute

// ChainFactory builds the chain for a new session.
type ChainFactory func() (rag.Chain, error)

// Manager owns every chat's session. Work on one chat is serialized; different
// chats proceed independently.
type Manager struct {
	repo     storage.SessionRepository
	newChain ChainFactory
	logger   *slog.Logger

	idleTimeout time.Duration
	now         func() time.Time

	mu        sync.Mutex
	chats     map[int64]*slot
	lastSweep time.Time
}

// slot holds a cached session. refs and lastUsed are guarded by Manager.mu.
type slot struct {
	mu       sync.Mutex
	session  *Session
	refs     int
	lastUsed time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// WithIdleTimeout sets how long an unused chat's session stays cached.
// Evicted sessions are reloaded from the repository on next use.
// Non-positive values keep sessions cached for the manager's lifetime.
// Default is DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// NewManager creates a session manager persisting to repo.
func NewManager(repo storage.SessionRepository, newChain ChainFactory, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if newChain == nil {
		return nil, ErrChainFactoryRequired
	}

	m := &Manager{
		repo:     repo,
		newChain: newChain,
		logger:   slog.Default().With("component", "session"),
		chats:    make(map[int64]*slot),

		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Do runs fn with the chat's session while holding the chat's lock.
// The session is loaded on first use and its memory is persisted after fn
// returns, whether or not fn failed.
func (m *Manager) Do(ctx context.Context, chatID int64, fn func(*Session) error) error {
	s := m.acquire(chatID)
	defer m.release(s)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		session, err := m.load(ctx, chatID)
		if err != nil {
			return err
		}
		s.session = session
	}

	fnErr := fn(s.session)
	if err := m.save(ctx, s.session); err != nil {
		return errors.Join(fnErr, err)
	}
	return fnErr
}

// Reset replaces the chat's session with an empty one and persists it.
func (m *Manager) Reset(ctx context.Context, chatID int64) (*Session, error) {
	s := m.acquire(chatID)
	defer m.release(s)
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := m.fresh(chatID)
	if err != nil {
		return nil, err
	}
	s.session = session
	if err := m.save(ctx, s.session); err != nil {
		return nil, err
	}
	m.logger.Debug("session reset", "chat_id", chatID)
	return s.session, nil
}

// Export returns the primitive form of the chat's memory.
// Returns storage.ErrNotFound if the chat has no session.
func (m *Manager) Export(ctx context.Context, chatID int64) (any, error) {
	s := m.acquire(chatID)
	defer m.release(s)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return memory.ToPrimitive(s.session.mem), nil
	}
	return m.repo.LoadSession(ctx, chatID)
}

// Chats returns the ids of chats with stored sessions.
func (m *Manager) Chats(ctx context.Context) ([]int64, error) {
	return m.repo.ChatIDs(ctx)
}

// acquire returns the chat's slot, pinning it against eviction until release.
func (m *Manager) acquire(chatID int64) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictIdle()
	s, ok := m.chats[chatID]
	if !ok {
		s = &slot{}
		m.chats[chatID] = s
	}
	s.refs++
	return s
}

func (m *Manager) release(s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	s.lastUsed = m.now()
}

// evictIdle drops unpinned slots idle for longer than the idle timeout.
// Runs at most once per timeout period. Must be called with m.mu held.
func (m *Manager) evictIdle() {
	if m.idleTimeout <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastSweep) < m.idleTimeout {
		return
	}
	m.lastSweep = now

	evicted := 0
	for id, s := range m.chats {
		if s.refs == 0 && now.Sub(s.lastUsed) >= m.idleTimeout {
			delete(m.chats, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Debug("evicted idle sessions", "count", evicted, "cached", len(m.chats))
	}
}

func (m *Manager) fresh(chatID int64) (*Session, error) {
	chain, err := m.newChain()
	if err != nil {
		return nil, fmt.Errorf("build chain for chat %d: %w", chatID, err)
	}
	return &Session{chatID: chatID, mem: memory.NewConversation(), chain: chain}, nil
}

func (m *Manager) load(ctx context.Context, chatID int64) (*Session, error) {
	state, err := m.repo.LoadSession(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		m.logger.Debug("new session", "chat_id", chatID)
		return m.fresh(chatID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}

	mem, err := memory.FromPrimitive(state)
	if err != nil {
		m.logger.Error("corrupt session state", "chat_id", chatID, "err", err)
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}

	session, err := m.fresh(chatID)
	if err != nil {
		return nil, err
	}
	if mem != nil {
		session.mem = mem
	}
	m.logger.Debug("session restored", "chat_id", chatID, "turns", session.mem.Len())
	return session, nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	if err := m.repo.SaveSession(ctx, s.chatID, memory.ToPrimitive(s.mem)); err != nil {
		return fmt.Errorf("save session %d: %w", s.chatID, err)
	}
	return nil
}
