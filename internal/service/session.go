package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/session"
)

var ErrStaleTrigger = errors.New("automated move trigger is stale")

// SessionService owns the live sessions of this process. Every transition of a
// session runs under that session's lock, so a Controller is never used concurrently.
type SessionService interface {
	Create(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error)
	Get(ctx context.Context, id string) (*entity.Snapshot, error)
	Delete(ctx context.Context, id string) error

	MakeTurn(ctx context.Context, id string, cell int) (*entity.Snapshot, error)
	// PlayAutomated plays the automated turn only if the session is still at revision.
	PlayAutomated(ctx context.Context, id string, revision uint64) (*entity.Snapshot, error)
	Reset(ctx context.Context, id string) (*entity.Snapshot, error)
	SelectMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error)
	ChangeMode(ctx context.Context, id string) (*entity.Snapshot, error)

	Updates(ctx context.Context, id string) (<-chan *entity.Snapshot, error)
	// Sweep forgets sessions idle for longer than idleFor and returns how many were dropped.
	Sweep(idleFor time.Duration) int
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, snapshot *entity.Snapshot) error
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, id string) error
	Updates(ctx context.Context, id string) (<-chan *entity.Snapshot, error)
}

type movePolicy interface {
	ChooseMove(board entity.Board, player entity.Cell) int
}

type liveSession struct {
	mu sync.Mutex

	id         string
	controller *session.Controller
	revision   uint64
	updatedAt  time.Time
	closed     bool
}

func (that *liveSession) onTransition(snapshot entity.Snapshot) {
	that.revision++
	that.updatedAt = snapshot.UpdatedAt
}

func (that *liveSession) snapshot() *entity.Snapshot {
	snapshot := that.controller.Snapshot()
	snapshot.ID = that.id
	snapshot.Revision = that.revision

	return &snapshot
}

type sessionService struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	sessions    *xsync.MapOf[string, *liveSession]

	policy    movePolicy
	automated entity.Cell
	now       func() time.Time
}

func NewSessionService(logger *slog.Logger, sessionRepo sessionRepo, policy movePolicy, automated entity.Cell) SessionService {
	return &sessionService{
		logger:      logger.With("component", "session-service"),
		sessionRepo: sessionRepo,
		sessions:    xsync.NewMapOf[string, *liveSession](),
		policy:      policy,
		automated:   automated,
		now:         time.Now,
	}
}

func (that *sessionService) Create(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error) {
	live := &liveSession{
		id:         uuid.NewString(),
		controller: session.NewController(that.policy, that.automated, that.now),
	}
	live.controller.Subscribe(live.onTransition)

	live.mu.Lock()
	defer live.mu.Unlock()

	if err := live.controller.SelectMode(mode); err != nil {
		return nil, fmt.Errorf("failed to select mode: %w", err)
	}

	that.sessions.Store(live.id, live)

	snapshot := live.snapshot()
	that.persist(ctx, snapshot)

	return snapshot, nil
}

func (that *sessionService) Get(ctx context.Context, id string) (*entity.Snapshot, error) {
	if live, ok := that.sessions.Load(id); ok {
		live.mu.Lock()
		defer live.mu.Unlock()

		if !live.closed {
			return live.snapshot(), nil
		}
	}

	// sessions started by a previous process are only readable
	snapshot, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return snapshot, nil
}

func (that *sessionService) Delete(ctx context.Context, id string) error {
	live, ok := that.sessions.LoadAndDelete(id)
	if ok {
		live.mu.Lock()
		live.closed = true
		live.mu.Unlock()
	}

	err := that.sessionRepo.DeleteByID(ctx, id)
	if err == nil || (ok && errors.Is(err, apperror.ErrSessionNotFound)) {
		return nil
	}

	return fmt.Errorf("failed to delete session: %w", err)
}

func (that *sessionService) MakeTurn(ctx context.Context, id string, cell int) (*entity.Snapshot, error) {
	return that.transition(ctx, id, func(live *liveSession) error {
		return live.controller.RequestMove(cell)
	})
}

func (that *sessionService) PlayAutomated(ctx context.Context, id string, revision uint64) (*entity.Snapshot, error) {
	return that.transition(ctx, id, func(live *liveSession) error {
		if live.revision != revision {
			return fmt.Errorf("%w: revision %d, session at %d", ErrStaleTrigger, revision, live.revision)
		}

		cell, err := live.controller.PlayAutomated()
		if err != nil {
			return fmt.Errorf("failed to play automated turn: %w", err)
		}

		that.logger.Debug("automated move played", "session", id, "cell", cell)

		return nil
	})
}

func (that *sessionService) Reset(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.transition(ctx, id, func(live *liveSession) error {
		return live.controller.Reset()
	})
}

func (that *sessionService) SelectMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error) {
	return that.transition(ctx, id, func(live *liveSession) error {
		return live.controller.SelectMode(mode)
	})
}

func (that *sessionService) ChangeMode(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.transition(ctx, id, func(live *liveSession) error {
		live.controller.ChangeMode()
		return nil
	})
}

func (that *sessionService) Updates(ctx context.Context, id string) (<-chan *entity.Snapshot, error) {
	updates, err := that.sessionRepo.Updates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to session: %w", err)
	}

	return updates, nil
}

func (that *sessionService) Sweep(idleFor time.Duration) int {
	deadline := that.now().Add(-idleFor)
	dropped := 0

	that.sessions.Range(func(id string, live *liveSession) bool {
		live.mu.Lock()
		idle := live.updatedAt.Before(deadline)
		if idle {
			live.closed = true
		}
		live.mu.Unlock()

		if idle {
			that.sessions.Delete(id)
			dropped++
		}

		return true
	})

	return dropped
}

// transition runs apply under the session lock and persists the result. A
// rejected transition returns the unchanged snapshot together with the error.
func (that *sessionService) transition(ctx context.Context, id string, apply func(live *liveSession) error) (*entity.Snapshot, error) {
	live, ok := that.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	if live.closed {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err := apply(live); err != nil {
		return live.snapshot(), err
	}

	snapshot := live.snapshot()
	that.persist(ctx, snapshot)

	return snapshot, nil
}

// persist mirrors the snapshot to storage. The live session stays authoritative, so failures are only logged.
func (that *sessionService) persist(ctx context.Context, snapshot *entity.Snapshot) {
	if err := that.sessionRepo.CreateOrUpdate(ctx, snapshot); err != nil {
		that.logger.Error("failed to save session", "session", snapshot.ID, "error", err)
	}
}
