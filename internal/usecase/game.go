package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/service"
)

const automatedMoveTimeout = 5 * time.Second

type GameUseCase interface {
	CreateSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error)
	GetSession(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error
	SessionUpdates(ctx context.Context, id string) (<-chan *entity.Snapshot, error)

	// MakeTurn reports accepted=false with the unchanged snapshot when the move is rejected.
	MakeTurn(ctx context.Context, id string, cell int) (snapshot *entity.Snapshot, accepted bool, err error)
	Reset(ctx context.Context, id string) (*entity.Snapshot, error)
	SelectMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error)
	ChangeMode(ctx context.Context, id string) (*entity.Snapshot, error)

	Results(ctx context.Context, limit int) ([]*entity.Result, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

type gameUseCase struct {
	logger *slog.Logger

	sessionService service.SessionService
	resultService  service.ResultService
	botService     service.BotService
}

func NewGameUseCase(logger *slog.Logger, sessionService service.SessionService, resultService service.ResultService, botService service.BotService) GameUseCase {
	return &gameUseCase{
		logger:         logger.With("component", "game-usecase"),
		sessionService: sessionService,
		resultService:  resultService,
		botService:     botService,
	}
}

func (that *gameUseCase) CreateSession(ctx context.Context, mode entity.Mode) (*entity.Snapshot, error) {
	snapshot, err := that.sessionService.Create(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return that.afterTransition(ctx, snapshot)
}

func (that *gameUseCase) GetSession(ctx context.Context, id string) (*entity.Snapshot, error) {
	snapshot, err := that.sessionService.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return snapshot, nil
}

func (that *gameUseCase) DeleteSession(ctx context.Context, id string) error {
	if err := that.sessionService.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (that *gameUseCase) SessionUpdates(ctx context.Context, id string) (<-chan *entity.Snapshot, error) {
	updates, err := that.sessionService.Updates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to session: %w", err)
	}

	return updates, nil
}

func (that *gameUseCase) MakeTurn(ctx context.Context, id string, cell int) (*entity.Snapshot, bool, error) {
	log := that.logger.With("method", "MakeTurn", "session", id)

	snapshot, err := that.sessionService.MakeTurn(ctx, id, cell)
	if err != nil {
		if snapshot != nil && apperror.IsRejectedMove(err) {
			log.Debug("move rejected", "cell", cell, "reason", err)
			return snapshot, false, nil
		}

		return nil, false, fmt.Errorf("failed to make turn: %w", err)
	}

	snapshot, err = that.afterTransition(ctx, snapshot)
	if err != nil {
		return nil, false, err
	}

	return snapshot, true, nil
}

func (that *gameUseCase) Reset(ctx context.Context, id string) (*entity.Snapshot, error) {
	snapshot, err := that.sessionService.Reset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	return that.afterTransition(ctx, snapshot)
}

func (that *gameUseCase) SelectMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error) {
	snapshot, err := that.sessionService.SelectMode(ctx, id, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to select mode: %w", err)
	}

	return that.afterTransition(ctx, snapshot)
}

func (that *gameUseCase) ChangeMode(ctx context.Context, id string) (*entity.Snapshot, error) {
	snapshot, err := that.sessionService.ChangeMode(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to change mode: %w", err)
	}

	return snapshot, nil
}

func (that *gameUseCase) Results(ctx context.Context, limit int) ([]*entity.Result, error) {
	results, err := that.resultService.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	return results, nil
}

func (that *gameUseCase) Stats(ctx context.Context) (*entity.Stats, error) {
	stats, err := that.resultService.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// afterTransition records finished games and hands the turn to the automated
// player when it is due. It returns the freshest snapshot, which already holds
// the automated move when the bot plays inline.
func (that *gameUseCase) afterTransition(ctx context.Context, snapshot *entity.Snapshot) (*entity.Snapshot, error) {
	that.recordResult(ctx, snapshot)

	if !snapshot.AutomatedTurn {
		return snapshot, nil
	}

	id, revision := snapshot.ID, snapshot.Revision
	that.botService.Schedule(func() {
		that.playAutomated(id, revision)
	})

	latest, err := that.sessionService.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	return latest, nil
}

func (that *gameUseCase) playAutomated(id string, revision uint64) {
	log := that.logger.With("method", "playAutomated", "session", id)

	ctx, cancel := context.WithTimeout(context.Background(), automatedMoveTimeout)
	defer cancel()

	snapshot, err := that.sessionService.PlayAutomated(ctx, id, revision)
	switch {
	case err == nil:
		that.recordResult(ctx, snapshot)
	case errors.Is(err, service.ErrStaleTrigger), errors.Is(err, apperror.ErrSessionNotFound), apperror.IsRejectedMove(err):
		log.Debug("automated move skipped", "reason", err)
	default:
		log.Error("automated move failed", "error", err)
	}
}

func (that *gameUseCase) recordResult(ctx context.Context, snapshot *entity.Snapshot) {
	if !snapshot.IsTerminal() {
		return
	}

	if err := that.resultService.Record(ctx, snapshot); err != nil {
		that.logger.Error("failed to record result", "session", snapshot.ID, "error", err)
		return
	}

	that.logger.Info("game finished", "session", snapshot.ID, "mode", snapshot.Mode, "outcome", snapshot.Outcome.Status, "winner", snapshot.Outcome.Winner)
}
