package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

type ResultService interface {
	Record(ctx context.Context, snapshot *entity.Snapshot) error
	Recent(ctx context.Context, limit int) ([]*entity.Result, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	List(ctx context.Context, limit int) ([]*entity.Result, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

type resultService struct {
	resultRepo resultRepo
}

func NewResultService(resultRepo resultRepo) ResultService {
	return &resultService{
		resultRepo: resultRepo,
	}
}

// Record stores a finished game. Snapshots of unfinished games are ignored.
func (that *resultService) Record(ctx context.Context, snapshot *entity.Snapshot) error {
	if !snapshot.IsTerminal() {
		return nil
	}

	if err := that.resultRepo.Save(ctx, entity.NewResult(snapshot)); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

func (that *resultService) Recent(ctx context.Context, limit int) ([]*entity.Result, error) {
	switch {
	case limit <= 0:
		limit = defaultResultsLimit
	case limit > maxResultsLimit:
		limit = maxResultsLimit
	}

	results, err := that.resultRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

func (that *resultService) Stats(ctx context.Context) (*entity.Stats, error) {
	stats, err := that.resultRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	return stats, nil
}
