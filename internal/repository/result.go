package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	List(ctx context.Context, limit int) ([]*entity.Result, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT INTO results (session_id, mode, automated, winner, line, board, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

	line, err := json.Marshal(result.Line)
	if err != nil {
		return fmt.Errorf("can't marshal line: %w", err)
	}

	board, err := json.Marshal(result.Board)
	if err != nil {
		return fmt.Errorf("can't marshal board: %w", err)
	}

	_, err = that.conn.ExecContext(ctx, query,
		result.SessionID, string(result.Mode), string(result.AutomatedPlayer), string(result.Winner), string(line), string(board), result.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

// List returns the latest results first.
func (that *resultRepository) List(ctx context.Context, limit int) ([]*entity.Result, error) {
	query := `SELECT session_id, mode, automated, winner, line, board, finished_at FROM results ORDER BY finished_at DESC, id DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	results := make([]*entity.Result, 0, limit)
	for rows.Next() {
		var (
			result                  entity.Result
			mode, automated, winner string
			line, board             string
			finishedAtMillis        int64
		)

		if err = rows.Scan(&result.SessionID, &mode, &automated, &winner, &line, &board, &finishedAtMillis); err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		if err = json.Unmarshal([]byte(line), &result.Line); err != nil {
			return nil, fmt.Errorf("can't unmarshal line: %w", err)
		}

		if err = json.Unmarshal([]byte(board), &result.Board); err != nil {
			return nil, fmt.Errorf("can't unmarshal board: %w", err)
		}

		result.Mode = entity.Mode(mode)
		result.AutomatedPlayer = entity.Cell(automated)
		result.Winner = entity.Cell(winner)
		result.FinishedAt = time.UnixMilli(finishedAtMillis).UTC()

		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read results: %w", err)
	}

	return results, nil
}

// Stats counts outcomes; AIWins counts games won by the mark the automated player held in them.
func (that *resultRepository) Stats(ctx context.Context) (*entity.Stats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(winner = 'X'), 0),
		COALESCE(SUM(winner = 'O'), 0),
		COALESCE(SUM(winner = ''), 0),
		COALESCE(SUM(automated <> '' AND winner = automated), 0)
	FROM results`

	var stats entity.Stats

	err := that.conn.QueryRowContext(ctx, query).
		Scan(&stats.Games, &stats.XWins, &stats.OWins, &stats.Draws, &stats.AIWins)
	if err != nil {
		return nil, fmt.Errorf("can't count results: %w", err)
	}

	return &stats, nil
}
