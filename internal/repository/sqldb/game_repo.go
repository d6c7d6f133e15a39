package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iamasit07/connect4-bot/internal/domain"
)

type GameRepo struct {
	DB     *sql.DB
	driver string
}

func NewGameRepo(db *sql.DB, driver string) *GameRepo {
	return &GameRepo{DB: db, driver: driver}
}

const gameColumns = `game_id, game_name, player1_id, player1_name, player2_id, player2_name,
	winner_id, winner_name, reason, total_moves, duration_seconds, created_at, finished_at, board_state`

// SaveGame upserts a finished game.
func (r *GameRepo) SaveGame(ctx context.Context, rec domain.GameRecord) error {
	boardJSON, err := json.Marshal(rec.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO games (` + gameColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (game_id) DO UPDATE SET
		winner_id = EXCLUDED.winner_id,
		winner_name = EXCLUDED.winner_name,
		reason = EXCLUDED.reason,
		total_moves = EXCLUDED.total_moves,
		duration_seconds = EXCLUDED.duration_seconds,
		finished_at = EXCLUDED.finished_at,
		board_state = EXCLUDED.board_state`

	_, err = r.DB.ExecContext(ctx, rebind(r.driver, query),
		rec.GameID, rec.GameName,
		rec.Player1ID, rec.Player1Name, rec.Player2ID, rec.Player2Name,
		nullString(rec.WinnerID), nullString(rec.WinnerName),
		rec.Reason, rec.TotalMoves, rec.DurationSeconds,
		rec.CreatedAt.UTC(), rec.FinishedAt.UTC(), string(boardJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}
	return nil
}

// GetGame returns the archived game, or nil when there is none.
func (r *GameRepo) GetGame(ctx context.Context, gameID string) (*domain.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE game_id = ?`

	rec, err := scanGame(r.DB.QueryRowContext(ctx, rebind(r.driver, query), gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return rec, nil
}

// ListRecent returns up to limit games, most recently finished first.
func (r *GameRepo) ListRecent(ctx context.Context, limit int) ([]domain.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY finished_at DESC, game_id LIMIT ?`
	return r.list(ctx, rebind(r.driver, query), limit)
}

// ListByPlayer returns a player's games, most recently finished first.
func (r *GameRepo) ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games
	WHERE player1_id = ? OR player2_id = ?
	ORDER BY finished_at DESC, game_id LIMIT ?`
	return r.list(ctx, rebind(r.driver, query), playerID, playerID, limit)
}

func (r *GameRepo) list(ctx context.Context, query string, args ...any) ([]domain.GameRecord, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	games := []domain.GameRecord{}
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *rec)
	}
	return games, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*domain.GameRecord, error) {
	var rec domain.GameRecord
	var winnerID, winnerName sql.NullString
	var boardJSON string

	err := row.Scan(
		&rec.GameID,
		&rec.GameName,
		&rec.Player1ID,
		&rec.Player1Name,
		&rec.Player2ID,
		&rec.Player2Name,
		&winnerID,
		&winnerName,
		&rec.Reason,
		&rec.TotalMoves,
		&rec.DurationSeconds,
		&rec.CreatedAt,
		&rec.FinishedAt,
		&boardJSON,
	)
	if err != nil {
		return nil, err
	}

	rec.WinnerID = winnerID.String
	rec.WinnerName = winnerName.String
	if err := json.Unmarshal([]byte(boardJSON), &rec.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
