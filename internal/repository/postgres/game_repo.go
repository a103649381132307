package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/global-command/api/internal/model"
)

const gameColumns = `g.id, g.name, g.creator_id, g.status, g.winner, g.seed, g.turn_timeout_secs,
		        g.created_at, g.started_at, g.finished_at`

// GameRepo handles game and game_seats database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var g model.Game
	var winner sql.NullString
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &winner, &g.Seed, &g.TurnTimeoutSecs,
		&g.CreatedAt, &g.StartedAt, &g.FinishedAt)
	if err != nil {
		return nil, err
	}
	g.Winner = winner.String
	return &g, nil
}

// Create inserts a new game in the waiting state.
func (r *GameRepo) Create(ctx context.Context, name, creatorID string, seed int64, turnTimeoutSecs int) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx,
		`INSERT INTO games AS g (name, creator_id, seed, turn_timeout_secs)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+gameColumns,
		name, creatorID, seed, turnTimeoutSecs,
	))
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

// FindByID returns a game by ID with its seats.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games g WHERE g.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	seats, err := r.ListSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Seats = seats
	return g, nil
}

func (r *GameRepo) listGames(ctx context.Context, what, query string, args ...any) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s games: %w", what, err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range games {
		seats, err := r.ListSeats(ctx, games[i].ID)
		if err != nil {
			return nil, err
		}
		games[i].Seats = seats
	}
	return games, nil
}

// ListOpen returns games in "waiting" status.
func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	return r.listGames(ctx, "open",
		`SELECT `+gameColumns+` FROM games g WHERE g.status = 'waiting'
		 ORDER BY g.created_at DESC LIMIT 50`)
}

// ListByUser returns all games a user created or holds a seat in.
func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	return r.listGames(ctx, "user",
		`SELECT `+gameColumns+` FROM games g
		 WHERE g.creator_id = $1
		    OR EXISTS (SELECT 1 FROM game_seats s WHERE s.game_id = g.id AND s.user_id = $1)
		 ORDER BY g.created_at DESC LIMIT 50`, userID)
}

// ListActive returns all games with status 'active', including their seats.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	return r.listGames(ctx, "active",
		`SELECT `+gameColumns+` FROM games g WHERE g.status = 'active' ORDER BY g.created_at`)
}

// ListSeats returns the seats of a game in join order.
func (r *GameRepo) ListSeats(ctx context.Context, gameID string) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, power, user_id, is_bot, joined_at FROM game_seats
		 WHERE game_id = $1 ORDER BY joined_at, power`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		var userID sql.NullString
		if err := rows.Scan(&s.GameID, &s.Power, &userID, &s.IsBot, &s.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		s.UserID = userID.String
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// ClaimSeats gives a user the listed powers. The whole claim fails if any
// power is already seated.
func (r *GameRepo) ClaimSeats(ctx context.Context, gameID, userID string, powers []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range powers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_seats (game_id, power, user_id) VALUES ($1, $2, $3)`,
			gameID, p, userID,
		); err != nil {
			return fmt.Errorf("claim seat %s: %w", p, err)
		}
	}
	return tx.Commit()
}

// Start seats the autopilot on botPowers and marks the game active.
func (r *GameRepo) Start(ctx context.Context, gameID string, botPowers []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range botPowers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_seats (game_id, power, is_bot) VALUES ($1, $2, true)`,
			gameID, p,
		); err != nil {
			return fmt.Errorf("seat bot %s: %w", p, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET status = 'active', started_at = now() WHERE id = $1`, gameID,
	); err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	return tx.Commit()
}

// SetFinished marks a game as finished.
func (r *GameRepo) SetFinished(ctx context.Context, gameID, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', winner = $1, finished_at = now() WHERE id = $2`,
		winner, gameID,
	)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}

// Delete removes a game and all associated data (cascades to seats, actions and snapshots).
func (r *GameRepo) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
