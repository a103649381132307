package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/global-command/api/internal/model"
)

// ActionRepo handles the game_actions history and game_snapshots.
type ActionRepo struct {
	db *sql.DB
}

// NewActionRepo creates an ActionRepo.
func NewActionRepo(db *sql.DB) *ActionRepo {
	return &ActionRepo{db: db}
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func nullUUID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAction(ctx context.Context, db execer, rec *model.ActionRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO game_actions (game_id, seq, power, user_id, action, events, dice_before, dice_after)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.GameID, rec.Seq, rec.Power, nullUUID(rec.UserID), rec.Action, nullJSON(rec.Events), rec.DiceBefore, rec.DiceAfter,
	)
	if err != nil {
		return fmt.Errorf("insert action %d: %w", rec.Seq, err)
	}
	return nil
}

func upsertSnapshot(ctx context.Context, db execer, gameID string, seq int, state json.RawMessage) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO game_snapshots (game_id, action_seq, state)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (game_id)
		 DO UPDATE SET action_seq = EXCLUDED.action_seq, state = EXCLUDED.state, updated_at = now()`,
		gameID, seq, state,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Append records an applied action and the state it produced.
func (r *ActionRepo) Append(ctx context.Context, rec *model.ActionRecord, state json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertAction(ctx, tx, rec); err != nil {
		return err
	}
	if err := upsertSnapshot(ctx, tx, rec.GameID, rec.Seq, state); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteLast removes the newest action of a game after an undo and stores
// the restored state.
func (r *ActionRepo) DeleteLast(ctx context.Context, gameID string, state json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM game_actions
		 WHERE game_id = $1 AND seq = (SELECT MAX(seq) FROM game_actions WHERE game_id = $1)
		 RETURNING seq`, gameID,
	).Scan(&seq)
	if err == sql.ErrNoRows {
		seq = 1
	} else if err != nil {
		return fmt.Errorf("delete last action: %w", err)
	}
	if err := upsertSnapshot(ctx, tx, gameID, seq-1, state); err != nil {
		return err
	}
	return tx.Commit()
}

// Replace swaps a game's whole history, used when a save is loaded.
func (r *ActionRepo) Replace(ctx context.Context, gameID string, recs []model.ActionRecord, state json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM game_actions WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("clear actions: %w", err)
	}
	for i := range recs {
		if err := insertAction(ctx, tx, &recs[i]); err != nil {
			return err
		}
	}
	if err := upsertSnapshot(ctx, tx, gameID, len(recs), state); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns a game's actions in order.
func (r *ActionRepo) List(ctx context.Context, gameID string) ([]model.ActionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, seq, power, user_id, action, events, dice_before, dice_after, created_at
		 FROM game_actions WHERE game_id = $1 ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var recs []model.ActionRecord
	for rows.Next() {
		var rec model.ActionRecord
		var userID sql.NullString
		var action, events []byte
		if err := rows.Scan(&rec.GameID, &rec.Seq, &rec.Power, &userID, &action, &events,
			&rec.DiceBefore, &rec.DiceAfter, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.UserID = userID.String
		rec.Action = action
		rec.Events = events
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// LatestSnapshot returns the stored state of a game, or nil if none exists.
func (r *ActionRepo) LatestSnapshot(ctx context.Context, gameID string) (*model.Snapshot, error) {
	var s model.Snapshot
	var state []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT game_id, action_seq, state, updated_at FROM game_snapshots WHERE game_id = $1`, gameID,
	).Scan(&s.GameID, &s.ActionSeq, &state, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	s.State = state
	return &s, nil
}
