package repository

import (
	"context"
	"database/sql"

	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// MySQLActionRepository implements Action and ContentAction persistence for
// MySQL databases.
type MySQLActionRepository struct {
	db *sql.DB
}

// NewMySQLActionRepository creates a new MySQL Action repository instance.
func NewMySQLActionRepository(db *sql.DB) *MySQLActionRepository {
	return &MySQLActionRepository{db: db}
}

// Create inserts action and its content action.
func (m *MySQLActionRepository) Create(ctx context.Context, action *graphDomain.Action) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO actions (cluster_id, key_hash, nonce, value, action_type, start_at, stop_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		action.ClusterID,
		action.KeyHash,
		action.Nonce,
		action.Value,
		action.ActionType,
		action.Start,
		action.Stop,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create action")
	}
	if action.ID, err = result.LastInsertId(); err != nil {
		return apperrors.Wrap(err, "failed to get action id")
	}

	ca := action.ContentAction
	if ca == nil {
		return nil
	}
	ca.ActionID = action.ID
	result, err = querier.ExecContext(ctx,
		`INSERT INTO content_actions (action_id, content_id, group_name, used) VALUES (?, ?, ?, ?)`,
		ca.ActionID, ca.ContentID, ca.Group, ca.Used,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create content action")
	}
	if ca.ID, err = result.LastInsertId(); err != nil {
		return apperrors.Wrap(err, "failed to get content action id")
	}
	return nil
}

// ListActive returns the candidate actions of one cluster, newest first.
func (m *MySQLActionRepository) ListActive(
	ctx context.Context,
	q authzUsecase.ActionQuery,
) ([]*graphDomain.Action, error) {
	if len(q.KeyHashes) == 0 {
		return []*graphDomain.Action{}, nil
	}
	querier := database.GetTx(ctx, m.db)

	flexID, err := q.ClusterFlexID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cluster flexid")
	}

	args := []any{flexID, q.Now, q.Now}
	query := `SELECT ` + actionColumns + `
			  FROM actions
			  JOIN clusters ON clusters.id = actions.cluster_id
			  LEFT JOIN content_actions ON content_actions.action_id = actions.id
			  WHERE clusters.flexid = ?
			  AND actions.start_at <= ?
			  AND (actions.stop_at IS NULL OR actions.stop_at >= ?)
			  AND actions.key_hash IN (` + placeholders(predicate.MySQL, 0, len(q.KeyHashes)) + `)`
	args = append(args, stringArgs(q.KeyHashes)...)

	if q.ContentScope != nil {
		clause, scopeArgs, err := where(q.ContentScope, predicate.MySQL, predicate.TableContents, len(args))
		if err != nil {
			return nil, err
		}
		query += ` AND (content_actions.id IS NULL OR content_actions.content_id IN (
				  SELECT contents.id FROM contents WHERE ` + clause + `))`
		args = append(args, scopeArgs...)
	}
	query += ` ORDER BY actions.start_at DESC, actions.id DESC`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active actions")
	}
	return collectActions(rows)
}

// NormalizeKeyHash rewrites the key hash from to to.
func (m *MySQLActionRepository) NormalizeKeyHash(ctx context.Context, from, to string) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `UPDATE actions SET key_hash = ? WHERE key_hash = ?`, to, from); err != nil {
		return apperrors.Wrap(err, "failed to normalize action key hash")
	}
	return nil
}

// MarkUsed flags content actions as used.
func (m *MySQLActionRepository) MarkUsed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE content_actions SET used = TRUE WHERE id IN (` +
		placeholders(predicate.MySQL, 0, len(ids)) + `)`
	if _, err := querier.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return apperrors.Wrap(err, "failed to mark content actions used")
	}
	return nil
}
