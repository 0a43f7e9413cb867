package repository

import (
	"context"
	"database/sql"
	"fmt"

	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// PostgreSQLActionRepository implements Action and ContentAction persistence
// for PostgreSQL databases.
type PostgreSQLActionRepository struct {
	db *sql.DB
}

// NewPostgreSQLActionRepository creates a new PostgreSQL Action repository instance.
func NewPostgreSQLActionRepository(db *sql.DB) *PostgreSQLActionRepository {
	return &PostgreSQLActionRepository{db: db}
}

// Create inserts action and its content action.
func (p *PostgreSQLActionRepository) Create(ctx context.Context, action *graphDomain.Action) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO actions (cluster_id, key_hash, nonce, value, action_type, start_at, stop_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		action.ClusterID,
		action.KeyHash,
		action.Nonce,
		action.Value,
		action.ActionType,
		action.Start,
		action.Stop,
	).Scan(&action.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create action")
	}

	ca := action.ContentAction
	if ca == nil {
		return nil
	}
	ca.ActionID = action.ID
	err = querier.QueryRowContext(ctx,
		`INSERT INTO content_actions (action_id, content_id, group_name, used) VALUES ($1, $2, $3, $4) RETURNING id`,
		ca.ActionID, ca.ContentID, ca.Group, ca.Used,
	).Scan(&ca.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create content action")
	}
	return nil
}

// ListActive returns the candidate actions of one cluster, newest first.
func (p *PostgreSQLActionRepository) ListActive(
	ctx context.Context,
	q authzUsecase.ActionQuery,
) ([]*graphDomain.Action, error) {
	if len(q.KeyHashes) == 0 {
		return []*graphDomain.Action{}, nil
	}
	querier := database.GetTx(ctx, p.db)

	args := []any{q.ClusterFlexID, q.Now}
	query := `SELECT ` + actionColumns + `
			  FROM actions
			  JOIN clusters ON clusters.id = actions.cluster_id
			  LEFT JOIN content_actions ON content_actions.action_id = actions.id
			  WHERE clusters.flexid = $1
			  AND actions.start_at <= $2
			  AND (actions.stop_at IS NULL OR actions.stop_at >= $2)
			  AND actions.key_hash IN (` + placeholders(predicate.Postgres, len(args), len(q.KeyHashes)) + `)`
	args = append(args, stringArgs(q.KeyHashes)...)

	if q.ContentScope != nil {
		clause, scopeArgs, err := where(q.ContentScope, predicate.Postgres, predicate.TableContents, len(args))
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(` AND (content_actions.id IS NULL OR content_actions.content_id IN (
				  SELECT contents.id FROM contents WHERE %s))`, clause)
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
func (p *PostgreSQLActionRepository) NormalizeKeyHash(ctx context.Context, from, to string) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `UPDATE actions SET key_hash = $1 WHERE key_hash = $2`, to, from); err != nil {
		return apperrors.Wrap(err, "failed to normalize action key hash")
	}
	return nil
}

// MarkUsed flags content actions as used.
func (p *PostgreSQLActionRepository) MarkUsed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE content_actions SET used = TRUE WHERE id IN (` +
		placeholders(predicate.Postgres, 0, len(ids)) + `)`
	if _, err := querier.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return apperrors.Wrap(err, "failed to mark content actions used")
	}
	return nil
}
