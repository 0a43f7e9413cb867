package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// PostgreSQLClusterRepository implements Cluster persistence for PostgreSQL databases.
type PostgreSQLClusterRepository struct {
	db *sql.DB
}

// NewPostgreSQLClusterRepository creates a new PostgreSQL Cluster repository instance.
func NewPostgreSQLClusterRepository(db *sql.DB) *PostgreSQLClusterRepository {
	return &PostgreSQLClusterRepository{db: db}
}

// Create inserts cluster. A taken flexid is skipped by ON CONFLICT so the
// surrounding transaction stays usable for the retry.
func (p *PostgreSQLClusterRepository) Create(ctx context.Context, cluster *graphDomain.Cluster) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO clusters (flexid, name, description, public, public_info, mark_for_destruction, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (flexid) DO NOTHING
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		cluster.FlexID,
		cluster.Name,
		cluster.Description,
		cluster.Public,
		cluster.PublicInfo,
		cluster.MarkForDestruction,
		cluster.CreatedAt,
		cluster.UpdatedAt,
	).Scan(&cluster.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create cluster")
	}
	return nil
}

// Get returns the first cluster matching pred.
func (p *PostgreSQLClusterRepository) Get(ctx context.Context, pred predicate.Predicate) (*graphDomain.Cluster, error) {
	querier := database.GetTx(ctx, p.db)

	clause, args, err := where(pred, predicate.Postgres, predicate.TableClusters, 0)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + clusterColumns + ` FROM clusters WHERE ` + clause + ` ORDER BY clusters.id LIMIT 1`

	cluster, err := scanCluster(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get cluster")
	}
	return cluster, nil
}

// List returns the clusters matching pred ordered by id.
func (p *PostgreSQLClusterRepository) List(
	ctx context.Context,
	pred predicate.Predicate,
	offset, limit int,
) ([]*graphDomain.Cluster, error) {
	querier := database.GetTx(ctx, p.db)

	clause, args, err := where(pred, predicate.Postgres, predicate.TableClusters, 0)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM clusters WHERE %s ORDER BY clusters.id LIMIT $%d OFFSET $%d`,
		clusterColumns, clause, len(args)+1, len(args)+2)

	rows, err := querier.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clusters")
	}
	return collectClusters(rows)
}

// SetMarkForDestruction sets or clears the destruction deadline of a cluster.
func (p *PostgreSQLClusterRepository) SetMarkForDestruction(ctx context.Context, id int64, at *time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clusters SET mark_for_destruction = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, at, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark cluster for destruction")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetFlexID assigns flexID unless another cluster already carries it.
func (p *PostgreSQLClusterRepository) SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clusters SET flexid = $1
			  WHERE id = $2 AND NOT EXISTS (SELECT 1 FROM clusters taken WHERE taken.flexid = $1)`

	result, err := querier.ExecContext(ctx, query, flexID, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to set cluster flexid")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// ListMissingFlexID returns up to limit clusters without flexid.
func (p *PostgreSQLClusterRepository) ListMissingFlexID(ctx context.Context, limit int) ([]int64, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT id FROM clusters WHERE flexid IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clusters without flexid")
	}
	return collectIDs(rows)
}

// DeleteExpiredEmpty removes clusters past their deadline that hold no content.
func (p *PostgreSQLClusterRepository) DeleteExpiredEmpty(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM clusters
			  WHERE mark_for_destruction <= $1
			  AND NOT EXISTS (SELECT 1 FROM contents WHERE contents.cluster_id = clusters.id)`

	result, err := querier.ExecContext(ctx, query, now)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired clusters")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}
