package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// MySQLClusterRepository implements Cluster persistence for MySQL databases.
type MySQLClusterRepository struct {
	db *sql.DB
}

// NewMySQLClusterRepository creates a new MySQL Cluster repository instance.
func NewMySQLClusterRepository(db *sql.DB) *MySQLClusterRepository {
	return &MySQLClusterRepository{db: db}
}

// Create inserts cluster. A duplicate key only fails the statement in MySQL,
// so the transaction survives for the retry.
func (m *MySQLClusterRepository) Create(ctx context.Context, cluster *graphDomain.Cluster) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO clusters (flexid, name, description, public, public_info, mark_for_destruction, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	flexID, err := cluster.FlexID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cluster flexid")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		flexID,
		cluster.Name,
		cluster.Description,
		cluster.Public,
		cluster.PublicInfo,
		cluster.MarkForDestruction,
		cluster.CreatedAt,
		cluster.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create cluster")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to get cluster id")
	}
	cluster.ID = id
	return nil
}

// Get returns the first cluster matching pred.
func (m *MySQLClusterRepository) Get(ctx context.Context, pred predicate.Predicate) (*graphDomain.Cluster, error) {
	querier := database.GetTx(ctx, m.db)

	clause, args, err := where(pred, predicate.MySQL, predicate.TableClusters, 0)
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
func (m *MySQLClusterRepository) List(
	ctx context.Context,
	pred predicate.Predicate,
	offset, limit int,
) ([]*graphDomain.Cluster, error) {
	querier := database.GetTx(ctx, m.db)

	clause, args, err := where(pred, predicate.MySQL, predicate.TableClusters, 0)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + clusterColumns + ` FROM clusters WHERE ` + clause + ` ORDER BY clusters.id LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clusters")
	}
	return collectClusters(rows)
}

// SetMarkForDestruction sets or clears the destruction deadline of a cluster.
func (m *MySQLClusterRepository) SetMarkForDestruction(ctx context.Context, id int64, at *time.Time) error {
	querier := database.GetTx(ctx, m.db)

	var exists bool
	err := querier.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM clusters WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return apperrors.Wrap(err, "failed to check cluster")
	}
	if !exists {
		return apperrors.ErrNotFound
	}

	// MySQL reports unchanged rows as unaffected, so existence is checked above.
	query := `UPDATE clusters SET mark_for_destruction = ?, updated_at = ? WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, at, time.Now().UTC(), id); err != nil {
		return apperrors.Wrap(err, "failed to mark cluster for destruction")
	}
	return nil
}

// SetFlexID assigns flexID; a duplicate yields ErrConflict.
func (m *MySQLClusterRepository) SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	raw, err := flexID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cluster flexid")
	}
	if _, err := querier.ExecContext(ctx, `UPDATE clusters SET flexid = ? WHERE id = ?`, raw, id); err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to set cluster flexid")
	}
	return nil
}

// ListMissingFlexID returns up to limit clusters without flexid.
func (m *MySQLClusterRepository) ListMissingFlexID(ctx context.Context, limit int) ([]int64, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT id FROM clusters WHERE flexid IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clusters without flexid")
	}
	return collectIDs(rows)
}

// DeleteExpiredEmpty removes clusters past their deadline that hold no content.
func (m *MySQLClusterRepository) DeleteExpiredEmpty(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM clusters
			  WHERE mark_for_destruction <= ?
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
