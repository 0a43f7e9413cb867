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

// PostgreSQLContentRepository implements Content, tag and reference persistence
// for PostgreSQL databases.
type PostgreSQLContentRepository struct {
	db *sql.DB
}

// NewPostgreSQLContentRepository creates a new PostgreSQL Content repository instance.
func NewPostgreSQLContentRepository(db *sql.DB) *PostgreSQLContentRepository {
	return &PostgreSQLContentRepository{db: db}
}

// Create inserts content. A taken flexid is skipped by ON CONFLICT so the
// surrounding transaction stays usable for the retry.
func (p *PostgreSQLContentRepository) Create(ctx context.Context, content *graphDomain.Content) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO contents (flexid, cluster_id, nonce, value_ref, content_hash, mark_for_destruction,
			  created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (flexid) DO NOTHING
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		content.FlexID,
		content.ClusterID,
		content.Nonce,
		content.ValueRef,
		content.ContentHash,
		content.MarkForDestruction,
		content.CreatedAt,
		content.UpdatedAt,
	).Scan(&content.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create content")
	}
	return nil
}

// Update stores the value fields of content.
func (p *PostgreSQLContentRepository) Update(ctx context.Context, content *graphDomain.Content) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE contents SET nonce = $1, value_ref = $2, content_hash = $3, updated_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		content.Nonce,
		content.ValueRef,
		content.ContentHash,
		content.UpdatedAt,
		content.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update content")
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

// First returns the first content matching pred with its tags.
func (p *PostgreSQLContentRepository) First(
	ctx context.Context,
	pred predicate.Predicate,
) (*graphDomain.Content, error) {
	querier := database.GetTx(ctx, p.db)

	clause, args, err := where(pred, predicate.Postgres, predicate.TableContents, 0)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + contentColumns + ` FROM contents WHERE ` + clause + ` ORDER BY contents.id LIMIT 1`

	content, err := scanContent(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get content")
	}
	if err := loadTags(ctx, querier, predicate.Postgres, []*graphDomain.Content{content}); err != nil {
		return nil, err
	}
	return content, nil
}

// List returns a page of the contents matching pred with their tags.
func (p *PostgreSQLContentRepository) List(
	ctx context.Context,
	pred predicate.Predicate,
	offset, limit int,
) ([]*graphDomain.Content, error) {
	querier := database.GetTx(ctx, p.db)

	clause, args, err := where(pred, predicate.Postgres, predicate.TableContents, 0)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM contents WHERE %s ORDER BY contents.id LIMIT $%d OFFSET $%d`,
		contentColumns, clause, len(args)+1, len(args)+2)

	rows, err := querier.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list contents")
	}
	contents, err := collectContents(rows)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, querier, predicate.Postgres, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// Find returns every content matching pred with its tags.
func (p *PostgreSQLContentRepository) Find(
	ctx context.Context,
	pred predicate.Predicate,
) ([]*graphDomain.Content, error) {
	querier := database.GetTx(ctx, p.db)

	clause, args, err := where(pred, predicate.Postgres, predicate.TableContents, 0)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + contentColumns + ` FROM contents WHERE ` + clause + ` ORDER BY contents.id`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find contents")
	}
	contents, err := collectContents(rows)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, querier, predicate.Postgres, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// ListIDs returns the ids of the contents matching pred.
func (p *PostgreSQLContentRepository) ListIDs(ctx context.Context, pred predicate.Predicate) ([]int64, error) {
	querier := database.GetTx(ctx, p.db)

	clause, args, err := where(pred, predicate.Postgres, predicate.TableContents, 0)
	if err != nil {
		return nil, err
	}
	rows, err := querier.QueryContext(ctx,
		`SELECT contents.id FROM contents WHERE `+clause+` ORDER BY contents.id`, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list content ids")
	}
	return collectIDs(rows)
}

// ReplaceTags swaps the tag set of a content.
func (p *PostgreSQLContentRepository) ReplaceTags(ctx context.Context, id int64, tags []string) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM content_tags WHERE content_id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete content tags")
	}
	return insertTags(ctx, querier, predicate.Postgres, id, tags)
}

// AddTags adds every tag to every content that lacks it.
func (p *PostgreSQLContentRepository) AddTags(ctx context.Context, contentIDs []int64, tags []string) error {
	if len(contentIDs) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO content_tags (content_id, tag)
			  SELECT contents.id, $1 FROM contents
			  WHERE contents.id IN (` + placeholders(predicate.Postgres, 1, len(contentIDs)) + `)
			  AND NOT EXISTS (
				  SELECT 1 FROM content_tags existing
				  WHERE existing.content_id = contents.id AND existing.tag = $1
			  )`

	for _, tag := range tags {
		args := append([]any{tag}, int64Args(contentIDs)...)
		if _, err := querier.ExecContext(ctx, query, args...); err != nil {
			return apperrors.Wrap(err, "failed to add content tags")
		}
	}
	return nil
}

// ReplaceReferences swaps the outgoing references of a content.
func (p *PostgreSQLContentRepository) ReplaceReferences(
	ctx context.Context,
	id int64,
	refs []*graphDomain.ContentReference,
) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM content_references WHERE source_id = $1`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete content references")
	}
	return insertReferences(ctx, querier, predicate.Postgres, id, refs)
}

// ListReferences returns the outgoing references of sourceID with their target.
func (p *PostgreSQLContentRepository) ListReferences(
	ctx context.Context,
	sourceID int64,
) ([]*graphDomain.ContentReference, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + referenceColumns + `, contents.flexid, contents.content_hash
			  FROM content_references
			  JOIN contents ON contents.id = content_references.target_id
			  WHERE content_references.source_id = $1
			  ORDER BY content_references.id`

	rows, err := querier.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list content references")
	}
	return collectReferences(rows, true)
}

// ListByTarget returns the references pointing at targetID.
func (p *PostgreSQLContentRepository) ListByTarget(
	ctx context.Context,
	targetID int64,
) ([]*graphDomain.ContentReference, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + referenceColumns + ` FROM content_references
			  WHERE content_references.target_id = $1
			  ORDER BY content_references.id`

	rows, err := querier.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list references by target")
	}
	return collectReferences(rows, false)
}

// CountInGroup counts the references of sourceID in group not pointing at excludeTargetID.
func (p *PostgreSQLContentRepository) CountInGroup(
	ctx context.Context,
	sourceID int64,
	group string,
	excludeTargetID int64,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM content_references
			  WHERE source_id = $1 AND group_name = $2 AND target_id <> $3`

	var count int64
	if err := querier.QueryRowContext(ctx, query, sourceID, group, excludeTargetID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count references in group")
	}
	return count, nil
}

// DeleteReferencesInGroup removes the references of sourceID in group.
func (p *PostgreSQLContentRepository) DeleteReferencesInGroup(ctx context.Context, sourceID int64, group string) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx,
		`DELETE FROM content_references WHERE source_id = $1 AND group_name = $2`, sourceID, group)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete references in group")
	}
	return nil
}

// SetMarkForDestruction sets or clears the destruction deadline of ids.
func (p *PostgreSQLContentRepository) SetMarkForDestruction(
	ctx context.Context,
	ids []int64,
	at *time.Time,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE contents SET mark_for_destruction = $1, updated_at = $2
			  WHERE id IN (` + placeholders(predicate.Postgres, 2, len(ids)) + `)`

	args := append([]any{at, time.Now().UTC()}, int64Args(ids)...)
	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to mark contents for destruction")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

// MarkFetchedForDestruction schedules fully fetched contents in one
// conditional update: only rows without deadline, with a used fetch grant and
// without any unused one are touched.
func (p *PostgreSQLContentRepository) MarkFetchedForDestruction(
	ctx context.Context,
	ids []int64,
	at time.Time,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE contents SET mark_for_destruction = $1
			  WHERE id IN (` + placeholders(predicate.Postgres, 2, len(ids)) + `)
			  AND mark_for_destruction IS NULL
			  AND EXISTS (
				  SELECT 1 FROM content_actions
				  WHERE content_actions.content_id = contents.id
				  AND content_actions.group_name = $2 AND content_actions.used
			  )
			  AND NOT EXISTS (
				  SELECT 1 FROM content_actions
				  WHERE content_actions.content_id = contents.id
				  AND content_actions.group_name = $2 AND NOT content_actions.used
			  )`

	args := append([]any{at, graphDomain.ActionGroupFetch}, int64Args(ids)...)
	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to mark fetched contents")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

// SetFlexID assigns flexID unless another content carries it and rewrites
// the id tag.
func (p *PostgreSQLContentRepository) SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE contents SET flexid = $1
			  WHERE id = $2 AND NOT EXISTS (SELECT 1 FROM contents taken WHERE taken.flexid = $1)`

	result, err := querier.ExecContext(ctx, query, flexID, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to set content flexid")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return apperrors.ErrConflict
	}

	_, err = querier.ExecContext(ctx,
		`DELETE FROM content_tags WHERE content_id = $1 AND tag LIKE $2`, id, graphDomain.TagID+"=%")
	if err != nil {
		return apperrors.Wrap(err, "failed to delete id tag")
	}
	return insertTags(ctx, querier, predicate.Postgres, id, []string{idTag(flexID)})
}

// ListMissingFlexID returns up to limit contents without flexid.
func (p *PostgreSQLContentRepository) ListMissingFlexID(ctx context.Context, limit int) ([]int64, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT id FROM contents WHERE flexid IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list contents without flexid")
	}
	return collectIDs(rows)
}

// Delete removes a content with its content scoped actions. Tags, references
// and content actions cascade.
func (p *PostgreSQLContentRepository) Delete(ctx context.Context, id int64) (string, bool, error) {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx,
		`DELETE FROM actions WHERE id IN (SELECT action_id FROM content_actions WHERE content_id = $1)`, id)
	if err != nil {
		return "", false, apperrors.Wrap(err, "failed to delete content actions")
	}

	var valueRef string
	err = querier.QueryRowContext(ctx, `DELETE FROM contents WHERE id = $1 RETURNING value_ref`, id).Scan(&valueRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "failed to delete content")
	}
	return valueRef, true, nil
}

// ListExpiredIDs returns the contents whose deadline is not after now.
func (p *PostgreSQLContentRepository) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT id FROM contents WHERE mark_for_destruction <= $1 ORDER BY id`, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired contents")
	}
	return collectIDs(rows)
}

// ListPublicKeys returns a batch of PublicKey contents after afterID.
func (p *PostgreSQLContentRepository) ListPublicKeys(
	ctx context.Context,
	afterID int64,
	limit int,
) ([]*graphDomain.Content, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + contentColumns + ` FROM contents
			  WHERE contents.id > $1
			  AND EXISTS (SELECT 1 FROM content_tags WHERE content_tags.content_id = contents.id AND content_tags.tag = $2)
			  ORDER BY contents.id LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, afterID, publicKeyTag, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list public keys")
	}
	contents, err := collectContents(rows)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, querier, predicate.Postgres, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// ReplacePublicKeyHash moves the content hash of PublicKey contents from any of from to to.
func (p *PostgreSQLContentRepository) ReplacePublicKeyHash(
	ctx context.Context,
	from []string,
	to string,
) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE contents SET content_hash = $1, updated_at = $2
			  WHERE content_hash IN (` + placeholders(predicate.Postgres, 3, len(from)) + `)
			  AND EXISTS (SELECT 1 FROM content_tags WHERE content_tags.content_id = contents.id AND content_tags.tag = $3)`

	args := append([]any{to, time.Now().UTC(), publicKeyTag}, stringArgs(from)...)
	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to replace public key hash")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows, nil
}

// LockForTransfer selects the content FOR UPDATE. With requireTag the content
// must carry the transfer flag.
func (p *PostgreSQLContentRepository) LockForTransfer(
	ctx context.Context,
	id int64,
	requireTag bool,
) (*graphDomain.Content, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + contentColumns + ` FROM contents WHERE contents.id = $1`
	args := []any{id}
	if requireTag {
		query += ` AND EXISTS (SELECT 1 FROM content_tags
				   WHERE content_tags.content_id = contents.id AND content_tags.tag = $2)`
		args = append(args, graphDomain.TagTransfer)
	}
	query += ` FOR UPDATE`

	content, err := scanContent(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to lock content")
	}
	if err := loadTags(ctx, querier, predicate.Postgres, []*graphDomain.Content{content}); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateNonce stores a new nonce for a content.
func (p *PostgreSQLContentRepository) UpdateNonce(ctx context.Context, id int64, nonce string) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx,
		`UPDATE contents SET nonce = $1, updated_at = $2 WHERE id = $3`, nonce, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update content nonce")
	}
	return nil
}
