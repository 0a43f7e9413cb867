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

// MySQLContentRepository implements Content, tag and reference persistence
// for MySQL databases.
type MySQLContentRepository struct {
	db *sql.DB
}

// NewMySQLContentRepository creates a new MySQL Content repository instance.
func NewMySQLContentRepository(db *sql.DB) *MySQLContentRepository {
	return &MySQLContentRepository{db: db}
}

// Create inserts content; a duplicate flexid yields ErrConflict.
func (m *MySQLContentRepository) Create(ctx context.Context, content *graphDomain.Content) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO contents (flexid, cluster_id, nonce, value_ref, content_hash, mark_for_destruction,
			  created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	flexID, err := content.FlexID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal content flexid")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		flexID,
		content.ClusterID,
		content.Nonce,
		content.ValueRef,
		content.ContentHash,
		content.MarkForDestruction,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to create content")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to get content id")
	}
	content.ID = id
	return nil
}

// Update stores the value fields of content. MySQL counts only changed rows,
// so the affected count is not checked.
func (m *MySQLContentRepository) Update(ctx context.Context, content *graphDomain.Content) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE contents SET nonce = ?, value_ref = ?, content_hash = ?, updated_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(
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
	return nil
}

// First returns the first content matching pred with its tags.
func (m *MySQLContentRepository) First(
	ctx context.Context,
	pred predicate.Predicate,
) (*graphDomain.Content, error) {
	querier := database.GetTx(ctx, m.db)

	clause, args, err := where(pred, predicate.MySQL, predicate.TableContents, 0)
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
	if err := loadTags(ctx, querier, predicate.MySQL, []*graphDomain.Content{content}); err != nil {
		return nil, err
	}
	return content, nil
}

// List returns a page of the contents matching pred with their tags.
func (m *MySQLContentRepository) List(
	ctx context.Context,
	pred predicate.Predicate,
	offset, limit int,
) ([]*graphDomain.Content, error) {
	querier := database.GetTx(ctx, m.db)

	clause, args, err := where(pred, predicate.MySQL, predicate.TableContents, 0)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + contentColumns + ` FROM contents WHERE ` + clause + ` ORDER BY contents.id LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list contents")
	}
	contents, err := collectContents(rows)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, querier, predicate.MySQL, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// Find returns every content matching pred with its tags.
func (m *MySQLContentRepository) Find(
	ctx context.Context,
	pred predicate.Predicate,
) ([]*graphDomain.Content, error) {
	querier := database.GetTx(ctx, m.db)

	clause, args, err := where(pred, predicate.MySQL, predicate.TableContents, 0)
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
	if err := loadTags(ctx, querier, predicate.MySQL, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// ListIDs returns the ids of the contents matching pred.
func (m *MySQLContentRepository) ListIDs(ctx context.Context, pred predicate.Predicate) ([]int64, error) {
	querier := database.GetTx(ctx, m.db)

	clause, args, err := where(pred, predicate.MySQL, predicate.TableContents, 0)
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
func (m *MySQLContentRepository) ReplaceTags(ctx context.Context, id int64, tags []string) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM content_tags WHERE content_id = ?`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete content tags")
	}
	return insertTags(ctx, querier, predicate.MySQL, id, tags)
}

// AddTags adds every tag to every content that lacks it.
func (m *MySQLContentRepository) AddTags(ctx context.Context, contentIDs []int64, tags []string) error {
	if len(contentIDs) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO content_tags (content_id, tag)
			  SELECT contents.id, ? FROM contents
			  WHERE contents.id IN (` + placeholders(predicate.MySQL, 0, len(contentIDs)) + `)
			  AND NOT EXISTS (
				  SELECT 1 FROM content_tags existing
				  WHERE existing.content_id = contents.id AND existing.tag = ?
			  )`

	for _, tag := range tags {
		args := append([]any{tag}, int64Args(contentIDs)...)
		args = append(args, tag)
		if _, err := querier.ExecContext(ctx, query, args...); err != nil {
			return apperrors.Wrap(err, "failed to add content tags")
		}
	}
	return nil
}

// ReplaceReferences swaps the outgoing references of a content.
func (m *MySQLContentRepository) ReplaceReferences(
	ctx context.Context,
	id int64,
	refs []*graphDomain.ContentReference,
) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM content_references WHERE source_id = ?`, id); err != nil {
		return apperrors.Wrap(err, "failed to delete content references")
	}
	return insertReferences(ctx, querier, predicate.MySQL, id, refs)
}

// ListReferences returns the outgoing references of sourceID with their target.
func (m *MySQLContentRepository) ListReferences(
	ctx context.Context,
	sourceID int64,
) ([]*graphDomain.ContentReference, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + referenceColumns + `, contents.flexid, contents.content_hash
			  FROM content_references
			  JOIN contents ON contents.id = content_references.target_id
			  WHERE content_references.source_id = ?
			  ORDER BY content_references.id`

	rows, err := querier.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list content references")
	}
	return collectReferences(rows, true)
}

// ListByTarget returns the references pointing at targetID.
func (m *MySQLContentRepository) ListByTarget(
	ctx context.Context,
	targetID int64,
) ([]*graphDomain.ContentReference, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + referenceColumns + ` FROM content_references
			  WHERE content_references.target_id = ?
			  ORDER BY content_references.id`

	rows, err := querier.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list references by target")
	}
	return collectReferences(rows, false)
}

// CountInGroup counts the references of sourceID in group not pointing at excludeTargetID.
func (m *MySQLContentRepository) CountInGroup(
	ctx context.Context,
	sourceID int64,
	group string,
	excludeTargetID int64,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM content_references
			  WHERE source_id = ? AND group_name = ? AND target_id <> ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, sourceID, group, excludeTargetID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count references in group")
	}
	return count, nil
}

// DeleteReferencesInGroup removes the references of sourceID in group.
func (m *MySQLContentRepository) DeleteReferencesInGroup(ctx context.Context, sourceID int64, group string) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx,
		`DELETE FROM content_references WHERE source_id = ? AND group_name = ?`, sourceID, group)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete references in group")
	}
	return nil
}

// SetMarkForDestruction sets or clears the destruction deadline of ids.
func (m *MySQLContentRepository) SetMarkForDestruction(
	ctx context.Context,
	ids []int64,
	at *time.Time,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE contents SET mark_for_destruction = ?, updated_at = ?
			  WHERE id IN (` + placeholders(predicate.MySQL, 0, len(ids)) + `)`

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
func (m *MySQLContentRepository) MarkFetchedForDestruction(
	ctx context.Context,
	ids []int64,
	at time.Time,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE contents SET mark_for_destruction = ?
			  WHERE id IN (` + placeholders(predicate.MySQL, 0, len(ids)) + `)
			  AND mark_for_destruction IS NULL
			  AND EXISTS (
				  SELECT 1 FROM content_actions
				  WHERE content_actions.content_id = contents.id
				  AND content_actions.group_name = ? AND content_actions.used
			  )
			  AND NOT EXISTS (
				  SELECT 1 FROM content_actions
				  WHERE content_actions.content_id = contents.id
				  AND content_actions.group_name = ? AND NOT content_actions.used
			  )`

	args := append([]any{at}, int64Args(ids)...)
	args = append(args, graphDomain.ActionGroupFetch, graphDomain.ActionGroupFetch)
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

// SetFlexID assigns flexID and rewrites the id tag; a duplicate yields ErrConflict.
func (m *MySQLContentRepository) SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	raw, err := flexID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal content flexid")
	}
	if _, err := querier.ExecContext(ctx, `UPDATE contents SET flexid = ? WHERE id = ?`, raw, id); err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to set content flexid")
	}

	_, err = querier.ExecContext(ctx,
		`DELETE FROM content_tags WHERE content_id = ? AND tag LIKE ?`, id, graphDomain.TagID+"=%")
	if err != nil {
		return apperrors.Wrap(err, "failed to delete id tag")
	}
	return insertTags(ctx, querier, predicate.MySQL, id, []string{idTag(flexID)})
}

// ListMissingFlexID returns up to limit contents without flexid.
func (m *MySQLContentRepository) ListMissingFlexID(ctx context.Context, limit int) ([]int64, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT id FROM contents WHERE flexid IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list contents without flexid")
	}
	return collectIDs(rows)
}

// Delete removes a content with its content scoped actions. Tags, references
// and content actions cascade.
func (m *MySQLContentRepository) Delete(ctx context.Context, id int64) (string, bool, error) {
	querier := database.GetTx(ctx, m.db)

	var valueRef string
	err := querier.QueryRowContext(ctx, `SELECT value_ref FROM contents WHERE id = ? FOR UPDATE`, id).Scan(&valueRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "failed to load content")
	}

	_, err = querier.ExecContext(ctx,
		`DELETE FROM actions WHERE id IN (SELECT action_id FROM content_actions WHERE content_id = ?)`, id)
	if err != nil {
		return "", false, apperrors.Wrap(err, "failed to delete content actions")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM contents WHERE id = ?`, id)
	if err != nil {
		return "", false, apperrors.Wrap(err, "failed to delete content")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return "", false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return valueRef, rows > 0, nil
}

// ListExpiredIDs returns the contents whose deadline is not after now.
func (m *MySQLContentRepository) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT id FROM contents WHERE mark_for_destruction <= ? ORDER BY id`, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expired contents")
	}
	return collectIDs(rows)
}

// ListPublicKeys returns a batch of PublicKey contents after afterID.
func (m *MySQLContentRepository) ListPublicKeys(
	ctx context.Context,
	afterID int64,
	limit int,
) ([]*graphDomain.Content, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + contentColumns + ` FROM contents
			  WHERE contents.id > ?
			  AND EXISTS (SELECT 1 FROM content_tags WHERE content_tags.content_id = contents.id AND content_tags.tag = ?)
			  ORDER BY contents.id LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, afterID, publicKeyTag, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list public keys")
	}
	contents, err := collectContents(rows)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, querier, predicate.MySQL, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// ReplacePublicKeyHash moves the content hash of PublicKey contents from any of from to to.
func (m *MySQLContentRepository) ReplacePublicKeyHash(
	ctx context.Context,
	from []string,
	to string,
) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE contents SET content_hash = ?, updated_at = ?
			  WHERE content_hash IN (` + placeholders(predicate.MySQL, 0, len(from)) + `)
			  AND EXISTS (SELECT 1 FROM content_tags WHERE content_tags.content_id = contents.id AND content_tags.tag = ?)`

	args := append([]any{to, time.Now().UTC()}, stringArgs(from)...)
	args = append(args, publicKeyTag)
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
func (m *MySQLContentRepository) LockForTransfer(
	ctx context.Context,
	id int64,
	requireTag bool,
) (*graphDomain.Content, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + contentColumns + ` FROM contents WHERE contents.id = ?`
	args := []any{id}
	if requireTag {
		query += ` AND EXISTS (SELECT 1 FROM content_tags
				   WHERE content_tags.content_id = contents.id AND content_tags.tag = ?)`
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
	if err := loadTags(ctx, querier, predicate.MySQL, []*graphDomain.Content{content}); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateNonce stores a new nonce for a content.
func (m *MySQLContentRepository) UpdateNonce(ctx context.Context, id int64, nonce string) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx,
		`UPDATE contents SET nonce = ?, updated_at = ? WHERE id = ?`, nonce, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update content nonce")
	}
	return nil
}
