// Package repository implements persistence for clusters, contents and actions.
// Every repository exists for PostgreSQL and MySQL; predicates from the
// authorization layer are compiled into the WHERE clauses.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

const clusterColumns = `clusters.id, clusters.flexid, clusters.name, clusters.description, clusters.public,
	clusters.public_info, clusters.mark_for_destruction, clusters.created_at, clusters.updated_at`

const contentColumns = `contents.id, contents.flexid, contents.cluster_id, contents.nonce, contents.value_ref,
	contents.content_hash, contents.mark_for_destruction, contents.created_at, contents.updated_at`

const actionColumns = `actions.id, actions.cluster_id, actions.key_hash, actions.nonce, actions.value,
	actions.action_type, actions.start_at, actions.stop_at,
	content_actions.id, content_actions.content_id, content_actions.group_name, content_actions.used`

const referenceColumns = `content_references.id, content_references.source_id, content_references.target_id,
	content_references.group_name, content_references.extra, content_references.delete_recursive`

type scanner interface {
	Scan(dest ...any) error
}

func scanCluster(row scanner) (*graphDomain.Cluster, error) {
	var cluster graphDomain.Cluster
	var flexID uuid.NullUUID
	if err := row.Scan(
		&cluster.ID,
		&flexID,
		&cluster.Name,
		&cluster.Description,
		&cluster.Public,
		&cluster.PublicInfo,
		&cluster.MarkForDestruction,
		&cluster.CreatedAt,
		&cluster.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cluster.FlexID = flexID.UUID
	return &cluster, nil
}

func scanContent(row scanner) (*graphDomain.Content, error) {
	var content graphDomain.Content
	var flexID uuid.NullUUID
	if err := row.Scan(
		&content.ID,
		&flexID,
		&content.ClusterID,
		&content.Nonce,
		&content.ValueRef,
		&content.ContentHash,
		&content.MarkForDestruction,
		&content.CreatedAt,
		&content.UpdatedAt,
	); err != nil {
		return nil, err
	}
	content.FlexID = flexID.UUID
	return &content, nil
}

func scanAction(row scanner) (*graphDomain.Action, error) {
	var action graphDomain.Action
	var contentActionID, contentID sql.NullInt64
	var group sql.NullString
	var used sql.NullBool
	if err := row.Scan(
		&action.ID,
		&action.ClusterID,
		&action.KeyHash,
		&action.Nonce,
		&action.Value,
		&action.ActionType,
		&action.Start,
		&action.Stop,
		&contentActionID,
		&contentID,
		&group,
		&used,
	); err != nil {
		return nil, err
	}
	if contentActionID.Valid {
		action.ContentAction = &graphDomain.ContentAction{
			ID:        contentActionID.Int64,
			ActionID:  action.ID,
			ContentID: contentID.Int64,
			Group:     group.String,
			Used:      used.Bool,
		}
	}
	return &action, nil
}

func collectClusters(rows *sql.Rows) ([]*graphDomain.Cluster, error) {
	defer func() { _ = rows.Close() }()

	clusters := make([]*graphDomain.Cluster, 0)
	for rows.Next() {
		cluster, err := scanCluster(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan cluster")
		}
		clusters = append(clusters, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate clusters")
	}
	return clusters, nil
}

func collectContents(rows *sql.Rows) ([]*graphDomain.Content, error) {
	defer func() { _ = rows.Close() }()

	contents := make([]*graphDomain.Content, 0)
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan content")
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate contents")
	}
	return contents, nil
}

func collectActions(rows *sql.Rows) ([]*graphDomain.Action, error) {
	defer func() { _ = rows.Close() }()

	actions := make([]*graphDomain.Action, 0)
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan action")
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate actions")
	}
	return actions, nil
}

func collectIDs(rows *sql.Rows) ([]int64, error) {
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate ids")
	}
	return ids, nil
}

// collectReferences scans referenceColumns, followed by the target flexid and
// content hash when withTarget is set.
func collectReferences(rows *sql.Rows, withTarget bool) ([]*graphDomain.ContentReference, error) {
	defer func() { _ = rows.Close() }()

	refs := make([]*graphDomain.ContentReference, 0)
	for rows.Next() {
		var ref graphDomain.ContentReference
		var deleteRecursive string
		var targetFlexID uuid.NullUUID
		dest := []any{&ref.ID, &ref.SourceID, &ref.TargetID, &ref.Group, &ref.Extra, &deleteRecursive}
		if withTarget {
			dest = append(dest, &targetFlexID, &ref.TargetContentHash)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan content reference")
		}
		ref.DeleteRecursive = graphDomain.DeleteRecursive(deleteRecursive)
		ref.TargetFlexID = targetFlexID.UUID
		refs = append(refs, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate content references")
	}
	return refs, nil
}

// where compiles p for table into a WHERE clause body.
func where(p predicate.Predicate, d predicate.Dialect, table string, offset int) (string, []any, error) {
	clause, args, err := predicate.Compile(p, d, table, offset)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "failed to compile predicate")
	}
	return clause, args, nil
}

// placeholders renders n bind parameters numbered after offset.
func placeholders(d predicate.Dialect, offset, n int) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = d.Placeholder(offset + i + 1)
	}
	return strings.Join(parts, ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// loadTags fills the Tags of contents in stored order.
func loadTags(ctx context.Context, querier database.Querier, d predicate.Dialect, contents []*graphDomain.Content) error {
	if len(contents) == 0 {
		return nil
	}
	byID := make(map[int64]*graphDomain.Content, len(contents))
	ids := make([]int64, 0, len(contents))
	for _, c := range contents {
		c.Tags = []string{}
		if _, ok := byID[c.ID]; !ok {
			ids = append(ids, c.ID)
		}
		byID[c.ID] = c
	}

	query := `SELECT content_id, tag FROM content_tags WHERE content_id IN (` +
		placeholders(d, 0, len(ids)) + `) ORDER BY id`
	rows, err := querier.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return apperrors.Wrap(err, "failed to load content tags")
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var contentID int64
		var tag string
		if err := rows.Scan(&contentID, &tag); err != nil {
			return apperrors.Wrap(err, "failed to scan content tag")
		}
		if c, ok := byID[contentID]; ok {
			c.Tags = append(c.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, "failed to iterate content tags")
	}
	return nil
}

// insertTags inserts tags of contentID in order.
func insertTags(ctx context.Context, querier database.Querier, d predicate.Dialect, contentID int64, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	values := make([]string, len(tags))
	args := make([]any, 0, 2*len(tags))
	for i, tag := range tags {
		values[i] = "(" + placeholders(d, 2*i, 2) + ")"
		args = append(args, contentID, tag)
	}
	query := `INSERT INTO content_tags (content_id, tag) VALUES ` + strings.Join(values, ", ")
	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to insert content tags")
	}
	return nil
}

// insertReferences inserts refs of sourceID.
func insertReferences(
	ctx context.Context,
	querier database.Querier,
	d predicate.Dialect,
	sourceID int64,
	refs []*graphDomain.ContentReference,
) error {
	if len(refs) == 0 {
		return nil
	}
	values := make([]string, len(refs))
	args := make([]any, 0, 5*len(refs))
	for i, ref := range refs {
		values[i] = "(" + placeholders(d, 5*i, 5) + ")"
		args = append(args, sourceID, ref.TargetID, ref.Group, ref.Extra, deleteRecursiveValue(ref.DeleteRecursive))
	}
	query := `INSERT INTO content_references (source_id, target_id, group_name, extra, delete_recursive) VALUES ` +
		strings.Join(values, ", ")
	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Wrap(err, "failed to insert content references")
	}
	return nil
}

// idTag is the server generated tag naming a content by flexid.
func idTag(flexID uuid.UUID) string {
	return graphDomain.TagID + "=" + flexID.String()
}

// deleteRecursiveValue defaults unset policies to true.
func deleteRecursiveValue(v graphDomain.DeleteRecursive) string {
	if v == "" {
		return string(graphDomain.DeleteRecursiveTrue)
	}
	return string(v)
}

// publicKeyTag marks PublicKey contents.
const publicKeyTag = graphDomain.TagType + "=" + graphDomain.TypePublicKey
