package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	fetchUsecase "github.com/devkral/secretgraph/internal/fetch/usecase"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	metadataDomain "github.com/devkral/secretgraph/internal/metadata/domain"
	metadataService "github.com/devkral/secretgraph/internal/metadata/service"
	"github.com/devkral/secretgraph/internal/predicate"
	transferUsecase "github.com/devkral/secretgraph/internal/transfer/usecase"
)

// valueRefPrefix prefixes the blob keys of content values.
const valueRefPrefix = "contents/"

// ContentDeleter deletes contents together with their dependents.
type ContentDeleter interface {
	DeleteContents(ctx context.Context, ids []int64) ([]int64, error)
}

// contentUseCase implements ContentUseCase.
type contentUseCase struct {
	txManager   database.TxManager
	contentRepo ContentRepository
	values      ValueStore
	finder      *scopedFinder
	fetcher     fetchUsecase.FetchUseCase
	deleter     ContentDeleter
	transferer  transferUsecase.TransferUseCase
	tags        *metadataService.TagTransformer
	refs        *metadataService.ReferenceTransformer
	hasher      cryptoService.Hasher
	normalizer  cryptoService.KeyNormalizer
	sealer      *actionSealer
	logger      *slog.Logger
}

// NewContentUseCase creates a ContentUseCase.
func NewContentUseCase(
	txManager database.TxManager,
	clusterRepo ClusterRepository,
	contentRepo ContentRepository,
	actionRepo ActionRepository,
	values ValueStore,
	resolver authzUsecase.ResolverUseCase,
	fetcher fetchUsecase.FetchUseCase,
	deleter ContentDeleter,
	transferer transferUsecase.TransferUseCase,
	aeadManager cryptoService.AEADManager,
	hasher cryptoService.Hasher,
	normalizer cryptoService.KeyNormalizer,
	handlers HandlerRegistry,
	logger *slog.Logger,
) ContentUseCase {
	return &contentUseCase{
		txManager:   txManager,
		contentRepo: contentRepo,
		values:      values,
		finder: &scopedFinder{
			resolver:    resolver,
			clusterRepo: clusterRepo,
			contentRepo: contentRepo,
		},
		fetcher:    fetcher,
		deleter:    deleter,
		transferer: transferer,
		tags:       metadataService.NewTagTransformer(hasher, logger),
		refs:       metadataService.NewReferenceTransformer(contentRepo),
		hasher:     hasher,
		normalizer: normalizer,
		sealer: &actionSealer{
			aeadManager: aeadManager,
			hasher:      hasher,
			handlers:    handlers,
			actionRepo:  actionRepo,
		},
		logger: logger,
	}
}

// preparedContent is a fully validated content waiting to be persisted.
type preparedContent struct {
	content    *graphDomain.Content
	value      []byte
	tags       []string
	references []*graphDomain.ContentReference
	// pinned are kept public_key references of an updated private key.
	pinned []*graphDomain.ContentReference
}

// Create validates the content completely before anything is written.
func (c *contentUseCase) Create(
	ctx context.Context,
	access Access,
	input CreateContentInput,
) (*graphDomain.Content, error) {
	if len(input.Value) == 0 {
		return nil, graphDomain.ErrMissingValue
	}

	cluster, env, err := c.finder.cluster(ctx, access, input.Cluster, authzDomain.ScopeUpdate)
	if err != nil {
		return nil, err
	}

	content := &graphDomain.Content{ClusterID: cluster.ID, Nonce: input.Nonce}
	prepared, err := c.prepare(
		ctx, access, env, cluster, content, input.Value,
		input.Tags, toReferenceInputs(input.References), input.ContentHash, false,
	)
	if err != nil {
		return nil, err
	}

	actions, err := c.sealer.seal(access, input.Actions, true)
	if err != nil {
		return nil, err
	}

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.persist(txCtx, prepared); err != nil {
			return err
		}
		return c.sealer.save(txCtx, actions, cluster.ID, content.ID)
	})
	if err != nil {
		c.discardValue(ctx, content)
		return nil, err
	}

	return content, nil
}

// CreateKey stores a public key, deduplicated per cluster, and optionally an
// encrypted private key bound to it through a public_key reference.
func (c *contentUseCase) CreateKey(ctx context.Context, access Access, input CreateKeyInput) (*KeyPair, error) {
	der, err := c.normalizer.NormalizePublicKey(input.PublicKey)
	if err != nil {
		return nil, err
	}
	if len(input.PrivateKey) > 0 && input.PrivateNonce == "" {
		return nil, graphDomain.ErrMissingPrivateKeyNonce
	}

	cluster, env, err := c.finder.cluster(ctx, access, input.Cluster, authzDomain.ScopeUpdate)
	if err != nil {
		return nil, err
	}

	digests := c.hasher.Digests(der)
	hashTags := make([]string, len(digests))
	hashTerms := make([]predicate.Predicate, len(digests))
	for i, digest := range digests {
		hashTags[i] = graphDomain.TagKeyHash + "=" + digest
		hashTerms[i] = predicate.HasTag(hashTags[i])
	}

	existing, err := c.contentRepo.First(ctx, predicate.AllOf(
		predicate.Eq(predicate.FieldClusterID, cluster.ID),
		predicate.HasTag(graphDomain.TagType+"="+graphDomain.TypePublicKey),
		predicate.AnyOf(hashTerms...),
		predicate.IsNull(predicate.FieldMarkForDestruction),
	))
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	var public *preparedContent
	if existing == nil {
		content := &graphDomain.Content{ClusterID: cluster.ID, ContentHash: &digests[0]}
		tags := append([]string{graphDomain.TagType + "=" + graphDomain.TypePublicKey}, hashTags...)
		public, err = c.prepare(
			ctx, access, env, cluster, content, der,
			append(tags, input.PublicTags...), toReferenceInputs(input.References), digests[0], true,
		)
		if err != nil {
			return nil, err
		}
	}

	var private *preparedContent
	if len(input.PrivateKey) > 0 {
		content := &graphDomain.Content{ClusterID: cluster.ID, Nonce: input.PrivateNonce}
		tags := append([]string{graphDomain.TagType + "=" + graphDomain.TypePrivateKey}, hashTags...)
		private, err = c.prepare(
			ctx, access, env, cluster, content, input.PrivateKey,
			append(tags, input.PrivateTags...), nil, "", true,
		)
		if err != nil {
			return nil, err
		}
	}

	actions, err := c.sealer.seal(access, input.Actions, true)
	if err != nil {
		return nil, err
	}

	pair := &KeyPair{Public: existing}
	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if public != nil {
			if err := c.persist(txCtx, public); err != nil {
				return err
			}
			pair.Public = public.content
		}
		if err := c.sealer.save(txCtx, actions, cluster.ID, pair.Public.ID); err != nil {
			return err
		}

		if private == nil {
			return nil
		}
		private.references = append(private.references, &graphDomain.ContentReference{
			TargetID:          pair.Public.ID,
			Group:             graphDomain.GroupPublicKey,
			DeleteRecursive:   graphDomain.DeleteRecursiveTrue,
			TargetFlexID:      pair.Public.FlexID,
			TargetContentHash: pair.Public.ContentHash,
		})
		if err := c.persist(txCtx, private); err != nil {
			return err
		}
		pair.Private = private.content
		return nil
	})
	if err != nil {
		if public != nil {
			c.discardValue(ctx, public.content)
		}
		if private != nil {
			c.discardValue(ctx, private.content)
		}
		return nil, err
	}

	return pair, nil
}

// prepare runs every check of a new or updated content and computes its final
// tags and references. Nothing is persisted.
func (c *contentUseCase) prepare(
	ctx context.Context,
	access Access,
	env *authzDomain.Envelope,
	cluster *graphDomain.Cluster,
	content *graphDomain.Content,
	value []byte,
	tags []string,
	refs []metadataDomain.ReferenceInput,
	contentHash string,
	isKey bool,
) (*preparedContent, error) {
	if !isKey || contentHash == "" {
		if err := checkNonce(content.Nonce); err != nil {
			return nil, err
		}
	}

	for _, tag := range tags {
		if !env.AllowsTag(cluster.ID, content.ID, tag) {
			return nil, apperrors.Wrapf(graphDomain.ErrTagNotAllowed, "tag %q", tag)
		}
	}

	tagMap, keyHashes, err := c.tags.Transform(tags, nil, graphDomain.OperationAppend)
	if err != nil {
		return nil, err
	}
	contentType := tagMap.Single(graphDomain.TagType)
	state := tagMap.Single(graphDomain.TagState)
	if err := validateInfo(contentType, state, isKey); err != nil {
		return nil, err
	}

	if contentHash != "" {
		if len(contentHash) != c.hasher.DigestLength() {
			return nil, graphDomain.ErrInvalidContentHash
		}
		content.ContentHash = &contentHash
	}

	allowed, err := c.finder.referenceTargets(ctx, access)
	if err != nil {
		return nil, err
	}
	result, err := c.refs.Transform(ctx, content, refs, keyHashes, allowed, false)
	if err != nil {
		return nil, err
	}

	if err := checkKeyHashes(content, contentType, keyHashes, env.RequiredKeys(cluster.ID, content.ID)); err != nil {
		return nil, err
	}
	if !isKey && len(result.EncryptionHashes) == 0 {
		return nil, graphDomain.ErrMissingKeyReference
	}

	if state == "" || state == graphDomain.StateDefault {
		delete(tagMap, graphDomain.TagState)
		state = defaultState(cluster, contentType, keyHashes)
	}
	finalTags := tagMap.Strings()
	if state != "" {
		finalTags = append(finalTags, graphDomain.TagState+"="+state)
	}

	return &preparedContent{
		content:    content,
		value:      value,
		tags:       finalTags,
		references: result.References,
	}, nil
}

// persist writes the value, the row, its tags and references. New contents
// get a fresh flexid; stored ones are updated in place and keep their value
// when p carries none.
func (c *contentUseCase) persist(ctx context.Context, p *preparedContent) error {
	content := p.content
	if p.value != nil {
		content.ValueRef = valueRefPrefix + uuid.NewString()
		if err := c.values.Write(ctx, content.ValueRef, p.value); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	content.UpdatedAt = now
	if content.ID == 0 {
		content.CreatedAt = now
		if _, err := assignFlexID(func(flexID uuid.UUID) error {
			content.FlexID = flexID
			return c.contentRepo.Create(ctx, content)
		}); err != nil {
			return err
		}
	} else if err := c.contentRepo.Update(ctx, content); err != nil {
		return err
	}

	content.Tags = append(p.tags, graphDomain.TagID+"="+content.FlexID.String())
	if err := c.contentRepo.ReplaceTags(ctx, content.ID, content.Tags); err != nil {
		return err
	}

	refs := p.references
	if len(p.pinned) > 0 {
		refs = append(append([]*graphDomain.ContentReference{}, p.pinned...), p.references...)
	}
	for _, ref := range refs {
		ref.SourceID = content.ID
	}
	if err := c.contentRepo.ReplaceReferences(ctx, content.ID, refs); err != nil {
		return err
	}
	content.References = refs
	return nil
}

// discardValue removes a value no row refers to anymore.
func (c *contentUseCase) discardValue(ctx context.Context, content *graphDomain.Content) {
	if content.ValueRef == "" {
		return
	}
	if err := c.values.Delete(ctx, content.ValueRef); err != nil {
		c.logger.Error("failed to discard content value",
			slog.String("value_ref", content.ValueRef),
			slog.Any("error", err))
	}
}

// Update replaces value, tags and references of a content under the checks
// of Create. Keys must resend their public key; they keep their public_key
// references and a public key keeps its value.
func (c *contentUseCase) Update(
	ctx context.Context,
	access Access,
	input UpdateContentInput,
) (*graphDomain.Content, error) {
	content, env, err := c.finder.content(ctx, access, input.Content, authzDomain.ScopeUpdate)
	if err != nil {
		return nil, err
	}
	cluster, err := c.finder.clusterOf(ctx, content)
	if err != nil {
		return nil, err
	}

	storedHashes, storedType := c.tags.ExtractKeyHashes(content.Tags)
	isKey := graphDomain.IsKeyType(storedType)

	tags := input.Tags
	newType := ""
	if tags == nil {
		tags = withoutIDTag(content.Tags)
	} else if _, newType = c.tags.ExtractKeyHashes(tags); newType != "" && newType != storedType {
		return nil, graphDomain.ErrTypeChange
	}
	value := input.Value
	contentHash := input.ContentHash
	if isKey {
		hashTags, err := c.checkPublicKey(content, storedType, storedHashes, input.PublicKey)
		if err != nil {
			return nil, err
		}
		if input.Tags != nil {
			if newType == "" {
				hashTags = append([]string{graphDomain.TagType + "=" + storedType}, hashTags...)
			}
			tags = append(hashTags, input.Tags...)
		}
		if storedType == graphDomain.TypePublicKey {
			value = nil
			contentHash = *content.ContentHash
		} else if value != nil && input.Nonce == "" {
			return nil, graphDomain.ErrMissingPrivateKeyNonce
		}
	}
	if value != nil {
		content.Nonce = input.Nonce
		content.ContentHash = nil
	} else if contentHash == "" && content.ContentHash != nil {
		contentHash = *content.ContentHash
	}

	existing, err := c.contentRepo.ListReferences(ctx, content.ID)
	if err != nil {
		return nil, err
	}
	var pinned []*graphDomain.ContentReference
	if isKey {
		pinned, existing = splitPinned(existing)
	}
	refs := carryReferences(existing)
	if input.References != nil {
		refs = toReferenceInputs(input.References)
	}

	prepared, err := c.prepare(ctx, access, env, cluster, content, value, tags, refs, contentHash, isKey)
	if err != nil {
		return nil, err
	}
	prepared.pinned = pinned

	actions, err := c.sealer.seal(access, input.Actions, true)
	if err != nil {
		return nil, err
	}

	oldRef := content.ValueRef
	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.persist(txCtx, prepared); err != nil {
			return err
		}
		return c.sealer.save(txCtx, actions, content.ClusterID, content.ID)
	})
	if err != nil {
		if content.ValueRef != oldRef {
			c.discardValue(ctx, content)
		}
		return nil, err
	}

	if content.ValueRef != oldRef {
		c.discardValue(ctx, &graphDomain.Content{ValueRef: oldRef})
	}
	return content, nil
}

// checkPublicKey verifies that raw is the public key already bound to a key
// content and returns its key_hash tags.
func (c *contentUseCase) checkPublicKey(
	content *graphDomain.Content,
	contentType string,
	storedHashes metadataDomain.HashSet,
	raw []byte,
) ([]string, error) {
	if len(raw) == 0 {
		return nil, graphDomain.ErrMissingPublicKey
	}
	der, err := c.normalizer.NormalizePublicKey(raw)
	if err != nil {
		return nil, err
	}

	digests := c.hasher.Digests(der)
	matches := storedHashes.Contains(digests[0])
	if contentType == graphDomain.TypePublicKey {
		matches = content.ContentHash != nil && *content.ContentHash == digests[0]
	}
	if !matches {
		return nil, graphDomain.ErrPublicKeyChange
	}

	hashTags := make([]string, len(digests))
	for i, digest := range digests {
		hashTags[i] = graphDomain.TagKeyHash + "=" + digest
	}
	return hashTags, nil
}

// UpdateMetadata changes tags and references of a content under op.
func (c *contentUseCase) UpdateMetadata(
	ctx context.Context,
	access Access,
	input UpdateMetadataInput,
) (*graphDomain.Content, error) {
	op := input.Operation
	if op == "" {
		op = graphDomain.OperationAppend
	}

	content, env, err := c.finder.content(ctx, access, input.Content, authzDomain.ScopeUpdate)
	if err != nil {
		return nil, err
	}

	var (
		tagMap      metadataDomain.TagMap
		keyHashes   metadataDomain.HashSet
		contentType string
	)
	if input.Tags != nil {
		for _, tag := range input.Tags {
			if !env.AllowsTag(content.ClusterID, content.ID, tag) {
				return nil, apperrors.Wrapf(graphDomain.ErrTagNotAllowed, "tag %q", tag)
			}
		}
		tagMap, keyHashes, err = c.tags.Transform(input.Tags, content.Tags, op)
		if err != nil {
			return nil, err
		}
		contentType = tagMap.Single(graphDomain.TagType)
		state := tagMap.Single(graphDomain.TagState)
		if err := validateInfo(contentType, state, graphDomain.IsKeyType(contentType)); err != nil {
			return nil, err
		}
		if state == graphDomain.StateDefault {
			delete(tagMap, graphDomain.TagState)
		}
	} else {
		keyHashes, contentType = c.tags.ExtractKeyHashes(content.Tags)
	}
	isKey := graphDomain.IsKeyType(contentType)

	existing, err := c.contentRepo.ListReferences(ctx, content.ID)
	if err != nil {
		return nil, err
	}
	var pinned []*graphDomain.ContentReference
	if isKey {
		pinned, existing = splitPinned(existing)
	}

	noFinalRefs := input.References == nil
	var inputs []metadataDomain.ReferenceInput
	if noFinalRefs {
		inputs = carryReferences(existing)
	} else {
		inputs = mergeReferences(existing, input.References, op)
	}

	allowed, err := c.finder.referenceTargets(ctx, access)
	if err != nil {
		return nil, err
	}
	result, err := c.refs.Transform(ctx, content, inputs, keyHashes, allowed, noFinalRefs)
	if err != nil {
		return nil, err
	}

	required := env.RequiredKeys(content.ClusterID, content.ID)
	if len(required) > 0 && !required.Intersects(result.SignatureHashes.Sorted()) {
		return nil, graphDomain.ErrNotSigned
	}
	if input.Tags != nil {
		if err := checkKeyHashes(content, contentType, keyHashes, nil); err != nil {
			return nil, err
		}
	}
	if !isKey && len(result.EncryptionHashes) == 0 {
		return nil, graphDomain.ErrMissingKeyReference
	}

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if tagMap != nil {
			tags := append(tagMap.Strings(), graphDomain.TagID+"="+content.FlexID.String())
			if err := c.contentRepo.ReplaceTags(txCtx, content.ID, tags); err != nil {
				return err
			}
			content.Tags = tags
		}
		if !noFinalRefs {
			refs := append(pinned, result.References...)
			if err := c.contentRepo.ReplaceReferences(txCtx, content.ID, refs); err != nil {
				return err
			}
			content.References = refs
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return content, nil
}

// List returns visible contents; listing counts as an indirect read.
func (c *contentUseCase) List(
	ctx context.Context,
	access Access,
	offset, limit int,
) ([]*graphDomain.Content, error) {
	env, err := c.finder.envelope(ctx, access, graphDomain.KindContent, authzDomain.ScopeView, nil)
	if err != nil {
		return nil, err
	}
	if env.Denied() {
		return []*graphDomain.Content{}, nil
	}

	contents, err := c.contentRepo.List(ctx, env.Objects, offset, limit)
	if err != nil {
		return nil, err
	}
	if err := c.fetcher.Track(ctx, env, contents, false); err != nil {
		return nil, err
	}
	return contents, nil
}

// Get returns a content and its encrypted value; this is a direct read.
func (c *contentUseCase) Get(
	ctx context.Context,
	access Access,
	raw string,
) (*graphDomain.Content, []byte, error) {
	flexID, err := graphDomain.ParseFlexID(raw, graphDomain.KindContent)
	if err != nil {
		return nil, nil, err
	}
	query := predicate.Eq(predicate.FieldFlexID, flexID)

	env, err := c.finder.envelope(ctx, access, graphDomain.KindContent, authzDomain.ScopeView, query)
	if err != nil {
		return nil, nil, err
	}
	if env.Denied() {
		return nil, nil, graphDomain.ErrContentNotFound
	}

	contents, err := c.fetcher.ReadAndTrack(ctx, env, query, true)
	if err != nil {
		return nil, nil, err
	}
	if len(contents) == 0 {
		return nil, nil, graphDomain.ErrContentNotFound
	}

	content := contents[0]
	value, err := c.values.Read(ctx, content.ValueRef)
	if err != nil {
		return nil, nil, err
	}
	return content, value, nil
}

// Delete removes a content the request may delete, cascading to dependents.
func (c *contentUseCase) Delete(ctx context.Context, access Access, raw string) ([]int64, error) {
	content, _, err := c.finder.content(ctx, access, raw, authzDomain.ScopeDelete)
	if err != nil {
		return nil, err
	}
	return c.deleter.DeleteContents(ctx, []int64{content.ID})
}

// ScheduleDeletion sets the destruction deadline of a content; nil clears it.
func (c *contentUseCase) ScheduleDeletion(ctx context.Context, access Access, raw string, at *time.Time) error {
	content, _, err := c.finder.content(ctx, access, raw, authzDomain.ScopeDelete)
	if err != nil {
		return err
	}
	if at != nil {
		utc := at.UTC()
		at = &utc
	}
	return c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		_, err := c.contentRepo.SetMarkForDestruction(txCtx, []int64{content.ID}, at)
		return err
	})
}

// Transfer pulls the value of a content the request may update. Contents
// tagged for transfer drop their transfer references afterwards.
func (c *contentUseCase) Transfer(
	ctx context.Context,
	access Access,
	input TransferContentInput,
) (graphDomain.TransferResult, error) {
	content, _, err := c.finder.content(ctx, access, input.Content, authzDomain.ScopeUpdate)
	if err != nil {
		return graphDomain.TransferError, err
	}
	return c.transferer.Transfer(ctx, transferUsecase.TransferRequest{
		ContentID: content.ID,
		Key:       input.Key,
		URL:       input.URL,
		Headers:   input.Headers,
		Transfer:  content.HasTag(graphDomain.TagTransfer),
		Timeout:   input.Timeout,
	})
}

// checkNonce requires a base64 nonce of 13 bytes that is not all zero.
func checkNonce(raw string) error {
	nonce, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(nonce) != cryptoDomain.NonceSize {
		return apperrors.Wrap(cryptoDomain.ErrInvalidNonce, "invalid nonce size")
	}
	if bytes.Count(nonce, []byte{0}) == len(nonce) {
		return apperrors.Wrap(cryptoDomain.ErrInvalidNonce, "weak nonce")
	}
	return nil
}

// validateInfo checks the state vocabulary allowed for a content type.
// An empty state means no state tag.
func validateInfo(contentType, state string, isKey bool) error {
	if isKey {
		switch state {
		case "", graphDomain.StatePublic, graphDomain.StateInternal, graphDomain.StateDefault:
			return nil
		}
		return apperrors.Wrapf(graphDomain.ErrInvalidState, "%s is an invalid state for key", state)
	}

	switch contentType {
	case "", graphDomain.TypePrivateKey, graphDomain.TypePublicKey:
		return apperrors.Wrapf(graphDomain.ErrInvalidType, "%q", contentType)
	case graphDomain.TypeConfig:
		if state != "" && state != graphDomain.StateDefault && state != graphDomain.StateInternal {
			return apperrors.Wrapf(graphDomain.ErrInvalidState, "%s is an invalid state for Config", state)
		}
		return nil
	}
	if state != "" && !graphDomain.IsValidState(state) {
		return apperrors.Wrapf(graphDomain.ErrInvalidState, "%s is an invalid state for content", state)
	}
	return nil
}

// checkKeyHashes enforces the key_hash requirements of keys and the required
// keys of the granting actions.
func checkKeyHashes(
	content *graphDomain.Content,
	contentType string,
	keyHashes metadataDomain.HashSet,
	required metadataDomain.HashSet,
) error {
	switch contentType {
	case graphDomain.TypePrivateKey:
		if len(keyHashes) == 0 {
			return graphDomain.ErrMissingKeyHash
		}
	case graphDomain.TypePublicKey:
		if content.ContentHash == nil || !keyHashes.Contains(*content.ContentHash) {
			return graphDomain.ErrPublicKeyHashMismatch
		}
	}
	if !keyHashes.ContainsAll(required.Sorted()) {
		return graphDomain.ErrMissingRequiredKeys
	}
	return nil
}

// defaultState is the state of a content created without one. Contents of
// non-public clusters stay without state tag. A public key of a public cluster
// is only public when the cluster's public info publishes one of its hashes.
func defaultState(cluster *graphDomain.Cluster, contentType string, keyHashes metadataDomain.HashSet) string {
	if !cluster.Public {
		return ""
	}
	switch contentType {
	case graphDomain.TypePublicKey:
		for secret := range cluster.PublishedSecrets() {
			if keyHashes.Contains(secret) {
				return graphDomain.StatePublic
			}
		}
		return graphDomain.StateInternal
	case graphDomain.TypePrivateKey, graphDomain.TypeConfig:
		return graphDomain.StateInternal
	}
	return graphDomain.StateDraft
}

func toReferenceInputs(refs []ReferenceInput) []metadataDomain.ReferenceInput {
	out := make([]metadataDomain.ReferenceInput, len(refs))
	for i, ref := range refs {
		out[i] = metadataDomain.ReferenceInput{
			Target:          ref.Target,
			Group:           ref.Group,
			Extra:           ref.Extra,
			DeleteRecursive: ref.DeleteRecursive,
		}
	}
	return out
}

func carryReferences(existing []*graphDomain.ContentReference) []metadataDomain.ReferenceInput {
	out := make([]metadataDomain.ReferenceInput, len(existing))
	for i, ref := range existing {
		out[i] = metadataDomain.ReferenceInput{Existing: ref}
	}
	return out
}

// mergeReferences combines stored and new references. append keeps every
// stored reference before the new ones; remove drops the stored references
// matched by a new one and replace additionally adds the new ones.
func mergeReferences(
	existing []*graphDomain.ContentReference,
	refs []ReferenceInput,
	op graphDomain.MetadataOperation,
) []metadataDomain.ReferenceInput {
	if op == graphDomain.OperationAppend {
		return append(carryReferences(existing), toReferenceInputs(refs)...)
	}

	var out []metadataDomain.ReferenceInput
outer:
	for _, ref := range existing {
		for _, in := range refs {
			if referenceMatches(ref, in) {
				continue outer
			}
		}
		out = append(out, metadataDomain.ReferenceInput{Existing: ref})
	}
	if op == graphDomain.OperationReplace {
		out = append(out, toReferenceInputs(refs)...)
	}
	return out
}

// referenceMatches matches a stored reference by group and, unless in names
// no target, by target id, flexid, global id or content hash.
func referenceMatches(ref *graphDomain.ContentReference, in ReferenceInput) bool {
	if ref.Group != in.Group {
		return false
	}
	switch in.Target {
	case "", strconv.FormatInt(ref.TargetID, 10):
		return true
	}
	if ref.TargetFlexID != uuid.Nil {
		flexID := ref.TargetFlexID.String()
		if in.Target == flexID || in.Target == graphDomain.EncodeGlobalID(string(graphDomain.KindContent), flexID) {
			return true
		}
	}
	return ref.TargetContentHash != nil && *ref.TargetContentHash == in.Target
}

// withoutIDTag drops the id tag, which persist appends again.
func withoutIDTag(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !strings.HasPrefix(tag, graphDomain.TagID+"=") {
			out = append(out, tag)
		}
	}
	return out
}

// splitPinned separates the public_key references of a private key, which
// metadata updates never touch.
func splitPinned(refs []*graphDomain.ContentReference) (pinned, rest []*graphDomain.ContentReference) {
	for _, ref := range refs {
		if ref.Group == graphDomain.GroupPublicKey {
			pinned = append(pinned, ref)
			continue
		}
		rest = append(rest, ref)
	}
	return pinned, rest
}
