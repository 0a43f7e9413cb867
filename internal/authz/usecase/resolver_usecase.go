package usecase

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzService "github.com/devkral/secretgraph/internal/authz/service"
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

type resolverUseCase struct {
	aeadManager cryptoService.AEADManager
	hasher      cryptoService.Hasher
	actionRepo  ActionRepository
	sweeper     Sweeper
	handler     authzService.Handler
	logger      *slog.Logger
}

// NewResolverUseCase creates a ResolverUseCase.
func NewResolverUseCase(
	aeadManager cryptoService.AEADManager,
	hasher cryptoService.Hasher,
	actionRepo ActionRepository,
	sweeper Sweeper,
	handler authzService.Handler,
	logger *slog.Logger,
) ResolverUseCase {
	return &resolverUseCase{
		aeadManager: aeadManager,
		hasher:      hasher,
		actionRepo:  actionRepo,
		sweeper:     sweeper,
		handler:     handler,
		logger:      logger,
	}
}

// candidate is an action together with the key that selected it.
type candidate struct {
	action  *graphDomain.Action
	key     []byte
	digests []string
}

// clusterOutcome accumulates the evaluation of one cluster.
type clusterOutcome struct {
	clusterID    int64
	level        int
	filter       predicate.Predicate
	granted      bool
	actions      []*authzDomain.ResolvedAction
	clusterReqs  authzDomain.Requirements
	contentReqs  map[int64]authzDomain.Requirements
	forms        map[int64]*authzDomain.Form
	rejecting    *graphDomain.Action
	keyDigestMap map[string][]byte
}

func (o *clusterOutcome) reset() {
	o.filter = predicate.True()
	o.actions = nil
	o.clusterReqs = nil
	o.contentReqs = make(map[int64]authzDomain.Requirements)
	o.forms = make(map[int64]*authzDomain.Form)
}

func (o *clusterOutcome) record(c candidate, payload *authzDomain.Payload, decision authzDomain.Decision) {
	o.actions = append(o.actions, &authzDomain.ResolvedAction{
		Action:   c.action,
		Payload:  payload,
		Decision: decision,
	})

	ref := authzDomain.ActionKeyRef{Action: payload.Kind, KeyHash: c.action.KeyHash}
	requirement := authzDomain.KeyRequirement{ActionID: c.action.ID, RequiredKeys: []string{}}
	if decision.Form != nil {
		requirement.RequiredKeys = append(requirement.RequiredKeys, decision.Form.RequiredKeys...)
		requirement.AllowedTags = decision.Form.AllowedTags
		if _, ok := o.forms[c.action.ID]; !ok {
			o.forms[c.action.ID] = decision.Form
		}
	}

	if ca := c.action.ContentAction; ca != nil {
		o.contentReqs[ca.ContentID] = o.contentReqs[ca.ContentID].Merge(authzDomain.Requirements{ref: requirement})
		return
	}
	o.clusterReqs = o.clusterReqs.Merge(authzDomain.Requirements{ref: requirement})
}

func groupByCluster(tokens []authzDomain.Token) ([]uuid.UUID, map[uuid.UUID][]authzDomain.Token) {
	var order []uuid.UUID
	groups := make(map[uuid.UUID][]authzDomain.Token)
	for _, t := range tokens {
		if _, ok := groups[t.ClusterFlexID]; !ok {
			order = append(order, t.ClusterFlexID)
		}
		groups[t.ClusterFlexID] = append(groups[t.ClusterFlexID], t)
	}
	return order, groups
}

// Resolve sweeps expired rows, then evaluates the actions of every presented
// cluster. A deny from any action returns an envelope granting nothing.
func (r *resolverUseCase) Resolve(ctx context.Context, req ResolveRequest) (*authzDomain.Envelope, error) {
	if !req.Kind.Valid() {
		return nil, authzDomain.ErrInvalidEntityKind
	}

	now := time.Now()
	if err := r.sweeper.Sweep(ctx, now); err != nil {
		return nil, err
	}

	var contentScope predicate.Predicate
	if req.Kind == graphDomain.KindContent && !predicate.IsTrue(req.Base) {
		contentScope = req.Base
	}

	env := authzDomain.NewEnvelope(req.Kind, req.Scope)
	var filters []predicate.Predicate

	order, groups := groupByCluster(req.Authset)
	for _, flexID := range order {
		outcome, err := r.resolveCluster(ctx, req, flexID, groups[flexID], now, contentScope)
		if err != nil {
			return nil, err
		}
		if outcome == nil {
			continue
		}
		if outcome.rejecting != nil {
			r.logger.Debug("resolution rejected by action",
				slog.Int64("action_id", outcome.rejecting.ID),
				slog.String("scope", req.Scope),
			)
			denied := authzDomain.NewEnvelope(req.Kind, req.Scope)
			denied.RejectingAction = outcome.rejecting
			return denied, nil
		}

		env.Clusters[flexID] = &authzDomain.ClusterGrant{
			ID:          outcome.clusterID,
			FlexID:      flexID,
			AccessLevel: outcome.level,
			Filter:      outcome.filter,
		}
		env.Actions = append(env.Actions, outcome.actions...)
		if outcome.clusterReqs != nil {
			env.RequiredKeysClusters[outcome.clusterID] = env.RequiredKeysClusters[outcome.clusterID].Merge(outcome.clusterReqs)
		}
		for contentID, reqs := range outcome.contentReqs {
			env.RequiredKeysContents[contentID] = env.RequiredKeysContents[contentID].Merge(reqs)
		}
		for actionID, form := range outcome.forms {
			env.Forms[actionID] = form
		}
		for digest, key := range outcome.keyDigestMap {
			env.ActionKeyMap[digest] = key
		}

		filters = append(filters, predicate.AllOf(outcome.filter, clusterScope(req.Kind, outcome.clusterID)))
	}

	sort.SliceStable(env.Actions, func(i, j int) bool {
		return newerFirst(env.Actions[i].Action, env.Actions[j].Action)
	})

	env.Objects = predicate.AllOf(req.Base, predicate.UnionClusters(filters...), visibility(req.Kind, env))
	return env, nil
}

// ResolveCached resolves the whole table once per (kind, scope, authset) and
// narrows the cached envelope to req.Base.
func (r *resolverUseCase) ResolveCached(
	ctx context.Context,
	cache *authzDomain.PermissionCache,
	req ResolveRequest,
) (*authzDomain.Envelope, error) {
	if cache == nil {
		return r.Resolve(ctx, req)
	}

	authset := authzDomain.NormalizeAuthset(req.Authset)
	if env, ok := cache.Get(req.Kind, req.Scope, authset); ok {
		return env.Narrow(req.Base), nil
	}

	full := req
	full.Base = nil
	env, err := r.Resolve(ctx, full)
	if err != nil {
		return nil, err
	}
	cache.Put(req.Kind, req.Scope, authset, env)
	return env.Narrow(req.Base), nil
}

// resolveCluster evaluates the actions unlocked by every token of one cluster
// together, so the access level accumulates across keys. It returns nil when
// nothing was granted.
func (r *resolverUseCase) resolveCluster(
	ctx context.Context,
	req ResolveRequest,
	flexID uuid.UUID,
	tokens []authzDomain.Token,
	now time.Time,
	contentScope predicate.Predicate,
) (*clusterOutcome, error) {
	outcome := &clusterOutcome{keyDigestMap: make(map[string][]byte)}
	outcome.reset()

	var candidates []candidate
	seen := make(map[int64]struct{})
	for _, token := range tokens {
		digests := r.hasher.Digests(token.Key)
		actions, err := r.actionRepo.ListActive(ctx, ActionQuery{
			ClusterFlexID: flexID,
			KeyHashes:     digests,
			Now:           now,
			ContentScope:  contentScope,
		})
		if err != nil {
			return nil, err
		}
		for _, digest := range digests {
			outcome.keyDigestMap[digest] = token.Key
		}
		for _, action := range actions {
			if _, ok := seen[action.ID]; ok {
				continue
			}
			seen[action.ID] = struct{}{}
			candidates = append(candidates, candidate{action: action, key: token.Key, digests: digests})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return newerFirst(candidates[i].action, candidates[j].action)
	})
	outcome.clusterID = candidates[0].action.ClusterID

	for _, c := range candidates {
		if !c.action.IsActive(now) {
			continue
		}
		payload, ok := r.decrypt(c)
		if !ok {
			continue
		}

		decision, err := r.handler.Evaluate(ctx, req.Kind, payload, req.Scope, c.action, outcome.level)
		if err != nil {
			r.logger.Debug("action handler failed",
				slog.Int64("action_id", c.action.ID),
				slog.Any("error", err),
			)
			continue
		}

		switch decision.Kind {
		case authzDomain.DecisionNotApplicable:
			continue
		case authzDomain.DecisionDeny:
			outcome.rejecting = c.action
			return outcome, nil
		}

		r.normalizeKeyHash(ctx, c)

		switch {
		case decision.AccessLevel > outcome.level:
			outcome.reset()
			outcome.level = decision.AccessLevel
			outcome.filter = predicate.Supersede(outcome.filter, decision.Filter)
		case decision.AccessLevel == outcome.level:
			outcome.filter = predicate.Conjoin(outcome.filter, decision.Filter)
		default:
			continue
		}
		outcome.granted = true
		outcome.record(c, payload, decision)
	}

	if !outcome.granted {
		return nil, nil
	}
	return outcome, nil
}

// decrypt opens the action payload. Every failure is reported as a mismatch.
func (r *resolverUseCase) decrypt(c candidate) (*authzDomain.Payload, bool) {
	nonce, err := base64.StdEncoding.DecodeString(c.action.Nonce)
	if err != nil {
		return nil, false
	}
	aead, err := r.aeadManager.CreateCipher(c.key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, false
	}
	plaintext, err := aead.Decrypt(c.action.Value, nonce, nil)
	if err != nil {
		return nil, false
	}
	defer cryptoDomain.Zero(plaintext)

	payload, err := authzDomain.ParsePayload(plaintext)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// normalizeKeyHash moves actions stored under an old digest to the canonical one.
func (r *resolverUseCase) normalizeKeyHash(ctx context.Context, c candidate) {
	canonical := c.digests[0]
	if c.action.KeyHash == canonical {
		return
	}
	if err := r.actionRepo.NormalizeKeyHash(ctx, c.action.KeyHash, canonical); err != nil {
		r.logger.Warn("failed to normalize action key hash",
			slog.Int64("action_id", c.action.ID),
			slog.Any("error", err),
		)
		return
	}
	c.action.KeyHash = canonical
}

func newerFirst(a, b *graphDomain.Action) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.After(b.Start)
	}
	return a.ID > b.ID
}

func clusterScope(kind graphDomain.EntityKind, clusterID int64) predicate.Predicate {
	if kind == graphDomain.KindCluster {
		return predicate.Eq(predicate.FieldID, clusterID)
	}
	return predicate.Eq(predicate.FieldClusterID, clusterID)
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// visibility is the kind specific condition every visible row must meet on
// top of the cluster filters.
func visibility(kind graphDomain.EntityKind, env *authzDomain.Envelope) predicate.Predicate {
	clusterIDs := sortedIDs(env.RequiredKeysClusters)
	switch kind {
	case graphDomain.KindCluster:
		return predicate.AnyOf(
			predicate.In(predicate.FieldID, clusterIDs...),
			predicate.Eq(predicate.FieldPublic, true),
		)
	case graphDomain.KindContent:
		return predicate.AnyOf(
			predicate.HasTag(graphDomain.TagState+"="+graphDomain.StatePublic),
			predicate.In(predicate.FieldID, sortedIDs(env.RequiredKeysContents)...),
			predicate.In(predicate.FieldClusterID, clusterIDs...),
		)
	}
	return predicate.In(predicate.FieldClusterID, clusterIDs...)
}
