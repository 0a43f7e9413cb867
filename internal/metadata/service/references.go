package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	metadataDomain "github.com/devkral/secretgraph/internal/metadata/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ReferenceTransformer resolves reference targets and validates them against
// the key hashes of the referencing content.
type ReferenceTransformer struct {
	finder ContentFinder
}

// NewReferenceTransformer creates a ReferenceTransformer.
func NewReferenceTransformer(finder ContentFinder) *ReferenceTransformer {
	return &ReferenceTransformer{finder: finder}
}

type referenceKey struct {
	group    string
	targetID int64
}

// Transform resolves refs for content.
//
// Targets must be visible under allowed and not scheduled for destruction;
// unresolvable targets are dropped. The first reference per (group, target)
// wins. key and transfer targets must carry a hash listed in keyHashes. With
// noFinalRefs only the hash sets are computed.
func (t *ReferenceTransformer) Transform(
	ctx context.Context,
	content *graphDomain.Content,
	refs []metadataDomain.ReferenceInput,
	keyHashes metadataDomain.HashSet,
	allowed predicate.Predicate,
	noFinalRefs bool,
) (*metadataDomain.ReferenceResult, error) {
	result := &metadataDomain.ReferenceResult{
		EncryptionHashes: make(metadataDomain.HashSet),
		SignatureHashes:  make(metadataDomain.HashSet),
	}
	if !noFinalRefs {
		result.References = []*graphDomain.ContentReference{}
	}

	seen := make(map[referenceKey]struct{})
	for _, in := range refs {
		target, ref, err := t.resolve(ctx, content, in, allowed)
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue
		}

		key := referenceKey{group: ref.Group, targetID: target.ID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if len(ref.Extra) > graphDomain.MaxExtraLength {
			return nil, graphDomain.ErrExtraTooLong
		}

		switch ref.Group {
		case graphDomain.GroupSignature:
			ref.DeleteRecursive = graphDomain.DeleteRecursiveNoGroup
			if target.ContentHash != nil {
				result.SignatureHashes[*target.ContentHash] = struct{}{}
			}
		case graphDomain.GroupKey, graphDomain.GroupTransfer:
			ref.DeleteRecursive = graphDomain.DeleteRecursiveNoGroup
			if target.ContentHash == nil || !keyHashes.Contains(*target.ContentHash) {
				return nil, apperrors.Wrap(graphDomain.ErrInvalidReferenceTarget, "key hash not found in tags")
			}
			if ref.Group == graphDomain.GroupKey {
				result.EncryptionHashes[*target.ContentHash] = struct{}{}
			}
		}

		if !noFinalRefs {
			result.References = append(result.References, ref)
		}
	}

	return result, nil
}

func (t *ReferenceTransformer) resolve(
	ctx context.Context,
	content *graphDomain.Content,
	in metadataDomain.ReferenceInput,
	allowed predicate.Predicate,
) (*graphDomain.Content, *graphDomain.ContentReference, error) {
	var query predicate.Predicate
	if in.Existing != nil {
		query = predicate.Eq(predicate.FieldID, in.Existing.TargetID)
	} else {
		q, err := targetQuery(in.Target)
		if err != nil {
			return nil, nil, err
		}
		query = q
	}

	target, err := t.finder.First(ctx, predicate.AllOf(
		allowed,
		predicate.IsNull(predicate.FieldMarkForDestruction),
		query,
	))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if in.Existing != nil {
		ref := *in.Existing
		return target, &ref, nil
	}

	deleteRecursive := graphDomain.DeleteRecursiveTrue
	if in.DeleteRecursive != nil {
		deleteRecursive = *in.DeleteRecursive
	}
	return target, &graphDomain.ContentReference{
		SourceID:          content.ID,
		TargetID:          target.ID,
		Group:             in.Group,
		Extra:             in.Extra,
		DeleteRecursive:   deleteRecursive,
		TargetFlexID:      target.FlexID,
		TargetContentHash: target.ContentHash,
	}, nil
}

// targetQuery turns a symbolic target into a predicate. Global ids must name a
// Content; numeric ids and flexids match directly; anything else is a digest
// matched against id tags and PublicKey key_hash tags.
func targetQuery(target string) (predicate.Predicate, error) {
	if typ, id, err := graphDomain.DecodeGlobalID(target); err == nil && isKindName(typ) {
		if typ != string(graphDomain.KindContent) {
			return nil, apperrors.Wrap(graphDomain.ErrInvalidGlobalID, "No Content Id")
		}
		flexID, err := uuid.Parse(id)
		if err != nil {
			return nil, graphDomain.ErrInvalidGlobalID
		}
		return predicate.Eq(predicate.FieldFlexID, flexID), nil
	}

	if id, err := strconv.ParseInt(target, 10, 64); err == nil {
		return predicate.Eq(predicate.FieldID, id), nil
	}
	if flexID, err := uuid.Parse(target); err == nil {
		return predicate.Eq(predicate.FieldFlexID, flexID), nil
	}

	return predicate.AnyOf(
		predicate.HasTag(graphDomain.TagID+"="+target),
		predicate.AllOf(
			predicate.HasTag(graphDomain.TagType+"="+graphDomain.TypePublicKey),
			predicate.HasTag(graphDomain.TagKeyHash+"="+target),
		),
	), nil
}

func isKindName(typ string) bool {
	return graphDomain.EntityKind(typ).Valid()
}
