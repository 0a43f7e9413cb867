// Package service implements the metadata transformations applied whenever
// content tags or references are created or changed.
package service

import (
	"log/slog"
	"strings"

	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	metadataDomain "github.com/devkral/secretgraph/internal/metadata/domain"
)

// TagTransformer merges new tags into old tags under a metadata operation.
type TagTransformer struct {
	hashLength int
	logger     *slog.Logger
}

// NewTagTransformer creates a TagTransformer. Only key_hash values with the
// canonical digest length of hasher are collected as key hashes.
func NewTagTransformer(hasher cryptoService.Hasher, logger *slog.Logger) *TagTransformer {
	return &TagTransformer{
		hashLength: hasher.DigestLength(),
		logger:     logger,
	}
}

// Transform computes the resulting tag map and the canonical key hashes.
//
// append unions per name (new state overrides old state), replace lets new names
// win outright and remove deletes old tags matching any new tag as a prefix.
// The reserved names id, state and type cannot be removed.
func (t *TagTransformer) Transform(
	tags, oldTags []string,
	op graphDomain.MetadataOperation,
) (metadataDomain.TagMap, metadataDomain.HashSet, error) {
	if op == "" {
		op = graphDomain.OperationAppend
	}

	result := make(metadataDomain.TagMap)
	keyHashes := make(metadataDomain.HashSet)
	newNames := make(map[string]struct{})
	newHadKeyHash := false

	source := tags
	if op == graphDomain.OperationRemove {
		if len(oldTags) == 0 {
			return result, keyHashes, nil
		}
		source = survivors(oldTags, tags)
	}

	for _, tag := range source {
		name, value, isTag := strings.Cut(tag, "=")
		if name == graphDomain.TagID {
			t.logger.Warn("ignoring id tag, ids are generated", slog.String("tag", tag))
			continue
		}
		if len(tag) > graphDomain.MaxTagLength {
			return nil, nil, graphDomain.ErrTagTooLong
		}

		switch name {
		case graphDomain.TagState:
			if !isTag {
				return nil, nil, metadataDomain.ErrStateFlag
			}
			if len(result[name]) > 0 {
				return nil, nil, graphDomain.ErrMultipleStates
			}
		case graphDomain.TagType:
			if !isTag {
				return nil, nil, metadataDomain.ErrTypeFlag
			}
			if len(result[name]) > 0 {
				return nil, nil, graphDomain.ErrMultipleTypes
			}
		case graphDomain.TagKeyHash:
			if !isTag {
				return nil, nil, metadataDomain.ErrKeyHashFlag
			}
			newHadKeyHash = true
			if len(value) == t.hashLength {
				keyHashes[value] = struct{}{}
			}
		}

		if err := result.Add(name, value, isTag); err != nil {
			return nil, nil, err
		}
		newNames[name] = struct{}{}
	}

	if op != graphDomain.OperationRemove {
		for _, tag := range oldTags {
			name, value, isTag := strings.Cut(tag, "=")

			switch name {
			case graphDomain.TagID:
				continue
			case graphDomain.TagState:
				if result.Has(name) {
					continue
				}
			case graphDomain.TagType:
				if result.Has(name) {
					if _, same := result[name][value]; !same {
						return nil, nil, graphDomain.ErrTypeChange
					}
					continue
				}
			case graphDomain.TagKeyHash:
				if op == graphDomain.OperationReplace && newHadKeyHash {
					continue
				}
				if len(value) == t.hashLength {
					keyHashes[value] = struct{}{}
				}
			}

			if !isTag {
				if !result.Has(name) {
					result[name] = nil
				}
				continue
			}
			if _, touched := newNames[name]; op == graphDomain.OperationAppend || !touched {
				if result.IsFlag(name) {
					continue
				}
				_ = result.Add(name, value, true)
			}
		}
	}

	// A PrivateKey is identified by a key tag or by the key_hash tags of its public key.
	if result.Single(graphDomain.TagType) == graphDomain.TypePrivateKey &&
		len(result[graphDomain.TagKey]) == 0 && len(result[graphDomain.TagKeyHash]) == 0 {
		return nil, nil, graphDomain.ErrMissingKeyIdentity
	}

	return result, keyHashes, nil
}

// ExtractKeyHashes returns the canonical key hashes and the type of stored tags.
func (t *TagTransformer) ExtractKeyHashes(tags []string) (metadataDomain.HashSet, string) {
	keyHashes := make(metadataDomain.HashSet)
	contentType := ""
	for _, tag := range tags {
		name, value, _ := strings.Cut(tag, "=")
		switch name {
		case graphDomain.TagKeyHash:
			if len(value) == t.hashLength {
				keyHashes[value] = struct{}{}
			}
		case graphDomain.TagType:
			contentType = value
		}
	}
	return keyHashes, contentType
}

// survivors returns the old tags not matched by any removal prefix. Removal
// prefixes naming id, state or type are ignored.
func survivors(oldTags, removals []string) []string {
	prefixes := make([]string, 0, len(removals))
	for _, removal := range removals {
		name, _, _ := strings.Cut(removal, "=")
		switch name {
		case graphDomain.TagID, graphDomain.TagState, graphDomain.TagType:
			continue
		}
		prefixes = append(prefixes, removal)
	}
	if len(prefixes) == 0 {
		return oldTags
	}

	kept := make([]string, 0, len(oldTags))
outer:
	for _, tag := range oldTags {
		for _, prefix := range prefixes {
			if strings.HasPrefix(tag, prefix) {
				continue outer
			}
		}
		kept = append(kept, tag)
	}
	return kept
}
