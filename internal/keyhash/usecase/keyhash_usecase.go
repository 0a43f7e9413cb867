package usecase

import (
	"context"
	"log/slog"

	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	"github.com/devkral/secretgraph/internal/database"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

type keyHashUseCase struct {
	txManager   database.TxManager
	contentRepo ContentRepository
	values      ValueReader
	hasher      cryptoService.Hasher
	batchSize   int
	logger      *slog.Logger
}

// NewKeyHashUseCase creates a KeyHashUseCase. Public keys are processed
// batchSize at a time, each batch in its own transaction.
func NewKeyHashUseCase(
	txManager database.TxManager,
	contentRepo ContentRepository,
	values ValueReader,
	hasher cryptoService.Hasher,
	batchSize int,
	logger *slog.Logger,
) KeyHashUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &keyHashUseCase{
		txManager:   txManager,
		contentRepo: contentRepo,
		values:      values,
		hasher:      hasher,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func keyHashTags(digests []string) []string {
	tags := make([]string, 0, len(digests))
	for _, d := range digests {
		tags = append(tags, graphDomain.TagKeyHash+"="+d)
	}
	return tags
}

// Regenerate pages through the public keys.
func (k *keyHashUseCase) Regenerate(ctx context.Context, force bool) (*Report, error) {
	report := &Report{}
	var afterID int64

	for {
		batch, err := k.contentRepo.ListPublicKeys(ctx, afterID, k.batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		afterID = batch[len(batch)-1].ID

		err = k.txManager.WithTx(ctx, func(ctx context.Context) error {
			for _, content := range batch {
				report.Scanned++
				migrated, tagged, err := k.migrate(ctx, content, force)
				if err != nil {
					return err
				}
				if migrated {
					report.Migrated++
				}
				report.TaggedContents += tagged
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		if len(batch) < k.batchSize {
			break
		}
	}

	k.logger.Info("key hashes regenerated",
		slog.Int("scanned", report.Scanned),
		slog.Int("migrated", report.Migrated),
		slog.Int("tagged_contents", report.TaggedContents),
	)
	return report, nil
}

// migrate brings one public key onto the canonical digest. A stored hash at
// position i of the digest list means the digests before i are newer: they are
// added to every content referencing one of the older ones.
func (k *keyHashUseCase) migrate(ctx context.Context, content *graphDomain.Content, force bool) (bool, int, error) {
	stored := ""
	if content.ContentHash != nil {
		stored = *content.ContentHash
	}
	if !force && stored != "" && len(stored) == k.hasher.DigestLength() {
		return false, 0, nil
	}

	value, err := k.values.Read(ctx, content.ValueRef)
	if err != nil {
		return false, 0, err
	}
	digests := k.hasher.Digests(value)

	idx := len(digests)
	for i, d := range digests {
		if d == stored {
			idx = i
			break
		}
	}
	if idx == 0 {
		return false, 0, nil
	}

	old := append([]string{}, digests[idx:]...)
	if idx == len(digests) && stored != "" {
		old = append(old, stored)
	}

	tagged := 0
	if len(old) > 0 {
		referencing := make([]predicate.Predicate, 0, len(old))
		for _, tag := range keyHashTags(old) {
			referencing = append(referencing, predicate.HasTag(tag))
		}
		ids, err := k.contentRepo.ListIDs(ctx, predicate.AllOf(
			predicate.AnyOf(referencing...),
			predicate.Negate(predicate.HasTag(graphDomain.TagKeyHash+"="+digests[0])),
		))
		if err != nil {
			return false, 0, err
		}
		if len(ids) > 0 {
			if err := k.contentRepo.AddTags(ctx, ids, keyHashTags(digests[:idx])); err != nil {
				return false, 0, err
			}
		}
		tagged = len(ids)
	}

	from := append([]string{}, digests[1:]...)
	if idx == len(digests) && stored != "" {
		from = append(from, stored)
	}
	if _, err := k.contentRepo.ReplacePublicKeyHash(ctx, from, digests[0]); err != nil {
		return false, 0, err
	}

	k.logger.Debug("public key migrated",
		slog.Int64("content_id", content.ID),
		slog.Int("tagged_contents", tagged),
	)
	return true, tagged, nil
}
