package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// contentActionGroupField is moved from the payload onto the ContentAction.
const contentActionGroupField = "contentActionGroup"

// HandlerRegistry reports which action kinds can be evaluated.
type HandlerRegistry interface {
	Has(kind string) bool
}

// actionSealer encrypts action inputs into storable actions.
type actionSealer struct {
	aeadManager cryptoService.AEADManager
	hasher      cryptoService.Hasher
	handlers    HandlerRegistry
	actionRepo  ActionRepository
}

// seal validates and encrypts inputs. ContentActions are prepared when
// forContent is set; cluster and content ids are filled in by save.
func (s *actionSealer) seal(
	access Access,
	inputs []ActionInput,
	forContent bool,
) ([]*graphDomain.Action, error) {
	now := time.Now().UTC()
	actions := make([]*graphDomain.Action, 0, len(inputs))

	for _, in := range inputs {
		key := in.Key
		if len(key) == 0 {
			key = access.DefaultKey()
		}
		if len(key) == 0 {
			return nil, graphDomain.ErrMissingActionKey
		}

		payload, err := authzDomain.ParsePayload(in.Payload)
		if err != nil {
			return nil, err
		}
		if !s.handlers.Has(payload.Kind) {
			return nil, apperrors.Wrapf(graphDomain.ErrUnknownActionKind, "action %q", payload.Kind)
		}

		var group string
		if err := payload.Decode(contentActionGroupField, &group); err != nil {
			return nil, err
		}
		delete(payload.Fields, contentActionGroupField)

		plaintext, err := json.Marshal(payload.Fields)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to encode action payload")
		}

		cipher, err := s.aeadManager.CreateCipher(key, cryptoDomain.AESGCM)
		if err != nil {
			return nil, err
		}
		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		if err != nil {
			return nil, err
		}

		action := &graphDomain.Action{
			KeyHash:    s.hasher.Canonical(key),
			Nonce:      base64.StdEncoding.EncodeToString(nonce),
			Value:      ciphertext,
			ActionType: payload.Kind,
			Start:      now,
			Stop:       in.Stop,
		}
		if in.Start != nil {
			action.Start = in.Start.UTC()
		}
		if forContent {
			action.ContentAction = &graphDomain.ContentAction{Group: group}
		}
		actions = append(actions, action)
	}

	return actions, nil
}

// save persists sealed actions for clusterID; contentID is used for ContentActions.
func (s *actionSealer) save(ctx context.Context, actions []*graphDomain.Action, clusterID, contentID int64) error {
	for _, action := range actions {
		action.ClusterID = clusterID
		if action.ContentAction != nil {
			action.ContentAction.ContentID = contentID
		}
		if err := s.actionRepo.Create(ctx, action); err != nil {
			return err
		}
	}
	return nil
}
