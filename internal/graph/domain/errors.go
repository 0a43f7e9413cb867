package domain

import (
	"github.com/devkral/secretgraph/internal/errors"
)

// Graph errors.
var (
	// ErrClusterNotFound indicates the cluster does not exist or is not visible.
	ErrClusterNotFound = errors.Wrap(errors.ErrNotFound, "cluster not found")

	// ErrContentNotFound indicates the content does not exist or is not visible.
	ErrContentNotFound = errors.Wrap(errors.ErrNotFound, "content not found")

	// ErrFlexIDExhausted is fatal: every flexid attempt collided.
	ErrFlexIDExhausted = errors.New("flexid generation exhausted")

	// ErrInvalidGlobalID indicates a malformed relay global id.
	ErrInvalidGlobalID = errors.Wrap(errors.ErrInvalidInput, "invalid global id")

	// ErrTagTooLong indicates a tag exceeding MaxTagLength bytes.
	ErrTagTooLong = errors.Wrap(errors.ErrInvalidInput, "tag too big")

	// ErrExtraTooLong indicates a reference extra exceeding MaxExtraLength bytes.
	ErrExtraTooLong = errors.Wrap(errors.ErrInvalidInput, "extra tag too big")

	// ErrMultipleStates indicates more than one state tag.
	ErrMultipleStates = errors.Wrap(errors.ErrInvalidInput, "multiple states specified")

	// ErrMultipleTypes indicates more than one type tag.
	ErrMultipleTypes = errors.Wrap(errors.ErrInvalidInput, "multiple types specified")

	// ErrTypeChange indicates an attempt to change the type of a content.
	ErrTypeChange = errors.Wrap(errors.ErrInvalidInput, "Cannot change type")

	// ErrTagFlagCollision indicates a name used both as a tag and as a flag.
	ErrTagFlagCollision = errors.Wrap(errors.ErrInvalidInput, "tag name used as flag and tag")

	// ErrMissingKeyIdentity indicates a private key tag set naming no encrypting key.
	ErrMissingKeyIdentity = errors.Wrap(errors.ErrInvalidInput, "PrivateKey has no key=<foo> tag")

	// ErrInvalidState indicates a state outside the vocabulary allowed for the type.
	ErrInvalidState = errors.Wrap(errors.ErrInvalidInput, "invalid state")

	// ErrInvalidType indicates a missing or reserved type.
	ErrInvalidType = errors.Wrap(errors.ErrInvalidInput, "invalid type or type not set")

	// ErrInvalidContentHash indicates a content hash of the wrong length.
	ErrInvalidContentHash = errors.Wrap(errors.ErrInvalidInput, "invalid content hash")

	// ErrMissingKeyHash indicates a private key without the hash of its decryption key.
	ErrMissingKeyHash = errors.Wrap(errors.ErrInvalidInput, "private key requires a key_hash tag")

	// ErrPublicKeyHashMismatch indicates a public key whose hash is missing from its key_hash tags.
	ErrPublicKeyHashMismatch = errors.Wrap(errors.ErrInvalidInput, "public key must list its own hash in key_hash tags")

	// ErrMissingKeyReference indicates a non-key content without any key reference.
	ErrMissingKeyReference = errors.Wrap(errors.ErrInvalidInput, "missing key reference")

	// ErrMissingRequiredKeys indicates a content not encrypted for every required key.
	ErrMissingRequiredKeys = errors.Wrap(errors.ErrInvalidInput, "not encrypted for required keys")

	// ErrNotSigned indicates no signature reference from a required key.
	ErrNotSigned = errors.Wrap(errors.ErrInvalidInput, "Not signed by required keys")

	// ErrInvalidReferenceTarget indicates a key or transfer target without a matching hash.
	ErrInvalidReferenceTarget = errors.Wrap(errors.ErrInvalidInput, "invalid reference target")

	// ErrTagNotAllowed indicates a tag outside the allowed tag prefixes of the granting action.
	ErrTagNotAllowed = errors.Wrap(errors.ErrForbidden, "tag not allowed")

	// ErrUnknownActionKind indicates an action payload naming no registered handler.
	ErrUnknownActionKind = errors.Wrap(errors.ErrInvalidInput, "unknown action")

	// ErrMissingActionKey indicates an action without key and without a request credential.
	ErrMissingActionKey = errors.Wrap(errors.ErrInvalidInput, "no key specified/available")

	// ErrMissingValue indicates a content without value.
	ErrMissingValue = errors.Wrap(errors.ErrInvalidInput, "requires value")

	// ErrMissingPrivateKeyNonce indicates an encrypted private key without nonce.
	ErrMissingPrivateKeyNonce = errors.Wrap(errors.ErrInvalidInput, "encrypted private key requires nonce")

	// ErrPublicKeyChange indicates an update of a key with a different public key.
	ErrPublicKeyChange = errors.Wrap(errors.ErrInvalidInput, "Cannot change public key")

	// ErrMissingPublicKey indicates a key update without its public key.
	ErrMissingPublicKey = errors.Wrap(errors.ErrInvalidInput, "Cannot transform key to content")
)
