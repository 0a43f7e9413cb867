package usecase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	"github.com/devkral/secretgraph/internal/database"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// nonceHeader carries the nonce of the remote value.
const nonceHeader = "X-NONCES"

// encodedNonceLength is the base64 length of a 13 byte nonce.
const encodedNonceLength = 20

// Options bounds the remote fetch.
type Options struct {
	Timeout  time.Duration
	MaxBytes int64
}

// transferUseCase implements TransferUseCase.
type transferUseCase struct {
	txManager   database.TxManager
	contentRepo ContentRepository
	values      ValueStore
	aeadManager cryptoService.AEADManager
	hasher      cryptoService.Hasher
	client      *http.Client
	opts        Options
	logger      *slog.Logger
}

// NewTransferUseCase creates a TransferUseCase. The client is used as is;
// requests are never retried.
func NewTransferUseCase(
	txManager database.TxManager,
	contentRepo ContentRepository,
	values ValueStore,
	aeadManager cryptoService.AEADManager,
	hasher cryptoService.Hasher,
	client *http.Client,
	opts Options,
	logger *slog.Logger,
) TransferUseCase {
	return &transferUseCase{
		txManager:   txManager,
		contentRepo: contentRepo,
		values:      values,
		aeadManager: aeadManager,
		hasher:      hasher,
		client:      client,
		opts:        opts,
		logger:      logger,
	}
}

// Transfer locks the content row for the duration of the fetch and write.
func (t *transferUseCase) Transfer(
	ctx context.Context,
	req TransferRequest,
) (graphDomain.TransferResult, error) {
	if len(req.Key) > 0 && req.URL != "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "can only specify key or url")
	}
	if len(req.Key) == 0 && req.URL == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "key or url required")
	}

	result := graphDomain.TransferError
	err := t.txManager.WithTx(ctx, func(txCtx context.Context) error {
		content, err := t.contentRepo.LockForTransfer(txCtx, req.ContentID, req.Transfer)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				result = graphDomain.TransferNotFound
				return nil
			}
			return err
		}

		url, header, ok := t.source(txCtx, content, req)
		if !ok {
			return nil
		}

		value, nonce, outcome := t.fetch(txCtx, content, url, header, t.timeout(req.Timeout))
		if outcome != graphDomain.TransferSuccess {
			result = outcome
			return nil
		}

		if err := t.values.Write(txCtx, content.ValueRef, value); err != nil {
			return err
		}
		if nonce != "" && nonce != content.Nonce {
			if err := t.contentRepo.UpdateNonce(txCtx, content.ID, nonce); err != nil {
				return err
			}
		}
		if req.Transfer {
			if err := t.contentRepo.DeleteReferencesInGroup(txCtx, content.ID, graphDomain.GroupTransfer); err != nil {
				return err
			}
		}
		result = graphDomain.TransferSuccess
		return nil
	})
	if err != nil {
		return "", err
	}

	t.logger.Info("content transferred",
		slog.Int64("content_id", req.ContentID),
		slog.String("result", string(result)))
	return result, nil
}

// source returns the url and headers of the remote value. With a key the
// stored value is decrypted into a "url\r\nheaders" descriptor.
func (t *transferUseCase) source(
	ctx context.Context,
	content *graphDomain.Content,
	req TransferRequest,
) (string, http.Header, bool) {
	header := http.Header{}
	url := req.URL

	if len(req.Key) > 0 {
		descriptor, err := t.decryptDescriptor(ctx, content, req.Key)
		if err != nil {
			t.logger.Error("failed to decode transfer descriptor",
				slog.Int64("content_id", content.ID),
				slog.Any("error", err))
			return "", nil, false
		}
		url, header, err = parseDescriptor(descriptor)
		if err != nil {
			t.logger.Error("failed to parse transfer descriptor",
				slog.Int64("content_id", content.ID),
				slog.Any("error", err))
			return "", nil, false
		}
	}

	for name, values := range req.Headers {
		header[textproto.CanonicalMIMEHeaderKey(name)] = values
	}
	return url, header, true
}

func (t *transferUseCase) decryptDescriptor(
	ctx context.Context,
	content *graphDomain.Content,
	key []byte,
) ([]byte, error) {
	nonce, err := base64.StdEncoding.DecodeString(content.Nonce)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrInvalidNonce, "invalid content nonce")
	}
	blob, err := t.values.Read(ctx, content.ValueRef)
	if err != nil {
		return nil, err
	}
	cipher, err := t.aeadManager.CreateCipher(key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}
	return cipher.Decrypt(blob, nonce, nil)
}

// parseDescriptor splits "url\r\nheaders" where headers use MIME syntax.
func parseDescriptor(descriptor []byte) (string, http.Header, error) {
	url, rest, found := bytes.Cut(descriptor, []byte("\r\n"))
	if !found || len(bytes.TrimSpace(rest)) == 0 {
		return string(bytes.TrimSpace(url)), http.Header{}, nil
	}

	if !bytes.HasSuffix(rest, []byte("\r\n\r\n")) {
		rest = append(bytes.TrimRight(rest, "\r\n"), "\r\n\r\n"...)
	}
	mime, err := textproto.NewReader(bufio.NewReader(bytes.NewReader(rest))).ReadMIMEHeader()
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed transfer headers")
	}
	return string(bytes.TrimSpace(url)), http.Header(mime), nil
}

// timeout caps a requested fetch timeout by the configured one.
func (t *transferUseCase) timeout(requested time.Duration) time.Duration {
	if requested <= 0 || (t.opts.Timeout > 0 && requested > t.opts.Timeout) {
		return t.opts.Timeout
	}
	return requested
}

// fetch downloads the remote value. Every remote failure maps onto a result.
func (t *transferUseCase) fetch(
	ctx context.Context,
	content *graphDomain.Content,
	url string,
	header http.Header,
	timeout time.Duration,
) ([]byte, string, graphDomain.TransferResult) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.logger.Error("invalid transfer url", slog.Int64("content_id", content.ID), slog.Any("error", err))
		return nil, "", graphDomain.TransferError
	}
	httpReq.Header = header
	httpReq.Close = true

	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Error("transfer request failed", slog.Int64("content_id", content.ID), slog.Any("error", err))
		return nil, "", graphDomain.TransferError
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", graphDomain.TransferNotFound
	case resp.StatusCode != http.StatusOK:
		t.logger.Warn("unexpected transfer status",
			slog.Int64("content_id", content.ID),
			slog.Int("status", resp.StatusCode))
		return nil, "", graphDomain.TransferError
	}

	nonce := strings.Trim(resp.Header.Get(nonceHeader), ", ")
	if nonce != "" && len(nonce) != encodedNonceLength {
		t.logger.Warn("invalid transfer nonce", slog.Int64("content_id", content.ID))
		return nil, "", graphDomain.TransferError
	}

	body := io.Reader(resp.Body)
	if t.opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, t.opts.MaxBytes+1)
	}
	value, err := io.ReadAll(body)
	if err != nil {
		t.logger.Error("failed to read transfer body", slog.Int64("content_id", content.ID), slog.Any("error", err))
		return nil, "", graphDomain.TransferError
	}
	if t.opts.MaxBytes > 0 && int64(len(value)) > t.opts.MaxBytes {
		t.logger.Warn("transfer body too large", slog.Int64("content_id", content.ID))
		return nil, "", graphDomain.TransferError
	}

	if content.Type() == graphDomain.TypePublicKey && content.ContentHash != nil &&
		t.hasher.Canonical(value) != *content.ContentHash {
		return nil, "", graphDomain.TransferFailedVerification
	}
	return value, nonce, graphDomain.TransferSuccess
}
