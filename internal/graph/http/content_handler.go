package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devkral/secretgraph/internal/graph/http/dto"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
	"github.com/devkral/secretgraph/internal/httputil"
	customValidation "github.com/devkral/secretgraph/internal/validation"
)

// ContentHandler handles HTTP requests for contents and keys.
type ContentHandler struct {
	contentUseCase graphUsecase.ContentUseCase
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler with required dependencies.
func NewContentHandler(contentUseCase graphUsecase.ContentUseCase, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		contentUseCase: contentUseCase,
		logger:         logger,
	}
}

// CreateHandler stores an encrypted content.
// POST /v1/contents - Requires update scope on the cluster. Returns 201 Created.
func (h *ContentHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateContentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToCreateContentInput()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	content, err := h.contentUseCase.Create(c.Request.Context(), requestAccess(c), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapContentToResponse(content))
}

// CreateKeyHandler stores a public key and optionally its encrypted private key.
// POST /v1/keys - Returns 201 Created.
func (h *ContentHandler) CreateKeyHandler(c *gin.Context) {
	var req dto.CreateKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToCreateKeyInput()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	pair, err := h.contentUseCase.CreateKey(c.Request.Context(), requestAccess(c), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyPairToResponse(pair.Public, pair.Private))
}

// ListHandler lists visible contents. Listing counts as an indirect read for fetch tracking.
// GET /v1/contents?offset=0&limit=50 - Returns 200 OK.
func (h *ContentHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	contents, err := h.contentUseCase.List(c.Request.Context(), requestAccess(c), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapContentsToListResponse(contents))
}

// GetHandler returns a content with its encrypted value. This is a direct read.
// GET /v1/contents/:id - Returns 200 OK.
func (h *ContentHandler) GetHandler(c *gin.Context) {
	content, value, err := h.contentUseCase.Get(c.Request.Context(), requestAccess(c), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.GetContentResponse{
		ContentResponse: dto.MapContentToResponse(content),
		Value:           value,
	})
}

// UpdateHandler replaces value, tags and references of a content or key.
// PUT /v1/contents/:id - Requires update scope. Returns 200 OK.
func (h *ContentHandler) UpdateHandler(c *gin.Context) {
	var req dto.UpdateContentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToUpdateContentInput(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	content, err := h.contentUseCase.Update(c.Request.Context(), requestAccess(c), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapContentToResponse(content))
}

// UpdateMetadataHandler changes tags and references of a content.
// PATCH /v1/contents/:id/metadata - Requires update scope. Returns 200 OK.
func (h *ContentHandler) UpdateMetadataHandler(c *gin.Context) {
	var req dto.UpdateMetadataRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToUpdateMetadataInput(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	content, err := h.contentUseCase.UpdateMetadata(c.Request.Context(), requestAccess(c), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapContentToResponse(content))
}

// DeleteHandler deletes a content and everything depending on it.
// DELETE /v1/contents/:id - Requires delete scope. Returns 200 OK with the deleted count.
func (h *ContentHandler) DeleteHandler(c *gin.Context) {
	deleted, err := h.contentUseCase.Delete(c.Request.Context(), requestAccess(c), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteResponse{Deleted: len(deleted)})
}

// ScheduleDeletionHandler sets or clears the destruction deadline of a content.
// PUT /v1/contents/:id/deletion - Requires delete scope. Returns 204 No Content.
func (h *ContentHandler) ScheduleDeletionHandler(c *gin.Context) {
	var req dto.ScheduleDeletionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.contentUseCase.ScheduleDeletion(c.Request.Context(), requestAccess(c), c.Param("id"), req.At); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// TransferHandler replaces the value of a content with a remote one.
// POST /v1/contents/:id/transfer - Requires update scope. Returns 200 OK with the outcome;
// remote failures are outcomes, not errors.
func (h *ContentHandler) TransferHandler(c *gin.Context) {
	var req dto.TransferRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.contentUseCase.Transfer(
		c.Request.Context(),
		requestAccess(c),
		req.ToTransferContentInput(c.Param("id")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TransferResponse{Result: string(result)})
}
