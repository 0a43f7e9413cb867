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

// ClusterHandler handles HTTP requests for clusters and their actions.
type ClusterHandler struct {
	clusterUseCase graphUsecase.ClusterUseCase
	actionUseCase  graphUsecase.ActionUseCase
	logger         *slog.Logger
}

// NewClusterHandler creates a new cluster handler with required dependencies.
func NewClusterHandler(
	clusterUseCase graphUsecase.ClusterUseCase,
	actionUseCase graphUsecase.ActionUseCase,
	logger *slog.Logger,
) *ClusterHandler {
	return &ClusterHandler{
		clusterUseCase: clusterUseCase,
		actionUseCase:  actionUseCase,
		logger:         logger,
	}
}

// CreateHandler creates a cluster with its initial actions.
// POST /v1/clusters - Returns 201 Created.
func (h *ClusterHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateClusterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cluster, err := h.clusterUseCase.Create(c.Request.Context(), requestAccess(c), graphUsecase.CreateClusterInput{
		Name:        req.Name,
		Description: req.Description,
		Public:      req.Public,
		PublicInfo:  []byte(req.PublicInfo),
		Actions:     dto.ToActionInputs(req.Actions),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapClusterToResponse(cluster))
}

// ListHandler lists the clusters visible to the request.
// GET /v1/clusters?offset=0&limit=50 - Returns 200 OK.
func (h *ClusterHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	clusters, err := h.clusterUseCase.List(c.Request.Context(), requestAccess(c), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClustersToListResponse(clusters))
}

// ScheduleDeletionHandler sets or clears the destruction deadline of a cluster.
// PUT /v1/clusters/:id/deletion - Requires delete scope. Returns 204 No Content.
func (h *ClusterHandler) ScheduleDeletionHandler(c *gin.Context) {
	var req dto.ScheduleDeletionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.clusterUseCase.ScheduleDeletion(c.Request.Context(), requestAccess(c), c.Param("id"), req.At); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateActionsHandler adds actions to a cluster.
// POST /v1/clusters/:id/actions - Requires manage scope. Returns 201 Created.
func (h *ClusterHandler) CreateActionsHandler(c *gin.Context) {
	var req dto.CreateActionsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actions, err := h.actionUseCase.Create(
		c.Request.Context(),
		requestAccess(c),
		c.Param("id"),
		dto.ToActionInputs(req.Actions),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapActionsToListResponse(actions))
}
