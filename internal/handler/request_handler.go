package handler

import (
	"net/http"

	"optibuy/internal/middleware"
	"optibuy/internal/model"
	"optibuy/internal/service"
	"optibuy/pkg/pagination"
	"optibuy/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService  service.RequestService
	analysisService service.AnalysisService
}

func NewRequestHandler(requestService service.RequestService, analysisService service.AnalysisService) *RequestHandler {
	return &RequestHandler{requestService: requestService, analysisService: analysisService}
}

// RegisterRoutes binds the requisition workflow endpoints. Each route is gated
// by the capability key matching its surface; the admin role passes every gate.
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.GET("", middleware.RequirePermission(model.PermRequestView), h.List)
		requests.POST("", middleware.RequirePermission(model.PermRequestCreate), h.Create)
		requests.GET("/:id", middleware.RequirePermission(model.PermRequestView), h.Get)
		requests.PUT("/:id", middleware.RequirePermission(model.PermRequestEdit), h.Update)

		requests.POST("/:id/approve", middleware.RequirePermission(model.PermRequestApprove), h.Approve)
		requests.POST("/:id/cancel", middleware.RequirePermission(model.PermRequestEdit), h.Cancel)
		requests.POST("/:id/finalize", middleware.RequirePermission(model.PermQuotationFinal), h.Finalize)

		requests.POST("/:id/proposals", middleware.RequirePermission(model.PermQuotationEdit), h.AddProposal)
		requests.PUT("/:id/proposals/:proposalId", middleware.RequirePermission(model.PermQuotationEdit), h.EditProposal)
		// Selection is deliberately gated by view access only — finalization
		// is where the stricter capability applies.
		requests.POST("/:id/proposals/:proposalId/select", middleware.RequirePermission(model.PermQuotationView), h.SelectProposal)

		requests.POST("/:id/analyze", middleware.RequirePermission(model.PermQuotationEdit), h.Analyze)
	}
}

// Create handles POST /requests
// @Summary      Create purchase request
// @Description  Opens a new requisition in the requested status
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var dto service.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	req, err := h.requestService.Create(c.Request.Context(), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// List handles GET /requests with optional status filter
// @Summary      List purchase requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	requests, total, err := h.requestService.List(c.Request.Context(), status, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch requests"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, requests, total, params.Page, params.Limit))
}

// Get handles GET /requests/:id
// @Summary      Get purchase request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.requestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Update handles PUT /requests/:id — descriptive edits while still requested
// @Summary      Update purchase request
// @Description  Edits descriptive fields; only allowed before approval
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      service.UpdateRequestDTO  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
	var dto service.UpdateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	req, err := h.requestService.Update(c.Request.Context(), c.Param("id"), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Approve handles POST /requests/:id/approve
// @Summary      Approve for quotation
// @Description  Moves the request from requested to quotation
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	req, err := h.requestService.Approve(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Cancel handles POST /requests/:id/cancel
// @Summary      Cancel purchase request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *gin.Context) {
	req, err := h.requestService.Cancel(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Finalize handles POST /requests/:id/finalize
// @Summary      Finalize purchase
// @Description  Completes the purchase; requires a selected winning proposal
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      409  {object}  response.Response
// @Router       /requests/{id}/finalize [post]
func (h *RequestHandler) Finalize(c *gin.Context) {
	req, err := h.requestService.Finalize(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// AddProposal handles POST /requests/:id/proposals
// @Summary      Add supplier proposal
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Request ID"
// @Param        payload  body      service.ProposalDTO  true  "Proposal Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /requests/{id}/proposals [post]
func (h *RequestHandler) AddProposal(c *gin.Context) {
	var dto service.ProposalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid proposal payload: "+err.Error()))
		return
	}

	req, err := h.requestService.AddProposal(c.Request.Context(), c.Param("id"), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// EditProposal handles PUT /requests/:id/proposals/:proposalId
// @Summary      Edit supplier proposal
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string               true  "Request ID"
// @Param        proposalId  path      string               true  "Proposal ID"
// @Param        payload     body      service.ProposalDTO  true  "Proposal Payload"
// @Success      200         {object}  response.Response{data=service.RequestResponse}
// @Failure      409         {object}  response.Response
// @Router       /requests/{id}/proposals/{proposalId} [put]
func (h *RequestHandler) EditProposal(c *gin.Context) {
	var dto service.ProposalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid proposal payload: "+err.Error()))
		return
	}

	req, err := h.requestService.EditProposal(c.Request.Context(), c.Param("id"), c.Param("proposalId"), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// SelectProposal handles POST /requests/:id/proposals/:proposalId/select
// @Summary      Select winning proposal
// @Tags         quotations
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true  "Request ID"
// @Param        proposalId  path      string  true  "Proposal ID"
// @Success      200         {object}  response.Response{data=service.RequestResponse}
// @Failure      409         {object}  response.Response
// @Router       /requests/{id}/proposals/{proposalId}/select [post]
func (h *RequestHandler) SelectProposal(c *gin.Context) {
	req, err := h.requestService.SelectProposal(c.Request.Context(), c.Param("id"), c.Param("proposalId"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// Analyze handles POST /requests/:id/analyze
// @Summary      Run AI proposal analysis
// @Description  Scores the proposal set via the external analysis collaborator
// @Tags         quotations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.AIAnalysisResult}
// @Failure      400  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /requests/{id}/analyze [post]
func (h *RequestHandler) Analyze(c *gin.Context) {
	result, err := h.analysisService.Analyze(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
