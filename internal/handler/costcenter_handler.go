package handler

import (
	"net/http"

	"optibuy/internal/middleware"
	"optibuy/internal/model"
	"optibuy/internal/service"
	"optibuy/pkg/response"

	"github.com/gin-gonic/gin"
)

type CostCenterHandler struct {
	costCenterService service.CostCenterService
}

func NewCostCenterHandler(costCenterService service.CostCenterService) *CostCenterHandler {
	return &CostCenterHandler{costCenterService: costCenterService}
}

func (h *CostCenterHandler) RegisterRoutes(router *gin.RouterGroup) {
	centers := router.Group("/cost-centers")
	{
		// Listing is open to any viewer — request creation needs the directory
		centers.GET("", middleware.RequirePermission(model.PermRequestView), h.List)
		centers.POST("", middleware.RequirePermission(model.PermSettingsEdit), h.Create)
		centers.PUT("/:id", middleware.RequirePermission(model.PermSettingsEdit), h.Update)
		centers.DELETE("/:id", middleware.RequirePermission(model.PermSettingsEdit), h.Delete)
	}
}

// List handles GET /cost-centers
// @Summary      List cost centers
// @Tags         cost-centers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.CostCenter}
// @Router       /cost-centers [get]
func (h *CostCenterHandler) List(c *gin.Context) {
	centers, err := h.costCenterService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch cost centers"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, centers))
}

// Create handles POST /cost-centers
// @Summary      Create cost center
// @Tags         cost-centers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CostCenterDTO  true  "Cost Center Payload"
// @Success      201      {object}  response.Response{data=model.CostCenter}
// @Failure      400      {object}  response.Response
// @Router       /cost-centers [post]
func (h *CostCenterHandler) Create(c *gin.Context) {
	var dto service.CostCenterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid cost center payload: "+err.Error()))
		return
	}

	cc, err := h.costCenterService.Create(c.Request.Context(), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cc))
}

// Update handles PUT /cost-centers/:id
// @Summary      Update cost center
// @Tags         cost-centers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Cost Center ID"
// @Param        payload  body      service.CostCenterDTO  true  "Cost Center Payload"
// @Success      200      {object}  response.Response{data=model.CostCenter}
// @Failure      404      {object}  response.Response
// @Router       /cost-centers/{id} [put]
func (h *CostCenterHandler) Update(c *gin.Context) {
	var dto service.CostCenterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid cost center payload"))
		return
	}

	cc, err := h.costCenterService.Update(c.Request.Context(), c.Param("id"), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cc))
}

// Delete handles DELETE /cost-centers/:id
// @Summary      Delete cost center
// @Description  Removes the cost center even when requests still reference it
// @Tags         cost-centers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cost Center ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /cost-centers/{id} [delete]
func (h *CostCenterHandler) Delete(c *gin.Context) {
	if err := h.costCenterService.Delete(c.Request.Context(), c.Param("id"), currentActor(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Cost center deleted successfully"))
}
