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

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	suppliers := router.Group("/suppliers")
	{
		suppliers.GET("", middleware.RequirePermission(model.PermSettingsView), h.List)
		suppliers.POST("", middleware.RequirePermission(model.PermSettingsEdit), h.Create)
		suppliers.PUT("/:id", middleware.RequirePermission(model.PermSettingsEdit), h.Update)
		suppliers.DELETE("/:id", middleware.RequirePermission(model.PermSettingsEdit), h.Delete)
	}
}

// List handles GET /suppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Filter by name or category"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200     {object}  response.Response{data=[]model.Supplier}
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	suppliers, total, err := h.supplierService.List(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch suppliers"))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, suppliers, total, params.Page, params.Limit))
}

// Create handles POST /suppliers
// @Summary      Create supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SupplierDTO  true  "Supplier Payload"
// @Success      201      {object}  response.Response{data=model.Supplier}
// @Failure      400      {object}  response.Response
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var dto service.SupplierDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid supplier payload: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// Update handles PUT /suppliers/:id
// @Summary      Update supplier
// @Description  Edits a directory entry; past quotes keep the old name
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Supplier ID"
// @Param        payload  body      service.SupplierDTO  true  "Supplier Payload"
// @Success      200      {object}  response.Response{data=model.Supplier}
// @Failure      404      {object}  response.Response
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	var dto service.SupplierDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid supplier payload"))
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), c.Param("id"), dto, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// Delete handles DELETE /suppliers/:id
// @Summary      Delete supplier
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	if err := h.supplierService.Delete(c.Request.Context(), c.Param("id"), currentActor(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Supplier deleted successfully"))
}
