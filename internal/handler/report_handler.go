package handler

import (
	"net/http"

	"optibuy/internal/middleware"
	"optibuy/internal/model"
	"optibuy/internal/service"
	"optibuy/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	exportService    service.ExportService
	dashboardService service.DashboardService
}

func NewReportHandler(exportService service.ExportService, dashboardService service.DashboardService) *ReportHandler {
	return &ReportHandler{exportService: exportService, dashboardService: dashboardService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequirePermission(model.PermDashboardView), h.Dashboard)
	// Viewing the completed screen and exporting it are separate capabilities
	router.GET("/reports/completed", middleware.RequirePermission(model.PermCompletedView), h.CompletedReport)
	router.GET("/reports/completed/export", middleware.RequirePermission(model.PermCompletedExport), h.CompletedReport)
}

// Dashboard handles GET /dashboard
// @Summary      Workflow dashboard
// @Description  Status counts plus the estimated value of open quotations
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardResponse}
// @Router       /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build dashboard"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// CompletedReport handles GET /reports/completed
// @Summary      Completed purchases report
// @Description  Flat projection of completed purchases for spreadsheet export
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CompletedRow}
// @Router       /reports/completed [get]
func (h *ReportHandler) CompletedReport(c *gin.Context) {
	rows, err := h.exportService.CompletedRows(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to build report"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}
