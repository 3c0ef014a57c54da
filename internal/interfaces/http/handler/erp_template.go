package handler

import (
	"github.com/gin-gonic/gin"

	apperp "github.com/markethub/backend/internal/application/erp"
)

// ErpTemplateHandler serves the sales template configuration endpoints
type ErpTemplateHandler struct {
	BaseHandler
	service *apperp.TemplateService
}

// NewErpTemplateHandler creates a new ErpTemplateHandler
func NewErpTemplateHandler(service *apperp.TemplateService) *ErpTemplateHandler {
	return &ErpTemplateHandler{service: service}
}

// RegisterRoutes registers the template routes
func (h *ErpTemplateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	configs := rg.Group("/erp/configs")
	{
		configs.GET("/:configId/sales-template", h.Get)
		configs.PUT("/:configId/sales-template", h.Save)
	}
}

// Get handles GET /erp/configs/:configId/sales-template.
// An unconfigured connection yields an editable SIMPLE_SALE default.
func (h *ErpTemplateHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	configID, ok := parseUUIDParam(c, "configId")
	if !ok {
		h.BadRequest(c, "Invalid config ID")
		return
	}

	tmpl, err := h.service.Get(c.Request.Context(), tenantID, configID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apperp.ToSalesTemplateResponse(tmpl))
}

// Save handles PUT /erp/configs/:configId/sales-template
func (h *ErpTemplateHandler) Save(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	configID, ok := parseUUIDParam(c, "configId")
	if !ok {
		h.BadRequest(c, "Invalid config ID")
		return
	}

	var req apperp.SaveSalesTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tmpl, err := h.service.Save(c.Request.Context(), tenantID, configID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apperp.ToSalesTemplateResponse(tmpl))
}
