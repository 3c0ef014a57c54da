package handler

import (
	"github.com/gin-gonic/gin"

	apperp "github.com/markethub/backend/internal/application/erp"
	"github.com/markethub/backend/internal/interfaces/http/middleware"
)

// ErpDocumentHandler serves the sales document endpoints
type ErpDocumentHandler struct {
	BaseHandler
	service *apperp.DocumentService
}

// NewErpDocumentHandler creates a new ErpDocumentHandler
func NewErpDocumentHandler(service *apperp.DocumentService) *ErpDocumentHandler {
	return &ErpDocumentHandler{service: service}
}

// RegisterRoutes registers the document routes
func (h *ErpDocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	erp := rg.Group("/erp")
	{
		docs := erp.Group("/documents")
		{
			docs.POST("/generate/:orderId", h.Generate)
			docs.POST("/generate-batch", h.GenerateBatch)
			docs.POST("/generate-all", h.GenerateAll)
			docs.POST("/regenerate/:orderId", h.Regenerate)
			docs.GET("", h.List)
			docs.GET("/counts", h.Counts)
			docs.GET("/:id", h.Get)
			docs.POST("/:id/send", h.Send)
			docs.POST("/:id/cancel", h.Cancel)
			docs.DELETE("/:id", h.Delete)
			docs.POST("/send-selected", h.SendSelected)
			docs.POST("/send-all", h.SendAll)
		}
		erp.GET("/orders/:orderId/preview", h.Preview)
	}
}

// generateResponse bundles the generated document with build warnings
type generateResponse struct {
	Document apperp.DocumentResponse `json:"document"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Generate handles POST /erp/documents/generate/:orderId
func (h *ErpDocumentHandler) Generate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	result, err := h.service.Generate(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, generateResponse{
		Document: apperp.ToDocumentResponse(result.Document),
		Warnings: result.Warnings,
	})
}

// GenerateBatch handles POST /erp/documents/generate-batch
func (h *ErpDocumentHandler) GenerateBatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req apperp.GenerateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.GenerateBatch(c.Request.Context(), tenantID, req.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GenerateAll handles POST /erp/documents/generate-all. It generates
// documents for every order that has no non-cancelled document yet.
func (h *ErpDocumentHandler) GenerateAll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	result, err := h.service.GenerateAllEligible(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Regenerate handles POST /erp/documents/regenerate/:orderId
func (h *ErpDocumentHandler) Regenerate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	result, err := h.service.Regenerate(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, generateResponse{
		Document: apperp.ToDocumentResponse(result.Document),
		Warnings: result.Warnings,
	})
}

// List handles GET /erp/documents
func (h *ErpDocumentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter apperp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	docs, total, err := h.service.List(c.Request.Context(), tenantID, filter.ToDomainFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, apperp.ToDocumentListResponses(docs), total, filter.Page, filter.PageSize)
}

// Counts handles GET /erp/documents/counts
func (h *ErpDocumentHandler) Counts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	counts, err := h.service.Counts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// Get handles GET /erp/documents/:id
func (h *ErpDocumentHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	documentID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.service.Get(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apperp.ToDocumentResponse(doc))
}

// Send handles POST /erp/documents/:id/send
func (h *ErpDocumentHandler) Send(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	documentID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.service.Send(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// A FAILED document is a successful response; the outcome is in its status
	h.Success(c, apperp.ToDocumentResponse(doc))
}

// Cancel handles POST /erp/documents/:id/cancel
func (h *ErpDocumentHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	documentID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.service.Cancel(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apperp.ToDocumentResponse(doc))
}

// Delete handles DELETE /erp/documents/:id
func (h *ErpDocumentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	documentID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, documentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SendSelected handles POST /erp/documents/send-selected
func (h *ErpDocumentHandler) SendSelected(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req apperp.SendSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.SendSelected(c.Request.Context(), tenantID, req.DocumentIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SendAll handles POST /erp/documents/send-all
func (h *ErpDocumentHandler) SendAll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	result, err := h.service.SendAllPending(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Preview handles GET /erp/orders/:orderId/preview
func (h *ErpDocumentHandler) Preview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	orderID, ok := parseUUIDParam(c, "orderId")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}
