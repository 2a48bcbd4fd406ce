package handler

import (
	"github.com/codigix/passion-clothing-sub000/internal/production/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// List production requests
// GET /api/v1/production-requests?status=pending
func (h *RequestHandler) List(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status":         c.Query("status"),
		"sales_order_id": c.Query("sales_order_id"),
		"search":         c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list production requests: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/production-requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	pr, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, pr)
}

// POST /api/v1/production-requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateProductionRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	pr, err := h.svc.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, pr)
}

// POST /api/v1/production-requests/:id/review
func (h *RequestHandler) Review(c *gin.Context) {
	var req service.ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	pr, err := h.svc.Review(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, pr)
}

// POST /api/v1/production-requests/:id/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	pr, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, pr)
}

// List material requests (MRNs)
// GET /api/v1/material-requests?status=pending
func (h *RequestHandler) ListMaterialRequests(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status":                c.Query("status"),
		"production_request_id": c.Query("production_request_id"),
	}

	items, total, err := h.svc.ListMaterialRequests(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list material requests: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/material-requests/:id
func (h *RequestHandler) GetMaterialRequest(c *gin.Context) {
	mrn, err := h.svc.GetMaterialRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, mrn)
}

// POST /api/v1/material-requests
func (h *RequestHandler) CreateMaterialRequest(c *gin.Context) {
	var req service.CreateMaterialRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	mrn, err := h.svc.CreateMaterialRequest(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, mrn)
}
