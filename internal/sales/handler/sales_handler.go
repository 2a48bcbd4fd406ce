package handler

import (
	"github.com/codigix/passion-clothing-sub000/internal/sales/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc *service.SalesService
}

func NewSalesHandler(svc *service.SalesService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// List sales orders
// GET /api/v1/sales-orders?status=confirmed&search=acme
func (h *SalesHandler) List(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list sales orders: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// Get one order
// GET /api/v1/sales-orders/:id
func (h *SalesHandler) Get(c *gin.Context) {
	so, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, so)
}

// Create an order
// POST /api/v1/sales-orders
func (h *SalesHandler) Create(c *gin.Context) {
	var req service.CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	so, err := h.svc.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, so)
}

// Confirm an order
// POST /api/v1/sales-orders/:id/confirm
func (h *SalesHandler) Confirm(c *gin.Context) {
	so, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, so)
}

// Cancel an order
// POST /api/v1/sales-orders/:id/cancel
func (h *SalesHandler) Cancel(c *gin.Context) {
	so, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, so)
}
