package handler

import (
	"strconv"

	"github.com/codigix/passion-clothing-sub000/internal/inventory/entity"
	"github.com/codigix/passion-clothing-sub000/internal/inventory/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List stocked materials
// GET /api/v1/inventory?category=fabric&search=denim&below_safety=true
func (h *InventoryHandler) List(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"category":     c.Query("category"),
		"search":       c.Query("search"),
		"below_safety": c.Query("below_safety"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list inventory: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// Get one material
// GET /api/v1/inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	inv, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.NotFound(c, "Inventory item not found")
		return
	}
	httpkit.Success(c, inv)
}

// Create a material record
// POST /api/v1/inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	inv, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, inv)
}

// Adjust applies a manual stock correction
// POST /api/v1/inventory/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req struct {
		Delta float64 `json:"delta" binding:"required"`
		Notes string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	err := h.svc.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta, service.StockRef{
		Type:  "ADJ",
		ID:    c.Param("id"),
		TxTyp: entity.TxTypeAdjust,
		Notes: req.Notes,
		By:    httpkit.GetUserID(c),
	})
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, nil)
}

// Transactions lists recent stock movements of a material
// GET /api/v1/inventory/:id/transactions?limit=100
func (h *InventoryHandler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	txs, err := h.svc.ListTransactions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		httpkit.InternalError(c, "Failed to list transactions: "+err.Error())
		return
	}
	httpkit.Success(c, txs)
}
