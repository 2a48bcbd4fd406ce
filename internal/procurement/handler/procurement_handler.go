package handler

import (
	"github.com/codigix/passion-clothing-sub000/internal/procurement/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

type ProcurementHandler struct {
	svc *service.ProcurementService
}

func NewProcurementHandler(svc *service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{svc: svc}
}

// GET /api/v1/purchase-orders?status=sent
func (h *ProcurementHandler) ListPOs(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status":                c.Query("status"),
		"production_request_id": c.Query("production_request_id"),
		"search":                c.Query("search"),
	}

	items, total, err := h.svc.ListPOs(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list purchase orders: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/purchase-orders/:id
func (h *ProcurementHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, po)
}

// POST /api/v1/purchase-orders
func (h *ProcurementHandler) CreatePO(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	po, err := h.svc.CreatePO(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, po)
}

// POST /api/v1/purchase-orders/:id/send
func (h *ProcurementHandler) SendPO(c *gin.Context) {
	po, err := h.svc.SendPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, po)
}

// GET /api/v1/grns?status=pending
func (h *ProcurementHandler) ListGRNs(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"po_id":  c.Query("po_id"),
	}

	items, total, err := h.svc.ListGRNs(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list GRNs: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/grns/:id
func (h *ProcurementHandler) GetGRN(c *gin.Context) {
	grn, err := h.svc.GetGRN(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, grn)
}

// POST /api/v1/grns
func (h *ProcurementHandler) CreateGRN(c *gin.Context) {
	var req service.CreateGRNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	grn, err := h.svc.CreateGRN(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, grn)
}

// POST /api/v1/grns/:id/verify
func (h *ProcurementHandler) VerifyGRN(c *gin.Context) {
	var req struct {
		Accept  *bool  `json:"accept" binding:"required"`
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	grn, err := h.svc.VerifyGRN(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), *req.Accept, req.Remarks)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, grn)
}

// GET /api/v1/credit-notes?status=pending
func (h *ProcurementHandler) ListCreditNotes(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"po_id":  c.Query("po_id"),
	}

	items, total, err := h.svc.ListCreditNotes(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list credit notes: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/credit-notes/:id
func (h *ProcurementHandler) GetCreditNote(c *gin.Context) {
	cn, err := h.svc.GetCreditNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, cn)
}

// POST /api/v1/credit-notes/:id/approve
func (h *ProcurementHandler) ApproveCreditNote(c *gin.Context) {
	cn, err := h.svc.ApproveCreditNote(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, cn)
}
