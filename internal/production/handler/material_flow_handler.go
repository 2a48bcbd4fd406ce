package handler

import (
	"github.com/codigix/passion-clothing-sub000/internal/production/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

// MaterialFlowHandler covers the dispatch → receipt → verification →
// approval chain.
type MaterialFlowHandler struct {
	dispatches    *service.DispatchService
	receipts      *service.ReceiptService
	verifications *service.VerificationService
	approvals     *service.ApprovalService
}

func NewMaterialFlowHandler(dispatches *service.DispatchService, receipts *service.ReceiptService, verifications *service.VerificationService, approvals *service.ApprovalService) *MaterialFlowHandler {
	return &MaterialFlowHandler{
		dispatches:    dispatches,
		receipts:      receipts,
		verifications: verifications,
		approvals:     approvals,
	}
}

// GET /api/v1/dispatches?received_status=pending
func (h *MaterialFlowHandler) ListDispatches(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"received_status": c.Query("received_status"),
		"request_id":      c.Query("request_id"),
	}

	items, total, err := h.dispatches.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list dispatches: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/dispatches/:id
func (h *MaterialFlowHandler) GetDispatch(c *gin.Context) {
	d, err := h.dispatches.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, d)
}

// POST /api/v1/dispatches
func (h *MaterialFlowHandler) CreateDispatch(c *gin.Context) {
	var req service.CreateDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	d, err := h.dispatches.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, d)
}

// GET /api/v1/receipts?has_discrepancy=true
func (h *MaterialFlowHandler) ListReceipts(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"verification_status": c.Query("verification_status"),
		"request_id":          c.Query("request_id"),
		"has_discrepancy":     c.Query("has_discrepancy"),
	}

	items, total, err := h.receipts.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list receipts: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/receipts/:id
func (h *MaterialFlowHandler) GetReceipt(c *gin.Context) {
	r, err := h.receipts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, r)
}

// POST /api/v1/receipts
func (h *MaterialFlowHandler) CreateReceipt(c *gin.Context) {
	var req service.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	r, err := h.receipts.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, r)
}

// GET /api/v1/verifications?overall_result=failed
func (h *MaterialFlowHandler) ListVerifications(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"overall_result":  c.Query("overall_result"),
		"approval_status": c.Query("approval_status"),
		"request_id":      c.Query("request_id"),
	}

	items, total, err := h.verifications.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list verifications: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/verifications/:id
func (h *MaterialFlowHandler) GetVerification(c *gin.Context) {
	v, err := h.verifications.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, v)
}

// POST /api/v1/verifications
func (h *MaterialFlowHandler) CreateVerification(c *gin.Context) {
	var req service.CreateVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	v, err := h.verifications.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, v)
}

// GET /api/v1/approvals?status=pending
func (h *MaterialFlowHandler) ListApprovals(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status":     c.Query("status"),
		"request_id": c.Query("request_id"),
	}

	items, total, err := h.approvals.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list approvals: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/approvals/:id
func (h *MaterialFlowHandler) GetApproval(c *gin.Context) {
	a, err := h.approvals.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, a)
}

// POST /api/v1/approvals
func (h *MaterialFlowHandler) CreateApproval(c *gin.Context) {
	var req service.CreateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	a, err := h.approvals.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, a)
}

// POST /api/v1/approvals/:id/start-production
func (h *MaterialFlowHandler) StartProduction(c *gin.Context) {
	var req service.StartProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	order, err := h.approvals.StartProduction(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, order)
}
