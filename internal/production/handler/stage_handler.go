package handler

import (
	"github.com/codigix/passion-clothing-sub000/internal/production/service"
	"github.com/codigix/passion-clothing-sub000/internal/shared/httpkit"
	"github.com/gin-gonic/gin"
)

// StageHandler exposes production orders and the stage state machine.
type StageHandler struct {
	stages  *service.StageService
	returns *service.ReturnService
}

func NewStageHandler(stages *service.StageService, returns *service.ReturnService) *StageHandler {
	return &StageHandler{stages: stages, returns: returns}
}

// GET /api/v1/production-orders?status=in_progress
func (h *StageHandler) ListOrders(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status":         c.Query("status"),
		"sales_order_id": c.Query("sales_order_id"),
		"search":         c.Query("search"),
	}

	items, total, err := h.stages.ListOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list production orders: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/production-orders/:id
func (h *StageHandler) GetOrder(c *gin.Context) {
	order, err := h.stages.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, order)
}

// POST /api/v1/production-orders/:id/unfreeze
func (h *StageHandler) UnfreezeOrder(c *gin.Context) {
	order, err := h.stages.Unfreeze(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, order)
}

// POST /api/v1/stages/:id/start
func (h *StageHandler) StartStage(c *gin.Context) {
	st, err := h.stages.Start(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// POST /api/v1/stages/:id/pause
func (h *StageHandler) PauseStage(c *gin.Context) {
	st, err := h.stages.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// POST /api/v1/stages/:id/resume
func (h *StageHandler) ResumeStage(c *gin.Context) {
	st, err := h.stages.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// POST /api/v1/stages/:id/hold
func (h *StageHandler) HoldStage(c *gin.Context) {
	st, err := h.stages.Hold(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// POST /api/v1/stages/:id/skip
func (h *StageHandler) SkipStage(c *gin.Context) {
	st, err := h.stages.Skip(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// POST /api/v1/stages/:id/complete
func (h *StageHandler) CompleteStage(c *gin.Context) {
	var req service.CompleteStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	st, err := h.stages.Complete(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// POST /api/v1/stages/:id/rework
func (h *StageHandler) ReworkStage(c *gin.Context) {
	var req service.ReworkStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	st, err := h.stages.Rework(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, st)
}

// GET /api/v1/stages/:id/rework-history
func (h *StageHandler) ListReworkHistory(c *gin.Context) {
	hist, err := h.stages.ListReworkHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.InternalError(c, "Failed to list rework history: "+err.Error())
		return
	}
	httpkit.Success(c, hist)
}

// POST /api/v1/stages/:id/checkpoints
func (h *StageHandler) AddCheckpoint(c *gin.Context) {
	var req service.CheckpointInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	cp, err := h.stages.AddCheckpoint(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, cp)
}

// POST /api/v1/checkpoints/:id/record
func (h *StageHandler) RecordCheckpoint(c *gin.Context) {
	var req service.RecordCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	cp, err := h.stages.RecordCheckpoint(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, cp)
}

// POST /api/v1/stages/:id/rejections
func (h *StageHandler) RecordRejection(c *gin.Context) {
	var req service.RejectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	rej, err := h.stages.RecordRejection(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, rej)
}

// GET /api/v1/stages/:id/rejections
func (h *StageHandler) ListRejections(c *gin.Context) {
	rejs, err := h.stages.ListRejections(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.InternalError(c, "Failed to list rejections: "+err.Error())
		return
	}
	httpkit.Success(c, rejs)
}

// GET /api/v1/material-returns?status=pending_approval
func (h *StageHandler) ListReturns(c *gin.Context) {
	page, pageSize := httpkit.GetPagination(c)
	filters := map[string]string{
		"status":   c.Query("status"),
		"order_id": c.Query("order_id"),
	}

	items, total, err := h.returns.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		httpkit.InternalError(c, "Failed to list material returns: "+err.Error())
		return
	}
	httpkit.Success(c, httpkit.Paginated(items, page, pageSize, total))
}

// GET /api/v1/material-returns/:id
func (h *StageHandler) GetReturn(c *gin.Context) {
	ret, err := h.returns.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, ret)
}

// POST /api/v1/material-returns
func (h *StageHandler) CreateReturn(c *gin.Context) {
	var req service.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, "Invalid payload: "+err.Error())
		return
	}

	ret, err := h.returns.Create(c.Request.Context(), httpkit.GetUserID(c), &req)
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Created(c, ret)
}

// POST /api/v1/material-returns/:id/approve
func (h *StageHandler) ApproveReturn(c *gin.Context) {
	ret, err := h.returns.Approve(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, ret)
}

// POST /api/v1/material-returns/:id/reject
func (h *StageHandler) RejectReturn(c *gin.Context) {
	ret, err := h.returns.Reject(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, ret)
}

// POST /api/v1/material-returns/:id/process
func (h *StageHandler) ProcessReturn(c *gin.Context) {
	ret, err := h.returns.Process(c.Request.Context(), httpkit.GetUserID(c), c.Param("id"))
	if err != nil {
		httpkit.FromError(c, err)
		return
	}
	httpkit.Success(c, ret)
}
