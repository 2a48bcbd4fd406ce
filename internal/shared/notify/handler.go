package notify

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the recipient-facing notification endpoints.
type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List returns the caller's notifications, newest first.
// GET /api/v1/notifications?unread=true
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	query := h.db.WithContext(c.Request.Context()).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(100)
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	var items []Notification
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50000, "message": "Failed to list notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": items})
}

// MarkRead stamps one notification as read.
// PUT /api/v1/notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	now := time.Now()

	res := h.db.WithContext(c.Request.Context()).
		Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", c.Param("id"), userID).
		Update("read_at", &now)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50000, "message": "Failed to mark read: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// MarkAllRead stamps every unread notification of the caller.
// PUT /api/v1/notifications/read-all
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")
	now := time.Now()

	err := h.db.WithContext(c.Request.Context()).
		Model(&Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Update("read_at", &now).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50000, "message": "Failed to mark all read: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}
