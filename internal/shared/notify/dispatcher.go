package notify

import (
	"context"
	"encoding/json"
	"time"

	identity "github.com/codigix/passion-clothing-sub000/internal/identity/entity"
	identityrepo "github.com/codigix/passion-clothing-sub000/internal/identity/repository"
	"github.com/codigix/passion-clothing-sub000/internal/shared/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Message is the payload of a single workflow alert.
type Message struct {
	Type        string
	Title       string
	Body        string
	Priority    string
	RelatedType string
	RelatedID   string
}

// Dispatcher fires department- or user-targeted alerts as a side effect of
// committed workflow transitions. Strictly best-effort: every failure is
// logged and swallowed, a notification error never becomes a workflow
// failure and never rolls anything back. Callers invoke it only after their
// transaction has committed.
type Dispatcher struct {
	db     *gorm.DB
	users  *identityrepo.UserRepository
	bridge *sse.Bridge
	logger *zap.Logger
}

func NewDispatcher(db *gorm.DB, users *identityrepo.UserRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, users: users, logger: logger}
}

// SetBridge injects the redis/SSE bridge for real-time delivery.
func (d *Dispatcher) SetBridge(b *sse.Bridge) {
	d.bridge = b
}

// NotifyDepartment alerts every active user of a department. A department
// with zero active users is skipped silently.
func (d *Dispatcher) NotifyDepartment(ctx context.Context, dept identity.Department, msg Message) {
	users, err := d.users.FindActiveByDepartment(ctx, dept)
	if err != nil {
		d.logger.Warn("notification target lookup failed",
			zap.String("department", string(dept)),
			zap.String("type", msg.Type),
			zap.Error(err))
		return
	}
	if len(users) == 0 {
		return
	}

	rows := make([]Notification, 0, len(users))
	for _, u := range users {
		rows = append(rows, d.row(u.ID, string(dept), msg))
	}
	if err := d.db.WithContext(ctx).Create(&rows).Error; err != nil {
		d.logger.Warn("notification insert failed",
			zap.String("department", string(dept)),
			zap.String("type", msg.Type),
			zap.Error(err))
		return
	}

	d.push(ctx, sse.Envelope{Department: string(dept), Event: d.event(msg)})
}

// NotifyUser alerts a single user.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID string, msg Message) {
	if userID == "" {
		return
	}
	row := d.row(userID, "", msg)
	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		d.logger.Warn("notification insert failed",
			zap.String("user_id", userID),
			zap.String("type", msg.Type),
			zap.Error(err))
		return
	}

	d.push(ctx, sse.Envelope{UserID: userID, Event: d.event(msg)})
}

func (d *Dispatcher) row(userID, dept string, msg Message) Notification {
	priority := msg.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	return Notification{
		ID:          uuid.New().String()[:32],
		RecipientID: userID,
		Department:  dept,
		Type:        msg.Type,
		Title:       msg.Title,
		Message:     msg.Body,
		Priority:    priority,
		RelatedType: msg.RelatedType,
		RelatedID:   msg.RelatedID,
		CreatedAt:   time.Now(),
	}
}

func (d *Dispatcher) event(msg Message) sse.Event {
	data, _ := json.Marshal(map[string]string{
		"type":         msg.Type,
		"title":        msg.Title,
		"message":      msg.Body,
		"priority":     msg.Priority,
		"related_type": msg.RelatedType,
		"related_id":   msg.RelatedID,
	})
	return sse.Event{EventType: "notification", Data: string(data)}
}

func (d *Dispatcher) push(ctx context.Context, env sse.Envelope) {
	if d.bridge == nil {
		return
	}
	d.bridge.Publish(ctx, env)
}
