package notify

import "time"

// Notification is the persisted in-app alert. One row per recipient user;
// department-targeted alerts fan out to every active user of the department
// at dispatch time.
type Notification struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	RecipientID string     `json:"recipient_id" gorm:"size:32;not null;index"`
	Department  string     `json:"department" gorm:"size:20;index"` // target department, empty for direct user alerts
	Type        string     `json:"type" gorm:"size:50;not null"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Message     string     `json:"message" gorm:"type:text"`
	Priority    string     `json:"priority" gorm:"size:10;default:normal"` // low/normal/high
	RelatedType string     `json:"related_type" gorm:"size:50"`
	RelatedID   string     `json:"related_id" gorm:"size:32;index"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)
