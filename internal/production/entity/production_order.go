package entity

import "time"

// ProductionOrder is the executable order created when production is
// started for an approved material request. Its stages form the shop
// floor workflow.
type ProductionOrder struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:32"`
	OrderNumber        string     `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	RequestID          string     `json:"request_id" gorm:"size:32;not null;index"`
	SalesOrderID       string     `json:"sales_order_id" gorm:"size:32;index"`
	ApprovalID         string     `json:"approval_id" gorm:"size:32"`
	ProductName        string     `json:"product_name" gorm:"size:200"`
	QuantityPlanned    float64    `json:"quantity_planned" gorm:"type:decimal(12,4);not null"`
	QuantityProduced   float64    `json:"quantity_produced" gorm:"type:decimal(12,4);default:0"`
	ApprovedQuantity   float64    `json:"approved_quantity" gorm:"type:decimal(12,4);default:0"`
	RejectedQuantity   float64    `json:"rejected_quantity" gorm:"type:decimal(12,4);default:0"`
	ProgressPercentage int        `json:"progress_percentage" gorm:"default:0"`
	Status             string     `json:"status" gorm:"size:20;default:in_progress"`
	PlannedStartDate   *time.Time `json:"planned_start_date"`
	PlannedEndDate     *time.Time `json:"planned_end_date"`
	ActualStartDate    *time.Time `json:"actual_start_date"`
	ActualEndDate      *time.Time `json:"actual_end_date"`
	CreatedBy          string     `json:"created_by" gorm:"size:32"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Stages []ProductionStage `json:"stages,omitempty" gorm:"foreignKey:OrderID"`
}

func (ProductionOrder) TableName() string {
	return "production_orders"
}

const (
	ProductionOrderInProgress = "in_progress"
	ProductionOrderCompleted  = "completed"
	ProductionOrderCancelled  = "cancelled"
)

// ProductionStage is one step of a production order. Stages execute in
// StageOrder sequence; a stage cannot start until every earlier stage is
// completed or skipped.
type ProductionStage struct {
	ID                string     `json:"id" gorm:"primaryKey;size:32"`
	OrderID           string     `json:"order_id" gorm:"size:32;not null;index"`
	StageName         string     `json:"stage_name" gorm:"size:50;not null"`
	StageOrder        int        `json:"stage_order" gorm:"not null"`
	Status            string     `json:"status" gorm:"size:20;default:pending"`
	ReworkIteration   int        `json:"rework_iteration" gorm:"default:1"`
	IsLate            bool       `json:"is_late" gorm:"default:false"`
	IsFrozen          bool       `json:"is_frozen" gorm:"default:false"`
	LateReason        string     `json:"late_reason,omitempty" gorm:"size:255"`
	QuantityProcessed float64    `json:"quantity_processed" gorm:"type:decimal(12,4);default:0"`
	QuantityApproved  float64    `json:"quantity_approved" gorm:"type:decimal(12,4);default:0"`
	QuantityRejected  float64    `json:"quantity_rejected" gorm:"type:decimal(12,4);default:0"`
	ReworkCost        float64    `json:"rework_cost" gorm:"type:decimal(12,2);default:0"`
	PlannedStartDate  *time.Time `json:"planned_start_date"`
	PlannedEndDate    *time.Time `json:"planned_end_date"`
	ActualStartDate   *time.Time `json:"actual_start_date"`
	ActualEndDate     *time.Time `json:"actual_end_date"`
	AssignedTo        string     `json:"assigned_to" gorm:"size:32"`
	Notes             string     `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Checkpoints []QualityCheckpoint `json:"checkpoints,omitempty" gorm:"foreignKey:StageID"`
}

func (ProductionStage) TableName() string {
	return "production_stages"
}

const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusPaused     = "paused"
	StageStatusOnHold     = "on_hold"
	StageStatusCompleted  = "completed"
	StageStatusSkipped    = "skipped"
)

// QualityCheckpoint is an inline quality gate on a stage. A stage with a
// failed, unwaived checkpoint cannot complete.
type QualityCheckpoint struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	StageID   string     `json:"stage_id" gorm:"size:32;not null;index"`
	CheckName string     `json:"check_name" gorm:"size:200;not null"`
	Status    string     `json:"status" gorm:"size:20;default:pending"`
	Remarks   string     `json:"remarks" gorm:"size:500"`
	CheckedBy string     `json:"checked_by" gorm:"size:32"`
	CheckedAt *time.Time `json:"checked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (QualityCheckpoint) TableName() string {
	return "quality_checkpoints"
}

const (
	CheckpointPending = "pending"
	CheckpointPassed  = "passed"
	CheckpointFailed  = "failed"
	CheckpointWaived  = "waived"
)

// StageReworkHistory snapshots a stage's quantities at the moment rework
// is ordered, tagged with the iteration that produced them.
type StageReworkHistory struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	StageID           string    `json:"stage_id" gorm:"size:32;not null;index"`
	Iteration         int       `json:"iteration" gorm:"not null"`
	QuantityProcessed float64   `json:"quantity_processed" gorm:"type:decimal(12,4)"`
	QuantityApproved  float64   `json:"quantity_approved" gorm:"type:decimal(12,4)"`
	QuantityRejected  float64   `json:"quantity_rejected" gorm:"type:decimal(12,4)"`
	AdditionalCost    float64   `json:"additional_cost" gorm:"type:decimal(12,2);default:0"`
	Reason            string    `json:"reason" gorm:"size:500"`
	OrderedBy         string    `json:"ordered_by" gorm:"size:32"`
	CreatedAt         time.Time `json:"created_at"`
}

func (StageReworkHistory) TableName() string {
	return "stage_rework_history"
}

// StageRejection records a rejected lot inside a stage, with the defect
// that caused it.
type StageRejection struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	StageID    string    `json:"stage_id" gorm:"size:32;not null;index"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	DefectType string    `json:"defect_type" gorm:"size:100"`
	Reason     string    `json:"reason" gorm:"size:500"`
	RecordedBy string    `json:"recorded_by" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StageRejection) TableName() string {
	return "stage_rejections"
}
