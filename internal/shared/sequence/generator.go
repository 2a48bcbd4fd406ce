// Package sequence allocates the human-readable document numbers used for
// display and audit (DSP-20250617-00001, ...). Numbers are date-scoped and
// reset to 1 each day; they are never used for lookups.
//
// The legacy system derived the next number with SELECT MAX(...) followed by
// a formatted insert, which duplicates numbers under concurrent load. This
// implementation keeps a dedicated counter row per (prefix, day) and bumps
// it with a single atomic upsert, so two concurrent allocations can never
// observe the same value.
package sequence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Counter is the per-prefix, per-day allocation row.
type Counter struct {
	Prefix  string `gorm:"primaryKey;size:16"`
	DateKey string `gorm:"primaryKey;size:8"` // YYYYMMDD
	Value   int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string {
	return "sequence_counters"
}

type Generator struct {
	db *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Next allocates the next number for prefix on today's date and returns it
// formatted as {prefix}-{YYYYMMDD}-{00001}.
func (g *Generator) Next(ctx context.Context, prefix string) (string, error) {
	return g.NextTx(ctx, g.db, prefix)
}

// NextTx allocates within an existing transaction so the number is rolled
// back together with the entity that would have carried it.
func (g *Generator) NextTx(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	dateKey := time.Now().Format("20060102")

	var value int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (prefix, date_key, value)
		VALUES (?, ?, 1)
		ON CONFLICT (prefix, date_key)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`,
		prefix, dateKey,
	).Scan(&value).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence %s-%s: %w", prefix, dateKey, err)
	}

	return Format(prefix, dateKey, value), nil
}

// Format renders a document number from its parts.
func Format(prefix, dateKey string, value int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, dateKey, value)
}
