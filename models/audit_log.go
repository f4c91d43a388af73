package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records operator-relevant side effects: force-cancellations
// during hotel deletion and reconciliation repairs.
type AuditLog struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	Action   string         `gorm:"size:64" json:"action"`
	Entity   string         `gorm:"size:64" json:"entity"`
	EntityID uint           `gorm:"column:entity_id" json:"entityId"`
	Detail   datatypes.JSON `gorm:"column:detail" json:"detail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
