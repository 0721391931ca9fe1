package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit trail action types.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionFetch  = "fetch"
	ActionLogin  = "login"
	ActionError  = "error"
)

// ActivityLog captures auditable events triggered on managed resources.
// Entries are append-only; no code path updates or deletes them.
type ActivityLog struct {
	ID          uint                      `gorm:"primaryKey" json:"id"`
	ActorID     uint                      `gorm:"index" json:"actorId"`
	ActorRole   string                    `gorm:"size:32;not null" json:"actorRole"`
	Action      string                    `gorm:"size:32;not null;index" json:"action"`
	EntityType  string                    `gorm:"size:64;not null;index" json:"entityType"`
	Description string                    `gorm:"size:512" json:"description"`
	AffectedIDs datatypes.JSONSlice[uint] `gorm:"type:json" json:"affectedIds"`
	Details     datatypes.JSONMap         `gorm:"type:json" json:"details"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// ResourceID implements Resource so the audit trail can be listed through
// the generic query stack.
func (a ActivityLog) ResourceID() uint { return a.ID }
