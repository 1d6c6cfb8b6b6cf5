package entity

import (
	"time"
)

type ActionType string

const (
	ActionCreate ActionType = "Create"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
)

type UserAudit struct {
	ID         int        `json:"id"`
	Action     ActionType `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   int        `json:"entity_id"`
	OldValues  *string    `json:"old_values"`
	NewValues  *string    `json:"new_values"`
	Changes    *string    `json:"changes"`
	ChangedAt  time.Time  `json:"changed_at"`
}

// AuditMessage - то, что летит в очередь. Картинки сюда не кладем,
// только имя и признак наличия картинки.
type AuditMessage struct {
	Action    ActionType     `json:"action"`
	EntityID  int            `json:"entity_id"`
	OldValues map[string]any `json:"old_values"`
	NewValues map[string]any `json:"new_values"`
	Changes   map[string]any `json:"changes"`
	Timestamp time.Time      `json:"timestamp"`
}
