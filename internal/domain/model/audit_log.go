package model

import "time"

type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateUser        AuditAction = "UPDATE_USER"
)

type AuditResource string

const (
	AuditResourceProduct AuditResource = "product"
	AuditResourceOrder   AuditResource = "order"
	AuditResourceUser    AuditResource = "user"
)

// 「誰が」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64         `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction   `gorm:"type:varchar(40);not null" json:"action"`
	ResourceType AuditResource `gorm:"type:varchar(20);not null;index" json:"resource_type"`
	ResourceID   int64         `gorm:"not null;index" json:"resource_id"`
	BeforeJSON   string        `gorm:"type:text" json:"before_json,omitempty"`
	AfterJSON    string        `gorm:"type:text" json:"after_json,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
}
