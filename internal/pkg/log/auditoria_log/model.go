package auditoria_log

import (
	"time"

	"github.com/google/uuid"
)

const (
	DomainAuth = "auth"
	DomainUser = "user"

	ActionLogin      = "login"
	ActionChangeTier = "change_tier"
)

type AuditLog struct {
	ID         uint       `gorm:"primaryKey"`
	UserUUID   *uuid.UUID `gorm:"type:uuid"`
	TargetUUID *uuid.UUID `gorm:"type:uuid"`
	Identifier string     `gorm:"type:text"`

	RequestID string `gorm:"size:100;not null"`

	Domain     string `gorm:"size:100;not null"`
	Action     string `gorm:"size:100;not null"`
	Success    bool   `gorm:"not null"`
	InputData  string `gorm:"type:text"`
	OutputData string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
