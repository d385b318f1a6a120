package models

import "time"

// IdentityMapping pins an opaque third-party entry id to its hash token.
// Rows are written once on first use and never updated.
type IdentityMapping struct {
	TenantID   int       `gorm:"primaryKey;autoIncrement:false" json:"tenant_id"`
	ExternalID string    `gorm:"primaryKey;type:varchar(400)" json:"external_id"`
	HashID     string    `gorm:"type:char(32);not null;index" json:"hash_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (IdentityMapping) TableName() string {
	return "identity_mappings"
}
