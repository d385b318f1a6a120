package models

// BunchObject addresses a well-known folder by composite string key instead
// of a plain id: RightNode is "module/bunch/data" and LeftNode holds the
// folder id as text. Rows are created lazily on first resolution.
type BunchObject struct {
	TenantID  int    `gorm:"primaryKey;autoIncrement:false" json:"tenant_id"`
	RightNode string `gorm:"primaryKey;type:varchar(255)" json:"right_node"`
	LeftNode  string `gorm:"type:varchar(50);not null;index" json:"left_node"`
}

func (BunchObject) TableName() string {
	return "bunch_objects"
}
