package models

// Quota sentinels. An explicit limit is always >= 0; the two negative values
// mean different things and must never be conflated.
const (
	// QuotaUnlimited disables the check entirely.
	QuotaUnlimited int64 = -1
	// QuotaDefault inherits the tenant-configured default limit.
	QuotaDefault int64 = -2
)

type QuotaOwnerType int

const (
	QuotaOwnerTenant QuotaOwnerType = 0
	QuotaOwnerUser   QuotaOwnerType = 1
	QuotaOwnerRoom   QuotaOwnerType = 2
)

// QuotaUsage tracks used bytes per quota bucket. Room and user buckets are
// accounted independently of the denormalized folder counters: a move across
// a room boundary shifts usage between buckets without changing the total.
type QuotaUsage struct {
	TenantID  int            `gorm:"primaryKey;autoIncrement:false" json:"tenant_id"`
	OwnerType QuotaOwnerType `gorm:"primaryKey;autoIncrement:false" json:"owner_type"`
	OwnerID   string         `gorm:"primaryKey;type:varchar(38)" json:"owner_id"`
	UsedBytes int64          `gorm:"not null;default:0" json:"used_bytes"`
}

func (QuotaUsage) TableName() string {
	return "quota_usage"
}
