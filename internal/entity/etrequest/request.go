package etrequest

import (
	"time"

	"gorm.io/datatypes"
)

// Status is the lifecycle state of a tax request.
//
// new -> scheduled -> processing -> {success | failed}
//
// success and failed are terminal; nothing transitions out of them.
type Status string

const (
	StatusNew        Status = "new"
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Request type constants.
const (
	TypeSendUstva = "send_ustva"
)

// TaxRequest is the persisted state of one submission request.
type TaxRequest struct {
	RequestID string `gorm:"column:request_id;primaryKey;type:varchar(64)"`
	Type      string `gorm:"column:type;type:varchar(32);not null;index:idx_type_status"`
	CreatorID string `gorm:"column:creator_id;type:varchar(64);not null"`

	Status Status `gorm:"column:status;type:varchar(16);not null;default:'new';index:idx_type_status"`

	// Payload is the opaque snapshot taken at enqueue time.
	Payload datatypes.JSON `gorm:"column:payload;type:json;not null"`

	// Result is set only on success (typed downstream) or kept raw on
	// failure when the collaborator returned one.
	Result datatypes.JSON `gorm:"column:result;type:json"`

	ErrorCode    *string `gorm:"column:error_code;type:varchar(32)"`
	ErrorMessage *string `gorm:"column:error_message;type:varchar(512)"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName fixes the table name.
func (TaxRequest) TableName() string {
	return "tax_requests"
}
