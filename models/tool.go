// models/tool.go
package models

import "time"

const (
	ToolTable         = "tools"
	BorrowRecordTable = "borrow_records"
	NotificationTable = "notifications"
)

type Tool struct {
	ID          string     `gorm:"size:32;primaryKey" json:"id"` // 短码，同时是二维码内容
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `json:"description"`
	QRCode      string     `gorm:"column:qr_code;uniqueIndex;not null" json:"qrCode"` // PNG data URL
	Status      ToolStatus `gorm:"size:20;not null;default:'available';index" json:"status"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

// ToolSummary is the slice of a tool embedded in notification listings.
type ToolSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (Tool) TableName() string { return ToolTable }
