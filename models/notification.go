// models/notification.go
package models

import "time"

type Notification struct {
	ID             string           `gorm:"size:36;primaryKey" json:"id"`
	Type           NotificationType `gorm:"size:20;not null" json:"type"`
	Message        string           `gorm:"not null" json:"message"`
	ToolID         string           `gorm:"size:32;not null;index" json:"toolId"`
	BorrowRecordID *string          `gorm:"size:36;index" json:"borrowRecordId"`
	CreatedAt      time.Time        `gorm:"not null;index" json:"createdAt"`
	Read           bool             `gorm:"not null;default:false" json:"read"`

	// relations only exist for foreign keys; the listing attaches ToolInfo instead
	Tool         *Tool         `gorm:"foreignKey:ToolID" json:"-"`
	BorrowRecord *BorrowRecord `gorm:"foreignKey:BorrowRecordID" json:"-"`
	ToolInfo     *ToolSummary  `gorm:"-" json:"tool"`
}

func (Notification) TableName() string { return NotificationTable }
