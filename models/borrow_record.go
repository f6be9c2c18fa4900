// models/borrow_record.go
package models

import "time"

type BorrowRecord struct {
	ID               string       `gorm:"size:36;primaryKey" json:"id"`
	ToolID           string       `gorm:"size:32;not null;index" json:"toolId"`
	BorrowerName     string       `gorm:"not null" json:"borrowerName"`
	BorrowerLocation string       `gorm:"not null" json:"borrowerLocation"`
	Purpose          string       `gorm:"not null" json:"purpose"`
	BorrowedAt       time.Time    `gorm:"not null;index" json:"borrowedAt"`
	ReturnedAt       *time.Time   `json:"returnedAt"`
	Status           BorrowStatus `gorm:"size:20;not null;default:'active'" json:"status"`

	// 列表接口 LEFT JOIN 出来的工具，可能为 nil
	Tool *Tool `gorm:"foreignKey:ToolID" json:"tool"`
}

func (BorrowRecord) TableName() string { return BorrowRecordTable }
