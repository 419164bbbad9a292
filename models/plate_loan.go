// models/plate_loan.go
package models

import "time"

const PlateTable = "lab_plates"
const LoanTable = "lab_loans"

const (
	PlateAvailable = "available"
	PlateBorrowed  = "borrowed"
	PlateRetired   = "retired"
)

type Plate struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	VisualID string `gorm:"size:6;uniqueIndex;not null" json:"visualId"` // 片盒上印的 6 位编号
	Name     string `gorm:"size:200;not null" json:"name"`
	State    string `gorm:"size:20;not null;default:'available'" json:"state"` // available/borrowed/retired

	// ✅ 冗余列：当前持有人（借走后写入，归还后清空）
	HolderID   *string `gorm:"type:uuid;index" json:"holderId,omitempty"`
	BarcodeURL string  `gorm:"size:512" json:"barcodeUrl,omitempty"` // 生成的条码图，存对象存储

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Loan struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	PlateID    string     `gorm:"type:uuid;index;not null" json:"plateId"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"userId"`
	BorrowedAt time.Time  `gorm:"index;not null" json:"borrowedAt"`
	DueAt      *time.Time `json:"dueAt,omitempty"`

	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`
	ReturnedBy *string    `gorm:"type:uuid" json:"returnedBy,omitempty"`

	Note      string    `gorm:"size:255" json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Plate) TableName() string { return PlateTable }
func (Loan) TableName() string  { return LoanTable }
