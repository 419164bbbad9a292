// db/repo_plates_admin.go
package db

import (
	"context"
	"strings"
	"time"

	"slidelab/models"
)

// 管理端的物品视图：片 + 当前未归还借用（可空）+ 当前 active 占位（可空）
type AdminPlateRow struct {
	ID         string    `json:"id"`
	VisualID   string    `json:"visualId"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	BarcodeURL string    `json:"barcodeUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	LoanID              *string    `json:"loanId,omitempty"`
	BorrowerID          *string    `json:"borrowerId,omitempty"`
	BorrowerUsername    *string    `json:"borrowerUsername,omitempty"`
	BorrowerDisplayName *string    `json:"borrowerDisplayName,omitempty"`
	BorrowedAt          *time.Time `json:"borrowedAt,omitempty"`
	DueAt               *time.Time `json:"dueAt,omitempty"`
	Overdue             bool       `json:"overdue"` // 由 SQL 计算

	ReservedBy *string `json:"reservedBy,omitempty"` // active 购物车占位人
}

type AdminPlatesQuery struct {
	Q      string // 模糊搜索：visual_id/name
	Status string // "", "borrowed", "available", "overdue", "reserved", "retired"
	Page   int
	Size   int
}

type PagedAdminPlates struct {
	Total  int64           `json:"total"`
	Plates []AdminPlateRow `json:"plates"`
}

func (r *Repo) ListPlatesWithCurrentLoan(ctx context.Context, q AdminPlatesQuery) (*PagedAdminPlates, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	offset := (q.Page - 1) * q.Size

	db := r.DB.WithContext(ctx)

	// 子查询：每块片“当前未归还”的最新一条 Loan
	sub := db.
		Table(models.LoanTable + " l").
		Select(`
			DISTINCT ON (l.plate_id)
			l.id, l.plate_id, l.user_id, l.borrowed_at, l.due_at
		`).
		Where("l.returned_at IS NULL").
		Order("l.plate_id, l.borrowed_at DESC")

	// 子查询：每块片的 active 占位（部分唯一索引保证至多一条）
	res := db.
		Table(models.CartTable+" c").
		Select("c.plate_id, c.user_id").
		Where("c.status = ? AND c.expires_at > NOW()", models.CartActive)

	qry := db.
		Table(models.PlateTable+" p").
		Select(`
			p.id, p.visual_id, p.name, p.state, p.barcode_url, p.created_at, p.updated_at,
			ol.id        AS loan_id,
			ol.user_id   AS borrower_id,
			ol.borrowed_at,
			ol.due_at,
			u.username   AS borrower_username,
			u.display_name AS borrower_display_name,
			CASE WHEN ol.due_at IS NOT NULL AND ol.due_at < NOW() THEN TRUE ELSE FALSE END AS overdue,
			rc.user_id AS reserved_by
		`).
		Joins("LEFT JOIN (?) AS ol ON ol.plate_id = p.id", sub).
		Joins("LEFT JOIN (?) AS rc ON rc.plate_id = p.id", res).
		Joins("LEFT JOIN lab_users u ON u.id = ol.user_id")

	countQry := db.Table(models.PlateTable + " p").
		Joins("LEFT JOIN (?) AS ol ON ol.plate_id = p.id", sub)

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(p.visual_id) LIKE ? OR LOWER(p.name) LIKE ?", pat, pat)
		countQry = countQry.Where("LOWER(p.visual_id) LIKE ? OR LOWER(p.name) LIKE ?", pat, pat)
	}
	switch q.Status {
	case "borrowed":
		qry = qry.Where("p.state = ?", models.PlateBorrowed)
		countQry = countQry.Where("p.state = ?", models.PlateBorrowed)
	case "available":
		qry = qry.Where("p.state = ?", models.PlateAvailable)
		countQry = countQry.Where("p.state = ?", models.PlateAvailable)
	case "overdue":
		qry = qry.Where("ol.due_at IS NOT NULL AND ol.due_at < NOW()")
		countQry = countQry.Where("ol.due_at IS NOT NULL AND ol.due_at < NOW()")
	case "reserved":
		qry = qry.Where("rc.user_id IS NOT NULL")
		countQry = countQry.Joins("LEFT JOIN (?) AS rc ON rc.plate_id = p.id", res).
			Where("rc.user_id IS NOT NULL")
	case "retired":
		qry = qry.Where("p.state = ?", models.PlateRetired)
		countQry = countQry.Where("p.state = ?", models.PlateRetired)
	default:
		// all
	}

	var total int64
	if err := countQry.Count(&total).Error; err != nil {
		return nil, err
	}

	qry = qry.Order("p.created_at DESC").Offset(offset).Limit(q.Size)

	var rows []AdminPlateRow
	if err := qry.Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedAdminPlates{Total: total, Plates: rows}, nil
}
