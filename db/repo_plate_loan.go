package db

import (
	"context"
	"errors"
	"time"

	"slidelab/cart"
	"slidelab/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Plates

func (r *Repo) CreatePlate(ctx context.Context, p *models.Plate) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindPlateByID(ctx context.Context, id string) (*models.Plate, error) {
	var p models.Plate
	err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) FindPlateByVisualID(ctx context.Context, visualID string) (*models.Plate, error) {
	var p models.Plate
	err := r.DB.WithContext(ctx).Where("visual_id = ?", visualID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListPlates(ctx context.Context) ([]models.Plate, error) {
	var plates []models.Plate
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&plates).Error
	return plates, err
}

func (r *Repo) SetPlateBarcodeURL(ctx context.Context, plateID, url string) error {
	return r.DB.WithContext(ctx).Model(&models.Plate{}).
		Where("id = ?", plateID).
		Update("barcode_url", url).Error
}

func (r *Repo) RetirePlate(ctx context.Context, plateID string) error {
	return r.DB.WithContext(ctx).Model(&models.Plate{}).
		Where("id = ? AND state = ?", plateID, models.PlateAvailable).
		Update("state", models.PlateRetired).Error
}

// Loans

func (r *Repo) OpenLoanForPlate(ctx context.Context, plateID string) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).
		Where("plate_id = ? AND returned_at IS NULL", plateID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) CountOpenLoans(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("user_id = ? AND returned_at IS NULL", userID).
		Count(&n).Error
	return n, err
}

// BorrowPlate 单片借出：原子操作 = 锁住 plate → 置 borrowed+holder → 新建 loan
func (r *Repo) BorrowPlate(ctx context.Context, userID, plateID string, dueAt *time.Time, note string) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该片
		var p models.Plate
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", plateID).Error; err != nil {
			return err
		}
		// 2) 防并发：状态或未归还 Loan 任一占用即拒绝
		if p.State != models.PlateAvailable {
			return cart.ErrAlreadyBorrowed
		}
		var n int64
		if err := tx.Model(&models.Loan{}).
			Where("plate_id = ? AND returned_at IS NULL", plateID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return cart.ErrAlreadyBorrowed
		}
		// 3) 占位
		if err := tx.Model(&models.Plate{}).
			Where("id = ? AND state = ?", p.ID, models.PlateAvailable).
			Updates(map[string]any{"state": models.PlateBorrowed, "holder_id": userID}).Error; err != nil {
			return err
		}
		// 4) 新建 Loan
		now := time.Now().UTC()
		if dueAt == nil {
			d := now.Add(48 * time.Hour)
			dueAt = &d
		}
		l := &models.Loan{
			ID:         uuid.NewString(),
			PlateID:    p.ID,
			UserID:     userID,
			BorrowedAt: now,
			DueAt:      dueAt,
			Note:       note,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// ReturnPlate 归还：原子操作 = 完成 loan → 释放 plate。幂等：没有未归还
// Loan 时返回 (nil, nil)。
func (r *Repo) ReturnPlate(ctx context.Context, plateID, returnedBy, note string) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Loan
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("plate_id = ? AND returned_at IS NULL", plateID).
			First(&l).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		l.ReturnedAt = &now
		l.ReturnedBy = &returnedBy
		if note != "" {
			l.Note = note
		}
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Plate{}).
			Where("id = ?", l.PlateID).
			Updates(map[string]any{"state": models.PlateAvailable, "holder_id": nil}).Error; err != nil {
			return err
		}
		loan = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *Repo) ListLoans(ctx context.Context, userID, plateID, status string) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("borrowed_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if plateID != "" {
		q = q.Where("plate_id = ?", plateID)
	}
	if status == "open" {
		q = q.Where("returned_at IS NULL")
	} else if status == "returned" {
		q = q.Where("returned_at IS NOT NULL")
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}
