// db/repo_cart.go
package db

import (
	"context"
	"errors"
	"time"

	"slidelab/cart"
	"slidelab/models"

	"gorm.io/gorm"
)

// Repo 是 cart.Store 的生产实现（加上 repo_plate_loan.go 里的借还事务）

func (r *Repo) ActiveCartItemForPlate(ctx context.Context, plateID string, now time.Time) (*models.CartItem, error) {
	var ci models.CartItem
	err := r.DB.WithContext(ctx).
		Where("plate_id = ? AND status = ? AND expires_at > ?", plateID, models.CartActive, now).
		First(&ci).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *Repo) CountActiveCartItems(ctx context.Context, userID string, now time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.CartActive, now).
		Count(&n).Error
	return n, err
}

func (r *Repo) CountAllActiveCartItems(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("status = ? AND expires_at > ?", models.CartActive, now).
		Count(&n).Error
	return n, err
}

func (r *Repo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	err := r.DB.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 撞上 (plate_id) WHERE status='active' 部分唯一索引
		return cart.ErrDuplicateCartItem
	}
	return err
}

// 幂等：没有匹配行也不报错
func (r *Repo) CancelCartItem(ctx context.Context, userID, plateID string) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND plate_id = ? AND status = ?", userID, plateID, models.CartActive).
		Update("status", models.CartCancelled).Error
}

func (r *Repo) CancelAllCartItems(ctx context.Context, userID string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND status = ?", userID, models.CartActive).
		Update("status", models.CartCancelled)
	return res.RowsAffected, res.Error
}

// 清扫任务落库：过期的 active 行批量置 cancelled
func (r *Repo) CancelExpiredCartItems(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("status = ? AND expires_at <= ?", models.CartActive, now).
		Update("status", models.CartCancelled)
	return res.RowsAffected, res.Error
}

// 读取侧过滤：只给还没过期的 active 行
func (r *Repo) ListActiveCartItems(ctx context.Context, userID string, now time.Time) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.CartActive, now).
		Order("added_at ASC").
		Find(&items).Error
	return items, err
}

func (r *Repo) MarkCartItemsProcessed(ctx context.Context, userID string, plateIDs []string) error {
	if len(plateIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND plate_id IN ? AND status = ?", userID, plateIDs, models.CartActive).
		Update("status", models.CartProcessed).Error
}
