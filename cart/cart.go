// Package cart implements the reservation workflow: a user provisionally
// claims plates (add → 24h expiry → confirm-or-expire) against optimistic
// availability checks. There is no cross-plate transaction on confirm; each
// plate borrow is its own short transaction and a mid-sequence failure is
// reported as PartialError with best-effort compensation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"slidelab/metrics"
	"slidelab/models"
	"slidelab/validate"

	"github.com/google/uuid"
)

type Config struct {
	TTL          time.Duration // 购物车占位有效期，默认 24h
	LoanTerm     time.Duration // confirm 后的应还期限，默认 48h
	MaxOpenLoans int
	MaxCartItems int
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time // 测试时可替换
}

func New(store Store, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.LoanTerm <= 0 {
		cfg.LoanTerm = 48 * time.Hour
	}
	if cfg.MaxOpenLoans <= 0 {
		cfg.MaxOpenLoans = validate.DefaultMaxOpenLoans
	}
	if cfg.MaxCartItems <= 0 {
		cfg.MaxCartItems = validate.DefaultMaxCartItems
	}
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// Add 扫码加入购物车：规整 6 位编号 → 查片 → 可用性预检 → 上限检查 → 落一行占位。
func (s *Service) Add(ctx context.Context, userID, scannedCode string) (*models.CartItem, error) {
	if res := validate.Barcode(scannedCode); !res.OK {
		return nil, &ValidationError{Reason: res.Reason}
	}
	code := validate.NormalizeBarcode(scannedCode)

	plate, err := s.store.FindPlateByVisualID(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup plate %s: %w", code, err)
	}
	if plate == nil {
		return nil, ErrPlateNotFound
	}

	now := s.now()
	reason, err := s.availability(ctx, userID, plate, now)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		metrics.CartConflicts.Inc()
		return nil, &ConflictError{PlateID: plate.ID, Reason: reason}
	}

	open, err := s.store.CountOpenLoans(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count open loans: %w", err)
	}
	if res := validate.LoanCeiling(int(open), s.cfg.MaxOpenLoans); !res.OK {
		return nil, &LimitError{Reason: res.Reason}
	}
	active, err := s.store.CountActiveCartItems(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("count cart items: %w", err)
	}
	if res := validate.CartCeiling(int(active), s.cfg.MaxCartItems); !res.OK {
		return nil, &LimitError{Reason: res.Reason}
	}

	item := &models.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		PlateID:   plate.ID,
		Status:    models.CartActive,
		AddedAt:   now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	if err := s.store.CreateCartItem(ctx, item); err != nil {
		if errors.Is(err, ErrDuplicateCartItem) {
			// 预检和插入之间有人抢先了（另一标签页/用户）
			metrics.CartConflicts.Inc()
			return nil, &ConflictError{PlateID: plate.ID, Reason: "plate was claimed by another cart just now"}
		}
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	metrics.CartAdds.Inc()
	return item, nil
}

// Remove 幂等：没有对应 active 行也不报错
func (s *Service) Remove(ctx context.Context, userID, plateID string) error {
	return s.store.CancelCartItem(ctx, userID, plateID)
}

// Clear 一次批量置 cancelled
func (s *Service) Clear(ctx context.Context, userID string) error {
	_, err := s.store.CancelAllCartItems(ctx, userID)
	return err
}

// List 只返回未过期的 active 行（读取侧过滤，过期行等清扫任务落库）
func (s *Service) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.store.ListActiveCartItems(ctx, userID, s.now())
}

type Summary struct {
	Count    int      `json:"count"`
	PlateIDs []string `json:"plateIds"`
}

// Confirm 把整车确认为借出。逐片执行：重查可用性（防加车后变脏）→
// BorrowPlate 事务。任何一片失败即停，返回 PartialError 标明哪些已写入、
// 哪些补偿成功；全部成功后再统一置 processed 并重算用户的借用标记。
func (s *Service) Confirm(ctx context.Context, userID string) (*Summary, error) {
	now := s.now()
	items, err := s.store.ListActiveCartItems(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	due := now.Add(s.cfg.LoanTerm)
	var succeeded []string
	for _, it := range items {
		plate, err := s.store.FindPlateByID(ctx, it.PlateID)
		if err == nil && plate == nil {
			err = ErrPlateNotFound
		}
		if err == nil {
			var reason string
			reason, err = s.availability(ctx, userID, plate, now)
			if err == nil && reason != "" {
				err = &ConflictError{PlateID: it.PlateID, Reason: reason}
			}
		}
		if err == nil {
			_, err = s.store.BorrowPlate(ctx, userID, it.PlateID, &due, "")
		}
		if err != nil {
			metrics.CartPartialFailures.Inc()
			compensated := s.compensate(ctx, userID, succeeded)
			return nil, &PartialError{
				FailedPlate: it.PlateID,
				Succeeded:   succeeded,
				Compensated: compensated,
				Err:         err,
			}
		}
		succeeded = append(succeeded, it.PlateID)
	}

	summary := &Summary{Count: len(succeeded), PlateIDs: succeeded}
	if err := s.store.MarkCartItemsProcessed(ctx, userID, succeeded); err != nil {
		// 借用已经成立，只是购物车行没改过去；带着 summary 返回让上层展示
		return summary, fmt.Errorf("mark cart items processed: %w", err)
	}
	s.recomputeBorrowFlag(ctx, userID)
	metrics.CartConfirms.Inc()
	return summary, nil
}

// availability 可用性 oracle：三条任一成立即不可占用
// (a) 片状态不是 available
// (b) 别的用户有 active 购物车行
// (c) 别的用户有未归还 Loan
func (s *Service) availability(ctx context.Context, userID string, plate *models.Plate, now time.Time) (string, error) {
	if plate.State != models.PlateAvailable {
		return "plate is " + plate.State, nil
	}
	ci, err := s.store.ActiveCartItemForPlate(ctx, plate.ID, now)
	if err != nil {
		return "", fmt.Errorf("check cart claims: %w", err)
	}
	if ci != nil && ci.UserID != userID {
		return "plate is in another user's cart", nil
	}
	loan, err := s.store.OpenLoanForPlate(ctx, plate.ID)
	if err != nil {
		return "", fmt.Errorf("check open loans: %w", err)
	}
	if loan != nil && loan.UserID != userID {
		return "plate is already on loan", nil
	}
	return "", nil
}

// compensate 失败后把已借出的片按原路还回去；还不回去的留给人工
func (s *Service) compensate(ctx context.Context, userID string, plateIDs []string) []string {
	var done []string
	for _, id := range plateIDs {
		if _, err := s.store.ReturnPlate(ctx, id, userID, "auto return: confirm failed partway"); err != nil {
			log.Printf("[cart] compensation failed for plate %s: %v", id, err)
			continue
		}
		done = append(done, id)
	}
	return done
}

func (s *Service) recomputeBorrowFlag(ctx context.Context, userID string) {
	n, err := s.store.CountOpenLoans(ctx, userID)
	if err != nil {
		log.Printf("[cart] recompute borrow flag for %s: %v", userID, err)
		return
	}
	if err := s.store.SetUserHasOpenLoans(ctx, userID, n > 0); err != nil {
		log.Printf("[cart] set borrow flag for %s: %v", userID, err)
	}
}
