package cart

import (
	"context"
	"time"

	"slidelab/models"
)

// Store 是购物车对外部记录存储的全部依赖。生产实现是 db.Repo，
// 测试用 mock 数到每一次调用。查不到的 lookup 返回 (nil, nil) 而不是错误。
type Store interface {
	FindPlateByVisualID(ctx context.Context, visualID string) (*models.Plate, error)
	FindPlateByID(ctx context.Context, id string) (*models.Plate, error)

	// 可用性 oracle 的两条支路
	ActiveCartItemForPlate(ctx context.Context, plateID string, now time.Time) (*models.CartItem, error)
	OpenLoanForPlate(ctx context.Context, plateID string) (*models.Loan, error)

	CountOpenLoans(ctx context.Context, userID string) (int64, error)
	CountActiveCartItems(ctx context.Context, userID string, now time.Time) (int64, error)

	// CreateCartItem 在 (plate_id) WHERE status='active' 唯一索引冲突时
	// 返回 ErrDuplicateCartItem
	CreateCartItem(ctx context.Context, item *models.CartItem) error
	CancelCartItem(ctx context.Context, userID, plateID string) error
	CancelAllCartItems(ctx context.Context, userID string) (int64, error)
	ListActiveCartItems(ctx context.Context, userID string, now time.Time) ([]models.CartItem, error)
	MarkCartItemsProcessed(ctx context.Context, userID string, plateIDs []string) error

	// BorrowPlate 单片事务：锁行 → 建 Loan → 置 borrowed+holder。
	// 竞争失败返回 ErrAlreadyBorrowed。
	BorrowPlate(ctx context.Context, userID, plateID string, dueAt *time.Time, note string) (*models.Loan, error)
	ReturnPlate(ctx context.Context, plateID, returnedBy, note string) (*models.Loan, error)

	SetUserHasOpenLoans(ctx context.Context, userID string, has bool) error
}
