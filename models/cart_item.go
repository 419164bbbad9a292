// models/cart_item.go
package models

import "time"

const CartTable = "lab_cart_items"

const (
	CartActive    = "active"
	CartCancelled = "cancelled"
	CartProcessed = "processed"
)

// CartItem 预约行：加入购物车到确认借出之间的占位。
// 同一块片最多一条 active（靠可用性预检 + 部分唯一索引双重保证）。
// active → cancelled（移除/清空/过期清扫）
// active → processed（确认借出）
type CartItem struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  string `gorm:"type:uuid;index;not null" json:"userId"`
	PlateID string `gorm:"type:uuid;index;not null" json:"plateId"`

	Status    string    `gorm:"size:20;not null;default:'active'" json:"status"`
	AddedAt   time.Time `gorm:"not null" json:"addedAt"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"` // addedAt + 24h

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string { return CartTable }

// IsExpired 读取侧判断；行本身不存过期状态，清扫任务才落库
func (ci CartItem) IsExpired(now time.Time) bool {
	return now.After(ci.ExpiresAt)
}
