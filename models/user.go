package models

import (
	"time"
)

// 角色由外部身份系统同步进来，这里只存结果
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleMember     = "member"
)

// User ID 与外部身份系统的 subject 一致（UUID 字符串）
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName string `gorm:"size:255;not null" json:"displayName"`

	Role      string `gorm:"size:20;not null;default:'member'" json:"role"`
	Committee string `gorm:"size:64" json:"committee,omitempty"` // 例如 "inventory"
	PhotoURL  string `gorm:"size:512" json:"photoUrl,omitempty"`

	// 冗余列：当前是否有未归还的借用（confirm/return 后重算）
	HasOpenLoans bool `gorm:"not null;default:false" json:"hasOpenLoans"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "lab_users"
}
