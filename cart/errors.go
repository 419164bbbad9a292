package cart

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCart confirm 前置检查：空车直接失败，不发任何写请求
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPlateNotFound 扫到的编号在库里查不到
	ErrPlateNotFound = errors.New("plate not found")
	// ErrDuplicateCartItem 由 Store 在部分唯一索引冲突时返回
	ErrDuplicateCartItem = errors.New("plate already has an active cart item")
	// ErrAlreadyBorrowed 由 Store 在借出竞争失败时返回
	ErrAlreadyBorrowed = errors.New("plate already borrowed")
)

// ValidationError 输入格式问题，表单层可直接展示
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError 片子当前不可占用；Reason 是给用户看的原因
type ConflictError struct {
	PlateID string
	Reason  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("plate %s unavailable: %s", e.PlateID, e.Reason)
}

// LimitError 触发了每用户上限，原样展示，不重试
type LimitError struct {
	Reason string
}

func (e *LimitError) Error() string { return e.Reason }

// PartialError confirm 中途失败。Succeeded 是失败前已经落库的片；
// Compensated 是事后补偿（自动归还）成功的子集，没补上的需要人工对账。
type PartialError struct {
	FailedPlate string
	Succeeded   []string
	Compensated []string
	Err         error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("confirm failed at plate %s after %d succeeded [%s] (compensated: %d): %v",
		e.FailedPlate, len(e.Succeeded), strings.Join(e.Succeeded, ","), len(e.Compensated), e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }
