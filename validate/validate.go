// Package validate holds the stateless policy checks shared by the cart and
// the scanner. Everything here is a pure function returning a Result the
// caller can branch on; nothing panics and nothing touches the database.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// 默认上限，可被 config 覆盖
const (
	DefaultMaxOpenLoans = 100
	DefaultMaxCartItems = 20
	MaxNoteLength       = 255
)

// Result 校验结果：OK 或带一个可直接展示的 Reason
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func pass() Result         { return Result{OK: true} }
func fail(r string) Result { return Result{OK: false, Reason: r} }

var barcodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// Barcode 片盒编号必须是去掉首尾空白后的 6 位数字
func Barcode(s string) Result {
	t := strings.TrimSpace(s)
	if t == "" {
		return fail("barcode is empty")
	}
	if !barcodeRe.MatchString(t) {
		return fail(fmt.Sprintf("barcode %q must be exactly 6 digits", t))
	}
	return pass()
}

// NormalizeBarcode 返回规整后的编号；调用前应先用 Barcode 校验
func NormalizeBarcode(s string) string { return strings.TrimSpace(s) }

// LoanCeiling 当前未归还数量是否还允许再借一件
func LoanCeiling(open int, max int) Result {
	if max <= 0 {
		max = DefaultMaxOpenLoans
	}
	if open >= max {
		return fail(fmt.Sprintf("open loan limit reached (%d of %d)", open, max))
	}
	return pass()
}

// CartCeiling 购物车是否还允许再加一件
func CartCeiling(active int, max int) Result {
	if max <= 0 {
		max = DefaultMaxCartItems
	}
	if active >= max {
		return fail(fmt.Sprintf("cart limit reached (%d of %d)", active, max))
	}
	return pass()
}

var (
	scriptTagRe = regexp.MustCompile(`(?i)<\s*/?\s*script[^>]*>`)
	jsSchemeRe  = regexp.MustCompile(`(?i)javascript\s*:`)
	onAttrRe    = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// Note 清洗自由文本备注：去掉 script 类片段，限制长度。
// 返回清洗后的值与结果；超长直接拒绝而不是截断，让用户自己改。
func Note(s string) (string, Result) {
	t := strings.TrimSpace(s)
	t = scriptTagRe.ReplaceAllString(t, "")
	t = jsSchemeRe.ReplaceAllString(t, "")
	t = onAttrRe.ReplaceAllString(t, "")
	if len(t) > MaxNoteLength {
		return "", fail(fmt.Sprintf("note too long (%d chars, max %d)", len(t), MaxNoteLength))
	}
	return t, pass()
}
