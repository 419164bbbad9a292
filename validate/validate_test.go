package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarcode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"six digits", "123456", true},
		{"trims whitespace", " 123456 ", true},
		{"too short", "12345", false},
		{"too long", "1234567", false},
		{"letter inside", "12a456", false},
		{"empty", "", false},
		{"only spaces", "   ", false},
		{"digits with inner space", "123 456", false},
		{"negative-looking", "-12345", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Barcode(tc.in)
			assert.Equal(t, tc.ok, res.OK)
			if !tc.ok {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestNormalizeBarcode(t *testing.T) {
	assert.Equal(t, "123456", NormalizeBarcode(" 123456 "))
}

func TestCeilings(t *testing.T) {
	assert.True(t, LoanCeiling(99, 100).OK)
	assert.False(t, LoanCeiling(100, 100).OK)
	assert.True(t, CartCeiling(19, 20).OK)
	assert.False(t, CartCeiling(20, 20).OK)

	// max <= 0 回落默认值
	assert.True(t, LoanCeiling(99, 0).OK)
	assert.False(t, LoanCeiling(DefaultMaxOpenLoans, 0).OK)
	assert.False(t, CartCeiling(DefaultMaxCartItems, 0).OK)
}

func TestNoteSanitization(t *testing.T) {
	got, res := Note("  dropped the box <script>alert(1)</script> twice  ")
	assert.True(t, res.OK)
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "dropped the box")

	got, res = Note(`click javascript:alert(1) here onclick= too`)
	assert.True(t, res.OK)
	assert.NotContains(t, got, "javascript:")
	assert.NotContains(t, got, "onclick=")

	_, res = Note(strings.Repeat("x", MaxNoteLength+1))
	assert.False(t, res.OK)

	got, res = Note("plain note")
	assert.True(t, res.OK)
	assert.Equal(t, "plain note", got)
}
