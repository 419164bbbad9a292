package storage

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// RenderBarcodePNG 给片盒的 6 位编号生成 Code-128 条码图（打印贴标用）
func RenderBarcodePNG(visualID string) ([]byte, error) {
	bc, err := code128.Encode(visualID)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}
	scaled, err := barcode.Scale(bc, 300, 80)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
