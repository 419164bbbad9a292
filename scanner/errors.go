package scanner

import "fmt"

// CapabilityError 拿不到相机/解码引擎这类环境问题，和单帧解不出码
// （正常稳态）严格区分。Hint 给用户的补救提示。
type CapabilityError struct {
	Kind string // permission-denied / no-device / unsupported / engine-missing
	Hint string
}

func (e *CapabilityError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("camera capability error: %s", e.Kind)
	}
	return fmt.Sprintf("camera capability error: %s (%s)", e.Kind, e.Hint)
}

const (
	KindPermissionDenied = "permission-denied"
	KindNoDevice         = "no-device"
	KindUnsupported      = "unsupported"
	KindEngineMissing    = "engine-missing"
)
