package visibility

import "fmt"

// Target identifies a device class addressed by one position of a mask.
type Target int

const (
	Desktop Target = iota
	Tablet
	Mobile
)

func (t Target) String() string {
	switch t {
	case Desktop:
		return "desktop"
	case Tablet:
		return "tablet"
	case Mobile:
		return "mobile"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// ParseTarget maps a device class name onto a Target.
func ParseTarget(name string) (Target, error) {
	switch name {
	case "desktop", "":
		return Desktop, nil
	case "tablet":
		return Tablet, nil
	case "mobile":
		return Mobile, nil
	}
	return Desktop, fmt.Errorf("visibility: unknown target %q", name)
}

// Mask is a three character string of '0'/'1' flags ordered desktop, tablet,
// mobile.
type Mask string

// Default marks a field visible everywhere.
const Default Mask = "111"

// Parse validates raw and returns it as a Mask. An empty string yields Default.
func Parse(raw string) (Mask, error) {
	if raw == "" {
		return Default, nil
	}
	if len(raw) != 3 {
		return "", fmt.Errorf("visibility: mask %q must have 3 characters", raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != '0' && raw[i] != '1' {
			return "", fmt.Errorf("visibility: mask %q may only contain 0 and 1", raw)
		}
	}
	return Mask(raw), nil
}

// Visible reports whether the mask enables target. Positions missing from a
// malformed mask read as visible so a bad value never hides data.
func (m Mask) Visible(target Target) bool {
	idx := int(target)
	if idx < 0 || idx >= len(m) {
		return true
	}
	return m[idx] != '0'
}

// Evaluator decides whether a field is in scope for a target. Validation only
// consults Desktop; renderers may pass other targets.
type Evaluator interface {
	Eval(field string, mask Mask, target Target) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field string, mask Mask, target Target) bool

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field string, mask Mask, target Target) bool {
	return fn(field, mask, target)
}

// MaskEvaluator evaluates the mask flag for the target and nothing else.
var MaskEvaluator Evaluator = EvaluatorFunc(func(_ string, mask Mask, target Target) bool {
	return mask.Visible(target)
})
