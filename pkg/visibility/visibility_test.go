package visibility_test

import (
	"testing"

	"github.com/goliatone/go-mdaform/pkg/visibility"
)

func TestParseMask(t *testing.T) {
	t.Parallel()

	mask, err := visibility.Parse("")
	if err != nil || mask != visibility.Default {
		t.Fatalf("expected default mask, got %q (%v)", mask, err)
	}
	for _, bad := range []string{"11", "1111", "1a1", "   "} {
		if _, err := visibility.Parse(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestMaskVisible(t *testing.T) {
	t.Parallel()

	mask := visibility.Mask("010")
	if mask.Visible(visibility.Desktop) {
		t.Fatalf("desktop should be hidden")
	}
	if !mask.Visible(visibility.Tablet) {
		t.Fatalf("tablet should be visible")
	}
	if mask.Visible(visibility.Mobile) {
		t.Fatalf("mobile should be hidden")
	}
	if !visibility.Mask("").Visible(visibility.Mobile) {
		t.Fatalf("missing positions read as visible")
	}
	if visibility.MaskEvaluator.Eval("f", mask, visibility.Desktop) {
		t.Fatalf("evaluator should follow the mask")
	}
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	target, err := visibility.ParseTarget("mobile")
	if err != nil || target != visibility.Mobile {
		t.Fatalf("expected mobile, got %v (%v)", target, err)
	}
	if _, err := visibility.ParseTarget("watch"); err == nil {
		t.Fatalf("expected unknown target error")
	}
}
