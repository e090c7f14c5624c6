package xr

import (
	"strings"
	"testing"
)

func TestFindSystemHandTrackingProperties(t *testing.T) {
	ht := &SystemHandTrackingProperties{Type: TypeSystemHandTrackingPropertiesEXT}

	if got := FindSystemHandTrackingProperties(ht); got != ht {
		t.Fatalf("direct chain: got %v, want the record itself", got)
	}

	// Found behind an unrecognized record.
	other := &SystemHandTrackingProperties{Type: TypeSystemProperties, Next: ht}
	if got := FindSystemHandTrackingProperties(other); got != ht {
		t.Fatalf("nested chain: got %v, want the tagged record", got)
	}

	if got := FindSystemHandTrackingProperties(nil); got != nil {
		t.Fatalf("nil chain: got %v, want nil", got)
	}

	// A wrong type tag must not match even on the right Go type.
	untagged := &SystemHandTrackingProperties{}
	if got := FindSystemHandTrackingProperties(untagged); got != nil {
		t.Fatalf("untagged record: got %v, want nil", got)
	}

	// A typed-nil link terminates the walk instead of panicking.
	var missing *SystemHandTrackingProperties
	if got := FindSystemHandTrackingProperties(missing); got != nil {
		t.Fatalf("typed nil: got %v, want nil", got)
	}
}

func TestTruncateName(t *testing.T) {
	if got := TruncateName("Pimax P2"); got != "Pimax P2" {
		t.Fatalf("short name changed: %q", got)
	}

	long := strings.Repeat("x", MaxSystemNameSize+10)
	got := TruncateName(long)
	if len(got) != MaxSystemNameSize {
		t.Fatalf("truncated length = %d, want %d", len(got), MaxSystemNameSize)
	}
}

func TestResultStrings(t *testing.T) {
	cases := map[Result]string{
		Success:                  "XR_SUCCESS",
		ErrValidationFailure:     "XR_ERROR_VALIDATION_FAILURE",
		ErrFormFactorUnavailable: "XR_ERROR_FORM_FACTOR_UNAVAILABLE",
	}
	for res, want := range cases {
		if got := res.String(); got != want {
			t.Errorf("Result(%d).String() = %q, want %q", res, got, want)
		}
	}
}
