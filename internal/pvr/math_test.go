package pvr

import (
	"math"
	"testing"
)

func TestQuatAngle_CantedEyes(t *testing.T) {
	// Panels yawed 10 degrees outward on each side are 20 degrees apart.
	left := QuatFromYaw(-DegToRad(10))
	right := QuatFromYaw(DegToRad(10))

	got := left.Angle(right)
	want := DegToRad(20)
	if math.Abs(float64(got-want)) > 1e-4 {
		t.Fatalf("expected separation %v rad, got %v", want, got)
	}
}

func TestQuatAngle_Identity(t *testing.T) {
	q := QuatIdentity()
	if got := q.Angle(q); got != 0 {
		t.Fatalf("expected zero angle, got %v", got)
	}
}

func TestQuatAngle_SignInsensitive(t *testing.T) {
	// q and -q are the same rotation.
	q := QuatFromYaw(DegToRad(30))
	neg := Quatf{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	if got := q.Angle(neg); math.Abs(float64(got)) > 1e-4 {
		t.Fatalf("expected zero angle between q and -q, got %v", got)
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float32{0, 6, 45, 90, 170} {
		got := RadToDeg(DegToRad(deg))
		if math.Abs(float64(got-deg)) > 1e-3 {
			t.Fatalf("round trip of %v degrees gave %v", deg, got)
		}
	}
}

func TestTanAtanRoundTrip(t *testing.T) {
	for _, tan := range []float32{0.5, 1, 1.29, 2} {
		got := Tan(Atan(tan))
		if math.Abs(float64(got-tan)) > 1e-4 {
			t.Fatalf("round trip of tangent %v gave %v", tan, got)
		}
	}
}
