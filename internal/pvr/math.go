package pvr

import "math"

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * 180 / math.Pi
}

// Atan is math.Atan over the SDK's float32 tangents.
func Atan(v float32) float32 {
	return float32(math.Atan(float64(v)))
}

// Tan is math.Tan over the SDK's float32 angles.
func Tan(v float32) float32 {
	return float32(math.Tan(float64(v)))
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quatf {
	return Quatf{W: 1}
}

// QuatFromYaw returns a rotation of angle radians about the +Y axis.
func QuatFromYaw(angle float32) Quatf {
	half := float64(angle) / 2
	return Quatf{
		Y: float32(math.Sin(half)),
		W: float32(math.Cos(half)),
	}
}

// Dot is the 4D dot product of two quaternions.
func (q Quatf) Dot(o Quatf) float32 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Angle returns the angular separation between two rotations, in
// radians, in [0, pi].
func (q Quatf) Angle(o Quatf) float32 {
	d := math.Abs(float64(q.Dot(o)))
	if d > 1 {
		d = 1
	}
	return float32(2 * math.Acos(d))
}
