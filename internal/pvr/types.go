// Package pvr models the surface of the native head-mounted-display
// service SDK: opaque environment/session handles, the device records the
// service reports, and the named configuration keys it understands.
//
// The service itself is proprietary and out of process; this package only
// defines the contract (Service) and a wire client for it (Client).
package pvr

// Env is an opaque handle to an initialized SDK environment.
type Env uint64

// Session is an opaque handle to a connection with the device service.
type Session uint64

// Eye selects one of the two stereo displays.
type Eye int

const (
	EyeLeft  Eye = 0
	EyeRight Eye = 1

	// EyeCount is the number of stereo views; the service reports
	// exactly one render-info record per eye.
	EyeCount = 2
)

// TrackingOrigin selects the reference frame for reported poses.
type TrackingOrigin int

const (
	TrackingOriginEyeLevel   TrackingOrigin = 0
	TrackingOriginFloorLevel TrackingOrigin = 1
)

// MaxLayerCount is the composition layer limit baked into the vendor SDK.
const MaxLayerCount = 16

// Named configuration keys understood by the service.
const (
	ConfigUseNativeFov       = "steamvr_use_native_fov"
	ConfigFovLevel           = "fov_level"
	ConfigEyeHeight          = "eye_height"
	ConfigSmartSmoothing     = "dbg_asw_enable"
	ConfigLighthouseTracking = "enable_lighthouse_tracking"
	ConfigClientFPS          = "client_fps"
)

// Vector3f is a 3D position in meters.
type Vector3f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Quatf is a rotation quaternion.
type Quatf struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

// Posef is a rigid transform (rotation then translation).
type Posef struct {
	Orientation Quatf    `json:"orientation"`
	Position    Vector3f `json:"position"`
}

// Sizei is a size in pixels.
type Sizei struct {
	W uint32 `json:"w"`
	H uint32 `json:"h"`
}

// FovPort describes a view frustum as tangents of the four half-angles.
// All four values are positive; handedness is carried by the field, not
// the sign.
type FovPort struct {
	UpTan    float32 `json:"up_tan"`
	DownTan  float32 `json:"down_tan"`
	LeftTan  float32 `json:"left_tan"`
	RightTan float32 `json:"right_tan"`
}

// HmdStatus is the live device state reported by the service. It can
// change between queries (the user may unplug or take off the headset),
// so callers must not cache it.
type HmdStatus struct {
	ServiceReady bool `json:"service_ready"`
	HmdPresent   bool `json:"hmd_present"`
	HmdMounted   bool `json:"hmd_mounted"`
	IsVisible    bool `json:"is_visible"`
	DisplayLost  bool `json:"display_lost"`
	ShouldQuit   bool `json:"should_quit"`
}

// HmdInfo identifies the connected headset. The service reports it once
// the device is present; it does not change while the device stays
// connected.
type HmdInfo struct {
	VendorID      uint32 `json:"vendor_id"`
	ProductID     uint32 `json:"product_id"`
	Manufacturer  string `json:"manufacturer"`
	ProductName   string `json:"product_name"`
	SerialNumber  string `json:"serial_number"`
	FirmwareMajor int    `json:"firmware_major"`
	FirmwareMinor int    `json:"firmware_minor"`
	Resolution    Sizei  `json:"resolution"`
}

// EyeRenderInfo is the per-eye projection data: the view frustum and the
// offset from the head frame to the eye. Canted headsets report a non
// identity orientation here.
type EyeRenderInfo struct {
	Fov          FovPort `json:"fov"`
	HmdToEyePose Posef   `json:"hmd_to_eye_pose"`
}

// DisplayInfo describes the physical panel behind one eye.
type DisplayInfo struct {
	EdidVid     uint32  `json:"edid_vid"`
	EdidPid     uint32  `json:"edid_pid"`
	PosX        int     `json:"pos_x"`
	PosY        int     `json:"pos_y"`
	Width       uint32  `json:"width"`
	Height      uint32  `json:"height"`
	RefreshRate float32 `json:"refresh_rate"`
	AdapterLuid uint64  `json:"adapter_luid"`
}
