package pvr

// Service is the call surface of the native HMD service. Every method is
// a blocking request/response against the service; any of them can fail
// with a *CallError wrapping an SDK Result.
//
// The environment handle is cheap local state (Init never touches the
// service); sessions are service-side resources and must be destroyed by
// the caller that created them.
type Service interface {
	// Init prepares an SDK environment. It succeeds even when the
	// service is not running; connectivity problems surface at
	// CreateSession as ResRPCFailed.
	Init() (Env, error)

	// Shutdown releases an environment and everything created under it.
	Shutdown(env Env) error

	// CreateSession opens a connection to the device service.
	CreateSession(env Env) (Session, error)

	// DestroySession closes a session. Destroying an already destroyed
	// session is an error.
	DestroySession(sess Session) error

	// HmdStatus reports the live device state.
	HmdStatus(sess Session) (HmdStatus, error)

	// HmdInfo reports the identity of the connected headset.
	HmdInfo(sess Session) (HmdInfo, error)

	// EyeRenderInfo reports the projection data for one eye.
	EyeRenderInfo(sess Session, eye Eye) (EyeRenderInfo, error)

	// EyeDisplayInfo reports the physical panel behind one eye.
	EyeDisplayInfo(sess Session, eye Eye) (DisplayInfo, error)

	// IntConfig looks up an integer configuration value by key,
	// returning def when the service has no value for it.
	IntConfig(sess Session, key string, def int) (int, error)

	// FloatConfig looks up a float configuration value by key,
	// returning def when the service has no value for it.
	FloatConfig(sess Session, key string, def float32) (float32, error)

	// SetTrackingOrigin sets the reference frame for reported poses.
	SetTrackingOrigin(sess Session, origin TrackingOrigin) error

	// FovTextureSize reports the recommended render target size for a
	// view frustum at the given supersampling factor.
	FovTextureSize(sess Session, eye Eye, fov FovPort, pixelsPerDisplayPixel float32) (Sizei, error)
}
