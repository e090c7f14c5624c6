// Package runtime implements the OpenXR system surface on top of the
// native HMD service: system discovery, system properties, and
// environment blend mode enumeration. It owns no tracking, compositing
// or rendering; every substantial question is answered by the service
// and cached here.
package runtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/pvrxr/pvrxr/internal/pvr"
	"github.com/pvrxr/pvrxr/internal/xr"
)

// Options configures a Runtime.
type Options struct {
	// EnableHandTracking reports hand tracking as supported to callers
	// chaining the XR_EXT_hand_tracking query record.
	EnableHandTracking bool

	Logger zerolog.Logger
}

// Runtime is the per-process OpenXR context. It is constructed
// explicitly and passed to the dispatch layer; there is no ambient
// singleton. The mutex serializes access to the cached device state,
// since OpenXR permits multi-threaded calls into a runtime.
type Runtime struct {
	mu  sync.Mutex
	log zerolog.Logger
	svc pvr.Service

	env pvr.Env

	enableHandTracking bool

	instanceCreated bool
	systemCreated   bool

	sessionCreated bool
	session        pvr.Session

	loggedProductName bool

	// Invariant: cachedEyeFov and cantingAngle are recomputed together
	// from cachedEyeInfo (updateEyeInfo); neither is valid alone.
	cachedHmdInfo         pvr.HmdInfo
	cachedEyeInfo         [pvr.EyeCount]pvr.EyeRenderInfo
	cachedEyeFov          [pvr.EyeCount]xr.Fovf
	cantingAngle          float32
	useParallelProjection bool

	floorHeight        float32
	displayRefreshRate float32
	frameDuration      float64
	adapterLuid        uint64
}

// New creates the runtime context. The long-lived service session is not
// opened here; it is created lazily on the first successful system
// discovery.
func New(svc pvr.Service, opts Options) (*Runtime, error) {
	env, err := svc.Init()
	if err != nil {
		return nil, err
	}

	return &Runtime{
		log:                opts.Logger,
		svc:                svc,
		env:                env,
		enableHandTracking: opts.EnableHandTracking,
		instanceCreated:    true,
	}, nil
}

// Shutdown destroys the service session (if one was created) and
// releases the environment. Safe to call once at process teardown.
func (r *Runtime) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionCreated {
		if err := r.svc.DestroySession(r.session); err != nil {
			r.log.Warn().Err(err).Msg("failed to destroy service session")
		}
		r.sessionCreated = false
	}
	r.instanceCreated = false
	r.systemCreated = false

	return r.svc.Shutdown(r.env)
}

// fatal logs an unexpected native failure and maps it to the generic
// runtime failure code. The call is aborted; nothing crashes.
func (r *Runtime) fatal(call string, err error) xr.Result {
	r.log.Error().Err(err).Str("call", call).Msg("native service call failed")
	return xr.ErrRuntimeFailure
}
