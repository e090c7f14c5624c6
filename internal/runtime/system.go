package runtime

import (
	"errors"

	"github.com/pvrxr/pvrxr/internal/pvr"
	"github.com/pvrxr/pvrxr/internal/xr"
)

// systemNameSuffix is appended to the product name in SystemProperties.
// Some applications (OpenXR Toolkit among them) key vendor detection off
// this marker, so it must stay byte-for-byte stable.
const systemNameSuffix = " (aapvr)"

// GetSystem implements xrGetSystem: discover the head-mounted display,
// cache its properties, and hand out the sentinel system id.
//
// The long-lived service session is created on first success and reused
// afterwards; live status and device info are re-queried on every call
// because the device can come and go between calls.
func (r *Runtime) GetSystem(instance xr.Instance, getInfo *xr.SystemGetInfo, systemID *xr.SystemID) xr.Result {
	if getInfo == nil || systemID == nil || getInfo.Type != xr.TypeSystemGetInfo {
		return xr.ErrValidationFailure
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.instanceCreated || instance != xr.SentinelInstance {
		return xr.ErrHandleInvalid
	}

	if getInfo.FormFactor != xr.FormFactorHeadMountedDisplay {
		return xr.ErrFormFactorUnsupported
	}

	// Create the service session.
	if !r.sessionCreated {
		sess, err := r.svc.CreateSession(r.env)
		if err != nil {
			// This is the error returned when the service is not
			// running. We pretend the HMD is not found.
			if errors.Is(err, pvr.ResRPCFailed) {
				return xr.ErrFormFactorUnavailable
			}
			return r.fatal("CreateSession", err)
		}
		r.session = sess
		r.sessionCreated = true
	}

	// Check for HMD presence.
	status, err := r.svc.HmdStatus(r.session)
	if err != nil {
		return r.fatal("HmdStatus", err)
	}
	r.log.Debug().
		Bool("service_ready", status.ServiceReady).
		Bool("hmd_present", status.HmdPresent).
		Bool("hmd_mounted", status.HmdMounted).
		Bool("is_visible", status.IsVisible).
		Bool("display_lost", status.DisplayLost).
		Bool("should_quit", status.ShouldQuit).
		Msg("hmd status")
	if !(status.ServiceReady && status.HmdPresent) {
		return xr.ErrFormFactorUnavailable
	}

	// Query HMD properties.
	info, err := r.svc.HmdInfo(r.session)
	if err != nil {
		return r.fatal("HmdInfo", err)
	}
	r.cachedHmdInfo = info
	if !r.loggedProductName {
		r.log.Info().Str("product", info.ProductName).Msg("device detected")
		r.loggedProductName = true
	}

	// Cache common information.
	r.floorHeight, err = r.svc.FloatConfig(r.session, pvr.ConfigEyeHeight, 0)
	if err != nil {
		return r.fatal("FloatConfig", err)
	}

	for eye := pvr.EyeLeft; eye < pvr.EyeCount; eye++ {
		eyeInfo, err := r.svc.EyeRenderInfo(r.session, eye)
		if err != nil {
			return r.fatal("EyeRenderInfo", err)
		}
		r.cachedEyeInfo[eye] = eyeInfo
	}

	useNativeFov, err := r.svc.IntConfig(r.session, pvr.ConfigUseNativeFov, 0)
	if err != nil {
		return r.fatal("IntConfig", err)
	}
	r.useParallelProjection = useNativeFov == 0

	r.updateEyeInfo()
	if r.useParallelProjection && r.cantingAngle != 0 {
		r.log.Info().Msg("parallel projection is enabled")
	}

	if res := r.fillDisplayDeviceInfo(); res != xr.Success {
		return res
	}

	// Setup common parameters.
	if err := r.svc.SetTrackingOrigin(r.session, pvr.TrackingOriginEyeLevel); err != nil {
		return r.fatal("SetTrackingOrigin", err)
	}

	r.systemCreated = true
	*systemID = xr.SentinelSystemID

	return xr.Success
}

// GetSystemProperties implements xrGetSystemProperties. Answers come
// entirely from the cache filled by GetSystem; no service calls are
// made.
func (r *Runtime) GetSystemProperties(instance xr.Instance, systemID xr.SystemID, properties *xr.SystemProperties) xr.Result {
	if properties == nil || properties.Type != xr.TypeSystemProperties {
		return xr.ErrValidationFailure
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.instanceCreated || instance != xr.SentinelInstance {
		return xr.ErrHandleInvalid
	}

	if !r.systemCreated || systemID != xr.SentinelSystemID {
		return xr.ErrSystemInvalid
	}

	properties.SystemID = systemID
	properties.VendorID = r.cachedHmdInfo.VendorID
	properties.SystemName = xr.TruncateName(r.cachedHmdInfo.ProductName + systemNameSuffix)

	properties.TrackingProperties.PositionTracking = true
	properties.TrackingProperties.OrientationTracking = true

	properties.GraphicsProperties.MaxLayerCount = maxLayerCount()
	properties.GraphicsProperties.MaxSwapchainImageWidth = 16384
	properties.GraphicsProperties.MaxSwapchainImageHeight = 16384

	if r.enableHandTracking {
		if ht := xr.FindSystemHandTrackingProperties(properties.Next); ht != nil {
			ht.SupportsHandTracking = true
		}
	}

	return xr.Success
}

// maxLayerCount is the service's compile-time layer limit, which must
// not undercut the OpenXR minimum.
func maxLayerCount() uint32 {
	if pvr.MaxLayerCount < xr.MinCompositionLayersSupported {
		panic("pvr.MaxLayerCount below the OpenXR minimum")
	}
	return pvr.MaxLayerCount
}

// EnumerateEnvironmentBlendModes implements
// xrEnumerateEnvironmentBlendModes with the standard two-phase pattern.
// Only immersive VR is supported.
func (r *Runtime) EnumerateEnvironmentBlendModes(instance xr.Instance, systemID xr.SystemID,
	viewConfigurationType xr.ViewConfigurationType, capacityInput uint32,
	countOutput *uint32, blendModes []xr.EnvironmentBlendMode) xr.Result {

	supported := [...]xr.EnvironmentBlendMode{xr.EnvironmentBlendModeOpaque}

	if countOutput == nil {
		return xr.ErrValidationFailure
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.instanceCreated || instance != xr.SentinelInstance {
		return xr.ErrHandleInvalid
	}

	if !r.systemCreated || systemID != xr.SentinelSystemID {
		return xr.ErrSystemInvalid
	}

	if viewConfigurationType != xr.ViewConfigurationTypePrimaryStereo {
		return xr.ErrViewConfigurationTypeUnsupported
	}

	if capacityInput > 0 && capacityInput < uint32(len(supported)) {
		return xr.ErrSizeInsufficient
	}

	*countOutput = uint32(len(supported))

	if capacityInput > 0 && blendModes != nil {
		copy(blendModes, supported[:])
	}

	return xr.Success
}

// updateEyeInfo recomputes the canting angle and the per-eye boundary
// angles from the cached raw render info. The two caches are only valid
// together, so this is the single place both are written.
func (r *Runtime) updateEyeInfo() {
	r.cantingAngle = r.cachedEyeInfo[pvr.EyeLeft].HmdToEyePose.Orientation.
		Angle(r.cachedEyeInfo[pvr.EyeRight].HmdToEyePose.Orientation) / 2

	for eye := pvr.EyeLeft; eye < pvr.EyeCount; eye++ {
		fov := r.cachedEyeInfo[eye].Fov
		r.cachedEyeFov[eye] = xr.Fovf{
			AngleDown:  -pvr.Atan(fov.DownTan),
			AngleUp:    pvr.Atan(fov.UpTan),
			AngleLeft:  -pvr.Atan(fov.LeftTan),
			AngleRight: pvr.Atan(fov.RightTan),
		}

		// Apply parallel projection transforms. These are needed in
		// order to calculate the appropriate resolution to recommend
		// for swapchains.
		if r.useParallelProjection && r.cantingAngle != 0 {
			// Eliminate canting.
			r.cachedEyeInfo[eye].HmdToEyePose.Orientation = pvr.QuatIdentity()

			// Shift FOV by the canting angle.
			angle := r.cantingAngle
			if eye == pvr.EyeLeft {
				angle = -angle
			}
			r.cachedEyeFov[eye].AngleLeft += angle
			r.cachedEyeFov[eye].AngleRight += angle

			// Parallel projection also widens the vertical FOV by 6
			// degrees on each side (https://risa2000.github.io/hmdgdb).
			r.cachedEyeFov[eye].AngleUp += pvr.DegToRad(6)
			r.cachedEyeFov[eye].AngleDown -= pvr.DegToRad(6)
		}
	}
}

// fillDisplayDeviceInfo refreshes the panel data used for frame timing
// and graphics adapter selection.
func (r *Runtime) fillDisplayDeviceInfo() xr.Result {
	info, err := r.svc.EyeDisplayInfo(r.session, pvr.EyeLeft)
	if err != nil {
		return r.fatal("EyeDisplayInfo", err)
	}

	r.displayRefreshRate = info.RefreshRate
	r.frameDuration = 1.0 / float64(info.RefreshRate)
	r.adapterLuid = info.AdapterLuid

	return xr.Success
}

// CantingAngle reports the derived canting angle in radians.
func (r *Runtime) CantingAngle() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cantingAngle
}

// EyeFov reports the cached boundary angles for one eye.
func (r *Runtime) EyeFov(eye pvr.Eye) xr.Fovf {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cachedEyeFov[eye]
}

// DisplayRefreshRate reports the panel refresh rate cached at discovery.
func (r *Runtime) DisplayRefreshRate() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.displayRefreshRate
}
