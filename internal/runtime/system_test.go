package runtime

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pvrxr/pvrxr/internal/pvr"
	"github.com/pvrxr/pvrxr/internal/pvr/pvrtest"
	"github.com/pvrxr/pvrxr/internal/xr"
)

func newTestRuntime(t *testing.T, fake *pvrtest.Fake) *Runtime {
	t.Helper()
	r, err := New(fake, Options{
		EnableHandTracking: true,
		Logger:             zerolog.Nop(),
	})
	require.NoError(t, err)
	return r
}

func getSystem(t *testing.T, r *Runtime) xr.SystemID {
	t.Helper()
	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHeadMountedDisplay,
	}, &systemID)
	require.Equal(t, xr.Success, res)
	return systemID
}

func TestGetSystem_ValidatesStructureType(t *testing.T) {
	r := newTestRuntime(t, pvrtest.New())

	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemProperties, // wrong tag
		FormFactor: xr.FormFactorHeadMountedDisplay,
	}, &systemID)
	require.Equal(t, xr.ErrValidationFailure, res)

	res = r.GetSystem(xr.SentinelInstance, nil, &systemID)
	require.Equal(t, xr.ErrValidationFailure, res)
}

func TestGetSystem_RejectsForeignInstance(t *testing.T) {
	r := newTestRuntime(t, pvrtest.New())

	var systemID xr.SystemID
	for _, instance := range []xr.Instance{0, 2, 42} {
		res := r.GetSystem(instance, &xr.SystemGetInfo{
			Type:       xr.TypeSystemGetInfo,
			FormFactor: xr.FormFactorHeadMountedDisplay,
		}, &systemID)
		require.Equal(t, xr.ErrHandleInvalid, res, "instance %d", instance)
	}
}

func TestGetSystem_UnsupportedFormFactorCreatesNoSession(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)

	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHandheldDisplay,
	}, &systemID)
	require.Equal(t, xr.ErrFormFactorUnsupported, res)
	require.Equal(t, 0, fake.CallCount("CreateSession"))
}

func TestGetSystem_ServiceNotRunningMeansUnavailable(t *testing.T) {
	fake := pvrtest.New()
	fake.Errs["CreateSession"] = &pvr.CallError{Call: "CreateSession", Res: pvr.ResRPCFailed}
	r := newTestRuntime(t, fake)

	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHeadMountedDisplay,
	}, &systemID)
	require.Equal(t, xr.ErrFormFactorUnavailable, res)
}

func TestGetSystem_OtherSessionFailureIsFatal(t *testing.T) {
	fake := pvrtest.New()
	fake.Errs["CreateSession"] = &pvr.CallError{Call: "CreateSession", Res: pvr.ResFailed}
	r := newTestRuntime(t, fake)

	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHeadMountedDisplay,
	}, &systemID)
	require.Equal(t, xr.ErrRuntimeFailure, res)
}

func TestGetSystem_DeviceAbsentMeansUnavailable(t *testing.T) {
	fake := pvrtest.New()
	fake.Status.HmdPresent = false
	r := newTestRuntime(t, fake)

	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHeadMountedDisplay,
	}, &systemID)
	require.Equal(t, xr.ErrFormFactorUnavailable, res)

	// Retrying after the device shows up succeeds on the same session.
	fake.Status.HmdPresent = true
	getSystem(t, r)
	require.Equal(t, 1, fake.CallCount("CreateSession"))
}

func TestGetSystem_Succeeds(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)

	systemID := getSystem(t, r)
	require.Equal(t, xr.SentinelSystemID, systemID)
	require.Equal(t, 1, fake.CallCount("SetTrackingOrigin"))
	require.Equal(t, pvr.TrackingOriginEyeLevel, fake.TrackingOrigin)
	require.InDelta(t, float64(90), float64(r.DisplayRefreshRate()), 1e-6)
}

func TestGetSystem_IdempotentDiscovery(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)

	getSystem(t, r)
	getSystem(t, r)

	// One session, but live state is re-queried on each discovery.
	require.Equal(t, 1, fake.CallCount("CreateSession"))
	require.Equal(t, 2, fake.CallCount("HmdStatus"))
	require.Equal(t, 2, fake.CallCount("HmdInfo"))
}

func TestGetSystem_LogsProductNameOnce(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)

	getSystem(t, r)
	require.True(t, r.loggedProductName)

	// A second discovery must not reset or duplicate the once-latch.
	getSystem(t, r)
	require.True(t, r.loggedProductName)
}

func TestUpdateEyeInfo_NoCantingDisablesParallelProjection(t *testing.T) {
	fake := pvrtest.New()
	fake.SetCanting(0)
	// Native FOV handling off: parallel projection would be allowed...
	fake.Ints[pvr.ConfigUseNativeFov] = 0
	r := newTestRuntime(t, fake)

	getSystem(t, r)

	// ...but with zero canting the adjustment must never apply.
	require.Zero(t, r.CantingAngle())
	left := r.EyeFov(pvr.EyeLeft)
	require.InDelta(t, -pvr.Atan(1), left.AngleLeft, 1e-5)
	require.InDelta(t, pvr.Atan(1), left.AngleRight, 1e-5)
	require.InDelta(t, pvr.Atan(1), left.AngleUp, 1e-5)
	require.InDelta(t, -pvr.Atan(1), left.AngleDown, 1e-5)
}

func TestUpdateEyeInfo_NativeFovDisablesParallelProjection(t *testing.T) {
	fake := pvrtest.New() // canted 10 degrees per eye
	fake.Ints[pvr.ConfigUseNativeFov] = 1
	r := newTestRuntime(t, fake)

	getSystem(t, r)

	require.NotZero(t, r.CantingAngle())
	left := r.EyeFov(pvr.EyeLeft)
	require.InDelta(t, -pvr.Atan(1), left.AngleLeft, 1e-5)
	require.InDelta(t, pvr.Atan(1), left.AngleUp, 1e-5)
}

func TestUpdateEyeInfo_ParallelProjectionAdjustment(t *testing.T) {
	fake := pvrtest.New()
	// Orientations 10 degrees apart: canting angle is 5 degrees.
	fake.SetCanting(pvr.DegToRad(5))
	r := newTestRuntime(t, fake)

	getSystem(t, r)

	canting := pvr.DegToRad(5)
	require.InDelta(t, canting, r.CantingAngle(), 1e-4)

	base := pvr.Atan(1)
	six := pvr.DegToRad(6)

	left := r.EyeFov(pvr.EyeLeft)
	require.InDelta(t, -base-canting, left.AngleLeft, 1e-4)
	require.InDelta(t, base-canting, left.AngleRight, 1e-4)
	require.InDelta(t, base+six, left.AngleUp, 1e-4)
	require.InDelta(t, -base-six, left.AngleDown, 1e-4)

	right := r.EyeFov(pvr.EyeRight)
	require.InDelta(t, -base+canting, right.AngleLeft, 1e-4)
	require.InDelta(t, base+canting, right.AngleRight, 1e-4)
	require.InDelta(t, base+six, right.AngleUp, 1e-4)
	require.InDelta(t, -base-six, right.AngleDown, 1e-4)
}

func TestGetSystemProperties_RequiresDiscovery(t *testing.T) {
	r := newTestRuntime(t, pvrtest.New())

	props := &xr.SystemProperties{Type: xr.TypeSystemProperties}
	res := r.GetSystemProperties(xr.SentinelInstance, xr.SentinelSystemID, props)
	require.Equal(t, xr.ErrSystemInvalid, res)
}

func TestGetSystemProperties_Validation(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)
	getSystem(t, r)

	props := &xr.SystemProperties{Type: xr.TypeSystemGetInfo} // wrong tag
	require.Equal(t, xr.ErrValidationFailure,
		r.GetSystemProperties(xr.SentinelInstance, xr.SentinelSystemID, props))

	props.Type = xr.TypeSystemProperties
	require.Equal(t, xr.ErrHandleInvalid,
		r.GetSystemProperties(xr.Instance(7), xr.SentinelSystemID, props))
	require.Equal(t, xr.ErrSystemInvalid,
		r.GetSystemProperties(xr.SentinelInstance, xr.SystemID(7), props))
}

func TestGetSystemProperties_AnswersFromCache(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)
	getSystem(t, r)

	callsBefore := len(fake.Calls())

	props := &xr.SystemProperties{Type: xr.TypeSystemProperties}
	res := r.GetSystemProperties(xr.SentinelInstance, xr.SentinelSystemID, props)
	require.Equal(t, xr.Success, res)

	require.Equal(t, callsBefore, len(fake.Calls()), "properties must not touch the service")

	require.Equal(t, xr.SentinelSystemID, props.SystemID)
	require.Equal(t, uint32(0x34A4), props.VendorID)
	require.Equal(t, "Pimax P2 (aapvr)", props.SystemName)
	require.True(t, props.TrackingProperties.PositionTracking)
	require.True(t, props.TrackingProperties.OrientationTracking)
	require.Equal(t, uint32(pvr.MaxLayerCount), props.GraphicsProperties.MaxLayerCount)
	require.Equal(t, uint32(16384), props.GraphicsProperties.MaxSwapchainImageWidth)
	require.Equal(t, uint32(16384), props.GraphicsProperties.MaxSwapchainImageHeight)
}

func TestGetSystemProperties_HandTrackingChain(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)
	getSystem(t, r)

	ht := &xr.SystemHandTrackingProperties{Type: xr.TypeSystemHandTrackingPropertiesEXT}
	props := &xr.SystemProperties{Type: xr.TypeSystemProperties, Next: ht}

	require.Equal(t, xr.Success,
		r.GetSystemProperties(xr.SentinelInstance, xr.SentinelSystemID, props))
	require.True(t, ht.SupportsHandTracking)
}

func TestGetSystemProperties_HandTrackingDisabled(t *testing.T) {
	fake := pvrtest.New()
	r, err := New(fake, Options{EnableHandTracking: false, Logger: zerolog.Nop()})
	require.NoError(t, err)
	getSystem(t, r)

	ht := &xr.SystemHandTrackingProperties{Type: xr.TypeSystemHandTrackingPropertiesEXT}
	props := &xr.SystemProperties{Type: xr.TypeSystemProperties, Next: ht}

	require.Equal(t, xr.Success,
		r.GetSystemProperties(xr.SentinelInstance, xr.SentinelSystemID, props))
	require.False(t, ht.SupportsHandTracking)
}

func TestEnumerateEnvironmentBlendModes_TwoPhase(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)
	getSystem(t, r)

	// Phase one: capacity zero reports the required count, writes nothing.
	var count uint32
	res := r.EnumerateEnvironmentBlendModes(xr.SentinelInstance, xr.SentinelSystemID,
		xr.ViewConfigurationTypePrimaryStereo, 0, &count, nil)
	require.Equal(t, xr.Success, res)
	require.Equal(t, uint32(1), count)

	// Phase two: a sufficient buffer receives the opaque mode.
	buf := make([]xr.EnvironmentBlendMode, 1)
	res = r.EnumerateEnvironmentBlendModes(xr.SentinelInstance, xr.SentinelSystemID,
		xr.ViewConfigurationTypePrimaryStereo, uint32(len(buf)), &count, buf)
	require.Equal(t, xr.Success, res)
	require.Equal(t, uint32(1), count)
	require.Equal(t, xr.EnvironmentBlendModeOpaque, buf[0])
}

func TestEnumerateEnvironmentBlendModes_Rejections(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)
	getSystem(t, r)

	var count uint32
	buf := make([]xr.EnvironmentBlendMode, 1)

	require.Equal(t, xr.ErrHandleInvalid,
		r.EnumerateEnvironmentBlendModes(xr.Instance(9), xr.SentinelSystemID,
			xr.ViewConfigurationTypePrimaryStereo, 1, &count, buf))

	require.Equal(t, xr.ErrSystemInvalid,
		r.EnumerateEnvironmentBlendModes(xr.SentinelInstance, xr.SystemID(9),
			xr.ViewConfigurationTypePrimaryStereo, 1, &count, buf))

	require.Equal(t, xr.ErrViewConfigurationTypeUnsupported,
		r.EnumerateEnvironmentBlendModes(xr.SentinelInstance, xr.SentinelSystemID,
			xr.ViewConfigurationTypePrimaryMono, 1, &count, buf))

	require.Equal(t, xr.ErrValidationFailure,
		r.EnumerateEnvironmentBlendModes(xr.SentinelInstance, xr.SentinelSystemID,
			xr.ViewConfigurationTypePrimaryStereo, 1, nil, buf))
}

func TestRuntime_UnexpectedNativeFailureAbortsCall(t *testing.T) {
	fake := pvrtest.New()
	fake.Errs["HmdInfo"] = &pvr.CallError{Call: "HmdInfo", Res: pvr.ResFailed}
	r := newTestRuntime(t, fake)

	var systemID xr.SystemID
	res := r.GetSystem(xr.SentinelInstance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHeadMountedDisplay,
	}, &systemID)
	require.Equal(t, xr.ErrRuntimeFailure, res)
}

func TestRuntime_ShutdownDestroysSession(t *testing.T) {
	fake := pvrtest.New()
	r := newTestRuntime(t, fake)
	getSystem(t, r)

	require.NoError(t, r.Shutdown())
	require.Equal(t, 0, fake.OpenSessions())
	require.Equal(t, 1, fake.CallCount("Shutdown"))
}
