package probe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pvrxr/pvrxr/internal/probe"
	"github.com/pvrxr/pvrxr/internal/pvr"
	"github.com/pvrxr/pvrxr/internal/pvr/pvrtest"
)

func TestRun_Defaults(t *testing.T) {
	fake := pvrtest.New() // canted 10 degrees per eye, unit tangents
	fake.Ints[pvr.ConfigFovLevel] = 2
	fake.Ints[pvr.ConfigSmartSmoothing] = 1
	fake.Floats[pvr.ConfigEyeHeight] = 1.65
	fake.Floats[pvr.ConfigClientFPS] = 89.5

	status, err := probe.Run(fake)
	require.NoError(t, err)

	require.True(t, status.Valid)
	require.InDelta(t, 90, status.RefreshRate, 1e-6)
	require.Equal(t, uint32(2560), status.ResolutionWidth)
	require.Equal(t, uint32(1440), status.ResolutionHeight)
	require.Equal(t, 2, status.FovLevel)
	require.InDelta(t, 1.65, status.FloorHeight, 1e-6)
	require.True(t, status.UseParallelProjection)
	require.True(t, status.UseSmartSmoothing)
	require.False(t, status.UseLighthouseTracking)
	require.InDelta(t, 89.5, status.FPS, 1e-6)

	// Unit tangents give 45 degrees per side; the canting adds 10 on
	// each, for 110 total.
	require.InDelta(t, 110, status.Fov, 1e-2)

	// The viewport request must carry the canting-shifted tangent box.
	canting := pvr.DegToRad(10)
	base := pvr.Atan(1)
	six := pvr.DegToRad(6)
	require.InDelta(t, pvr.Tan(base+canting), fake.LastFov.LeftTan, 1e-5)
	require.InDelta(t, pvr.Tan(base-canting), fake.LastFov.RightTan, 1e-5)
	require.InDelta(t, pvr.Tan(base+six), fake.LastFov.UpTan, 1e-5)
	require.InDelta(t, pvr.Tan(base+six), fake.LastFov.DownTan, 1e-5)

	require.Equal(t, 0, fake.OpenSessions())
	require.Equal(t, 1, fake.CallCount("Shutdown"))
}

func TestRun_NoCantingSkipsAdjustment(t *testing.T) {
	fake := pvrtest.New()
	fake.SetCanting(0)

	status, err := probe.Run(fake)
	require.NoError(t, err)

	require.False(t, status.UseParallelProjection)
	require.InDelta(t, 90, status.Fov, 1e-2)

	// Raw tangents pass through untouched.
	require.InDelta(t, 1, fake.LastFov.LeftTan, 1e-6)
	require.InDelta(t, 1, fake.LastFov.RightTan, 1e-6)
	require.InDelta(t, 1, fake.LastFov.UpTan, 1e-6)
	require.InDelta(t, 1, fake.LastFov.DownTan, 1e-6)
}

func TestRun_NativeFovSkipsAdjustment(t *testing.T) {
	fake := pvrtest.New()
	fake.Ints[pvr.ConfigUseNativeFov] = 1

	status, err := probe.Run(fake)
	require.NoError(t, err)

	require.False(t, status.UseParallelProjection)
	require.InDelta(t, 1, fake.LastFov.LeftTan, 1e-6)
}

func TestRun_MidFailureReleasesSession(t *testing.T) {
	fake := pvrtest.New()
	fake.Errs["EyeRenderInfo"] = &pvr.CallError{Call: "EyeRenderInfo", Res: pvr.ResFailed}

	_, err := probe.Run(fake)
	require.Error(t, err)
	require.ErrorIs(t, err, pvr.ResFailed)

	require.Equal(t, 0, fake.OpenSessions())
	require.Equal(t, 1, fake.CallCount("DestroySession"))
	require.Equal(t, 1, fake.CallCount("Shutdown"))
}

func TestRun_ServiceDown(t *testing.T) {
	fake := pvrtest.New()
	fake.Errs["CreateSession"] = &pvr.CallError{Call: "CreateSession", Res: pvr.ResRPCFailed}

	_, err := probe.Run(fake)
	require.ErrorIs(t, err, pvr.ResRPCFailed)
	require.Equal(t, 0, fake.CallCount("DestroySession"))
	require.Equal(t, 1, fake.CallCount("Shutdown"))
}
