// Package probe implements the standalone status probe: a one-shot
// session against the HMD service that snapshots display and
// configuration state for external tooling. It is independent of the
// OpenXR lifecycle and holds no state between runs.
package probe

import (
	"fmt"

	"github.com/pvrxr/pvrxr/internal/pvr"
)

// Status is the flat record reported to external tooling. Valid is set
// only when every underlying service call succeeded; there are no
// partial results.
type Status struct {
	Valid bool `json:"valid"`

	RefreshRate           float32 `json:"refresh_rate"`
	ResolutionWidth       uint32  `json:"resolution_width"`
	ResolutionHeight      uint32  `json:"resolution_height"`
	FovLevel              int     `json:"fov_level"`
	Fov                   float32 `json:"fov"`
	FloorHeight           float32 `json:"floor_height"`
	UseParallelProjection bool    `json:"use_parallel_projection"`
	UseSmartSmoothing     bool    `json:"use_smart_smoothing"`
	UseLighthouseTracking bool    `json:"use_lighthouse_tracking"`
	FPS                   float32 `json:"fps"`
}

// Run opens a transient session, reads the display and configuration
// state, and returns the populated record. Any service failure aborts
// the whole probe; the session and environment are released on every
// path.
func Run(svc pvr.Service) (Status, error) {
	var status Status

	err := pvr.WithSession(svc, func(sess pvr.Session) error {
		display, err := svc.EyeDisplayInfo(sess, pvr.EyeLeft)
		if err != nil {
			return fmt.Errorf("display info: %w", err)
		}

		var eyes [pvr.EyeCount]pvr.EyeRenderInfo
		for eye := pvr.EyeLeft; eye < pvr.EyeCount; eye++ {
			eyes[eye], err = svc.EyeRenderInfo(sess, eye)
			if err != nil {
				return fmt.Errorf("eye render info: %w", err)
			}
		}

		canting := eyes[pvr.EyeLeft].HmdToEyePose.Orientation.
			Angle(eyes[pvr.EyeRight].HmdToEyePose.Orientation) / 2

		// Total horizontal FOV includes the canting angle on both sides.
		fov := pvr.RadToDeg(pvr.Atan(eyes[pvr.EyeLeft].Fov.LeftTan) +
			pvr.Atan(eyes[pvr.EyeRight].Fov.RightTan) + 2*canting)

		useNativeFov, err := svc.IntConfig(sess, pvr.ConfigUseNativeFov, 0)
		if err != nil {
			return fmt.Errorf("config %s: %w", pvr.ConfigUseNativeFov, err)
		}
		useParallelProjection := canting != 0 && useNativeFov == 0

		// When parallel projection is on, the recommended resolution is
		// computed for a canting-shifted tangent box with the vertical
		// extent widened by 6 degrees on each side.
		fovForResolution := eyes[pvr.EyeLeft].Fov
		if useParallelProjection {
			fovForResolution.LeftTan = pvr.Tan(pvr.Atan(eyes[pvr.EyeLeft].Fov.LeftTan) + canting)
			fovForResolution.RightTan = pvr.Tan(pvr.Atan(eyes[pvr.EyeLeft].Fov.RightTan) - canting)
			fovForResolution.UpTan = pvr.Tan(pvr.Atan(eyes[pvr.EyeLeft].Fov.UpTan) + pvr.DegToRad(6))
			fovForResolution.DownTan = pvr.Tan(pvr.Atan(eyes[pvr.EyeLeft].Fov.DownTan) + pvr.DegToRad(6))
		}

		viewport, err := svc.FovTextureSize(sess, pvr.EyeLeft, fovForResolution, 1)
		if err != nil {
			return fmt.Errorf("fov texture size: %w", err)
		}

		fovLevel, err := svc.IntConfig(sess, pvr.ConfigFovLevel, 1)
		if err != nil {
			return fmt.Errorf("config %s: %w", pvr.ConfigFovLevel, err)
		}
		floorHeight, err := svc.FloatConfig(sess, pvr.ConfigEyeHeight, 0)
		if err != nil {
			return fmt.Errorf("config %s: %w", pvr.ConfigEyeHeight, err)
		}
		smartSmoothing, err := svc.IntConfig(sess, pvr.ConfigSmartSmoothing, 0)
		if err != nil {
			return fmt.Errorf("config %s: %w", pvr.ConfigSmartSmoothing, err)
		}
		lighthouse, err := svc.IntConfig(sess, pvr.ConfigLighthouseTracking, 0)
		if err != nil {
			return fmt.Errorf("config %s: %w", pvr.ConfigLighthouseTracking, err)
		}
		fps, err := svc.FloatConfig(sess, pvr.ConfigClientFPS, 0)
		if err != nil {
			return fmt.Errorf("config %s: %w", pvr.ConfigClientFPS, err)
		}

		status = Status{
			Valid:                 true,
			RefreshRate:           display.RefreshRate,
			ResolutionWidth:       viewport.W,
			ResolutionHeight:      viewport.H,
			FovLevel:              fovLevel,
			Fov:                   fov,
			FloorHeight:           floorHeight,
			UseParallelProjection: useParallelProjection,
			UseSmartSmoothing:     smartSmoothing != 0,
			UseLighthouseTracking: lighthouse != 0,
			FPS:                   fps,
		}
		return nil
	})
	if err != nil {
		return Status{}, err
	}
	return status, nil
}
