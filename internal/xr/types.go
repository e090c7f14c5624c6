// Package xr holds the OpenXR-facing types of the shim: handles, result
// codes, and the request/response structures of the system calls it
// implements. Numeric values match the OpenXR 1.0 registry so the shim
// stays wire-compatible with loaders and callers.
package xr

// Instance is an OpenXR instance handle.
type Instance uint64

// SystemID is an OpenXR system identifier.
type SystemID uint64

// The shim supports exactly one instance and one system per process, so
// handles are fixed sentinel values; anything else is invalid.
const (
	SentinelInstance Instance = 1
	SentinelSystemID SystemID = 1
)

// MaxSystemNameSize is XR_MAX_SYSTEM_NAME_SIZE: system names longer than
// this are truncated.
const MaxSystemNameSize = 256

// MinCompositionLayersSupported is the floor the OpenXR spec puts on
// maxLayerCount.
const MinCompositionLayersSupported = 16

// StructureType tags every input/output structure; entry points validate
// it before reading any other field.
type StructureType int

const (
	TypeSystemGetInfo                   StructureType = 4
	TypeSystemProperties                StructureType = 5
	TypeSystemHandTrackingPropertiesEXT StructureType = 1000051000
)

// FormFactor is the device form factor requested at system discovery.
type FormFactor int

const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

// ViewConfigurationType selects the view arrangement.
type ViewConfigurationType int

const (
	ViewConfigurationTypePrimaryMono   ViewConfigurationType = 1
	ViewConfigurationTypePrimaryStereo ViewConfigurationType = 2
)

// EnvironmentBlendMode describes how layers blend with the environment.
type EnvironmentBlendMode int

const (
	EnvironmentBlendModeOpaque     EnvironmentBlendMode = 1
	EnvironmentBlendModeAdditive   EnvironmentBlendMode = 2
	EnvironmentBlendModeAlphaBlend EnvironmentBlendMode = 3
)

// Fovf is a field of view as four boundary angles in radians. Left and
// down are negative for symmetric frustums.
type Fovf struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// SystemGetInfo is the input structure of GetSystem.
type SystemGetInfo struct {
	Type       StructureType
	Next       Extension
	FormFactor FormFactor
}

// SystemGraphicsProperties reports the graphics limits of a system.
type SystemGraphicsProperties struct {
	MaxSwapchainImageHeight uint32
	MaxSwapchainImageWidth  uint32
	MaxLayerCount           uint32
}

// SystemTrackingProperties reports the tracking capability of a system.
type SystemTrackingProperties struct {
	OrientationTracking bool
	PositionTracking    bool
}

// SystemProperties is the output structure of GetSystemProperties.
// Extension records chained through Next are filled when recognized.
type SystemProperties struct {
	Type               StructureType
	Next               Extension
	SystemID           SystemID
	VendorID           uint32
	SystemName         string
	GraphicsProperties SystemGraphicsProperties
	TrackingProperties SystemTrackingProperties
}

// Extension is implemented by chainable extension structures.
type Extension interface {
	NextExtension() Extension
}

// SystemHandTrackingProperties is the XR_EXT_hand_tracking query record.
type SystemHandTrackingProperties struct {
	Type                 StructureType
	Next                 Extension
	SupportsHandTracking bool
}

func (p *SystemHandTrackingProperties) NextExtension() Extension {
	if p == nil {
		return nil
	}
	return p.Next
}

// FindSystemHandTrackingProperties walks an extension chain for the
// hand-tracking query record, matching on the structure type tag.
func FindSystemHandTrackingProperties(chain Extension) *SystemHandTrackingProperties {
	for p := chain; p != nil; p = p.NextExtension() {
		if ht, ok := p.(*SystemHandTrackingProperties); ok && ht != nil && ht.Type == TypeSystemHandTrackingPropertiesEXT {
			return ht
		}
	}
	return nil
}

// TruncateName clamps a system name to MaxSystemNameSize bytes.
func TruncateName(name string) string {
	if len(name) > MaxSystemNameSize {
		return name[:MaxSystemNameSize]
	}
	return name
}
