package xr

import "fmt"

// Result is an OpenXR result code. Zero is success; negative values are
// the error codes defined by the OpenXR 1.0 registry.
type Result int

const (
	Success Result = 0

	ErrValidationFailure                Result = -1
	ErrRuntimeFailure                   Result = -2
	ErrSizeInsufficient                 Result = -11
	ErrHandleInvalid                    Result = -12
	ErrSystemInvalid                    Result = -18
	ErrFormFactorUnsupported            Result = -34
	ErrFormFactorUnavailable            Result = -35
	ErrViewConfigurationTypeUnsupported Result = -41
)

func (r Result) String() string {
	switch r {
	case Success:
		return "XR_SUCCESS"
	case ErrValidationFailure:
		return "XR_ERROR_VALIDATION_FAILURE"
	case ErrRuntimeFailure:
		return "XR_ERROR_RUNTIME_FAILURE"
	case ErrSizeInsufficient:
		return "XR_ERROR_SIZE_INSUFFICIENT"
	case ErrHandleInvalid:
		return "XR_ERROR_HANDLE_INVALID"
	case ErrSystemInvalid:
		return "XR_ERROR_SYSTEM_INVALID"
	case ErrFormFactorUnsupported:
		return "XR_ERROR_FORM_FACTOR_UNSUPPORTED"
	case ErrFormFactorUnavailable:
		return "XR_ERROR_FORM_FACTOR_UNAVAILABLE"
	case ErrViewConfigurationTypeUnsupported:
		return "XR_ERROR_VIEW_CONFIGURATION_TYPE_UNSUPPORTED"
	default:
		return fmt.Sprintf("XR_RESULT(%d)", int(r))
	}
}

// Error lets non-success results travel as errors when convenient; the
// adapter itself returns Result values directly, as the protocol does.
func (r Result) Error() string {
	return r.String()
}
