package pvr

import "fmt"

// Result is a status code returned by the native service. Zero is
// success; negative values are SDK-defined failures.
type Result int

const (
	ResSuccess      Result = 0
	ResFailed       Result = -1
	ResInvalidParam Result = -5

	// ResRPCFailed is returned when the service process is not running
	// or the transport to it is down. Callers translate it to "device
	// unavailable" rather than treating it as a fault.
	ResRPCFailed Result = -6

	ResNoDisplay    Result = -9
	ResSrvNotReady  Result = -12
	ResNotSupported Result = -15
)

func (r Result) String() string {
	switch r {
	case ResSuccess:
		return "success"
	case ResFailed:
		return "failed"
	case ResInvalidParam:
		return "invalid_param"
	case ResRPCFailed:
		return "rpc_failed"
	case ResNoDisplay:
		return "no_display"
	case ResSrvNotReady:
		return "srv_not_ready"
	case ResNotSupported:
		return "not_supported"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Error makes non-success results usable as sentinel errors with
// errors.Is.
func (r Result) Error() string {
	return "pvr: " + r.String()
}

// CallError is a native call failure carrying the name of the failing
// call and the service result code. It unwraps to the Result so callers
// can match sentinels.
type CallError struct {
	Call string
	Res  Result
}

func (e *CallError) Error() string {
	return fmt.Sprintf("pvr: %s: %s", e.Call, e.Res)
}

func (e *CallError) Unwrap() error {
	return e.Res
}
