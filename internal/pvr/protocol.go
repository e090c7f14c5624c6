package pvr

import (
	"encoding/json"
	"fmt"
)

// CommandType identifies a wire command to the HMD service.
type CommandType string

const (
	CommandCreateSession     CommandType = "CREATE_SESSION"
	CommandDestroySession    CommandType = "DESTROY_SESSION"
	CommandHmdStatus         CommandType = "HMD_STATUS"
	CommandHmdInfo           CommandType = "HMD_INFO"
	CommandEyeRenderInfo     CommandType = "EYE_RENDER_INFO"
	CommandEyeDisplayInfo    CommandType = "EYE_DISPLAY_INFO"
	CommandGetIntConfig      CommandType = "GET_INT_CONFIG"
	CommandGetFloatConfig    CommandType = "GET_FLOAT_CONFIG"
	CommandSetTrackingOrigin CommandType = "SET_TRACKING_ORIGIN"
	CommandFovTextureSize    CommandType = "FOV_TEXTURE_SIZE"
)

// Request is one wire request. ID correlates the response on shared
// transports and in service logs. Session is zero for CREATE_SESSION.
type Request struct {
	ID      string          `json:"id"`
	Command CommandType     `json:"command"`
	Session uint64          `json:"session,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is one wire response. On error, Result carries the SDK
// result code and Error a human-readable message.
type Response struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // "OK" or "ERROR"
	Result int             `json:"result,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SessionData is the data returned by CREATE_SESSION.
type SessionData struct {
	Session uint64 `json:"session"`
}

// EyePayload selects an eye for per-eye queries.
type EyePayload struct {
	Eye Eye `json:"eye"`
}

// ConfigPayload is the payload for GET_INT_CONFIG / GET_FLOAT_CONFIG.
// The default is applied service-side when the key has no value.
type ConfigPayload struct {
	Key          string  `json:"key"`
	DefaultInt   int     `json:"default_int,omitempty"`
	DefaultFloat float32 `json:"default_float,omitempty"`
}

// IntConfigData is the data returned by GET_INT_CONFIG.
type IntConfigData struct {
	Value int `json:"value"`
}

// FloatConfigData is the data returned by GET_FLOAT_CONFIG.
type FloatConfigData struct {
	Value float32 `json:"value"`
}

// TrackingOriginPayload is the payload for SET_TRACKING_ORIGIN.
type TrackingOriginPayload struct {
	Origin TrackingOrigin `json:"origin"`
}

// FovTextureSizePayload is the payload for FOV_TEXTURE_SIZE.
type FovTextureSizePayload struct {
	Eye                   Eye     `json:"eye"`
	Fov                   FovPort `json:"fov"`
	PixelsPerDisplayPixel float32 `json:"pixels_per_display_pixel"`
}

// NewOKResponse creates a successful response with optional data.
func NewOKResponse(id string, data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		ID:     id,
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a result code.
func NewErrorResponse(id string, res Result, errMsg string) *Response {
	return &Response{
		ID:     id,
		Status: "ERROR",
		Result: int(res),
		Error:  errMsg,
	}
}
