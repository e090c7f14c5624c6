package pvr

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDialTimeout bounds each request round-trip to the service.
const DefaultDialTimeout = 5 * time.Second

// Client talks to the HMD service over its unix socket. It implements
// Service. Each request opens a fresh connection; a failure to connect
// means the service is not running and surfaces as ResRPCFailed.
type Client struct {
	socketPath string
	timeout    time.Duration

	mu      sync.Mutex
	nextEnv Env
	envs    map[Env]bool
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithSocketPath overrides the default socket path discovery.
func WithSocketPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.socketPath = path
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the HMD service.
func NewClient(opts ...ClientOption) *Client {
	socketPath, err := SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	c := &Client{
		socketPath: socketPath,
		timeout:    DefaultDialTimeout,
		envs:       make(map[Env]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init allocates an SDK environment. Purely local: the service is first
// contacted at CreateSession, which is where "service not running" is
// reported.
func (c *Client) Init() (Env, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextEnv++
	env := c.nextEnv
	c.envs[env] = true
	return env, nil
}

// Shutdown releases an environment.
func (c *Client) Shutdown(env Env) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.envs[env] {
		return &CallError{Call: "Shutdown", Res: ResInvalidParam}
	}
	delete(c.envs, env)
	return nil
}

// sendRequest sends a request and waits for a response.
func (c *Client) sendRequest(call string, req *Request) (*Response, error) {
	req.ID = uuid.NewString()

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		// The service socket is gone: the service is not running.
		return nil, fmt.Errorf("%w: %s", &CallError{Call: call, Res: ResRPCFailed}, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("%w: send: %s", &CallError{Call: call, Res: ResRPCFailed}, err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: read: %s", &CallError{Call: call, Res: ResRPCFailed}, err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		res := Result(resp.Result)
		if res == ResSuccess {
			res = ResFailed
		}
		return nil, &CallError{Call: call, Res: res}
	}

	return &resp, nil
}

// CreateSession opens a connection to the device service.
func (c *Client) CreateSession(env Env) (Session, error) {
	c.mu.Lock()
	ok := c.envs[env]
	c.mu.Unlock()
	if !ok {
		return 0, &CallError{Call: "CreateSession", Res: ResInvalidParam}
	}

	resp, err := c.sendRequest("CreateSession", &Request{Command: CommandCreateSession})
	if err != nil {
		return 0, err
	}

	var data SessionData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return 0, fmt.Errorf("failed to parse session data: %w", err)
	}
	return Session(data.Session), nil
}

// DestroySession closes a session.
func (c *Client) DestroySession(sess Session) error {
	_, err := c.sendRequest("DestroySession", &Request{
		Command: CommandDestroySession,
		Session: uint64(sess),
	})
	return err
}

// HmdStatus reports the live device state.
func (c *Client) HmdStatus(sess Session) (HmdStatus, error) {
	var status HmdStatus
	err := c.query("HmdStatus", &Request{Command: CommandHmdStatus, Session: uint64(sess)}, &status)
	return status, err
}

// HmdInfo reports the identity of the connected headset.
func (c *Client) HmdInfo(sess Session) (HmdInfo, error) {
	var info HmdInfo
	err := c.query("HmdInfo", &Request{Command: CommandHmdInfo, Session: uint64(sess)}, &info)
	return info, err
}

// EyeRenderInfo reports the projection data for one eye.
func (c *Client) EyeRenderInfo(sess Session, eye Eye) (EyeRenderInfo, error) {
	var info EyeRenderInfo
	req, err := requestWithPayload(CommandEyeRenderInfo, sess, EyePayload{Eye: eye})
	if err != nil {
		return info, err
	}
	err = c.query("EyeRenderInfo", req, &info)
	return info, err
}

// EyeDisplayInfo reports the physical panel behind one eye.
func (c *Client) EyeDisplayInfo(sess Session, eye Eye) (DisplayInfo, error) {
	var info DisplayInfo
	req, err := requestWithPayload(CommandEyeDisplayInfo, sess, EyePayload{Eye: eye})
	if err != nil {
		return info, err
	}
	err = c.query("EyeDisplayInfo", req, &info)
	return info, err
}

// IntConfig looks up an integer configuration value by key.
func (c *Client) IntConfig(sess Session, key string, def int) (int, error) {
	req, err := requestWithPayload(CommandGetIntConfig, sess, ConfigPayload{Key: key, DefaultInt: def})
	if err != nil {
		return def, err
	}
	var data IntConfigData
	if err := c.query("IntConfig", req, &data); err != nil {
		return def, err
	}
	return data.Value, nil
}

// FloatConfig looks up a float configuration value by key.
func (c *Client) FloatConfig(sess Session, key string, def float32) (float32, error) {
	req, err := requestWithPayload(CommandGetFloatConfig, sess, ConfigPayload{Key: key, DefaultFloat: def})
	if err != nil {
		return def, err
	}
	var data FloatConfigData
	if err := c.query("FloatConfig", req, &data); err != nil {
		return def, err
	}
	return data.Value, nil
}

// SetTrackingOrigin sets the reference frame for reported poses.
func (c *Client) SetTrackingOrigin(sess Session, origin TrackingOrigin) error {
	req, err := requestWithPayload(CommandSetTrackingOrigin, sess, TrackingOriginPayload{Origin: origin})
	if err != nil {
		return err
	}
	_, err = c.sendRequest("SetTrackingOrigin", req)
	return err
}

// FovTextureSize reports the recommended render target size for a view
// frustum.
func (c *Client) FovTextureSize(sess Session, eye Eye, fov FovPort, pixelsPerDisplayPixel float32) (Sizei, error) {
	var size Sizei
	req, err := requestWithPayload(CommandFovTextureSize, sess, FovTextureSizePayload{
		Eye:                   eye,
		Fov:                   fov,
		PixelsPerDisplayPixel: pixelsPerDisplayPixel,
	})
	if err != nil {
		return size, err
	}
	err = c.query("FovTextureSize", req, &size)
	return size, err
}

// query sends a request and unmarshals the response data into out.
func (c *Client) query(call string, req *Request, out interface{}) error {
	resp, err := c.sendRequest(call, req)
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		return errors.New("empty response data")
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", call, err)
	}
	return nil
}

func requestWithPayload(cmd CommandType, sess Session, payload interface{}) (*Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
	}
	return &Request{
		Command: cmd,
		Session: uint64(sess),
		Payload: raw,
	}, nil
}

var _ Service = (*Client)(nil)
