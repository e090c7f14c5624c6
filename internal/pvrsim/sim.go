// Package pvrsim is a stand-in HMD service for development and tests. It
// speaks the pvr wire protocol over the service socket and answers from
// a fixed headset profile, so the shim and its tooling can run without
// real hardware or the vendor service.
package pvrsim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pvrxr/pvrxr/internal/pvr"
)

// Profile describes the simulated headset.
type Profile struct {
	Manufacturer  string
	ProductName   string
	SerialNumber  string
	VendorID      uint32
	ProductID     uint32
	FirmwareMajor int
	FirmwareMinor int

	// Resolution is the full panel size across both eyes.
	Resolution  pvr.Sizei
	RefreshRate float32

	// CantingDeg is the outward yaw of each panel, in degrees. The
	// angular separation between the eyes is twice this value.
	CantingDeg float32

	// EyeFov is the left eye's frustum; the right eye mirrors the
	// horizontal tangents.
	EyeFov pvr.FovPort

	Status pvr.HmdStatus

	IntConfig   map[string]int
	FloatConfig map[string]float32
}

// DefaultProfile simulates a canted wide-FOV headset.
func DefaultProfile() Profile {
	return Profile{
		Manufacturer:  "Pimax",
		ProductName:   "Pimax P2",
		SerialNumber:  "SIM00001",
		VendorID:      0x34A4,
		ProductID:     0x0012,
		FirmwareMajor: 2,
		FirmwareMinor: 1,
		Resolution:    pvr.Sizei{W: 5120, H: 1440},
		RefreshRate:   90,
		CantingDeg:    10,
		EyeFov: pvr.FovPort{
			UpTan:    1.29,
			DownTan:  1.29,
			LeftTan:  2.0,
			RightTan: 1.0,
		},
		Status: pvr.HmdStatus{
			ServiceReady: true,
			HmdPresent:   true,
			HmdMounted:   true,
			IsVisible:    true,
		},
		IntConfig: map[string]int{
			pvr.ConfigFovLevel: 1,
		},
		FloatConfig: map[string]float32{
			pvr.ConfigEyeHeight: 1.65,
			pvr.ConfigClientFPS: 0,
		},
	}
}

// Server serves the pvr wire protocol over a unix socket.
type Server struct {
	socketPath string
	profile    Profile
	log        zerolog.Logger

	listener net.Listener

	mu       sync.Mutex
	nextSess uint64
	sessions map[uint64]bool

	shutdownMu   sync.Mutex
	shuttingDown bool
}

// NewServer creates a simulator bound to socketPath. An empty path uses
// the default service socket location.
func NewServer(profile Profile, socketPath string, log zerolog.Logger) (*Server, error) {
	if socketPath == "" {
		var err error
		socketPath, err = pvr.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve service socket path: %w", err)
		}
	}

	// Remove stale socket if present.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		profile:    profile,
		log:        log,
		sessions:   make(map[uint64]bool),
	}, nil
}

// SocketPath returns the socket the simulator listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for connections.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create service socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info().Str("socket", s.socketPath).Str("product", s.profile.ProductName).
		Msg("simulated HMD service listening")

	go s.acceptLoop()

	return nil
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.log.Warn().Err(err).Msg("accept error")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection answers a single request (one JSON line in, one out).
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Warn().Err(err).Msg("read error")
		return
	}

	var req pvr.Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.send(conn, pvr.NewErrorResponse("", pvr.ResInvalidParam, fmt.Sprintf("invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(&req))
}

func (s *Server) send(conn net.Conn, resp *pvr.Response) {
	respData, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal response")
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Warn().Err(err).Msg("failed to send response")
	}
}

func (s *Server) handleCommand(req *pvr.Request) *pvr.Response {
	s.log.Debug().Str("id", req.ID).Str("command", string(req.Command)).Msg("request")

	if req.Command != pvr.CommandCreateSession {
		s.mu.Lock()
		ok := s.sessions[req.Session]
		s.mu.Unlock()
		if !ok {
			return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "unknown session")
		}
	}

	switch req.Command {
	case pvr.CommandCreateSession:
		return s.handleCreateSession(req)
	case pvr.CommandDestroySession:
		return s.handleDestroySession(req)
	case pvr.CommandHmdStatus:
		return okResponse(req.ID, s.profile.Status)
	case pvr.CommandHmdInfo:
		return okResponse(req.ID, s.hmdInfo())
	case pvr.CommandEyeRenderInfo:
		return s.handleEyeRenderInfo(req)
	case pvr.CommandEyeDisplayInfo:
		return s.handleEyeDisplayInfo(req)
	case pvr.CommandGetIntConfig:
		return s.handleGetIntConfig(req)
	case pvr.CommandGetFloatConfig:
		return s.handleGetFloatConfig(req)
	case pvr.CommandSetTrackingOrigin:
		return s.handleSetTrackingOrigin(req)
	case pvr.CommandFovTextureSize:
		return s.handleFovTextureSize(req)
	default:
		return pvr.NewErrorResponse(req.ID, pvr.ResNotSupported, fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func okResponse(id string, data interface{}) *pvr.Response {
	resp, err := pvr.NewOKResponse(id, data)
	if err != nil {
		return pvr.NewErrorResponse(id, pvr.ResFailed, err.Error())
	}
	return resp
}

func (s *Server) handleCreateSession(req *pvr.Request) *pvr.Response {
	if !s.profile.Status.ServiceReady {
		return pvr.NewErrorResponse(req.ID, pvr.ResSrvNotReady, "service not ready")
	}

	s.mu.Lock()
	s.nextSess++
	id := s.nextSess
	s.sessions[id] = true
	s.mu.Unlock()

	s.log.Debug().Uint64("session", id).Msg("session created")
	return okResponse(req.ID, pvr.SessionData{Session: id})
}

func (s *Server) handleDestroySession(req *pvr.Request) *pvr.Response {
	s.mu.Lock()
	delete(s.sessions, req.Session)
	s.mu.Unlock()

	s.log.Debug().Uint64("session", req.Session).Msg("session destroyed")
	return okResponse(req.ID, nil)
}

func (s *Server) hmdInfo() pvr.HmdInfo {
	return pvr.HmdInfo{
		VendorID:      s.profile.VendorID,
		ProductID:     s.profile.ProductID,
		Manufacturer:  s.profile.Manufacturer,
		ProductName:   s.profile.ProductName,
		SerialNumber:  s.profile.SerialNumber,
		FirmwareMajor: s.profile.FirmwareMajor,
		FirmwareMinor: s.profile.FirmwareMinor,
		Resolution:    s.profile.Resolution,
	}
}

// EyeRenderInfo builds the per-eye record for the profile: the right eye
// mirrors the horizontal tangents and yaws the opposite way.
func (p Profile) EyeRenderInfo(eye pvr.Eye) pvr.EyeRenderInfo {
	fov := p.EyeFov
	yaw := -pvr.DegToRad(p.CantingDeg)
	if eye == pvr.EyeRight {
		fov.LeftTan, fov.RightTan = fov.RightTan, fov.LeftTan
		yaw = -yaw
	}
	return pvr.EyeRenderInfo{
		Fov:          fov,
		HmdToEyePose: pvr.Posef{Orientation: pvr.QuatFromYaw(yaw)},
	}
}

func (s *Server) handleEyeRenderInfo(req *pvr.Request) *pvr.Response {
	var payload pvr.EyePayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad eye payload")
	}
	if payload.Eye != pvr.EyeLeft && payload.Eye != pvr.EyeRight {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad eye")
	}
	return okResponse(req.ID, s.profile.EyeRenderInfo(payload.Eye))
}

func (s *Server) handleEyeDisplayInfo(req *pvr.Request) *pvr.Response {
	var payload pvr.EyePayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad eye payload")
	}
	info := pvr.DisplayInfo{
		EdidVid:     s.profile.VendorID,
		EdidPid:     s.profile.ProductID,
		Width:       s.profile.Resolution.W,
		Height:      s.profile.Resolution.H,
		RefreshRate: s.profile.RefreshRate,
		AdapterLuid: 0x51A4,
	}
	return okResponse(req.ID, info)
}

func (s *Server) handleGetIntConfig(req *pvr.Request) *pvr.Response {
	var payload pvr.ConfigPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad config payload")
	}
	value := payload.DefaultInt
	if v, ok := s.profile.IntConfig[payload.Key]; ok {
		value = v
	}
	return okResponse(req.ID, pvr.IntConfigData{Value: value})
}

func (s *Server) handleGetFloatConfig(req *pvr.Request) *pvr.Response {
	var payload pvr.ConfigPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad config payload")
	}
	value := payload.DefaultFloat
	if v, ok := s.profile.FloatConfig[payload.Key]; ok {
		value = v
	}
	return okResponse(req.ID, pvr.FloatConfigData{Value: value})
}

func (s *Server) handleSetTrackingOrigin(req *pvr.Request) *pvr.Response {
	var payload pvr.TrackingOriginPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad tracking origin payload")
	}
	if payload.Origin != pvr.TrackingOriginEyeLevel && payload.Origin != pvr.TrackingOriginFloorLevel {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad tracking origin")
	}
	return okResponse(req.ID, nil)
}

// handleFovTextureSize scales the per-eye panel resolution by the ratio
// of the requested tangent spans to the profile's native spans.
func (s *Server) handleFovTextureSize(req *pvr.Request) *pvr.Response {
	var payload pvr.FovTextureSizePayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return pvr.NewErrorResponse(req.ID, pvr.ResInvalidParam, "bad fov payload")
	}

	native := s.profile.EyeFov
	nativeH := float64(native.LeftTan + native.RightTan)
	nativeV := float64(native.UpTan + native.DownTan)
	if nativeH <= 0 || nativeV <= 0 {
		return pvr.NewErrorResponse(req.ID, pvr.ResNoDisplay, "profile has no panel")
	}

	reqH := float64(payload.Fov.LeftTan + payload.Fov.RightTan)
	reqV := float64(payload.Fov.UpTan + payload.Fov.DownTan)
	scale := float64(payload.PixelsPerDisplayPixel)
	if scale <= 0 {
		scale = 1
	}

	eyeW := float64(s.profile.Resolution.W) / 2
	eyeH := float64(s.profile.Resolution.H)

	size := pvr.Sizei{
		W: uint32(math.Ceil(eyeW * reqH / nativeH * scale)),
		H: uint32(math.Ceil(eyeH * reqV / nativeV * scale)),
	}
	return okResponse(req.ID, size)
}
