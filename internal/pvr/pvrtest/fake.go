// Package pvrtest provides an in-memory pvr.Service for tests: fixed
// device data, injectable per-call failures, and a call log so tests can
// assert how often (and whether) native calls happened.
package pvrtest

import (
	"sync"

	"github.com/pvrxr/pvrxr/internal/pvr"
)

// Fake is an in-memory pvr.Service. The zero value is not usable; use
// New, then adjust fields before handing it to the code under test.
type Fake struct {
	mu sync.Mutex

	Status  pvr.HmdStatus
	Info    pvr.HmdInfo
	EyeInfo [pvr.EyeCount]pvr.EyeRenderInfo
	Display pvr.DisplayInfo
	Ints    map[string]int
	Floats  map[string]float32
	TexSize pvr.Sizei

	// Errs injects a failure for a call by method name ("CreateSession",
	// "HmdStatus", ...). The failure is returned every time the call runs.
	Errs map[string]error

	// TrackingOrigin records the last origin set via SetTrackingOrigin.
	TrackingOrigin pvr.TrackingOrigin

	// LastFov records the frustum passed to the most recent
	// FovTextureSize call, so tests can assert the adjusted box.
	LastFov pvr.FovPort

	calls    []string
	nextEnv  pvr.Env
	nextSess pvr.Session
	open     map[pvr.Session]bool
}

// New returns a fake reporting a ready, present headset with canted
// panels (10 degrees per eye) and symmetric unit tangents.
func New() *Fake {
	f := &Fake{
		Status: pvr.HmdStatus{
			ServiceReady: true,
			HmdPresent:   true,
			HmdMounted:   true,
			IsVisible:    true,
		},
		Info: pvr.HmdInfo{
			VendorID:      0x34A4,
			ProductID:     0x0012,
			Manufacturer:  "Pimax",
			ProductName:   "Pimax P2",
			SerialNumber:  "FAKE0001",
			FirmwareMajor: 2,
			FirmwareMinor: 1,
			Resolution:    pvr.Sizei{W: 5120, H: 1440},
		},
		Display: pvr.DisplayInfo{
			EdidVid:     0x34A4,
			EdidPid:     0x0012,
			Width:       5120,
			Height:      1440,
			RefreshRate: 90,
			AdapterLuid: 0xBEEF,
		},
		Ints:    make(map[string]int),
		Floats:  make(map[string]float32),
		TexSize: pvr.Sizei{W: 2560, H: 1440},
		Errs:    make(map[string]error),
		open:    make(map[pvr.Session]bool),
	}
	fov := pvr.FovPort{UpTan: 1, DownTan: 1, LeftTan: 1, RightTan: 1}
	f.EyeInfo[pvr.EyeLeft] = pvr.EyeRenderInfo{
		Fov:          fov,
		HmdToEyePose: pvr.Posef{Orientation: pvr.QuatFromYaw(-pvr.DegToRad(10))},
	}
	f.EyeInfo[pvr.EyeRight] = pvr.EyeRenderInfo{
		Fov:          fov,
		HmdToEyePose: pvr.Posef{Orientation: pvr.QuatFromYaw(pvr.DegToRad(10))},
	}
	return f
}

// SetCanting replaces both eye orientations with an outward yaw of
// perEyeRad radians, keeping the tangents untouched.
func (f *Fake) SetCanting(perEyeRad float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EyeInfo[pvr.EyeLeft].HmdToEyePose.Orientation = pvr.QuatFromYaw(-perEyeRad)
	f.EyeInfo[pvr.EyeRight].HmdToEyePose.Orientation = pvr.QuatFromYaw(perEyeRad)
}

// Calls returns a copy of the recorded call names, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times the named call ran.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// OpenSessions returns the number of sessions created but not destroyed.
func (f *Fake) OpenSessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.open)
}

// record logs the call and returns the injected failure, if any.
func (f *Fake) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.Errs[name]
}

func (f *Fake) Init() (pvr.Env, error) {
	if err := f.record("Init"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextEnv++
	return f.nextEnv, nil
}

func (f *Fake) Shutdown(env pvr.Env) error {
	return f.record("Shutdown")
}

func (f *Fake) CreateSession(env pvr.Env) (pvr.Session, error) {
	if err := f.record("CreateSession"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSess++
	f.open[f.nextSess] = true
	return f.nextSess, nil
}

func (f *Fake) DestroySession(sess pvr.Session) error {
	if err := f.record("DestroySession"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open[sess] {
		return &pvr.CallError{Call: "DestroySession", Res: pvr.ResInvalidParam}
	}
	delete(f.open, sess)
	return nil
}

func (f *Fake) HmdStatus(sess pvr.Session) (pvr.HmdStatus, error) {
	if err := f.record("HmdStatus"); err != nil {
		return pvr.HmdStatus{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Status, nil
}

func (f *Fake) HmdInfo(sess pvr.Session) (pvr.HmdInfo, error) {
	if err := f.record("HmdInfo"); err != nil {
		return pvr.HmdInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Info, nil
}

func (f *Fake) EyeRenderInfo(sess pvr.Session, eye pvr.Eye) (pvr.EyeRenderInfo, error) {
	if err := f.record("EyeRenderInfo"); err != nil {
		return pvr.EyeRenderInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.EyeInfo[eye], nil
}

func (f *Fake) EyeDisplayInfo(sess pvr.Session, eye pvr.Eye) (pvr.DisplayInfo, error) {
	if err := f.record("EyeDisplayInfo"); err != nil {
		return pvr.DisplayInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Display, nil
}

func (f *Fake) IntConfig(sess pvr.Session, key string, def int) (int, error) {
	if err := f.record("IntConfig"); err != nil {
		return def, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.Ints[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *Fake) FloatConfig(sess pvr.Session, key string, def float32) (float32, error) {
	if err := f.record("FloatConfig"); err != nil {
		return def, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.Floats[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *Fake) SetTrackingOrigin(sess pvr.Session, origin pvr.TrackingOrigin) error {
	if err := f.record("SetTrackingOrigin"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TrackingOrigin = origin
	return nil
}

func (f *Fake) FovTextureSize(sess pvr.Session, eye pvr.Eye, fov pvr.FovPort, ppdp float32) (pvr.Sizei, error) {
	if err := f.record("FovTextureSize"); err != nil {
		return pvr.Sizei{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastFov = fov
	return f.TexSize, nil
}

var _ pvr.Service = (*Fake)(nil)
