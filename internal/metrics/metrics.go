// Package metrics instruments calls into the native HMD service with
// Prometheus counters and latency histograms, exposed via the
// diagnostic HTTP server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pvrxr/pvrxr/internal/pvr"
)

// Registry holds the shim's Prometheus metrics on a private registry so
// tests and multiple instances never collide on the global one.
type Registry struct {
	NativeCalls        *prometheus.CounterVec
	NativeCallDuration *prometheus.HistogramVec
	ProbeRuns          *prometheus.CounterVec

	reg *prometheus.Registry
}

// NewRegistry creates and registers the shim metrics.
func NewRegistry() *Registry {
	r := &Registry{
		NativeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvrxr_native_calls_total",
				Help: "Total calls into the native HMD service by call and result",
			},
			[]string{"call", "result"},
		),
		NativeCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pvrxr_native_call_duration_seconds",
				Help:    "Latency of native HMD service calls",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"call"},
		),
		ProbeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvrxr_probe_runs_total",
				Help: "Status probe executions by result",
			},
			[]string{"result"},
		),
		reg: prometheus.NewRegistry(),
	}

	r.reg.MustRegister(r.NativeCalls, r.NativeCallDuration, r.ProbeRuns)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Instrument wraps a service so every call is counted and timed.
func (r *Registry) Instrument(svc pvr.Service) pvr.Service {
	return &instrumented{next: svc, m: r}
}

type instrumented struct {
	next pvr.Service
	m    *Registry
}

// observe records one finished call.
func (s *instrumented) observe(call string, start time.Time, err error) {
	s.m.NativeCallDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.m.NativeCalls.WithLabelValues(call, result).Inc()
}

func (s *instrumented) Init() (pvr.Env, error) {
	start := time.Now()
	env, err := s.next.Init()
	s.observe("init", start, err)
	return env, err
}

func (s *instrumented) Shutdown(env pvr.Env) error {
	start := time.Now()
	err := s.next.Shutdown(env)
	s.observe("shutdown", start, err)
	return err
}

func (s *instrumented) CreateSession(env pvr.Env) (pvr.Session, error) {
	start := time.Now()
	sess, err := s.next.CreateSession(env)
	s.observe("create_session", start, err)
	return sess, err
}

func (s *instrumented) DestroySession(sess pvr.Session) error {
	start := time.Now()
	err := s.next.DestroySession(sess)
	s.observe("destroy_session", start, err)
	return err
}

func (s *instrumented) HmdStatus(sess pvr.Session) (pvr.HmdStatus, error) {
	start := time.Now()
	status, err := s.next.HmdStatus(sess)
	s.observe("hmd_status", start, err)
	return status, err
}

func (s *instrumented) HmdInfo(sess pvr.Session) (pvr.HmdInfo, error) {
	start := time.Now()
	info, err := s.next.HmdInfo(sess)
	s.observe("hmd_info", start, err)
	return info, err
}

func (s *instrumented) EyeRenderInfo(sess pvr.Session, eye pvr.Eye) (pvr.EyeRenderInfo, error) {
	start := time.Now()
	info, err := s.next.EyeRenderInfo(sess, eye)
	s.observe("eye_render_info", start, err)
	return info, err
}

func (s *instrumented) EyeDisplayInfo(sess pvr.Session, eye pvr.Eye) (pvr.DisplayInfo, error) {
	start := time.Now()
	info, err := s.next.EyeDisplayInfo(sess, eye)
	s.observe("eye_display_info", start, err)
	return info, err
}

func (s *instrumented) IntConfig(sess pvr.Session, key string, def int) (int, error) {
	start := time.Now()
	v, err := s.next.IntConfig(sess, key, def)
	s.observe("int_config", start, err)
	return v, err
}

func (s *instrumented) FloatConfig(sess pvr.Session, key string, def float32) (float32, error) {
	start := time.Now()
	v, err := s.next.FloatConfig(sess, key, def)
	s.observe("float_config", start, err)
	return v, err
}

func (s *instrumented) SetTrackingOrigin(sess pvr.Session, origin pvr.TrackingOrigin) error {
	start := time.Now()
	err := s.next.SetTrackingOrigin(sess, origin)
	s.observe("set_tracking_origin", start, err)
	return err
}

func (s *instrumented) FovTextureSize(sess pvr.Session, eye pvr.Eye, fov pvr.FovPort, ppdp float32) (pvr.Sizei, error) {
	start := time.Now()
	size, err := s.next.FovTextureSize(sess, eye, fov, ppdp)
	s.observe("fov_texture_size", start, err)
	return size, err
}

var _ pvr.Service = (*instrumented)(nil)
