// Package config loads and validates the hapticsd configuration file.
package config

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/haptics/internal/core/haptics"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/sim"
)

// Proximity sources selectable for cursor radius contact.
const (
	ProximityNone   = "none"
	ProximityTarget = "target"
	ProximityPlane  = "plane"
	ProximityMesh   = "mesh"
)

// Device motion kinds for simulated devices.
const (
	MotionStill  = "still"
	MotionLine   = "line"
	MotionCircle = "circle"
)

// Audio force variants.
const (
	AudioOscillating = "oscillating"
	AudioGravity     = "gravity"
	AudioPosition    = "position"
)

type Config struct {
	Log           LogConfig       `yaml:"log"`
	HapticRate    float64         `yaml:"haptic_rate"`
	SimRate       int             `yaml:"sim_rate"`
	StatsInterval time.Duration   `yaml:"stats_interval"`
	Devices       []DeviceConfig  `yaml:"devices"`
	Haptics       HapticsConfig   `yaml:"haptics"`
	Scene         SceneConfig     `yaml:"scene"`
	Audio         AudioConfig     `yaml:"audio"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

type LogConfig struct {
	Level   string   `yaml:"level"`
	Console bool     `yaml:"console"`
	Output  []string `yaml:"output,omitempty"`
}

type DeviceConfig struct {
	ID     string       `yaml:"id,omitempty"`
	Radius float64      `yaml:"radius"`
	Motion MotionConfig `yaml:"motion"`
}

type MotionConfig struct {
	Kind      string    `yaml:"kind"`
	Center    []float64 `yaml:"center"`
	Amplitude []float64 `yaml:"amplitude,omitempty"`
	Frequency float64   `yaml:"frequency,omitempty"`
}

type HapticsConfig struct {
	ForceEnabled     bool    `yaml:"force_enabled"`
	CollisionGating  bool    `yaml:"collision_gating"`
	Mode             string  `yaml:"mode"`
	MutualHaptics    bool    `yaml:"mutual_haptics"`
	Stiffness        float64 `yaml:"stiffness"`
	Damping          float64 `yaml:"damping"`
	Viscosity        float64 `yaml:"viscosity"`
	VariantViscosity float64 `yaml:"variant_viscosity"`
	Variant          string  `yaml:"variant"`
	FluidicExponent  float64 `yaml:"fluidic_exponent"`
	FilterAlpha      float64 `yaml:"filter_alpha"`
	FluidMaxForce    float64 `yaml:"fluid_max_force"`
	MaxForce         float64 `yaml:"max_force"`
}

type SceneConfig struct {
	Topic     string           `yaml:"topic"`
	Proximity string           `yaml:"proximity"`
	Target    TargetConfig     `yaml:"target"`
	Plane     PlaneConfig      `yaml:"plane"`
	Mesh      MeshConfig       `yaml:"mesh"`
	Proxy     ProxyConfig      `yaml:"proxy"`
	Colliders []ColliderConfig `yaml:"colliders"`
}

type TargetConfig struct {
	Center    []float64 `yaml:"center"`
	Radius    float64   `yaml:"radius"`
	Amplitude []float64 `yaml:"amplitude"`
	Frequency float64   `yaml:"frequency"`
}

type PlaneConfig struct {
	Point  []float64 `yaml:"point"`
	Normal []float64 `yaml:"normal"`
}

type MeshConfig struct {
	Vertices [][]float64 `yaml:"vertices,omitempty"`
	Indices  []int       `yaml:"indices,omitempty"`
}

type ProxyConfig struct {
	Radius    float64 `yaml:"radius"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
}

type ColliderConfig struct {
	Tag    string    `yaml:"tag"`
	Center []float64 `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Variant string  `yaml:"variant"`
	Bins    int     `yaml:"bins"`
	Rate    float64 `yaml:"rate"`
}

type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Buffer        int    `yaml:"buffer"`
	WebSocketAddr string `yaml:"websocket_addr,omitempty"`
	QUICAddr      string `yaml:"quic_addr,omitempty"`
}

// Default returns a two-device contact scene with telemetry off.
func Default() *Config {
	hc := haptics.DefaultConfig()
	sc := sim.DefaultConfig()
	return &Config{
		Log:           LogConfig{Level: "info", Console: true},
		HapticRate:    1000,
		SimRate:       sc.Rate,
		StatsInterval: 5 * time.Second,
		Devices: []DeviceConfig{
			{ID: "left", Radius: 0.01, Motion: MotionConfig{
				Kind: MotionCircle, Center: []float64{-0.02, 0, 0}, Amplitude: []float64{0.03, 0.03, 0}, Frequency: 0.2,
			}},
			{ID: "right", Radius: 0.01, Motion: MotionConfig{
				Kind: MotionLine, Center: []float64{0.02, 0, 0}, Amplitude: []float64{0, 0.04, 0}, Frequency: 0.3,
			}},
		},
		Haptics: HapticsConfig{
			ForceEnabled:     hc.ForceEnabled,
			CollisionGating:  hc.CollisionGating,
			Mode:             string(hc.Mode),
			MutualHaptics:    hc.MutualHaptics,
			Stiffness:        hc.Stiffness,
			Damping:          hc.Damping,
			Viscosity:        hc.Viscosity,
			VariantViscosity: hc.VariantViscosity,
			Variant:          string(hc.Variant),
			FluidicExponent:  hc.FluidicExponent,
			FilterAlpha:      hc.FilterAlpha,
			FluidMaxForce:    hc.FluidMaxForce,
			MaxForce:         hc.MaxForce,
		},
		Scene: SceneConfig{
			Topic:     sc.Topic,
			Proximity: ProximityTarget,
			Target: TargetConfig{
				Center:    vecSlice(sc.Target.Center),
				Radius:    sc.Target.Radius,
				Amplitude: vecSlice(sc.Target.Amplitude),
				Frequency: sc.Target.Frequency,
			},
			Plane: PlaneConfig{Point: []float64{0, -0.1, 0}, Normal: []float64{0, 1, 0}},
			Proxy: ProxyConfig{Radius: sc.ProxyRadius, Frequency: sc.ProxyFrequency, Damping: sc.ProxyDamping},
			Colliders: []ColliderConfig{
				{Tag: "Default", Center: []float64{0, 0.08, 0}, Radius: 0.03},
				{Tag: "Fluid", Center: []float64{-0.06, 0, 0}, Radius: 0.025},
				{Tag: "Fluid2", Center: []float64{0.06, 0, 0}, Radius: 0.025},
			},
		},
		Audio: AudioConfig{Variant: AudioOscillating, Bins: 512, Rate: 60},
		Telemetry: TelemetryConfig{
			Buffer:        4096,
			WebSocketAddr: "127.0.0.1:8090",
			QUICAddr:      "127.0.0.1:8091",
		},
	}
}

// Dispatcher converts the haptics section.
func (h HapticsConfig) Dispatcher() haptics.Config {
	return haptics.Config{
		ForceEnabled:     h.ForceEnabled,
		CollisionGating:  h.CollisionGating,
		Mode:             haptics.Mode(h.Mode),
		MutualHaptics:    h.MutualHaptics,
		Stiffness:        h.Stiffness,
		Damping:          h.Damping,
		Viscosity:        h.Viscosity,
		VariantViscosity: h.VariantViscosity,
		Variant:          haptics.VariantModel(h.Variant),
		FluidicExponent:  h.FluidicExponent,
		FilterAlpha:      h.FilterAlpha,
		FluidMaxForce:    h.FluidMaxForce,
		MaxForce:         h.MaxForce,
	}
}

// World converts the scene section for the given simulation rate.
func (s SceneConfig) World(rate int) sim.Config {
	return sim.Config{
		Rate:           rate,
		ProxyRadius:    s.Proxy.Radius,
		ProxyFrequency: s.Proxy.Frequency,
		ProxyDamping:   s.Proxy.Damping,
		Target: sim.TargetConfig{
			Center:    Vec(s.Target.Center),
			Radius:    s.Target.Radius,
			Amplitude: Vec(s.Target.Amplitude),
			Frequency: s.Target.Frequency,
		},
		Topic: s.Topic,
	}
}

// LogLevel parses the configured level name.
func (l LogConfig) LogLevel() log.Level {
	return log.ParseLevel(l.Level)
}

// Vec converts a validated three-element slice. Missing components are zero.
func Vec(s []float64) mgl64.Vec3 {
	var v mgl64.Vec3
	copy(v[:], s)
	return v
}

func vecSlice(v mgl64.Vec3) []float64 {
	return []float64{v[0], v[1], v[2]}
}
