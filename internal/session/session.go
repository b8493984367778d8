// Package session assembles the haptic core, the demo scene and telemetry
// from configuration and runs them until the context ends.
package session

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/haptics/internal/config"
	"github.com/zeusync/haptics/internal/core/collision"
	"github.com/zeusync/haptics/internal/core/device"
	"github.com/zeusync/haptics/internal/core/events/bus"
	"github.com/zeusync/haptics/internal/core/haptics"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/core/physics"
	"github.com/zeusync/haptics/internal/core/scene"
	"github.com/zeusync/haptics/internal/core/signal"
	"github.com/zeusync/haptics/internal/core/snapshot"
	"github.com/zeusync/haptics/internal/core/telemetry"
	"github.com/zeusync/haptics/internal/sim"
)

// Session owns every long-running component of one hapticsd run.
type Session struct {
	ID  string
	cfg *config.Config

	cache      *snapshot.Cache
	events     bus.EventBus
	observer   *busObserver
	trackers   []*collision.Tracker
	world      *sim.World
	producer   *scene.Producer
	devices    []*device.Simulated
	dispatcher *haptics.Dispatcher

	recorder *telemetry.Recorder
	hub      *telemetry.Hub
	quic     *telemetry.QUICServer

	audio       *signal.Driver
	audioDevice *device.Simulated

	logger log.Log
}

// New builds a session from a validated configuration.
func New(cfg *config.Config, logger log.Log) (*Session, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if len(cfg.Devices) == 0 {
		return nil, config.ErrNoDevices
	}
	s := &Session{
		ID:     uuid.NewString(),
		cfg:    cfg,
		events: bus.New(),
	}
	s.logger = logger.With(log.String("session", s.ID))
	s.observer = &busObserver{logger: s.logger}
	s.events.AddObserver(s.observer)

	s.cache = snapshot.NewCache(len(cfg.Devices))
	for i, dc := range cfg.Devices {
		opts := []device.Option{
			device.WithRadius(dc.Radius),
			device.WithMotion(motion(dc.Motion)),
		}
		if dc.ID != "" {
			opts = append(opts, device.WithID(dc.ID))
		}
		d := device.NewSimulated(opts...)
		s.devices = append(s.devices, d)
		s.logger.Debug("Device created",
			log.Int("index", i),
			log.String("device_id", d.ID()),
			log.Vec3("position", d.Position()))
	}

	cursors := make([]sim.Cursor, len(s.devices))
	for i, d := range s.devices {
		cursors[i] = d
	}
	s.world = sim.NewWorld(cfg.Scene.World(cfg.SimRate), cursors, s.events, s.logger)

	states := make([]collision.StateSource, len(s.devices))
	for i := range s.devices {
		tr, err := collision.NewTracker(s.events, s.world.Topic(i), s.logger)
		if err != nil {
			_ = s.closeTrackers()
			return nil, err
		}
		s.trackers = append(s.trackers, tr)
		states[i] = tr
	}
	for _, cc := range cfg.Scene.Colliders {
		s.world.AddCollider(cc.Tag, physics.Sphere{Center: config.Vec(cc.Center), Radius: cc.Radius})
	}

	proximity, err := s.proximity()
	if err != nil {
		return nil, err
	}
	kin := make([]scene.Kinematics, len(s.devices))
	for i, d := range s.devices {
		kin[i] = d
	}
	popts := []scene.Option{
		scene.WithStep(s.world.Step),
		scene.WithReferenceVelocity(s.world),
		scene.WithProxy(s.world),
		scene.WithCollision(states...),
		scene.WithLogger(s.logger),
	}
	if proximity != nil {
		popts = append(popts, scene.WithProximity(proximity))
	}
	if s.producer, err = scene.NewProducer(s.cache, kin, popts...); err != nil {
		return nil, err
	}

	dopts := []haptics.Option{
		haptics.WithEvents(s.events),
		haptics.WithSession(s.ID),
		haptics.WithLogger(s.logger),
	}
	if cfg.Telemetry.Enabled {
		if err = s.buildTelemetry(); err != nil {
			return nil, err
		}
		dopts = append(dopts, haptics.WithRecorder(s.recorder))
	}
	s.dispatcher = haptics.NewDispatcher(s.cache, cfg.Haptics.Dispatcher(), dopts...)

	if cfg.Audio.Enabled {
		s.buildAudio()
	}
	return s, nil
}

func (s *Session) proximity() (physics.ProximitySource, error) {
	sc := s.cfg.Scene
	switch sc.Proximity {
	case config.ProximityTarget:
		return s.world.Target(), nil
	case config.ProximityPlane:
		return physics.NewPlane(config.Vec(sc.Plane.Point), config.Vec(sc.Plane.Normal)), nil
	case config.ProximityMesh:
		vertices := make([]mgl64.Vec3, len(sc.Mesh.Vertices))
		for i, v := range sc.Mesh.Vertices {
			vertices[i] = config.Vec(v)
		}
		return physics.NewTriangleMesh(vertices, sc.Mesh.Indices)
	default:
		return nil, nil
	}
}

func (s *Session) buildTelemetry() error {
	tc := s.cfg.Telemetry
	s.recorder = telemetry.NewRecorder(tc.Buffer, s.logger)
	if tc.WebSocketAddr != "" {
		s.hub = telemetry.NewHub(s.logger)
		s.recorder.AddSink(s.hub)
	}
	if tc.QUICAddr != "" {
		q, err := telemetry.NewQUICServer(tc.QUICAddr, s.logger)
		if err != nil {
			return err
		}
		s.quic = q
		s.recorder.AddSink(q)
	}
	return nil
}

func (s *Session) buildAudio() {
	ac := s.cfg.Audio
	s.audioDevice = device.NewSimulated(device.WithID("audio"))

	var variant signal.Variant
	switch ac.Variant {
	case config.AudioGravity:
		variant = signal.NewGravityForce()
	case config.AudioPosition:
		variant = signal.NewPositionControl(s.audioDevice, s.audioDevice.Position())
	default:
		variant = signal.NewOscillatingForce()
	}
	s.audio = signal.NewDriver(sim.NewSyntheticSpectrum(),
		signal.NewBandAnalyzer(signal.DefaultAnalyzerConfig()),
		variant, s.audioDevice, ac.Bins, s.logger)
}

// motion turns a device motion config into a trajectory.
func motion(mc config.MotionConfig) device.Motion {
	center := config.Vec(mc.Center)
	amp := config.Vec(mc.Amplitude)
	w := 2 * math.Pi * mc.Frequency

	switch mc.Kind {
	case config.MotionLine:
		return func(t time.Duration) mgl64.Vec3 {
			return center.Add(amp.Mul(math.Sin(w * t.Seconds())))
		}
	case config.MotionCircle:
		return func(t time.Duration) mgl64.Vec3 {
			phase := w * t.Seconds()
			return center.Add(mgl64.Vec3{amp[0] * math.Cos(phase), amp[1] * math.Sin(phase), amp[2] * math.Sin(phase)})
		}
	default:
		return device.Still(center)
	}
}

// Devices returns the haptic devices in slot order.
func (s *Session) Devices() []*device.Simulated { return s.devices }

func (s *Session) Cache() *snapshot.Cache { return s.cache }

func (s *Session) Stats() haptics.Stats { return s.dispatcher.Stats() }

// BusMetrics returns the event bus counters.
func (s *Session) BusMetrics() bus.Metrics { return s.events.GetMetrics() }

// Run attaches the devices and runs every loop until ctx ends or one of
// them fails. The dispatcher is closed, releasing every device, before the
// device runtimes stop.
func (s *Session) Run(ctx context.Context) error {
	hapticDevices := make([]device.Device, len(s.devices))
	for i, d := range s.devices {
		hapticDevices[i] = d
	}
	if err := s.dispatcher.Attach(hapticDevices...); err != nil {
		return err
	}

	devCtx, stopDevices := context.WithCancel(context.Background())
	defer stopDevices()
	var devGroup errgroup.Group
	for _, d := range s.devices {
		devGroup.Go(func() error { return d.Run(devCtx, s.cfg.HapticRate) })
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.producer.Run(gctx, float64(s.cfg.SimRate)) })
	if s.recorder != nil {
		g.Go(func() error { return s.recorder.Run(gctx) })
	}
	if s.hub != nil {
		g.Go(func() error { return s.hub.Serve(gctx, s.cfg.Telemetry.WebSocketAddr) })
	}
	if s.quic != nil {
		g.Go(func() error { return s.quic.Run(gctx) })
	}
	if s.audio != nil {
		g.Go(func() error { return s.audio.Run(gctx, s.cfg.Audio.Rate) })
	}
	if s.cfg.StatsInterval > 0 {
		g.Go(func() error { return s.reportStats(gctx) })
	}

	s.logger.Info("Session started",
		log.Int("devices", len(s.devices)),
		log.Float64("haptic_rate", s.cfg.HapticRate),
		log.Int("sim_rate", s.cfg.SimRate),
		log.String("mode", s.cfg.Haptics.Mode))

	runErr := g.Wait()

	closeErr := s.dispatcher.Close()
	stopDevices()
	devErr := devGroup.Wait()
	trackerErr := s.closeTrackers()
	for _, d := range s.devices {
		_ = d.Close()
	}
	if s.audioDevice != nil {
		_ = s.audioDevice.Close()
	}
	s.events.RemoveObserver(s.observer)

	st := s.Stats()
	bm := s.events.GetMetrics()
	s.logger.Info("Session stopped",
		log.Uint64("ticks", st.Ticks),
		log.Uint64("releases", st.Releases),
		log.Uint64("write_errors", st.WriteErrors),
		log.Uint64("snapshots", s.cache.Version()),
		log.Uint64("bus_published", bm.Published),
		log.Uint64("bus_errors", bm.Errors))
	return errors.Join(runErr, closeErr, devErr, trackerErr)
}

func (s *Session) closeTrackers() error {
	var all error
	for _, tr := range s.trackers {
		all = errors.Join(all, tr.Close())
	}
	return all
}

func (s *Session) reportStats(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st := s.Stats()
			fields := []log.Field{
				log.Uint64("ticks", st.Ticks),
				log.Uint64("releases", st.Releases),
				log.Uint64("write_errors", st.WriteErrors),
				log.Uint64("snapshots", s.cache.Version()),
			}
			for k := 1; k < len(st.Models); k++ {
				if n := st.Models[k]; n > 0 {
					fields = append(fields, log.Uint64(modelName(k), n))
				}
			}
			bm := s.events.GetMetrics()
			fields = append(fields,
				log.Uint64("collision_events", s.observer.collisions.Load()),
				log.Uint64("bus_published", bm.Published),
				log.Uint64("bus_errors", bm.Errors))
			if s.recorder != nil {
				fields = append(fields, log.Uint64("telemetry_dropped", s.recorder.Dropped()))
			}
			s.logger.Debug("Dispatcher stats", fields...)
		}
	}
}
