package whirlwind

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.whirlwind.dev/whirlwind/filter"
	"pkg.whirlwind.dev/whirlwind/server"
	"pkg.whirlwind.dev/whirlwind/snapshot"
	"pkg.whirlwind.dev/whirlwind/statsd"
	"pkg.whirlwind.dev/whirlwind/types"
	"pkg.whirlwind.dev/whirlwind/worldstage"
)

var _ server.Provider = &App{}

// App runs a World. It drives the update schedule at the configured frame
// rate, serves the inspection HTTP API, emits frame timing metrics, and
// periodically snapshots state to redis. The World itself stays
// single-threaded; stateMutex serializes frames against HTTP reads.
type App struct {
	world     *World
	config    *AppConfig
	namespace types.Namespace

	// Networking
	server *server.Server

	// Storage
	snapshots *snapshot.Store // nil when snapshotting is disabled

	// Frame
	worldStage       *worldstage.Manager
	frame            *atomic.Uint64
	frameChannel     <-chan time.Time
	frameDoneChannel chan<- uint64
	// addChannelWaitingForNextFrame accepts a channel which will be closed after a frame has been completed.
	addChannelWaitingForNextFrame chan chan struct{}

	stateMutex sync.RWMutex
}

// NewApp creates an App around a fresh World, configured from the
// environment.
func NewApp(opts ...AppOption) (*App, error) {
	serverOptions, worldOptions, appOptions := separateOptions(opts)

	// Load config. Fallback value is used if it's not set.
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config to start app")
	}
	cfg.setupLogger()

	log.Info().Msgf("Creating a new whirlwind app under namespace %q", cfg.Namespace)

	world := NewWorld(worldOptions...)
	world.RegisterSchedule(cfg.UpdateSchedule)

	app := &App{
		world:     world,
		config:    cfg,
		namespace: types.Namespace(cfg.Namespace),

		// Networking
		server: nil, // Will be initialized below, once the provider (the app itself) exists

		// Storage
		snapshots: nil, // Will be set if a redis address is configured

		// Frame
		worldStage:                    worldstage.NewManager(),
		frame:                         new(atomic.Uint64),
		frameChannel:                  time.Tick(time.Second / time.Duration(cfg.FrameRate)), //nolint:staticcheck // its ok.
		frameDoneChannel:              nil,                                                   // Will be injected via options
		addChannelWaitingForNextFrame: make(chan chan struct{}),
	}

	// Snapshotting is enabled by configuring a redis address.
	if cfg.RedisAddress != "" {
		app.snapshots = snapshot.NewStore(app.namespace, snapshot.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
	}

	// Apply options
	for _, opt := range appOptions {
		opt(app)
	}

	app.server, err = server.New(app, append([]server.Option{server.WithPort(cfg.Port)}, serverOptions...)...)
	if err != nil {
		return nil, err
	}

	metricTags := []string{"namespace:" + cfg.Namespace}
	if cfg.StatsdAddress != "" {
		if err := statsd.Init(cfg.StatsdAddress, metricTags); err != nil {
			return nil, eris.Wrap(err, "unable to init statsd")
		}
	} else {
		log.Warn().Msg("statsd is disabled")
	}

	return app, nil
}

// World returns the world the app runs. Register components, resources,
// schedules and systems through it before calling Start.
func (a *App) World() *World {
	return a.world
}

func (a *App) Namespace() string {
	return a.namespace.String()
}

// CurrentFrame returns the number of frames completed so far.
func (a *App) CurrentFrame() uint64 {
	return a.frame.Load()
}

// doFrame runs the update schedule once. It is only ever called from the
// frame loop goroutine.
func (a *App) doFrame() error {
	// Record frame start time for statsd.
	startTime := time.Now()

	// The app can only run a frame if:
	// - We're recovering state from a snapshot
	// - The app is currently running
	// - The app is shutting down (this will be the last frame)
	if a.worldStage.Current() != worldstage.Recovering &&
		a.worldStage.Current() != worldstage.Running &&
		a.worldStage.Current() != worldstage.ShuttingDown {
		return eris.Errorf("invalid app stage to run a frame: %s", a.worldStage.Current())
	}

	// This defer is here to catch any panics that occur during the frame. It will log the current frame and the
	// current system that is running.
	defer a.handleFramePanic()

	log.Debug().Int("frame", int(a.CurrentFrame())).Msg("Frame started")

	// Hold the write half of the state mutex for exactly the duration of the
	// schedule so HTTP reads never observe a half-applied frame.
	a.stateMutex.Lock()
	err := a.world.RunSchedule(a.config.UpdateSchedule)
	a.stateMutex.Unlock()
	if err != nil {
		return err
	}

	// Increment the frame
	a.frame.Add(1)

	// Snapshot every SnapshotInterval frames. By this point the schedule has
	// finished, so the state the snapshot sees is a complete frame.
	if a.snapshots != nil && a.CurrentFrame()%uint64(a.config.SnapshotInterval) == 0 {
		snapshotStartTime := time.Now()
		if err := a.snapshots.Save(a.CurrentFrame(), a.world.state, a.world.componentManager); err != nil {
			return err
		}
		statsd.EmitFrameStat(snapshotStartTime, "snapshot")
	}

	statsd.EmitFrameStat(startTime, "full_frame")

	return nil
}

// Start starts running the app. Each time a message arrives on the frame
// channel, the update schedule is run once. In addition, an HTTP server
// (listening on the configured port) is created so that this world can be
// inspected. If Start doesn't encounter any errors, it will block forever,
// running the server and the frame loop in the background.
func (a *App) Start() error {
	// App stage: Init -> Starting
	ok := a.worldStage.CompareAndSwap(worldstage.Init, worldstage.Starting)
	if !ok {
		return errors.New("app has already been started")
	}

	// Recover world state from the latest snapshot, if one exists.
	a.worldStage.Store(worldstage.Recovering)
	if a.snapshots != nil {
		frame, found, err := a.snapshots.Load(a.world.state, a.world.componentManager)
		if err != nil {
			return eris.Wrap(err, "failed to recover world from snapshot")
		}
		if found {
			a.frame.Store(frame)
			log.Info().Uint64("frame", frame).Msg("Recovered world from snapshot")
		}
	}
	a.worldStage.Store(worldstage.Ready)

	// Warn when no components or systems are registered
	if len(a.world.GetRegisteredComponents()) == 0 {
		log.Warn().Msg("No components registered")
	}
	systemCount := 0
	for _, schedule := range a.world.GetRegisteredSchedules() {
		systemCount += len(schedule.Systems)
	}
	if systemCount == 0 {
		log.Warn().Msg("No systems registered")
	}

	// Log world info
	a.world.LogWorld(zerolog.InfoLevel)

	// App stage: Ready -> Running
	a.worldStage.Store(worldstage.Running)

	// Start the frame loop
	a.startFrameLoop(a.frameChannel, a.frameDoneChannel)

	// Start the server
	a.startServer()

	// handle shutdown via a signal
	a.handleShutdown()
	<-a.worldStage.NotifyOnStage(worldstage.ShutDown)
	return nil
}

func (a *App) startServer() {
	go func() {
		if err := a.server.Serve(); errors.Is(err, http.ErrServerClosed) {
			log.Info().Err(err).Msgf("the server has been closed: %s", eris.ToString(err, true))
		} else if err != nil {
			log.Fatal().Err(err).Msgf("the server has failed: %s", eris.ToString(err, true))
		}
	}()
}

func (a *App) startFrameLoop(frameStart <-chan time.Time, frameDone chan<- uint64) {
	log.Info().Msg("Frame loop started")
	go func() {
		var waitingChs []chan struct{}
	loop:
		for {
			select {
			case _, ok := <-frameStart:
				if !ok {
					panic("frame channel has been closed; frame rate is now unbounded.")
				}
				a.frameTheEngine(frameDone)
				closeAllChannels(waitingChs)
				waitingChs = waitingChs[:0]
			case <-a.worldStage.NotifyOnStage(worldstage.ShuttingDown):
				a.drainChannelsWaitingForNextFrame()
				closeAllChannels(waitingChs)
				if frameDone != nil {
					close(frameDone)
				}
				break loop
			case ch := <-a.addChannelWaitingForNextFrame:
				waitingChs = append(waitingChs, ch)
			}
		}
		a.worldStage.Store(worldstage.ShutDown)
	}()
}

func (a *App) frameTheEngine(frameDone chan<- uint64) {
	currFrame := a.CurrentFrame()
	// this is the final point where errors bubble up and hit a panic. There are other places where this occurs
	// but this is the highest terminal point.
	// the panic may point you to here, (or the doFrame function) but the real stack trace is in the error message.
	err := a.doFrame()
	if err != nil {
		bytes, errMarshal := json.Marshal(eris.ToJSON(err, true))
		if errMarshal != nil {
			panic(errMarshal)
		}
		panic(string(bytes))
	}
	if frameDone != nil {
		frameDone <- currFrame
	}
}

// IsFrameLoopRunning reports whether the app is live and processing frames.
func (a *App) IsFrameLoopRunning() bool {
	return a.worldStage.Current() == worldstage.Running
}

func (a *App) Shutdown() error {
	log.Info().Msg("Shutting down app.")
	ok := a.worldStage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown)
	if !ok {
		select {
		case <-a.worldStage.NotifyOnStage(worldstage.ShuttingDown):
			// Some other goroutine has already started the shutdown process. Wait until the app is
			// actually shut down.
			<-a.worldStage.NotifyOnStage(worldstage.ShutDown)
			return nil
		default:
		}
		return errors.New("shutdown attempted before the app was started")
	}

	// Block until the frame loop has stopped
	<-a.worldStage.NotifyOnStage(worldstage.ShutDown)

	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			return err
		}
	}

	// Save a final snapshot so a restart resumes from the exact shutdown
	// state, then close the storage connection.
	if a.snapshots != nil {
		log.Info().Msg("Saving final snapshot.")
		if err := a.snapshots.Save(a.CurrentFrame(), a.world.state, a.world.componentManager); err != nil {
			log.Error().Err(err).Msg("Failed to save final snapshot.")
			return err
		}
		log.Info().Msg("Closing storage connection.")
		if err := a.snapshots.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close storage connection.")
			return err
		}
	}

	statsd.Close()
	log.Info().Msg("Successfully shut down app.")
	return nil
}

func (a *App) handleShutdown() {
	signalChannel := make(chan os.Signal, 1)
	go func() {
		signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
		for sig := range signalChannel {
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				err := a.Shutdown()
				if err != nil {
					log.Err(err).Msgf("There was an error during shutdown.")
				}
				return
			}
		}
	}()
}

func (a *App) handleFramePanic() {
	if r := recover(); r != nil {
		log.Error().Msgf(
			"Frame: %d, Current running system: %s",
			a.CurrentFrame(),
			a.world.scheduleManager.GetCurrentSystem(),
		)
		panic(r)
	}
}

func closeAllChannels(chs []chan struct{}) {
	for _, ch := range chs {
		close(ch)
	}
}

// drainChannelsWaitingForNextFrame continually closes any channels that are added to the
// addChannelWaitingForNextFrame channel. This is used when the app is shut down; it ensures
// any calls to WaitForNextFrame that happen after a shutdown will not block.
func (a *App) drainChannelsWaitingForNextFrame() {
	go func() {
		for ch := range a.addChannelWaitingForNextFrame {
			close(ch)
		}
	}()
}

// WaitForNextFrame blocks until at least one frame has completed. It returns true if it successfully
// waited for a frame. False may be returned if the app was shut down while waiting for the next frame
// to complete.
func (a *App) WaitForNextFrame() (success bool) {
	startFrame := a.CurrentFrame()
	ch := make(chan struct{})
	a.addChannelWaitingForNextFrame <- ch
	<-ch
	return a.CurrentFrame() > startFrame
}

// DebugState implements server.Provider. It dumps every entity matching the
// filter without racing the frame loop.
func (a *App) DebugState(componentFilter filter.ComponentFilter) (types.DebugState, error) {
	a.stateMutex.RLock()
	defer a.stateMutex.RUnlock()
	return a.world.DebugState(componentFilter)
}

// DebugResources implements server.Provider.
func (a *App) DebugResources() ([]types.DebugResourceElement, error) {
	a.stateMutex.RLock()
	defer a.stateMutex.RUnlock()
	return a.world.DebugResources()
}

// GetRegisteredSchedules implements server.Provider.
func (a *App) GetRegisteredSchedules() []types.ScheduleInfo {
	a.stateMutex.RLock()
	defer a.stateMutex.RUnlock()
	return a.world.GetRegisteredSchedules()
}

// ParseFilter implements server.Provider.
func (a *App) ParseFilter(query string) (filter.ComponentFilter, error) {
	a.stateMutex.RLock()
	defer a.stateMutex.RUnlock()
	return a.world.ParseFilter(query)
}
