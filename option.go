package whirlwind

import (
	"time"

	"github.com/rs/zerolog"

	"pkg.whirlwind.dev/whirlwind/server"
)

// WorldOption augments how a World is constructed.
type WorldOption func(*World)

// WithCustomLogger replaces the world's logger. The default is the global
// zerolog logger.
func WithCustomLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = &logger
	}
}

// AppOption represents an option that can be used to augment how the App will
// be run.
type AppOption struct {
	serverOption server.Option
	worldOption  WorldOption
	appOption    func(*App)
}

// WithPort specifies the port for the App's HTTP server. If omitted, the
// environment variable WHIRLWIND_PORT will be used, and if that is unset,
// port 4040 will be used.
func WithPort(port string) AppOption {
	return AppOption{
		serverOption: server.WithPort(port),
	}
}

// WithCORS enables Cross-Origin Resource Sharing on the App's HTTP server.
func WithCORS() AppOption {
	return AppOption{
		serverOption: server.WithCORS(),
	}
}

// WithFrameChannel sets the channel that decides when the update schedule
// runs. If unset, a ticker at the configured frame rate is used. To set some
// other cadence, use: WithFrameChannel(time.Tick(<some-duration>)). Tests can
// pass in a channel controlled by the test for fine-grained control over when
// frames are executed.
func WithFrameChannel(ch <-chan time.Time) AppOption {
	return AppOption{
		appOption: func(a *App) {
			a.frameChannel = ch
		},
	}
}

// WithFrameDoneChannel sets a channel that will be notified each time a frame
// completes. The completed frame number is pushed to the channel. This option
// is useful in tests when assertions need to be performed at the end of a
// frame.
func WithFrameDoneChannel(ch chan<- uint64) AppOption {
	return AppOption{
		appOption: func(a *App) {
			a.frameDoneChannel = ch
		},
	}
}

// WithWorldOptions applies options to the App's underlying World.
func WithWorldOptions(opts ...WorldOption) AppOption {
	return AppOption{
		worldOption: func(w *World) {
			for _, opt := range opts {
				opt(w)
			}
		},
	}
}
