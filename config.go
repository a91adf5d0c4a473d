package whirlwind

import (
	"os"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.whirlwind.dev/whirlwind/types"
)

const (
	// DefaultLogLevel is the zerolog level used when WHIRLWIND_LOG_LEVEL is
	// unset.
	DefaultLogLevel = "info"

	// DefaultFrameRate is the number of frames the app targets per second
	// when no frame channel is supplied.
	DefaultFrameRate = 60
)

var defaultConfig = AppConfig{
	Namespace:        "whirlwind-world",
	LogLevel:         DefaultLogLevel,
	LogPretty:        false,
	Port:             "4040",
	FrameRate:        DefaultFrameRate,
	UpdateSchedule:   "update",
	SnapshotInterval: 60,
	RedisAddress:     "",
	RedisPassword:    "",
	StatsdAddress:    "",
}

// AppConfig holds an App's runtime configuration. Every field can be set via
// the environment variable named in its tag; unset variables keep the
// defaults from defaultConfig.
type AppConfig struct {
	// Namespace is a unique identifier for this world. It prefixes snapshot
	// keys so multiple worlds can share one redis instance.
	Namespace string `config:"WHIRLWIND_NAMESPACE"`
	// LogLevel is the zerolog level the app runs at.
	LogLevel string `config:"WHIRLWIND_LOG_LEVEL"`
	// LogPretty enables human-readable console output instead of JSON.
	LogPretty bool `config:"WHIRLWIND_LOG_PRETTY"`
	// Port is the port the inspection HTTP server listens on.
	Port string `config:"WHIRLWIND_PORT"`
	// FrameRate is the number of frames per second the app's internal ticker
	// targets. Ignored when a frame channel is supplied via WithFrameChannel.
	FrameRate int `config:"WHIRLWIND_FRAME_RATE"`
	// UpdateSchedule is the schedule the frame loop runs every frame.
	UpdateSchedule string `config:"WHIRLWIND_UPDATE_SCHEDULE"`
	// SnapshotInterval is the number of frames between snapshots.
	SnapshotInterval int `config:"WHIRLWIND_SNAPSHOT_INTERVAL"`
	// RedisAddress is the address snapshots are saved to. Snapshotting is
	// disabled when empty.
	RedisAddress string `config:"REDIS_ADDRESS"`
	// RedisPassword is the password of the redis instance at RedisAddress.
	RedisPassword string `config:"REDIS_PASSWORD"`
	// StatsdAddress is the address frame timing metrics are emitted to.
	// Metrics are disabled when empty.
	StatsdAddress string `config:"STATSD_ADDRESS"`
}

func loadAppConfig() (*AppConfig, error) {
	cfg := defaultConfig
	if err := config.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load config from environment variables")
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid app config")
	}
	return &cfg, nil
}

// Validate validates the app config.
func (cfg *AppConfig) Validate() error {
	if err := types.Namespace(cfg.Namespace).Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	if cfg.Port == "" {
		return eris.New("port cannot be empty")
	}
	if cfg.FrameRate <= 0 {
		return eris.Errorf("frame rate must be positive, got %d", cfg.FrameRate)
	}
	if cfg.UpdateSchedule == "" {
		return eris.New("update schedule cannot be empty")
	}
	if cfg.SnapshotInterval <= 0 {
		return eris.Errorf("snapshot interval must be positive, got %d", cfg.SnapshotInterval)
	}
	return nil
}

// setupLogger applies the config's log level and output format to the global
// logger, then stamps it with the world's namespace.
func (cfg *AppConfig) setupLogger() {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		// Validate already rejected unparseable levels.
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log.Logger = log.With().Str("namespace", cfg.Namespace).Logger()
}
