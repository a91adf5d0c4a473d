package whirlwind

import (
	"testing"

	"pkg.whirlwind.dev/whirlwind/assert"
)

func TestAppConfig_Defaults(t *testing.T) {
	cfg, err := loadAppConfig()
	assert.NilError(t, err)
	assert.Equal(t, defaultConfig, *cfg)
}

func TestAppConfig_LoadFromEnv(t *testing.T) {
	wantCfg := AppConfig{
		Namespace:        "baz",
		LogLevel:         "debug",
		LogPretty:        true,
		Port:             "5050",
		FrameRate:        30,
		UpdateSchedule:   "simulate",
		SnapshotInterval: 120,
		RedisAddress:     "localhost:6379",
		RedisPassword:    "bar",
		StatsdAddress:    "localhost:8125",
	}
	t.Setenv("WHIRLWIND_NAMESPACE", wantCfg.Namespace)
	t.Setenv("WHIRLWIND_LOG_LEVEL", wantCfg.LogLevel)
	t.Setenv("WHIRLWIND_LOG_PRETTY", "true")
	t.Setenv("WHIRLWIND_PORT", wantCfg.Port)
	t.Setenv("WHIRLWIND_FRAME_RATE", "30")
	t.Setenv("WHIRLWIND_UPDATE_SCHEDULE", wantCfg.UpdateSchedule)
	t.Setenv("WHIRLWIND_SNAPSHOT_INTERVAL", "120")
	t.Setenv("REDIS_ADDRESS", wantCfg.RedisAddress)
	t.Setenv("REDIS_PASSWORD", wantCfg.RedisPassword)
	t.Setenv("STATSD_ADDRESS", wantCfg.StatsdAddress)

	gotCfg, err := loadAppConfig()
	assert.NilError(t, err)

	assert.Equal(t, wantCfg, *gotCfg)
}

func TestAppConfig_Validate(t *testing.T) {
	valid := defaultConfig

	testCases := []struct {
		name    string
		mutate  func(cfg *AppConfig)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*AppConfig) {},
			wantErr: false,
		},
		{
			name:    "namespace with invalid characters",
			mutate:  func(cfg *AppConfig) { cfg.Namespace = "not a namespace" },
			wantErr: true,
		},
		{
			name:    "empty namespace",
			mutate:  func(cfg *AppConfig) { cfg.Namespace = "" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *AppConfig) { cfg.LogLevel = "shout" },
			wantErr: true,
		},
		{
			name:    "empty port",
			mutate:  func(cfg *AppConfig) { cfg.Port = "" },
			wantErr: true,
		},
		{
			name:    "zero frame rate",
			mutate:  func(cfg *AppConfig) { cfg.FrameRate = 0 },
			wantErr: true,
		},
		{
			name:    "negative frame rate",
			mutate:  func(cfg *AppConfig) { cfg.FrameRate = -1 },
			wantErr: true,
		},
		{
			name:    "empty update schedule",
			mutate:  func(cfg *AppConfig) { cfg.UpdateSchedule = "" },
			wantErr: true,
		},
		{
			name:    "zero snapshot interval",
			mutate:  func(cfg *AppConfig) { cfg.SnapshotInterval = 0 },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.IsError(t, err)
			} else {
				assert.NilError(t, err)
			}
		})
	}
}
