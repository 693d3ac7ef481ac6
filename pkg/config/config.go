package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Bar       BarConfig       `mapstructure:"bar"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
	Control   ControlConfig   `mapstructure:"control"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Modules   []ModuleConfig  `mapstructure:"modules"`
}

// BarConfig is the renderer launch command. The process is started once
// with piped stdio and never restarted.
type BarConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type SchedulerConfig struct {
	// MaxIdle caps the blocking timeout when no module defines a finite
	// wait time.
	MaxIdle time.Duration `mapstructure:"max_idle"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ControlConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// ModuleConfig describes one bar segment. Type selects the module,
// Interval and Schedule are generic triggers, the rest are type-specific
// options.
type ModuleConfig struct {
	Type     string        `mapstructure:"type"`
	Name     string        `mapstructure:"name"`
	Interval time.Duration `mapstructure:"interval"`
	Schedule string        `mapstructure:"schedule"`

	Value      string   `mapstructure:"value"`      // const
	Label      string   `mapstructure:"label"`      // launcher
	Command    []string `mapstructure:"command"`    // launcher
	Device     string   `mapstructure:"device"`     // volume
	Increments int      `mapstructure:"increments"` // volume
	Monitor    string   `mapstructure:"monitor"`    // bspwm
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("bar.command", "lemonbar")

	viper.SetDefault("scheduler.max_idle", "24h")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("control.enabled", false)
	viper.SetDefault("control.port", 8372)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.channel", "lemonbar:events")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Modules) == 0 {
		return nil, fmt.Errorf("config defines no modules")
	}

	return &cfg, nil
}
