// Package config loads the example server settings from LIMITER_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/manenim/window-limiter/pkg/limiter"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Redis     RedisSettings     `mapstructure:"redis"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
}

type AppSettings struct {
	Env  string `mapstructure:"env"`
	Addr string `mapstructure:"addr"`
}

type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitSettings configures the limiter and the windows applied to /ping.
// Windows is a list of "max/seconds" pairs, e.g. "5/1,100/60".
type RateLimitSettings struct {
	Prefix  string        `mapstructure:"prefix"`
	Timeout time.Duration `mapstructure:"timeout"`
	Windows []string      `mapstructure:"windows"`
}

// Constraints parses Windows.
func (s RateLimitSettings) Constraints() ([]limiter.Constraint, error) {
	if len(s.Windows) == 0 {
		return nil, errors.New("rate_limit.windows must not be empty")
	}

	out := make([]limiter.Constraint, 0, len(s.Windows))
	for _, w := range s.Windows {
		max, seconds, err := parseWindow(w)
		if err != nil {
			return nil, fmt.Errorf("rate_limit.windows: parse %q: %w", w, err)
		}
		c, err := limiter.NewConstraint(max, seconds)
		if err != nil {
			return nil, fmt.Errorf("rate_limit.windows: %q: %w", w, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// parseWindow reads a "max/seconds" pair. Both halves must be whole integers.
func parseWindow(w string) (max, seconds int, err error) {
	maxStr, secStr, ok := strings.Cut(strings.TrimSpace(w), "/")
	if !ok {
		return 0, 0, errors.New(`want "max/seconds"`)
	}
	if max, err = strconv.Atoi(strings.TrimSpace(maxStr)); err != nil {
		return 0, 0, fmt.Errorf("max: %w", err)
	}
	if seconds, err = strconv.Atoi(strings.TrimSpace(secStr)); err != nil {
		return 0, 0, fmt.Errorf("seconds: %w", err)
	}
	return max, seconds, nil
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("LIMITER")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.env",
		"app.addr",
		"redis.addr",
		"redis.password",
		"redis.db",
		"rate_limit.prefix",
		"rate_limit.timeout",
		"rate_limit.windows",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.addr", ":8080")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.prefix", limiter.DefaultPrefix)
	v.SetDefault("rate_limit.timeout", "100ms")
	v.SetDefault("rate_limit.windows", []string{"5/1", "100/60"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
