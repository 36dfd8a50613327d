// Package config loads the issuer configuration through viper.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/logging"
)

var logger = logging.MustGetLogger("config")

// Prefix is prepended to environment variable overrides, e.g.
// BOOMERANG_SESSIONTTL.
const Prefix = "BOOMERANG"

type Config struct {
	Listen        string
	Pair          string
	KeyFile       string
	SessionTTL    time.Duration
	SweepInterval time.Duration
	StorePath     string
	LogLevel      string
	MetricsListen string
}

var defaults = Config{
	Listen:        "127.0.0.1:7461",
	Pair:          "t256",
	SessionTTL:    2 * time.Minute,
	SweepInterval: 30 * time.Second,
	LogLevel:      "info",
}

func (c *Config) completeInitialization() {
	defer logger.Debugf("Validated configuration to: %+v", c)

	for {
		switch {
		case c.Listen == "":
			logger.Infof("Listen unset, setting to %s", defaults.Listen)
			c.Listen = defaults.Listen
		case c.Pair == "":
			c.Pair = defaults.Pair
		case c.SessionTTL <= 0:
			logger.Infof("SessionTTL unset, setting to %s", defaults.SessionTTL)
			c.SessionTTL = defaults.SessionTTL
		case c.SweepInterval <= 0:
			logger.Infof("SweepInterval unset, setting to %s", defaults.SweepInterval)
			c.SweepInterval = defaults.SweepInterval
		case c.LogLevel == "":
			c.LogLevel = defaults.LogLevel
		default:
			return
		}
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := curve.PairByName(c.Pair); err != nil {
		return err
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return nil
}

// CurvePair resolves Pair.
func (c *Config) CurvePair() *curve.Pair {
	pr, err := curve.PairByName(c.Pair)
	if err != nil {
		panic(err)
	}
	return pr
}

// Load reads path, if not empty, and applies BOOMERANG_* overrides on top
// of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("Listen", defaults.Listen)
	v.SetDefault("Pair", defaults.Pair)
	v.SetDefault("KeyFile", "")
	v.SetDefault("SessionTTL", defaults.SessionTTL)
	v.SetDefault("SweepInterval", defaults.SweepInterval)
	v.SetDefault("StorePath", "")
	v.SetDefault("LogLevel", defaults.LogLevel)
	v.SetDefault("MetricsListen", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "Error reading %s config %s", Prefix, path)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "Error unmarshaling into structure")
	}
	conf.completeInitialization()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
