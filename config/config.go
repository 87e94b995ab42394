// Package config loads zijiyou settings from a YAML file, a .env file and
// ZIJIYOU_* environment variables, in increasing priority.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/siskinc/zijiyou/dedup"
	"github.com/siskinc/zijiyou/store"
)

const EnvPrefix = "ZIJIYOU"

type Settings struct {
	Log    LogConfig    `mapstructure:"log"`
	Dedup  DedupConfig  `mapstructure:"dedup"`
	Store  store.Config `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type DedupConfig struct {
	TopN       int    `mapstructure:"top_n"`
	Delimiters string `mapstructure:"delimiters"`
	Field      string `mapstructure:"field"`
	// Seeds win over Collections when both are set.
	Seeds       []string `mapstructure:"seeds"`
	Collections []string `mapstructure:"collections"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("dedup.top_n", dedup.DefaultTopN)
	v.SetDefault("dedup.delimiters", dedup.DefaultDelimiters)
	v.SetDefault("dedup.field", dedup.DefaultField)
	v.SetDefault("dedup.seeds", []string{})
	v.SetDefault("dedup.collections", []string{})
	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.dsn", store.DefaultDataDir())
	v.SetDefault("store.batch_size", 100)
	v.SetDefault("store.flush_interval", 3*time.Second)
	v.SetDefault("server.addr", ":8080")
}

// Load reads path, or zijiyou.yaml from the working directory when path is
// empty. A missing default file is not an error.
func Load(path string) (Settings, error) {
	var settings Settings
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return settings, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("zijiyou")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return settings, err
		}
	}
	err := v.Unmarshal(&settings)
	return settings, err
}

// FilterOptions maps the dedup section onto dedup.Options.
func (s Settings) FilterOptions(source dedup.Source, logger logrus.FieldLogger) dedup.Options {
	return dedup.Options{
		TopN:        s.Dedup.TopN,
		Delimiters:  s.Dedup.Delimiters,
		Seeds:       s.Dedup.Seeds,
		Collections: s.Dedup.Collections,
		Field:       s.Dedup.Field,
		Source:      source,
		Logger:      logger,
	}
}

// NewLogger builds the logrus logger described by the log section.
func (c LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, defaulting to info", c.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
