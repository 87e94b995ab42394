// Package store is the document store scraped items end up in. The dedup
// filter also reads it once at startup to learn fingerprints seen by earlier
// crawls.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Record is one stored document, keyed by field name.
type Record map[string]interface{}

type Source interface {
	// FindRecordsWithField returns every record of collection that has field.
	FindRecordsWithField(ctx context.Context, collection, field string) ([]map[string]interface{}, error)
}

type Sink interface {
	Save(ctx context.Context, collection string, record Record) error
	Close() error
}

type Store interface {
	Source
	Sink
}

type Config struct {
	Driver string `mapstructure:"driver"`
	// DSN is a directory for sqlite, a go-sql-driver DSN for mysql and a
	// redis:// URL for redis.
	DSN           string        `mapstructure:"dsn"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// DefaultDataDir is where the sqlite store lives when no DSN is configured.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "zijiyou")
}

func Open(ctx context.Context, config Config, logger logrus.FieldLogger) (Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	var (
		s   Store
		err error
	)
	switch config.Driver {
	case DriverSQLite, "":
		dir := config.DSN
		if dir == "" {
			dir = DefaultDataDir()
		}
		s, err = OpenSQLite(dir, config, logger)
	case DriverMySQL:
		s, err = OpenMySQL(config.DSN, config, logger)
	case DriverRedis:
		s, err = OpenRedis(ctx, config.DSN, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, config.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
