package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BatchWriter buffers rows and writes them in one transaction once the
// batch is full or the ticker fires.
type BatchWriter struct {
	db        *sql.DB
	sqlFormat string
	batchSize int
	interval  time.Duration
	cache     [][]interface{}
	locker    sync.Mutex
	logger    logrus.FieldLogger
}

func NewBatchWriter(db *sql.DB, sqlFormat string, batchSize int, interval time.Duration, logger logrus.FieldLogger) *BatchWriter {
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &BatchWriter{
		db:        db,
		sqlFormat: sqlFormat,
		batchSize: batchSize,
		interval:  interval,
		cache:     make([][]interface{}, 0, batchSize),
		logger:    logger,
	}
}

// Write queues a row, flushing when the batch is full.
func (w *BatchWriter) Write(ctx context.Context, row ...interface{}) error {
	w.locker.Lock()
	defer w.locker.Unlock()
	w.cache = append(w.cache, row)
	if len(w.cache) < w.batchSize {
		return nil
	}
	return w.flush(ctx)
}

// Run flushes on every tick until ctx is done, then flushes what is left.
func (w *BatchWriter) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				w.logger.Errorf("batch writer flush is err: %v", err)
			}
		case <-ctx.Done():
			if err := w.Flush(context.Background()); err != nil {
				w.logger.Errorf("batch writer final flush is err: %v", err)
			}
			return
		}
	}
}

func (w *BatchWriter) Pending() int {
	w.locker.Lock()
	defer w.locker.Unlock()
	return len(w.cache)
}

func (w *BatchWriter) Flush(ctx context.Context) error {
	w.locker.Lock()
	defer w.locker.Unlock()
	return w.flush(ctx)
}

func (w *BatchWriter) flush(ctx context.Context) error {
	if len(w.cache) == 0 {
		return nil
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if nil != err {
		return err
	}
	written := 0
	for _, row := range w.cache {
		if _, err := tx.ExecContext(ctx, w.sqlFormat, row...); nil != err {
			w.logger.Errorf("write to db is err: %v, sqlFormat: %s, row: %+v", err, w.sqlFormat, row)
			continue
		}
		written++
	}
	if err := tx.Commit(); nil != err {
		return err
	}
	w.logger.Debugf("batch writer flushed %d/%d rows", written, len(w.cache))
	w.cache = w.cache[:0]
	return nil
}
