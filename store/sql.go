package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	sqliteSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		md5 TEXT,
		body TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
	CREATE INDEX IF NOT EXISTS idx_documents_md5 ON documents(md5);
	`
	mysqlSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		collection VARCHAR(191) NOT NULL,
		md5 CHAR(32),
		body LONGTEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_documents_collection (collection),
		INDEX idx_documents_md5 (md5)
	)`
	insertDocument     = "INSERT INTO documents (collection, md5, body, created_at) VALUES (?, ?, ?, ?)"
	selectDocuments    = "SELECT body FROM documents WHERE collection = ? ORDER BY id"
	selectMD5Documents = "SELECT body FROM documents WHERE collection = ? AND md5 IS NOT NULL AND md5 <> '' ORDER BY id"
)

// SQLStore keeps records as JSON documents in a single table, one row per
// record, tagged with its collection.
type SQLStore struct {
	db     *sql.DB
	writer *BatchWriter
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logrus.FieldLogger
}

// OpenSQLite opens or creates zijiyou.db under dir.
func OpenSQLite(dir string, config Config, logger logrus.FieldLogger) (*SQLStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open(DriverSQLite, filepath.Join(dir, "zijiyou.db")+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite has a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	return newSQLStore(db, sqliteSchema, config, logger)
}

func OpenMySQL(dsn string, config Config, logger logrus.FieldLogger) (*SQLStore, error) {
	db, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	return newSQLStore(db, mysqlSchema, config, logger)
}

func newSQLStore(db *sql.DB, schema string, config Config, logger logrus.FieldLogger) (*SQLStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &SQLStore{
		db:     db,
		writer: NewBatchWriter(db, insertDocument, config.BatchSize, config.FlushInterval, logger),
		cancel: cancel,
		logger: logger,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writer.Run(ctx)
	}()
	return s, nil
}

func (s *SQLStore) Save(ctx context.Context, collection string, record Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}
	md5, _ := record["md5"].(string)
	return s.writer.Write(ctx, collection, md5, string(body), time.Now())
}

// FindRecordsWithField flushes pending writes first so a process reads what
// it saved.
func (s *SQLStore) FindRecordsWithField(ctx context.Context, collection, field string) ([]map[string]interface{}, error) {
	if err := s.writer.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush pending records: %w", err)
	}
	query := selectDocuments
	if field == "md5" {
		// only rows with an indexed md5 column
		query = selectMD5Documents
	}
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []map[string]interface{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := map[string]interface{}{}
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			s.logger.Warnf("skip undecodable record in %s: %v", collection, err)
			continue
		}
		if _, ok := record[field]; ok {
			records = append(records, record)
		}
	}
	return records, rows.Err()
}

func (s *SQLStore) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.db.Close()
}
