package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps each record as a hash at doc:<collection>:<id>.
type RedisStore struct {
	client *redis.Client
	logger logrus.FieldLogger
}

func OpenRedis(ctx context.Context, addr string, logger logrus.FieldLogger) (*RedisStore, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStore(ctx, redis.NewClient(opt), logger)
}

// NewRedisStore pings client before handing it out.
func NewRedisStore(ctx context.Context, client *redis.Client, logger logrus.FieldLogger) (*RedisStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client, logger: logger}, nil
}

func documentPrefix(collection string) string {
	return "doc:" + collection + ":"
}

func documentKey(collection string, id int64) string {
	return documentPrefix(collection) + strconv.FormatInt(id, 10)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// isDocumentKey rejects keys of other collections that share the prefix,
// doc:a:b:1 when listing collection a.
func isDocumentKey(key, prefix string) bool {
	id, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(id, 10, 64)
	return err == nil
}

func (s *RedisStore) Save(ctx context.Context, collection string, record Record) error {
	id, err := s.client.Incr(ctx, "seq:"+collection).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate id in %s: %w", collection, err)
	}
	values := make(map[string]interface{}, len(record))
	for k, v := range record {
		if str, ok := v.(string); ok {
			values[k] = str
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to serialize field %s: %w", k, err)
		}
		values[k] = string(encoded)
	}
	if len(values) == 0 {
		return nil
	}
	return s.client.HSet(ctx, documentKey(collection, id), values).Err()
}

// FindRecordsWithField scans the collection's keys. Values come back as
// strings, as redis stores them.
func (s *RedisStore) FindRecordsWithField(ctx context.Context, collection, field string) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	prefix := documentPrefix(collection)
	iter := s.client.Scan(ctx, 0, globEscaper.Replace(prefix)+"*", 500).Iterator()
	for iter.Next(ctx) {
		if !isDocumentKey(iter.Val(), prefix) {
			continue
		}
		values, err := s.client.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", iter.Val(), err)
		}
		if _, ok := values[field]; !ok {
			continue
		}
		record := make(map[string]interface{}, len(values))
		for k, v := range values {
			record[k] = v
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", collection, err)
	}
	return records, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
