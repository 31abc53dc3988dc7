// Package redisstore keeps enumble rows in Redis: one hash per row and a
// sorted set of ids per table.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/enumbler/internal/store"
)

// Config holds Redis connection settings
type Config struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Prefix is prepended to every key
	Prefix string
}

// DefaultConfig returns a default Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:   "localhost:6379",
		Prefix: "enumbler:",
	}
}

// Store reads and writes one enumble table in Redis
type Store struct {
	client *redis.Client
	schema store.Schema
	prefix string
}

// Connect opens a client and verifies the connection
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// New creates a store for schema on an existing client
func New(client *redis.Client, prefix string, schema store.Schema) *Store {
	return &Store{client: client, schema: schema, prefix: prefix}
}

// Schema returns the table schema
func (s *Store) Schema() store.Schema {
	return s.schema
}

func (s *Store) rowKey(id int) string {
	return fmt.Sprintf("%s%s:%d", s.prefix, s.schema.Table, id)
}

func (s *Store) idsKey() string {
	return s.prefix + s.schema.Table + ":ids"
}

// FindOrInitialize loads the row hash, or returns a new unsaved record
func (s *Store) FindOrInitialize(ctx context.Context, id int) (*store.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.rowKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s %d: %w", s.schema.Table, id, err)
	}
	if len(fields) == 0 {
		return store.NewRecord(id), nil
	}

	attrs := make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decoding %s %d column %s: %w", s.schema.Table, id, k, err)
		}
		attrs[k] = v
	}
	return store.LoadedRecord(id, attrs), nil
}

// Save validates (optionally) and writes the record's columns. New records
// write every column; persisted records only their dirty ones.
func (s *Store) Save(ctx context.Context, rec *store.Record, validate bool) error {
	if validate {
		if err := s.schema.Validate(rec); err != nil {
			return err
		}
	}

	columns := rec.Dirty()
	if rec.IsNew() {
		columns = rec.Columns()
	}

	pk := s.schema.PK()
	fields := map[string]any{pk: strconv.Itoa(rec.ID)}
	for _, c := range columns {
		if c == pk {
			continue
		}
		encoded, err := json.Marshal(rec.Attributes[c])
		if err != nil {
			return fmt.Errorf("encoding %s %d column %s: %w", s.schema.Table, rec.ID, c, err)
		}
		fields[c] = string(encoded)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.rowKey(rec.ID), fields)
		pipe.ZAdd(ctx, s.idsKey(), redis.Z{Score: float64(rec.ID), Member: strconv.Itoa(rec.ID)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s %d: %w", s.schema.Table, rec.ID, err)
	}

	rec.MarkPersisted()
	return nil
}

// DeleteAll removes the rows with the given ids in one transaction
func (s *Store) DeleteAll(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.rowKey(id)
		members[i] = strconv.Itoa(id)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.idsKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", s.schema.Table, err)
	}
	return nil
}

// ListIDs returns the stored ids in ascending order
func (s *Store) ListIDs(ctx context.Context) ([]int, error) {
	members, err := s.client.ZRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", s.schema.Table, err)
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("listing %s ids: bad member %q: %w", s.schema.Table, m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
