package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/redis/go-redis/v9"
	"io"
	"slices"
)

// redisImpl implements db.KVDB on a redis server.
// Every namespace is a redis hash at "<prefix>:<escaped path>", the keys of the
// namespace are the hash fields. All known namespace paths are tracked in the
// set "<prefix>:namespaces".
type redisImpl struct {
	rdb    *redis.Client
	prefix string
}

// DBOptions configures the redis connection
type DBOptions struct {
	Addr     string // host:port of the redis server
	Password string
	DB       int    // redis database number
	Prefix   string // prefix for all keys written by this instance
}

// DefaultOptions returns the default redis options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Addr:   "localhost:6379",
		DB:     0,
		Prefix: "moniker",
	}
}

// NewRedisDB connects to redis and verifies the connection with a PING.
func NewRedisDB(opts *DBOptions) (db.KVDB, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("redis key prefix cannot be empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &redisImpl{
		rdb:    rdb,
		prefix: opts.Prefix,
	}, nil
}

// --------------------------------------------------------------------------
// Key helpers
// --------------------------------------------------------------------------

// hashKey returns the redis key of the hash holding the namespace
func (r *redisImpl) hashKey(path db.Path) string {
	return r.prefix + ":" + path.String()
}

// namespacesKey returns the redis key of the set of known namespaces
func (r *redisImpl) namespacesKey() string {
	return r.prefix + ":namespaces"
}

// ancestry returns the escaped form of the path and all its parents
func ancestry(path db.Path) []interface{} {
	paths := make([]interface{}, len(path))
	for i := range path {
		paths[i] = path[:i+1].String()
	}
	return paths
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/db.go)
// --------------------------------------------------------------------------

func (r *redisImpl) CreateNamespace(path db.Path) error {
	if !path.Valid() {
		return fmt.Errorf("invalid namespace path %q", path.String())
	}
	if err := r.rdb.SAdd(context.Background(), r.namespacesKey(), ancestry(path)...).Err(); err != nil {
		return fmt.Errorf("failed to register namespace %s: %w", path.String(), err)
	}
	return nil
}

func (r *redisImpl) Set(path db.Path, key string, value []byte) error {
	if !path.Valid() {
		return fmt.Errorf("invalid namespace path %q", path.String())
	}

	ctx := context.Background()
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.namespacesKey(), ancestry(path)...)
		pipe.HSet(ctx, r.hashKey(path), key, value)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

func (r *redisImpl) Delete(path db.Path, key string) error {
	if err := r.rdb.HDel(context.Background(), r.hashKey(path), key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}

func (r *redisImpl) Get(path db.Path, key string) ([]byte, bool, error) {
	val, err := r.rdb.HGet(context.Background(), r.hashKey(path), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return val, true, nil
}

func (r *redisImpl) Keys(path db.Path) ([]string, error) {
	keys, err := r.rdb.HKeys(context.Background(), r.hashKey(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys of %s: %w", path.String(), err)
	}
	// hash fields have no order
	slices.Sort(keys)
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (r *redisImpl) Save(_ io.Writer) error {
	return fmt.Errorf("redis does not support Save, use the redis persistence (RDB/AOF) instead")
}

func (r *redisImpl) Load(_ io.Reader) error {
	return fmt.Errorf("redis does not support Load, use the redis persistence (RDB/AOF) instead")
}

func (r *redisImpl) GetInfo() db.DatabaseInfo {
	namespaces, _ := r.rdb.SCard(context.Background(), r.namespacesKey()).Result()

	meta := &struct {
		Addr           string `json:"addr"`
		Prefix         string `json:"prefix"`
		NamespaceCount int64  `json:"namespace_count"`
		Info           string `json:"info"`
	}{
		Addr:           r.rdb.Options().Addr,
		Prefix:         r.prefix,
		NamespaceCount: namespaces,
		Info:           "SizeBytes is not tracked for redis.",
	}

	return db.DatabaseInfo{
		SizeBytes: 0,
		DbType:    db.ImplRedis,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete,
			db.FeatureKeys, db.FeatureNamespaces,
		},
		Metadata: meta,
	}
}

func (r *redisImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureKeys |
		db.FeatureNamespaces
	return supportedFeatures&feature == feature
}

func (r *redisImpl) Close() error {
	return r.rdb.Close()
}
