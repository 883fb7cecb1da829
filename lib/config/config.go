package config

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/moniker/lib/db"
	"github.com/ValentinKolb/moniker/lib/db/engines/bolt"
	"github.com/ValentinKolb/moniker/lib/db/engines/dynamo"
	"github.com/ValentinKolb/moniker/lib/db/engines/maple"
	"github.com/ValentinKolb/moniker/lib/db/engines/redis"
	"github.com/ValentinKolb/moniker/lib/logging"
	"github.com/ValentinKolb/moniker/lib/paths"
	"github.com/ValentinKolb/moniker/lib/store"
	"strings"
)

// --------------------------------------------------------------------------
// Configuration structs
// --------------------------------------------------------------------------

type Backend string

const (
	BackendBolt   Backend = "bolt"
	BackendMaple  Backend = "maple"
	BackendRedis  Backend = "redis"
	BackendDynamo Backend = "dynamodb"
)

// Backends lists all supported backends
var Backends = []Backend{BackendBolt, BackendMaple, BackendRedis, BackendDynamo}

// RedisConfig holds the settings of the redis backend
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// DynamoConfig holds the settings of the dynamodb backend
type DynamoConfig struct {
	Table     string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds all configuration parameters of the moniker database
type Config struct {
	Backend Backend

	// local storage (bolt)
	DBPath string
	DBName string

	// in-memory storage (maple), empty means no persistence
	MapleSnapshot string

	Redis  RedisConfig
	Dynamo DynamoConfig

	// Logging configuration
	LogLevel string

	// Output format of the cli (text, json, yaml)
	Output string
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Backend: BackendBolt,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "moniker",
		},
		Dynamo: DynamoConfig{
			Table:  "moniker",
			Region: "us-east-1",
		},
		LogLevel: "warn",
		Output:   "text",
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	var errs []string

	switch c.Backend {
	case BackendBolt, BackendMaple:
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "redis-addr is required for the redis backend")
		}
		if c.Redis.Prefix == "" {
			errs = append(errs, "redis-prefix cannot be empty")
		}
	case BackendDynamo:
		if c.Dynamo.Table == "" {
			errs = append(errs, "dynamodb-table is required for the dynamodb backend")
		}
		if c.Dynamo.Region == "" {
			errs = append(errs, "aws-region is required for the dynamodb backend")
		}
		if (c.Dynamo.AccessKey == "") != (c.Dynamo.SecretKey == "") {
			errs = append(errs, "aws-access-key and aws-secret-key must be set together")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid backend %q, must be one of %s", c.Backend, backendList()))
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}

	switch c.Output {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Sprintf("invalid output %q, must be one of text, json, yaml", c.Output))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NewDBFactory returns a factory for the configured backend.
// For bolt the database directory is resolved and created when the factory runs.
func (c *Config) NewDBFactory() store.DBFactory {
	return func() (db.KVDB, error) {
		switch c.Backend {
		case BackendBolt:
			resolver := paths.NewResolver()
			loc, err := resolver.Resolve(c.DBPath, c.DBName)
			if err != nil {
				return nil, err
			}
			if err := resolver.EnsureExists(loc.Dir); err != nil {
				return nil, err
			}
			return bolt.NewBoltDB(loc.FullPath(), bolt.DefaultOptions())
		case BackendMaple:
			if c.MapleSnapshot == "" {
				return maple.NewMapleDB(maple.DefaultOptions()), nil
			}
			return maple.OpenSnapshotFile(c.MapleSnapshot, maple.DefaultOptions())
		case BackendRedis:
			return redis.NewRedisDB(&redis.DBOptions{
				Addr:     c.Redis.Addr,
				Password: c.Redis.Password,
				DB:       c.Redis.DB,
				Prefix:   c.Redis.Prefix,
			})
		case BackendDynamo:
			return dynamo.NewDynamoDB(context.Background(), &dynamo.DBOptions{
				Table:     c.Dynamo.Table,
				Region:    c.Dynamo.Region,
				Endpoint:  c.Dynamo.Endpoint,
				AccessKey: c.Dynamo.AccessKey,
				SecretKey: c.Dynamo.SecretKey,
			})
		default:
			return nil, fmt.Errorf("invalid backend %q, must be one of %s", c.Backend, backendList())
		}
	}
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Storage")
	addField("Backend", string(c.Backend))

	switch c.Backend {
	case BackendBolt:
		loc, err := paths.Resolve(c.DBPath, c.DBName)
		if err != nil {
			addField("Database File", "unresolved: "+err.Error())
		} else {
			addField("Database File", loc.FullPath())
		}
	case BackendMaple:
		if c.MapleSnapshot == "" {
			addField("Snapshot", "none (in-memory only)")
		} else {
			addField("Snapshot", c.MapleSnapshot)
		}
	case BackendRedis:
		addField("Address", c.Redis.Addr)
		addField("Password", mask(c.Redis.Password))
		addField("Database", fmt.Sprintf("%d", c.Redis.DB))
		addField("Key Prefix", c.Redis.Prefix)
	case BackendDynamo:
		addField("Table", c.Dynamo.Table)
		addField("Region", c.Dynamo.Region)
		if c.Dynamo.Endpoint != "" {
			addField("Endpoint", c.Dynamo.Endpoint)
		}
		addField("Access Key", mask(c.Dynamo.AccessKey))
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Output")
	addField("Format", c.Output)

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func backendList() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// mask hides secrets in String
func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "********"
}
