package util

import (
	"fmt"
	"github.com/ValentinKolb/moniker/lib/config"
	"github.com/ValentinKolb/moniker/lib/logging"
	"github.com/ValentinKolb/moniker/lib/moniker"
	"github.com/ValentinKolb/moniker/lib/store/lstore"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	log = logger.GetLogger("cmd")
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStorageFlags adds the flags selecting and configuring the storage backend to a command
func SetupStorageFlags(cmd *cobra.Command) {
	def := config.Default()

	key := "backend"
	cmd.PersistentFlags().String(key, string(def.Backend), WrapString("The storage backend (bolt, maple, redis, dynamodb)"))

	key = "db-path"
	cmd.PersistentFlags().String(key, "", WrapString("(bolt) Directory of the database file. Defaults to $DBPATH or $HOME/moniker"))

	key = "db-name"
	cmd.PersistentFlags().String(key, "", WrapString("(bolt) Name of the database file. Defaults to $DBNAME or names.db"))

	key = "maple-snapshot"
	cmd.PersistentFlags().String(key, "", WrapString("(maple) Snapshot file the in-memory database is loaded from and saved to. Empty means no persistence"))

	key = "redis-addr"
	cmd.PersistentFlags().String(key, def.Redis.Addr, WrapString("(redis) Address of the redis server"))

	key = "redis-password"
	cmd.PersistentFlags().String(key, "", WrapString("(redis) Password of the redis server"))

	key = "redis-db"
	cmd.PersistentFlags().Int(key, def.Redis.DB, WrapString("(redis) Redis database number"))

	key = "redis-prefix"
	cmd.PersistentFlags().String(key, def.Redis.Prefix, WrapString("(redis) Prefix of all redis keys"))

	key = "dynamodb-table"
	cmd.PersistentFlags().String(key, def.Dynamo.Table, WrapString("(dynamodb) Name of the table, it needs a string partition key PK and a string sort key SK"))

	key = "dynamodb-endpoint"
	cmd.PersistentFlags().String(key, "", WrapString("(dynamodb) Custom endpoint, e.g. http://localhost:8000 for DynamoDB Local"))

	key = "aws-region"
	cmd.PersistentFlags().String(key, def.Dynamo.Region, WrapString("(dynamodb) AWS region"))

	key = "aws-access-key"
	cmd.PersistentFlags().String(key, "", WrapString("(dynamodb) Static access key. Empty means the default AWS credential chain is used"))

	key = "aws-secret-key"
	cmd.PersistentFlags().String(key, "", WrapString("(dynamodb) Static secret key"))

	key = "log-level"
	cmd.PersistentFlags().String(key, def.LogLevel, WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "output"
	cmd.PersistentFlags().StringP(key, "o", def.Output, WrapString("Output format (text, json, yaml)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("moniker")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetConfig reads the configuration from viper and validates it
func GetConfig() (*config.Config, error) {
	conf := &config.Config{
		Backend:       config.Backend(viper.GetString("backend")),
		DBPath:        viper.GetString("db-path"),
		DBName:        viper.GetString("db-name"),
		MapleSnapshot: viper.GetString("maple-snapshot"),
		Redis: config.RedisConfig{
			Addr:     viper.GetString("redis-addr"),
			Password: viper.GetString("redis-password"),
			DB:       viper.GetInt("redis-db"),
			Prefix:   viper.GetString("redis-prefix"),
		},
		Dynamo: config.DynamoConfig{
			Table:     viper.GetString("dynamodb-table"),
			Endpoint:  viper.GetString("dynamodb-endpoint"),
			Region:    viper.GetString("aws-region"),
			AccessKey: viper.GetString("aws-access-key"),
			SecretKey: viper.GetString("aws-secret-key"),
		},
		LogLevel: viper.GetString("log-level"),
		Output:   viper.GetString("output"),
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Setup binds the flags of cmd, reads the configuration and initializes logging.
// It is meant to be used as PersistentPreRunE.
func Setup(cmd *cobra.Command, _ []string) error {
	if err := BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := GetConfig()
	if err != nil {
		return err
	}

	if err := logging.Init(conf.LogLevel); err != nil {
		return err
	}

	current = conf
	return nil
}

var current *config.Config

// Config returns the configuration read by Setup
func Config() *config.Config {
	if current == nil {
		return config.Default()
	}
	return current
}

// OpenDB opens the configured store and bootstraps the moniker database on it
func OpenDB() (*moniker.DB, error) {
	log.Debugf("opening %s backend", Config().Backend)
	s, err := lstore.NewLocalStore(Config().NewDBFactory())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	database, err := moniker.Open(s)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}
	return database, nil
}
