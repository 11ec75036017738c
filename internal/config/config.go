package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fungarium/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const envPrefix = "FUNGARIUM_"

// Драйверы хранилища
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Port        string `json:"port" env:"PORT"`
	StoreDriver string `json:"storeDriver" env:"STORE_DRIVER"` // пусто: postgres, если задан DBURL, иначе memory
	DBURL       string `json:"dbUrl" env:"DB_URL"`
	AutoMigrate bool   `json:"autoMigrate" env:"AUTO_MIGRATE"`
	Table       string `json:"table" env:"TABLE"`

	// Пул соединений Postgres; 0 - значение по умолчанию
	DBMaxOpenConns        int `json:"dbMaxOpenConns" env:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns        int `json:"dbMaxIdleConns" env:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMins int `json:"dbConnMaxLifetimeMins" env:"DB_CONN_MAX_LIFETIME_MINS"`

	SQLitePath    string `json:"sqlitePath" env:"SQLITE_PATH"`
	MongoURI      string `json:"mongoUri" env:"MONGO_URI"`
	MongoDatabase string `json:"mongoDatabase" env:"MONGO_DATABASE"`

	// Справочники и начальные поля
	FieldSeedsDir string `json:"fieldSeedsDir" env:"FIELD_SEEDS_DIR"`
	EnumsDir      string `json:"enumsDir" env:"ENUMS_DIR"`

	LogLevel      string `json:"logLevel" env:"LOG_LEVEL"`
	LogFormat     string `json:"logFormat" env:"LOG_FORMAT"`
	LogFile       string `json:"logFile" env:"LOG_FILE"`
	LogMaxSizeMB  int    `json:"logMaxSizeMb" env:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `json:"logMaxBackups" env:"LOG_MAX_BACKUPS"`
}

func def() Config {
	lc := logger.DefaultConfig()
	return Config{
		Port:        "8080",
		StoreDriver: "",
		DBURL:       "",
		AutoMigrate: false,
		Table:       "documents",

		SQLitePath:    "fungarium.db",
		MongoURI:      "",
		MongoDatabase: "fungarium",

		FieldSeedsDir: "reference/fields",
		EnumsDir:      "reference/enums",

		LogLevel:      lc.Level,
		LogFormat:     lc.Format,
		LogFile:       "",
		LogMaxSizeMB:  lc.MaxSizeMB,
		LogMaxBackups: lc.MaxBackups,
	}
}

func loadJSON(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// environment - переменные из .env (если есть), поверх них реальное окружение.
func environment(dotenv string) (map[string]string, error) {
	out := map[string]string{}
	if dotenv != "" {
		if st, err := os.Stat(dotenv); err == nil && !st.IsDir() {
			m, err := godotenv.Read(dotenv)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", dotenv, err)
			}
			for k, v := range m {
				out[k] = v
			}
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		out[k] = v
	}
	return out, nil
}

// Load собирает конфигурацию слоями: значения по умолчанию, JSON-файл (-config,
// по умолчанию config.json, если существует), .env, переменные FUNGARIUM_*, флаги.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("fungarium", flag.ContinueOnError)
	configPath := fs.String("config", "config.json", "Path to config JSON")
	dotenv := fs.String("env-file", ".env", "Path to .env file")
	port := fs.String("port", "", "HTTP port")
	driver := fs.String("store", "", "Store driver (memory/postgres/sqlite/mongo)")
	db := fs.String("db", "", "Postgres URL")
	auto := fs.String("auto-migrate", "", "Apply DDL on start (true/false)")
	sqlite := fs.String("sqlite", "", "SQLite database file")
	mongoURI := fs.String("mongo", "", "MongoDB connection URI")
	mongoDB := fs.String("mongo-db", "", "MongoDB database name")
	fields := fs.String("fields", "", "Path to field seeds directory")
	enums := fs.String("enums", "", "Path to enums directory")
	level := fs.String("log-level", "", "Log level")
	format := fs.String("log-format", "", "Log format (text/json)")
	logFile := fs.String("log-file", "", "Log file (rotated)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := def()

	// JSON (если файл существует)
	if st, err := os.Stat(*configPath); err == nil && !st.IsDir() {
		if err := loadJSON(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	} else if isSet(fs, "config") {
		return Config{}, fmt.Errorf("config file %s not found", *configPath)
	}

	// ENV overrides
	vars, err := environment(*dotenv)
	if err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix, Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	// Flags overrides
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "store":
			cfg.StoreDriver = *driver
		case "db":
			cfg.DBURL = *db
		case "auto-migrate":
			b, err := strconv.ParseBool(*auto)
			if err != nil {
				flagErr = fmt.Errorf("-auto-migrate: %w", err)
				return
			}
			cfg.AutoMigrate = b
		case "sqlite":
			cfg.SQLitePath = *sqlite
		case "mongo":
			cfg.MongoURI = *mongoURI
		case "mongo-db":
			cfg.MongoDatabase = *mongoDB
		case "fields":
			cfg.FieldSeedsDir = *fields
		case "enums":
			cfg.EnumsDir = *enums
		case "log-level":
			cfg.LogLevel = *level
		case "log-format":
			cfg.LogFormat = *format
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	if flagErr != nil {
		return Config{}, flagErr
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func (c *Config) normalize() {
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.DBURL = strings.TrimSpace(c.DBURL)
	if c.StoreDriver == "" {
		c.StoreDriver = DriverMemory
		if c.DBURL != "" {
			c.StoreDriver = DriverPostgres
		}
	}
}

// Validate проверяет, что выбранному драйверу хватает параметров.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 || c.DBConnMaxLifetimeMins < 0 {
		return errors.New("postgres pool settings must not be negative")
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DBURL == "" {
			return errors.New("postgres store requires a DB URL")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("sqlite store requires a database path")
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("mongo store requires a URI and a database name")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

// Logger - параметры логгера из конфигурации.
func (c Config) Logger() logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	lc.File = c.LogFile
	if c.LogMaxSizeMB > 0 {
		lc.MaxSizeMB = c.LogMaxSizeMB
	}
	if c.LogMaxBackups > 0 {
		lc.MaxBackups = c.LogMaxBackups
	}
	return lc
}
