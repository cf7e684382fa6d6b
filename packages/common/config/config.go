package config

import (
	"io"
	"os"
	"time"

	"entiq/packages/common/logger"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var configLogger = logger.NewSource("CONFIG", logger.Default)

// Wrapper for time.ParseDuration. Panics on error.
func parseDuration(raw string) time.Duration {
	v, e := time.ParseDuration(raw)

	if e != nil {
		panic(e)
	}

	return v
}

type dbConfig struct {
	// document | search | relational
	Driver string `yaml:"db-driver" validate:"required,oneof=document search relational"`

	RawQueryTimeout string `yaml:"db-query-timeout" validate:"required"`

	DefaultPageSize int `yaml:"db-default-page-size" validate:"required,min=1"`
	MaxPageSize     int `yaml:"db-max-page-size" validate:"required,min=1"`

	// Applies to the search driver only: writes block until the index
	// refresh completes, uniqueness probes refresh before reading.
	StrictConsistency bool `yaml:"db-strict-consistency" validate:"exists"`

	// The engine compares strings case-insensitively. A backend with a
	// case-sensitive collation may flip this for ORDER BY tie-breaking.
	CaseSensitiveCollation bool `yaml:"db-case-sensitive-collation" validate:"exists"`
}

func (c *dbConfig) QueryTimeout() time.Duration {
	return parseDuration(c.RawQueryTimeout)
}

type httpServerConfig struct {
	Port           string   `yaml:"http-port" validate:"required"`
	AllowedOrigins []string `yaml:"http-allowed-origins" validate:"required,min=1"`
}

type debugConfig struct {
	Enabled bool `yaml:"debug-mode" validate:"exists"`
}

type appConfig struct {
	ShowLogs         bool   `yaml:"show-logs" validate:"exists"`
	TraceLogsEnabled bool   `yaml:"trace-logs" validate:"exists"`
	ServiceID        string `yaml:"service-id" validate:"required"`
	SchemaPath       string `yaml:"schema-path" validate:"required"`
}

type configs struct {
	dbConfig         `yaml:",inline"`
	httpServerConfig `yaml:",inline"`
	debugConfig      `yaml:",inline"`
	appConfig        `yaml:",inline"`
}

var DB *dbConfig
var HTTP *httpServerConfig
var Debug *debugConfig
var App *appConfig

var isInit bool = false

func loadConfig(path string, dest *configs) {
	configLogger.Info("Reading config file...", nil)

	file, err := os.Open(path)

	if err != nil {
		configLogger.Fatal("Failed to open config file", err.Error(), nil)
	}

	rawConfig, err := io.ReadAll(file)

	if err != nil {
		configLogger.Fatal("Failed to read config file", err.Error(), nil)
	}

	configLogger.Info("Reading config file: OK", nil)

	configLogger.Info("Parsing config file...", nil)

	if err := yaml.Unmarshal(rawConfig, dest); err != nil {
		configLogger.Fatal("Failed to parse config file", err.Error(), nil)
	}

	configLogger.Info("Parsing config file: OK", nil)

	configLogger.Info("Validating config...", nil)

	validate := validator.New()

	validate.RegisterValidation("exists", func(fl validator.FieldLevel) bool {
		return true // Always pass (just ensure that the field exists)
	})

	if err := validate.Struct(dest); err != nil {
		configLogger.Fatal("Failed to validate config", err.Error(), nil)
		os.Exit(1)
	}

	configLogger.Info("Validating config: OK", nil)
}

const defaultConfigPath = "entiq.config.yaml"

func Init(path string) {
	if isInit {
		configLogger.Fatal("Failed to initialize config", "Config already initialized", nil)
	}

	if path == "" {
		path = defaultConfigPath
	}

	configLogger.Info("Initializing...", nil)

	configs := new(configs)

	loadConfig(path, configs)
	loadSecrets()

	DB = &configs.dbConfig
	HTTP = &configs.httpServerConfig
	Debug = &configs.debugConfig
	App = &configs.appConfig

	configLogger.Info("Initializing: OK", nil)

	isInit = true
}
