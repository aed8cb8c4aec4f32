package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig возвращается при некорректной конфигурации.
var ErrInvalidConfig = errors.New("invalid config")

// Хранилища результатов
const (
	ResultsAPI      = "api"
	ResultsMemory   = "memory"
	ResultsPostgres = "postgres"
)

// Префикс переменных окружения
const envPrefix = "COURSEDECK_"

// Config — настройки приложения. Источники по возрастанию приоритета:
// значения по умолчанию, .env, YAML-файл, переменные окружения, флаги.
type Config struct {
	API struct {
		URL             string        `yaml:"url"`
		Timeout         time.Duration `yaml:"timeout"`
		DownloadTimeout time.Duration `yaml:"download_timeout"`
	} `yaml:"api"`
	Results struct {
		Backend string `yaml:"backend"`
		DSN     string `yaml:"dsn"`
	} `yaml:"results"`
	Email    string `yaml:"email"`
	Password string `yaml:"-"`
	CourseID int    `yaml:"course"`
	Report   string `yaml:"report"`
	File     string `yaml:"file"`
	QuizFile string `yaml:"quiz_file"`
	Debug    bool   `yaml:"debug"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	cfg := &Config{}
	cfg.API.URL = "http://localhost:8000"
	cfg.API.Timeout = 5 * time.Second
	cfg.API.DownloadTimeout = 30 * time.Second
	cfg.Results.Backend = ResultsAPI

	return cfg
}

// Load собирает конфигурацию из всех источников. args — аргументы без имени программы.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("coursedeck", pflag.ContinueOnError)

	flagConfig := fs.String("config", "", "path to YAML config file")
	flagEnv := fs.String("env", ".env", "path to .env file")
	flagAPI := fs.String("api", "", "backend base URL")
	flagCourse := fs.Int("course", 0, "course id to open")
	flagEmail := fs.String("email", "", "account email")
	flagResults := fs.String("results", "", "where to save results: api, memory or postgres")
	flagDSN := fs.String("dsn", "", "postgres DSN for --results=postgres")
	flagReport := fs.String("report", "", "write per-question CSV report to this path")
	flagFile := fs.String("file", "", "local PDF to show instead of the course document")
	flagQuiz := fs.String("quiz", "", "local quiz JSON, enables offline mode")
	flagDebug := fs.Bool("debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadDotEnv(*flagEnv, fs.Changed("env")); err != nil {
		return nil, err
	}

	cfg := Default()

	if *flagConfig != "" {
		if err := cfg.loadYAML(*flagConfig); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if fs.Changed("api") {
		cfg.API.URL = *flagAPI
	}
	if fs.Changed("course") {
		cfg.CourseID = *flagCourse
	}
	if fs.Changed("email") {
		cfg.Email = *flagEmail
	}
	if fs.Changed("results") {
		cfg.Results.Backend = *flagResults
	}
	if fs.Changed("dsn") {
		cfg.Results.DSN = *flagDSN
	}
	if fs.Changed("report") {
		cfg.Report = *flagReport
	}
	if fs.Changed("file") {
		cfg.File = *flagFile
	}
	if fs.Changed("quiz") {
		cfg.QuizFile = *flagQuiz
	}
	if fs.Changed("debug") {
		cfg.Debug = *flagDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Offline сообщает, работает ли приложение без бэкенда.
func (c *Config) Offline() bool {
	return c.QuizFile != ""
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	switch c.Results.Backend {
	case ResultsAPI, ResultsMemory:
	case ResultsPostgres:
		if c.Results.DSN == "" {
			return fmt.Errorf("%w: postgres results need a dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown results backend %q", ErrInvalidConfig, c.Results.Backend)
	}

	if c.Offline() {
		if c.File == "" {
			return fmt.Errorf("%w: offline mode needs a local PDF (--file)", ErrInvalidConfig)
		}

		if c.Results.Backend == ResultsAPI {
			return fmt.Errorf("%w: offline mode can not save results to the api", ErrInvalidConfig)
		}

		return nil
	}

	if c.API.URL == "" {
		return fmt.Errorf("%w: missing api url", ErrInvalidConfig)
	}

	if c.API.Timeout <= 0 || c.API.DownloadTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}

	return nil
}

func loadDotEnv(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}

		return fmt.Errorf("can not open %s, %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("can not load %s, %w", path, err)
	}

	return nil
}

func (c *Config) loadYAML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("can not open config, %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	if err = yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("can not decode config %s, %w", path, err)
	}

	return nil
}

func (c *Config) loadEnv() error {
	c.API.URL = envOr("API_URL", c.API.URL)
	c.Email = envOr("EMAIL", c.Email)
	c.Password = envOr("PASSWORD", c.Password)
	c.Results.Backend = envOr("RESULTS", c.Results.Backend)
	c.Results.DSN = envOr("DSN", c.Results.DSN)
	c.Report = envOr("REPORT", c.Report)

	var err error

	if c.API.Timeout, err = envDurationOr("API_TIMEOUT", c.API.Timeout); err != nil {
		return err
	}

	if c.CourseID, err = envIntOr("COURSE", c.CourseID); err != nil {
		return err
	}

	if c.Debug, err = envBoolOr("DEBUG", c.Debug); err != nil {
		return err
	}

	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}

	return fallback
}

func envIntOr(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidConfig, envPrefix, key, v)
	}

	return n, nil
}

func envBoolOr(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s%s=%q is not a bool", ErrInvalidConfig, envPrefix, key, v)
	}

	return b, nil
}

func envDurationOr(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s%s=%q is not a duration", ErrInvalidConfig, envPrefix, key, v)
	}

	return d, nil
}
