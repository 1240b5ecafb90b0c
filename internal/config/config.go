package config

import (
	"flag"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config хранит конфигурацию сервиса
type Config struct {
	ServerAddress    string `json:"server_address"`
	LinkAPIBase      string `json:"link_api_base"`
	LinkAPIKey       string `json:"link_api_key"`
	DefaultDomain    string `json:"default_domain"`
	DatabaseDSN      string `json:"database_dsn"`
	PgMigrationsPath string `json:"pg_migrations_path"`
	FileStoragePath  string `json:"file_storage_path"`
	AuthSecret       string `json:"auth_secret"`
	LoginUsername    string `json:"login_username"`
	LoginPassword    string `json:"login_password"`
	MaxRetries       int    `json:"max_retries"`
	RequestTimeout   int    `json:"request_timeout"`
	Mode             string `json:"-"`
}

// NewConfig инициализирует конфигурацию на основе переменных окружения и флагов
func NewConfig() *Config {

	viper.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	viper.SetDefault("LINK_API_BASE", "https://link.josephjacobs.org/api")
	viper.SetDefault("LINK_API_KEY", "")
	viper.SetDefault("DEFAULT_DOMAIN", "adtracking.link")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("PG_MIGRATIONS_PATH", "internal/migrations")
	viper.SetDefault("FILE_STORAGE_PATH", "pubs.json")
	viper.SetDefault("AUTH_SECRET", "")
	viper.SetDefault("LOGIN_USERNAME", "")
	viper.SetDefault("LOGIN_PASSWORD", "")
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("REQUEST_TIMEOUT", 15)

	viper.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	serverAddress := flag.String("a", "", "server address")
	apiBase := flag.String("api", "", "link shortener API base URL")
	defaultDomain := flag.String("domain", "", "default branded domain")
	databaseDSN := flag.String("d", "", "PostgreSQL DSN")
	fileStoragePath := flag.String("f", "", "publications storage path (JSON file)")
	maxRetries := flag.Int("r", 0, "max retries on rate limit")

	flag.Parse()

	cfg := &Config{
		ServerAddress:    viper.GetString("SERVER_ADDRESS"),
		LinkAPIBase:      viper.GetString("LINK_API_BASE"),
		LinkAPIKey:       viper.GetString("LINK_API_KEY"),
		DefaultDomain:    viper.GetString("DEFAULT_DOMAIN"),
		DatabaseDSN:      viper.GetString("DATABASE_DSN"),
		PgMigrationsPath: viper.GetString("PG_MIGRATIONS_PATH"),
		FileStoragePath:  viper.GetString("FILE_STORAGE_PATH"),
		AuthSecret:       viper.GetString("AUTH_SECRET"),
		LoginUsername:    viper.GetString("LOGIN_USERNAME"),
		LoginPassword:    viper.GetString("LOGIN_PASSWORD"),
		MaxRetries:       viper.GetInt("MAX_RETRIES"),
		RequestTimeout:   viper.GetInt("REQUEST_TIMEOUT"),
	}

	// Если флаг передан, но переменной окружения нет — используем флаг
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *apiBase != "" {
		cfg.LinkAPIBase = *apiBase
	}
	if *defaultDomain != "" {
		cfg.DefaultDomain = *defaultDomain
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}
	if *fileStoragePath != "" {
		cfg.FileStoragePath = *fileStoragePath
	}
	if *maxRetries > 0 {
		cfg.MaxRetries = *maxRetries
	}

	// Определяем режим хранения списка изданий
	if cfg.DatabaseDSN != "" {
		cfg.Mode = "database"
	} else if cfg.FileStoragePath != "" {
		cfg.Mode = "file"
	} else {
		cfg.Mode = "in-memory"
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: LinkAPIBase=%s", cfg.LinkAPIBase)
	log.Printf("Инициализация конфигурации: DefaultDomain=%s", cfg.DefaultDomain)
	log.Printf("Инициализация конфигурации: Mode=%s", cfg.Mode)

	// Проверка корректности конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
	}

	return cfg
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.LinkAPIBase == "" {
		return fmt.Errorf("адрес внешнего API не может быть пустым")
	}
	if cfg.LinkAPIKey == "" {
		return fmt.Errorf("ключ внешнего API не задан")
	}
	if cfg.AuthSecret == "" {
		return fmt.Errorf("секрет сессионных токенов не задан")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("количество повторов должно быть положительным")
	}
	return nil
}
