package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config: параметры сервиса из окружения (.env подхватывается, если есть).
type Config struct {
	Env            string
	ServerAddress  string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	TaxRate        float64
	CORSOrigins    []string
	LogLevel       string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DBMaxOpenConns int
	DBMaxIdleConns int
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load читает .env (если есть), окружение и, если задан, файл конфигурации.
func Load(files ...string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	for _, f := range files {
		if f == "" {
			continue
		}
		v.SetConfigFile(f)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", f, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3001")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("TAX_RATE", 0.07)
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Env:            v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		DatabaseURL:    v.GetString("POSTGRES_CONN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		TaxRate:        v.GetFloat64("TAX_RATE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = v.GetString("DATABASE_URL")
	}
	if c.ServerAddress == "" {
		c.ServerAddress = "0.0.0.0:" + v.GetString("PORT")
	}

	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	c.TokenTTL = ttl

	for _, o := range strings.Split(v.GetString("CORS_ORIGIN"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
	}

	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be in [0, 1), got %v", c.TaxRate)
	}
	return c, nil
}

// RequireDatabase: для команд, которым нужна БД.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("POSTGRES_CONN (or DATABASE_URL) is not set")
	}
	return nil
}

// RequireServe: для запуска сервера нужны БД и секрет JWT.
func (c *Config) RequireServe() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is not set")
	}
	return nil
}
