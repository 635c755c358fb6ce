package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Env      string
	Port     string
	DBDriver string // sqlite|postgres
	DBPath   string
	DBURL    string

	JWTSecret        string
	SessionTTL       time.Duration
	AllowAdminSignup bool
	StrictLifecycle  bool

	RedisURL string

	WeatherAPIKey   string
	WeatherEndpoint string
	WeatherLocation string
}

// UserAPIConfig drives the standalone user lookup service.
type UserAPIConfig struct {
	Env         string
	Port        string
	MySQLDSN    string
	CORSOrigins []string
}

const devJWTSecret = "dev-secret-change-me"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

func (c AppConfig) Production() bool { return c.Env == "production" }

// Validate rejects settings the server must not start with.
func (c AppConfig) Validate() error {
	if c.Production() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return ErrMissingJWTSecret
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	return nil
}

// Redacted hides secrets before the config is logged.
func (c AppConfig) Redacted() AppConfig {
	if c.JWTSecret != "" {
		c.JWTSecret = "***"
	}
	if c.WeatherAPIKey != "" {
		c.WeatherAPIKey = "***"
	}
	if c.DBURL != "" {
		c.DBURL = "***"
	}
	if c.RedisURL != "" {
		c.RedisURL = "***"
	}
	return c
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v, err := strconv.ParseBool(get(k, ""))
	if err != nil {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	v, err := strconv.Atoi(get(k, ""))
	if err != nil {
		return def
	}
	return v
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}
}

func Load() AppConfig {
	loadDotenv()

	cfg := AppConfig{
		Env:              get("APP_ENV", "development"),
		Port:             get("PORT", "8080"),
		DBDriver:         strings.ToLower(get("DB_DRIVER", "sqlite")),
		DBPath:           get("DB_PATH", "mlimi.db"),
		DBURL:            get("DATABASE_URL", ""),
		JWTSecret:        get("JWT_SECRET", ""),
		SessionTTL:       time.Duration(getInt("SESSION_TTL", 72)) * time.Hour,
		AllowAdminSignup: getBool("ALLOW_ADMIN_SIGNUP", false),
		StrictLifecycle:  getBool("CONSULTATION_STRICT_TRANSITIONS", false),
		RedisURL:         get("REDIS_URL", ""),
		WeatherAPIKey:    get("WEATHER_API_KEY", ""),
		WeatherEndpoint:  get("WEATHER_ENDPOINT", "https://api.weatherapi.com"),
		WeatherLocation:  get("WEATHER_DEFAULT_LOCATION", "Zomba, Malawi"),
	}
	if cfg.JWTSecret == "" && !cfg.Production() {
		cfg.JWTSecret = devJWTSecret
	}
	log.Printf("[cfg] %+v", cfg.Redacted())
	return cfg
}

var (
	productionOrigins  = []string{"https://yourdomain.com", "https://www.yourdomain.com"}
	developmentOrigins = []string{"http://localhost:8080", "http://localhost:3000"}
)

func LoadUserAPI() UserAPIConfig {
	loadDotenv()

	env := get("APP_ENV", get("NODE_ENV", "development"))
	cfg := UserAPIConfig{
		Env:  env,
		Port: get("USERAPI_PORT", get("PORT", "5000")),
		MySQLDSN: get("MYSQL_DSN", mysqlDSN(
			get("DB_HOST", "localhost"),
			get("DB_USER", "root"),
			get("DB_PASSWORD", ""),
			get("DB_DATABASE", "mlimi"),
		)),
		CORSOrigins: corsOrigins(env, get("CORS_ORIGINS", "")),
	}
	log.Printf("[cfg] userapi env=%s port=%s origins=%v", cfg.Env, cfg.Port, cfg.CORSOrigins)
	return cfg
}

func mysqlDSN(host, user, pass, name string) string {
	return user + ":" + pass + "@tcp(" + host + ":3306)/" + name + "?parseTime=true&charset=utf8mb4"
}

func corsOrigins(env, override string) []string {
	if override != "" {
		var out []string
		for _, o := range strings.Split(override, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
		return out
	}
	if env == "production" {
		return append([]string(nil), productionOrigins...)
	}
	return append([]string(nil), developmentOrigins...)
}
