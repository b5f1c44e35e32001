package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDSN string

	TourAPIBaseURL string
	TourAPIToken   string
	TourAPITimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	// first admin account, created only while admin_users is empty
	AdminUsername string
	AdminPassword string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	WizardSessionTTL time.Duration

	CORSAllowedOrigins []string
	LoginRatePerMinute int
}

// LoadEnv reads .env (when present) and then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[CONFIG] action=load_dotenv msg=%v", err)
	}

	appAddr := getString("APP_ADDR", ":8080")

	env := Env{
		AppAddr: appAddr,
		GinMode: getString("GIN_MODE", ""),

		DBDSN: buildDSN(),

		TourAPIBaseURL: strings.TrimRight(getString("TOUR_API_BASE_URL", "http://127.0.0.1:8000/api"), "/"),
		TourAPIToken:   getString("TOUR_API_TOKEN", ""),
		TourAPITimeout: getDuration("TOUR_API_TIMEOUT", 15*time.Second),

		JWTSecret: getString("JWT_SECRET", ""),
		JWTTTL:    getDuration("JWT_TTL", 12*time.Hour),

		AdminUsername: getString("ADMIN_USERNAME", ""),
		AdminPassword: getString("ADMIN_PASSWORD", ""),

		RedisAddr:        getString("REDIS_ADDR", ""),
		RedisPassword:    getString("REDIS_PASSWORD", ""),
		RedisDB:          getInt("REDIS_DB", 0),
		WizardSessionTTL: getDuration("WIZARD_SESSION_TTL", 2*time.Hour),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MIN", 10),
	}
	return env
}

// minJWTSecretLen is the shortest HS256 key accepted at startup.
const minJWTSecretLen = 16

// Validate reports settings the service must not start without.
func (e Env) Validate() error {
	secret := e.JWTSecret
	switch {
	case secret == "":
		return errors.New("JWT_SECRET is required")
	case secret == "change-me" || secret == "secret":
		return errors.New("JWT_SECRET must not be a placeholder value")
	case len(secret) < minJWTSecretLen:
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	return nil
}

func buildDSN() string {
	if dsn := getString("DB_DSN", ""); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		getString("DB_USER", "root"),
		getString("DB_PASS", ""),
		getString("DB_HOST", "127.0.0.1:3306"),
		getString("DB_NAME", "tourdesk"),
	)
}

func getString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := getString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[CONFIG] action=parse_int key=%s msg=%v", key, err)
		return def
	}
	return n
}

// getDuration accepts Go durations ("90s") or plain seconds ("90").
func getDuration(key string, def time.Duration) time.Duration {
	v := getString(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("[CONFIG] action=parse_duration key=%s value=%q", key, v)
	return def
}

func getList(key string, def []string) []string {
	v := getString(key, "")
	if v == "" {
		return def
	}
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
