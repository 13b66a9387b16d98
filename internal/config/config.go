package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
	"github.com/dropDatabas3/fastpass/internal/security/secretbox"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level       string `yaml:"level"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"log"`

	Fastpass struct {
		Host   string `yaml:"host"`
		Secure bool   `yaml:"secure"`
		// ConsumerSecret puede venir sellado ("enc:...", ver secretbox).
		ConsumerKey    string `yaml:"consumer_key"`
		ConsumerSecret string `yaml:"consumer_secret"`
	} `yaml:"fastpass"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		// TrustedProxies: IPs o CIDRs cuyo X-Forwarded-For se respeta.
		TrustedProxies []string `yaml:"trusted_proxies"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Identity: JWT HS256 emitido por la app host con la identidad ya verificada.
	Identity struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
		Audience  string `yaml:"audience"`
		Leeway    string `yaml:"leeway"`
	} `yaml:"identity"`

	API struct {
		// Key habilita los endpoints server-to-server (header X-API-Key).
		Key string `yaml:"key"`
	} `yaml:"api"`

	Store struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Replay struct {
		Enabled bool   `yaml:"enabled"`
		TTL     string `yaml:"ttl"`
		MaxAge  string `yaml:"max_age"`
	} `yaml:"replay"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`

	Audit struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"audit"`

	Security struct {
		SecretBoxMasterKey string `yaml:"secretbox_master_key"`
	} `yaml:"security"`
}

// Load lee el YAML (si path no es vacío), aplica defaults y overrides por env
// y valida. Un path vacío usa sólo defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.ServiceName == "" {
		c.Log.ServiceName = "fastpass"
	}
	if c.Fastpass.Host == "" {
		c.Fastpass.Host = fastpass.DefaultHost
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Identity.Leeway == "" {
		c.Identity.Leeway = "30s"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = "memory"
	}
	if c.Store.Redis.Prefix == "" {
		c.Store.Redis.Prefix = "fastpass:"
	}
	if c.Replay.TTL == "" {
		c.Replay.TTL = "10m"
	}
	if c.Replay.MaxAge == "" {
		c.Replay.MaxAge = "5m"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
}

// Validate revisa duraciones y combinaciones. Las credenciales de Fastpass se
// validan al construir el Builder (ConfigurationError), no acá: `seal` y
// `migrate` no las necesitan.
func (c *Config) Validate() error {
	var errs []error

	durations := map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"identity.leeway":         c.Identity.Leeway,
		"replay.ttl":              c.Replay.TTL,
		"replay.max_age":          c.Replay.MaxAge,
		"rate.window":             c.Rate.Window,
	}
	parsed := make(map[string]time.Duration, len(durations))
	for name, v := range durations {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", name, err))
			continue
		}
		parsed[name] = d
	}

	if c.Replay.Enabled {
		ttl, okTTL := parsed["replay.ttl"]
		maxAge, okAge := parsed["replay.max_age"]
		switch {
		case okAge && maxAge <= 0:
			errs = append(errs, errors.New("config: replay.max_age must be > 0 when replay.enabled"))
		case okTTL && okAge && ttl < maxAge:
			errs = append(errs, fmt.Errorf("config: replay.ttl (%s) must be >= replay.max_age (%s)", ttl, maxAge))
		}
	}
	if w, ok := parsed["rate.window"]; ok && w <= 0 {
		errs = append(errs, errors.New("config: rate.window must be > 0"))
	}

	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			errs = append(errs, fmt.Errorf("config: server.trusted_proxies: %q is not an IP or CIDR", p))
		}
	}

	switch c.Store.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			errs = append(errs, errors.New("config: store.redis.addr is required when store.kind=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: store.kind %q not supported (memory|redis)", c.Store.Kind))
	}

	if c.Audit.Enabled && strings.TrimSpace(c.Audit.DSN) == "" {
		errs = append(errs, errors.New("config: audit.dsn is required when audit.enabled"))
	}
	if c.Rate.MaxRequests < 0 {
		errs = append(errs, errors.New("config: rate.max_requests must be >= 0"))
	}
	return errors.Join(errs...)
}

// Credentials abre el consumer secret si está sellado y arma las Credentials.
func (c *Config) Credentials() (fastpass.Credentials, error) {
	secret, err := secretbox.Reveal(c.Security.SecretBoxMasterKey, c.Fastpass.ConsumerSecret)
	if err != nil {
		return fastpass.Credentials{}, fmt.Errorf("config: fastpass.consumer_secret: %w", err)
	}
	return fastpass.NewCredentials(c.Fastpass.ConsumerKey, secret)
}

// Endpoint devuelve el endpoint de Fastpass configurado.
func (c *Config) Endpoint() fastpass.Endpoint {
	return fastpass.Endpoint{Host: c.Fastpass.Host, Secure: c.Fastpass.Secure}
}

// Dur parsea una duración ya validada por Load.
func Dur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// FASTPASS
	if v, ok := getEnvStr("FASTPASS_HOST"); ok {
		c.Fastpass.Host = v
	}
	if v, ok := getEnvBool("FASTPASS_SECURE"); ok {
		c.Fastpass.Secure = v
	}
	if v, ok := getEnvStr("FASTPASS_CONSUMER_KEY"); ok {
		c.Fastpass.ConsumerKey = v
	}
	if v, ok := getEnvStr("FASTPASS_CONSUMER_SECRET"); ok {
		c.Fastpass.ConsumerSecret = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvCSV("SERVER_TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}

	// IDENTITY
	if v, ok := getEnvStr("IDENTITY_JWT_SECRET"); ok {
		c.Identity.JWTSecret = v
	}
	if v, ok := getEnvStr("IDENTITY_ISSUER"); ok {
		c.Identity.Issuer = v
	}
	if v, ok := getEnvStr("IDENTITY_AUDIENCE"); ok {
		c.Identity.Audience = v
	}
	if v, ok := getEnvStr("API_KEY"); ok {
		c.API.Key = v
	}

	// STORE
	if v, ok := getEnvStr("STORE_KIND"); ok {
		c.Store.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Store.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Store.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Store.Redis.Password = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Store.Redis.Prefix = v
	}

	// REPLAY / RATE
	if v, ok := getEnvBool("REPLAY_ENABLED"); ok {
		c.Replay.Enabled = v
	}
	if v, ok := getEnvStr("REPLAY_TTL"); ok {
		c.Replay.TTL = v
	}
	if v, ok := getEnvStr("REPLAY_MAX_AGE"); ok {
		c.Replay.MaxAge = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	// AUDIT
	if v, ok := getEnvBool("AUDIT_ENABLED"); ok {
		c.Audit.Enabled = v
	}
	if v, ok := getEnvStr("AUDIT_DSN"); ok {
		c.Audit.DSN = v
	}

	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretBoxMasterKey = v
	}
}
