package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// The sqlite flag forces the driver; the DSN is then a file path.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if strings.EqualFold(cfg.DB.Driver, "sqlite") {
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("%s is required when using sqlite", EnvDBDSN)
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RATEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"RATEHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RATEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RATEHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RATEHUB_DB_DSN"`
	Driver string `envconfig:"RATEHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RATEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"RATEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RATEHUB_DB_USER"`
	LegacyPassword string `envconfig:"RATEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"RATEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"RATEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RATEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RATEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RATEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RATEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RATEHUB_REDIS_URL"`
	Address      string        `envconfig:"RATEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"RATEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"RATEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RATEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RATEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RATEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RATEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RATEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RATEHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RATEHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RATEHUB_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the configured token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AdminConfig holds the out-of-band bootstrap admin credentials. The admin
// identity is never persisted to the users table.
type AdminConfig struct {
	Email    string `envconfig:"RATEHUB_ADMIN_EMAIL" default:"admin@abc.com"`
	Password string `envconfig:"RATEHUB_ADMIN_PASSWORD" required:"true"`
	Name     string `envconfig:"RATEHUB_ADMIN_NAME" default:"Administrator"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RATEHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RATEHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RATEHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RATEHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RATEHUB_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RATEHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RATEHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
