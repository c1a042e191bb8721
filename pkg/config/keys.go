package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv        = "RATEHUB_APP_ENV"
	EnvPort          = "RATEHUB_APP_PORT"
	EnvDBDSN         = "RATEHUB_DB_DSN"
	EnvDBHost        = "RATEHUB_DB_HOST"
	EnvDBUser        = "RATEHUB_DB_USER"
	EnvDBName        = "RATEHUB_DB_NAME"
	EnvRedisURL      = "RATEHUB_REDIS_URL"
	EnvJWTSecret     = "RATEHUB_JWT_SECRET"
	EnvJWTIssuer     = "RATEHUB_JWT_ISSUER"
	EnvJWTExpMins    = "RATEHUB_JWT_EXPIRATION_MINUTES"
	EnvAdminPassword = "RATEHUB_ADMIN_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
