package config

const (
	EnvPrefix = "THREADBAZAAR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "THREADBAZAAR_APP_ENV"
	EnvPort       = "THREADBAZAAR_APP_PORT"
	EnvDBDSN      = "THREADBAZAAR_DB_DSN"
	EnvDBHost     = "THREADBAZAAR_DB_HOST"
	EnvDBUser     = "THREADBAZAAR_DB_USER"
	EnvDBName     = "THREADBAZAAR_DB_NAME"
	EnvRedisURL   = "THREADBAZAAR_REDIS_URL"
	EnvJWTSecret  = "THREADBAZAAR_JWT_SECRET"
	EnvJWTIssuer  = "THREADBAZAAR_JWT_ISSUER"
	EnvJWTExpMins = "THREADBAZAAR_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
