package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "VISION"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "VISION_APP_ENV"
	EnvAppPort = "VISION_APP_PORT"
	EnvDBDSN   = "VISION_DB_DSN"
	EnvDBHost  = "VISION_DB_HOST"
	EnvDBUser  = "VISION_DB_USER"
	EnvDBName  = "VISION_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
