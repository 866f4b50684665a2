package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "PASSFORM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PASSFORM_DB_DSN"
	EnvDBHost = "PASSFORM_DB_HOST"
	EnvDBUser = "PASSFORM_DB_USER"
	EnvDBName = "PASSFORM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
