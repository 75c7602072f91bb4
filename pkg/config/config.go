package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Cleanup       CleanupConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VISION_APP_ENV" required:"true"`
	Port         string `envconfig:"VISION_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VISION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VISION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VISION_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VISION_DB_DSN"`
	Driver string `envconfig:"VISION_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VISION_DB_HOST"`
	LegacyPort     int    `envconfig:"VISION_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VISION_DB_USER"`
	LegacyPassword string `envconfig:"VISION_DB_PASSWORD"`
	LegacyName     string `envconfig:"VISION_DB_NAME"`
	LegacySSLMode  string `envconfig:"VISION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VISION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VISION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VISION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VISION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VISION_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VISION_REDIS_ADDR"`
	Password     string        `envconfig:"VISION_REDIS_PASSWORD"`
	DB           int           `envconfig:"VISION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VISION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VISION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VISION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VISION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VISION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VISION_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VISION_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VISION_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VISION_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VISION_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VISION_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VISION_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VISION_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"VISION_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"VISION_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"VISION_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VISION_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VISION_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VISION_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"VISION_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VISION_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"VISION_GCS_BUCKET_NAME" required:"true"`
	// Folder is the logical namespace every content upload lands in.
	Folder string `envconfig:"VISION_GCS_FOLDER" default:"vision_cms"`
}

type MediaConfig struct {
	MaxUploadMB     int `envconfig:"VISION_MAX_UPLOAD_MB" default:"50"`
	MaxFilesPerForm int `envconfig:"VISION_MAX_FILES_PER_FORM" default:"20"`
}

type PubSubConfig struct {
	CleanupTopic        string `envconfig:"VISION_PUBSUB_CLEANUP_TOPIC" default:"cms-cleanup-events"`
	CleanupSubscription string `envconfig:"VISION_PUBSUB_CLEANUP_SUBSCRIPTION"`
}

type CleanupConfig struct {
	// PendingRetention is how long a pending_uploads row may linger
	// before the cron job treats the remote object as orphaned.
	PendingRetention time.Duration `envconfig:"VISION_CLEANUP_PENDING_RETENTION" default:"1h"`
	Interval         time.Duration `envconfig:"VISION_CLEANUP_INTERVAL" default:"15m"`
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
