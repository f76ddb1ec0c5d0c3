package models

// Config is the complete service configuration, loaded from the
// environment by internal/pkg/config.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NSQ      NSQConfig
	JWT      JWTConfig
	Dispatch DispatchConfig
	Waker    WakerConfig
	Logger   LoggerConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	CORSOrigins     []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NSQConfig holds NSQ daemon configuration. An empty address disables
// event publication.
type NSQConfig struct {
	Address string
}

// JWTConfig holds JWT validation configuration for socket attach
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration int
}

// DispatchConfig tunes the on-demand fan-out
type DispatchConfig struct {
	RadiusKm      float64
	MaxCandidates int
	StoreTimeout  int // seconds, bound on every store call
}

// WakerConfig tunes the scheduled-ride waker
type WakerConfig struct {
	IntervalSeconds int
	LeadMinutes     int
	BandMinutes     int
	RadiusKm        float64
	MaxCandidates   int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
