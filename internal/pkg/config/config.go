package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (facility location, schedule, timeouts)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Facility FacilityConfig
	Booking  BookingConfig
	Schedule ScheduleConfig
	Payment  PaymentConfig
	Notify   NotifyConfig
	Redis    RedisConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host         string        `envconfig:"DB_HOST" default:"localhost"`
	Port         string        `envconfig:"DB_PORT" default:"5432"`
	User         string        `envconfig:"DB_USER" required:"true"`
	Password     string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName       string        `envconfig:"DB_NAME" required:"true"`
	SSLMode      string        `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone     string        `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns     int32         `envconfig:"DB_MAX_CONNS" default:"20"`
	TxTimeout    time.Duration `envconfig:"DB_TX_TIMEOUT" default:"10s"`
	TxMaxRetries int           `envconfig:"DB_TX_MAX_RETRIES" default:"0"`
	AutoMigrate  bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"America/Los_Angeles"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"-28800"` // -8*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// FacilityConfig locates the facility for solar calculations. All civil dates
// and wall-clock hours are interpreted in TimeZone.
type FacilityConfig struct {
	Name                 string        `envconfig:"FACILITY_NAME" default:"Los Angeles, CA"`
	TimeZone             string        `envconfig:"FACILITY_TIMEZONE" default:"America/Los_Angeles"`
	Latitude             float64       `envconfig:"FACILITY_LATITUDE" default:"34.0549987"`
	Longitude            float64       `envconfig:"FACILITY_LONGITUDE" default:"-118.3969812"`
	Elevation            float64       `envconfig:"FACILITY_ELEVATION" default:"65"`
	CandleLightingOffset time.Duration `envconfig:"FACILITY_CANDLE_LIGHTING_OFFSET" default:"18m"`
	NightfallDepression  float64       `envconfig:"FACILITY_NIGHTFALL_DEPRESSION" default:"8.5"`
}

type BookingConfig struct {
	AppointmentCostCents int64  `envconfig:"APPOINTMENT_COST_CENTS" default:"3600"`
	Currency             string `envconfig:"APPOINTMENT_CURRENCY" default:"usd"`
	StatementDescriptor  string `envconfig:"APPOINTMENT_STATEMENT_DESCRIPTOR" default:"Appointment"`
}

type ScheduleConfig struct {
	Enabled           bool          `envconfig:"SCHEDULE_ENABLED" default:"true"`
	HoursInterval     time.Duration `envconfig:"SCHEDULE_HOURS_INTERVAL" default:"1h"`
	SlotsInterval     time.Duration `envconfig:"SCHEDULE_SLOTS_INTERVAL" default:"1h"`
	SlotsInitialDelay time.Duration `envconfig:"SCHEDULE_SLOTS_INITIAL_DELAY" default:"1m"`
	SlotHorizonDays   int           `envconfig:"SCHEDULE_SLOT_HORIZON_DAYS" default:"14"`
	ShowerDuration    time.Duration `envconfig:"SCHEDULE_SHOWER_DURATION" default:"30m"`
	ShowerOffsets     []int         `envconfig:"SCHEDULE_SHOWER_OFFSETS" default:"25,25,30,30,35"`
	BathDuration      time.Duration `envconfig:"SCHEDULE_BATH_DURATION" default:"75m"`
	BathOffsets       []int         `envconfig:"SCHEDULE_BATH_OFFSETS" default:"0,0,5,5,10,10,10"`
}

type PaymentConfig struct {
	BaseURL       string        `envconfig:"PAYMENT_BASE_URL" default:"https://api.stripe.com"`
	APISecret     string        `envconfig:"PAYMENT_API_SECRET"`
	Timeout       time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"10s"`
	RatePerSecond float64       `envconfig:"PAYMENT_RATE_PER_SECOND" default:"5"`
	Burst         int           `envconfig:"PAYMENT_BURST" default:"10"`
}

type NotifyConfig struct {
	Enabled bool `envconfig:"NOTIFY_ENABLED" default:"true"`
}

type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"30s"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c FacilityConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid FACILITY_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func LoadConfig() (Config, error) {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Facility.Location(); err != nil {
		return err
	}
	if c.Schedule.SlotHorizonDays <= 0 {
		return fmt.Errorf("SCHEDULE_SLOT_HORIZON_DAYS must be positive, got %d", c.Schedule.SlotHorizonDays)
	}
	if c.Schedule.HoursInterval <= 0 {
		return fmt.Errorf("SCHEDULE_HOURS_INTERVAL must be positive, got %s", c.Schedule.HoursInterval)
	}
	if c.Schedule.SlotsInterval <= 0 {
		return fmt.Errorf("SCHEDULE_SLOTS_INTERVAL must be positive, got %s", c.Schedule.SlotsInterval)
	}
	if c.Schedule.ShowerDuration <= 0 || c.Schedule.BathDuration <= 0 {
		return errors.New("appointment durations must be positive")
	}
	if c.DB.TxTimeout <= 0 {
		return errors.New("DB_TX_TIMEOUT must be positive")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:         "localhost",
			Port:         "15433", // Test DB port
			User:         "test",
			Password:     "test",
			DBName:       "test_db",
			SSLMode:      "disable",
			TimeZone:     "UTC",
			MaxConns:     10,
			TxTimeout:    10 * time.Second,
			TxMaxRetries: 0,
			AutoMigrate:  false,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "America/Los_Angeles",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: -28800,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Facility: FacilityConfig{
			Name:                 "Los Angeles, CA",
			TimeZone:             "America/Los_Angeles",
			Latitude:             34.0549987,
			Longitude:            -118.3969812,
			Elevation:            65,
			CandleLightingOffset: 18 * time.Minute,
			NightfallDepression:  8.5,
		},
		Booking: BookingConfig{
			AppointmentCostCents: 3600,
			Currency:             "usd",
			StatementDescriptor:  "Appointment",
		},
		Schedule: ScheduleConfig{
			Enabled:           false,
			HoursInterval:     time.Hour,
			SlotsInterval:     time.Hour,
			SlotsInitialDelay: time.Minute,
			SlotHorizonDays:   14,
			ShowerDuration:    30 * time.Minute,
			ShowerOffsets:     []int{25, 25, 30, 30, 35},
			BathDuration:      75 * time.Minute,
			BathOffsets:       []int{0, 0, 5, 5, 10, 10, 10},
		},
		Payment: PaymentConfig{
			BaseURL:       "http://localhost:12111",
			APISecret:     "sk_test",
			Timeout:       2 * time.Second,
			RatePerSecond: 100,
			Burst:         100,
		},
		Notify:  NotifyConfig{Enabled: true},
		Redis:   RedisConfig{Enabled: false, CacheTTL: 30 * time.Second},
		Metrics: MetricsConfig{Enabled: false, Path: "/metrics"},
	}
}
