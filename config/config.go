package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	SnapshotDir          string `mapstructure:"snapshot_dir"`
	SnapshotPattern      string `mapstructure:"snapshot_pattern"`
	RoomType             string `mapstructure:"room_type"`
	NeighborhoodRoomType string `mapstructure:"neighborhood_room_type"`
	InsightSnapshot      string `mapstructure:"insight_snapshot"`
	TopK                 int    `mapstructure:"top_k"`

	ReportCSVPath    string `mapstructure:"report_csv_path"`
	ChartEnabled     bool   `mapstructure:"chart_enabled"`
	ChartHTMLPath    string `mapstructure:"chart_html_path"`
	ChartPNGPath     string `mapstructure:"chart_png_path"`
	ChartMaxListings int    `mapstructure:"chart_max_listings"`
	ChromeBin        string `mapstructure:"chrome_bin"`

	StoreBackend     string `mapstructure:"store_backend"`
	SQLitePath       string `mapstructure:"sqlite_path"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     string `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`
	MaxRetries       int    `mapstructure:"max_retries"`

	LogLevel string `mapstructure:"log_level"`

	// SnapshotFiles are explicit snapshot paths given as positional
	// arguments. When non-empty they replace the directory glob.
	SnapshotFiles []string `mapstructure:"-"`
}

// Load reads the .env file, an optional config file, the environment and the
// command-line flags in args (without the program name), in increasing order
// of precedence.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}

	configFile, _ := fs.GetString("config")
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.SnapshotFiles = fs.Args()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("snapshot_dir", "./data")
	v.SetDefault("snapshot_pattern", "*.csv")
	v.SetDefault("room_type", "Entire home/apt")
	v.SetDefault("neighborhood_room_type", "Entire home/apt")
	v.SetDefault("insight_snapshot", "")
	v.SetDefault("top_k", 5)

	v.SetDefault("report_csv_path", "./output/price_trends.csv")
	v.SetDefault("chart_enabled", false)
	v.SetDefault("chart_html_path", "./output/host_listings.html")
	v.SetDefault("chart_png_path", "./output/host_listings.png")
	v.SetDefault("chart_max_listings", 10)
	v.SetDefault("chrome_bin", "")

	v.SetDefault("store_backend", "none")
	v.SetDefault("sqlite_path", "./output/snapshots.db")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "analytics")
	v.SetDefault("postgres_password", "analytics123")
	v.SetDefault("postgres_db", "rental_db")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("max_retries", 3)

	v.SetDefault("log_level", "info")
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("airbnb-analytics", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, toml, json)")
	fs.String("dir", "", "directory holding the snapshot CSV files")
	fs.String("room-type", "", "room type whose price series are tracked")
	fs.Int("top", 0, "number of top movers to report")
	fs.String("insight-snapshot", "", "snapshot used for single-file insights")
	fs.String("store", "", "snapshot archive backend: none, sqlite, postgres")
	fs.Bool("chart", false, "render the host listings chart")
	fs.String("log-level", "", "debug, info, warn or error")
	return fs
}

var flagKeys = map[string]string{
	"dir":              "snapshot_dir",
	"room-type":        "room_type",
	"top":              "top_k",
	"insight-snapshot": "insight_snapshot",
	"store":            "store_backend",
	"chart":            "chart_enabled",
	"log-level":        "log_level",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("config: bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RoomType) == "" {
		return fmt.Errorf("room_type is required")
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1")
	}
	if c.ChartMaxListings < 1 {
		return fmt.Errorf("chart_max_listings must be at least 1")
	}
	switch c.StoreBackend {
	case "none", "sqlite", "postgres":
	default:
		return fmt.Errorf("store_backend must be one of: none, sqlite, postgres")
	}
	if c.StoreBackend == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required when store_backend is sqlite")
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
