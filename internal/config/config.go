package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string   `mapstructure:"port"`
	LogFile  string   `mapstructure:"log_file"`
	DB       DB       `mapstructure:"db"`
	Payments Payments `mapstructure:"payments"`
	Notify   Notify   `mapstructure:"notify"`
	Shipping Shipping `mapstructure:"shipping"`
	Orders   Orders   `mapstructure:"orders"`
}

type DB struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres | memory
	DSN    string `mapstructure:"dsn"`
	Seed   bool   `mapstructure:"seed"`
}

type Payments struct {
	SecretKey     string        `mapstructure:"secret_key"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	Currency      string        `mapstructure:"currency"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type Notify struct {
	SMTPHost      string        `mapstructure:"smtp_host"`
	SMTPPort      int           `mapstructure:"smtp_port"`
	SMTPUser      string        `mapstructure:"smtp_user"`
	SMTPPassword  string        `mapstructure:"smtp_password"`
	From          string        `mapstructure:"from"`
	OperatorEmail string        `mapstructure:"operator_email"`
	AlertPhone    string        `mapstructure:"alert_phone"`
	AlertCarrier  string        `mapstructure:"alert_carrier"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type Shipping struct {
	FreeThreshold string `mapstructure:"free_threshold"`
	Fee           string `mapstructure:"fee"`
}

type Orders struct {
	DecrementStock bool `mapstructure:"decrement_stock"`
}

// legacy env names kept working alongside STOREFRONT_* keys
var aliases = map[string]string{
	"port":                    "PORT",
	"log_file":                "LOG_FILE",
	"db.dsn":                  "DB_DSN",
	"db.driver":               "DB_DRIVER",
	"payments.secret_key":     "STRIPE_SECRET_KEY",
	"payments.webhook_secret": "STRIPE_WEBHOOK_SECRET",
	"notify.smtp_host":        "SMTP_HOST",
	"notify.smtp_port":        "SMTP_PORT",
	"notify.smtp_user":        "SMTP_USER",
	"notify.smtp_password":    "SMTP_PASSWORD",
	"notify.alert_phone":      "ALERT_PHONE",
	"notify.alert_carrier":    "ALERT_CARRIER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_file", "")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "storefront.db")
	v.SetDefault("db.seed", true)
	v.SetDefault("payments.currency", "usd")
	v.SetDefault("payments.timeout", 10*time.Second)
	v.SetDefault("notify.smtp_port", 587)
	v.SetDefault("notify.from", "orders@storefront.test")
	v.SetDefault("notify.operator_email", "")
	v.SetDefault("notify.alert_carrier", "tmobile")
	v.SetDefault("notify.timeout", 10*time.Second)
	v.SetDefault("shipping.free_threshold", "50.00")
	v.SetDefault("shipping.fee", "5.95")
	v.SetDefault("orders.decrement_stock", false)
}

// Load reads .env (if present), an optional YAML file and the environment.
// An empty path skips the config file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env loaded: %v", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range aliases {
		_ = v.BindEnv(key, "STOREFRONT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DB.Driver, cfg.DB.DSN, cfg.LogFile)
	return cfg, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
