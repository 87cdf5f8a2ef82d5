package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		TemplatesDir string `yaml:"templates_dir"`
		AppURL       string `yaml:"app_url"` // base URL for links in emails
	} `yaml:"email"`

	Billing struct {
		WebhookSecret    string `yaml:"webhook_secret"`
		ToleranceSeconds int    `yaml:"tolerance_seconds"` // signature timestamp window
		TrialDays        int    `yaml:"trial_days"`
	} `yaml:"billing"`

	Affiliate struct {
		SubscriptionRate float64 `yaml:"subscription_rate"` // 0.30 = 30%
		OneTimeRate      float64 `yaml:"one_time_rate"`
		MinimumPayout    float64 `yaml:"minimum_payout"` // commission floor, USD
		CodeLength       int     `yaml:"code_length"`
	} `yaml:"affiliate"`

	FirstAdminEmail    string
	FirstAdminPassword string
}

var AppConfig *Config

// LoadConfig reads config.yaml, or builds the config from environment
// variables when DATABASE_URL is set (test and container mode).
func LoadConfig() {
	var cfg Config

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
	} else {
		cfg.Database.DSN = dbURL
		cfg.Server.Env = os.Getenv("SERVER_ENV")
		cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		cfg.JWT.TTL = 60

		cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
		cfg.Email.SMTPPort = 587
		cfg.Email.FromEmail = "no-reply@wagyu.app"
		cfg.Email.FromName = "WagYu"
		cfg.Email.TemplatesDir = "templates"
		cfg.Email.AppURL = os.Getenv("APP_URL")

		cfg.Billing.WebhookSecret = os.Getenv("BILLING_WEBHOOK_SECRET")
	}

	applyDefaults(&cfg)

	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")

	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Billing.ToleranceSeconds == 0 {
		cfg.Billing.ToleranceSeconds = 300
	}
	if cfg.Billing.TrialDays == 0 {
		cfg.Billing.TrialDays = 14
	}
	if cfg.Affiliate.SubscriptionRate == 0 {
		cfg.Affiliate.SubscriptionRate = 0.30
	}
	if cfg.Affiliate.OneTimeRate == 0 {
		cfg.Affiliate.OneTimeRate = 0.20
	}
	if cfg.Affiliate.MinimumPayout == 0 {
		cfg.Affiliate.MinimumPayout = 1.00
	}
	if cfg.Affiliate.CodeLength == 0 {
		cfg.Affiliate.CodeLength = 8
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if cfg.Email.AppURL == "" {
		cfg.Email.AppURL = "https://wagyu.app"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
