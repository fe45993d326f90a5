package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Apify struct {
		Token   string `env:"APIFY_API_TOKEN"`
		ActorID string `env:"APIFY_ACTOR_ID" env-default:"igview-owner~tiktok-story-viewer"`
		BaseURL string `env:"APIFY_BASE_URL" env-default:"https://api.apify.com"`
	}
	Google struct {
		CredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`
		SheetID         string `env:"GOOGLE_SHEET_ID"`
		DriveFolderID   string `env:"GOOGLE_DRIVE_FOLDER_ID"`
	}
	Slack struct {
		WebhookURL string `env:"SLACK_WEBHOOK_URL"`
		BotToken   string `env:"SLACK_BOT_TOKEN"`
		ChannelID  string `env:"SLACK_CHANNEL_ID"`
	}
	Monitor struct {
		Accounts       string `env:"MONITORED_ACCOUNTS"`
		DefaultAccount string `env:"DEFAULT_ACCOUNT" env-default:"danieljensen"`
		DownloadDir    string `env:"DOWNLOAD_DIR" env-default:"tiktok_stories"`
		IntervalMin    int    `env:"MONITOR_INTERVAL_MIN" env-default:"15"`
		IntervalMax    int    `env:"MONITOR_INTERVAL_MAX" env-default:"20"`
		RunOnce        bool   `env:"MONITOR_RUN_ONCE" env-default:"false"`
	}
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			cfgErr = fmt.Errorf("failed to read configuration: %w\n%s", err, help)
			return
		}
		cfgErr = cfg.validate()
	})
	return cfg, cfgErr
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Apify.Token) == "" {
		return fmt.Errorf("APIFY_API_TOKEN is required")
	}
	if c.Monitor.IntervalMin <= 0 || c.Monitor.IntervalMax < c.Monitor.IntervalMin {
		return fmt.Errorf("invalid monitor interval: min=%d max=%d", c.Monitor.IntervalMin, c.Monitor.IntervalMax)
	}
	return nil
}

// GetDSN builds the lib/pq connection string used by the migration runner.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode)
}

func (c *Config) SheetsConfigured() bool {
	return c.Google.CredentialsJSON != "" && c.Google.SheetID != ""
}

func (c *Config) DriveConfigured() bool {
	return c.Google.CredentialsJSON != "" && c.Google.DriveFolderID != ""
}

func (c *Config) SlackConfigured() bool {
	return c.Slack.WebhookURL != "" || (c.Slack.BotToken != "" && c.Slack.ChannelID != "")
}
