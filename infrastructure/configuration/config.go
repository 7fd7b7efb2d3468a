package configuration

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ai-promoter/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Feeds       Feeds       `json:"feeds"`
	Scrape      Scrape      `json:"scrape"`
	LinkedIn    LinkedIn    `json:"linkedin"`
	Gemini      Gemini      `json:"gemini"`
	Slack       Slack       `json:"slack"`
	Campaign    Campaign    `json:"campaign"`
	Digest      Digest      `json:"digest"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	BaseURL     string `json:"baseURL"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
	CompanyName string `json:"companyName"`
	// AllowOrigins feeds the CORS middleware.
	AllowOrigins []string `json:"allowOrigins"`
}

type Database struct {
	Psql  Db    `json:"psql"`
	Mongo Mongo `json:"mongo"`
}

type Db struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type Mongo struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type Feeds struct {
	URLs                []string `json:"urls"`
	TimeoutSeconds      int      `json:"timeoutSeconds"`
	PollIntervalMinutes int      `json:"pollIntervalMinutes"`
	ValidatorCacheSize  int      `json:"validatorCacheSize"`
}

type Scrape struct {
	MaxAttempts       int     `json:"maxAttempts"`
	BaseDelaySeconds  int     `json:"baseDelaySeconds"`
	Concurrency       int     `json:"concurrency"`
	BatchSize         int     `json:"batchSize"`
	PollEverySeconds  int     `json:"pollEverySeconds"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	UserAgent         string  `json:"userAgent"`
	// Queue selects the job transport: "database" (default) or "servicebus".
	Queue string `json:"queue"`
}

type LinkedIn struct {
	ClientID           string   `json:"clientId"`
	ClientSecret       string   `json:"clientSecret"`
	RedirectURI        string   `json:"redirectURI"`
	Scopes             []string `json:"scopes"`
	APIBaseURL         string   `json:"apiBaseURL"`
	AuthURL            string   `json:"authURL"`
	TokenURL           string   `json:"tokenURL"`
	RevokeURL          string   `json:"revokeURL"`
	RefreshSkewMinutes int      `json:"refreshSkewMinutes"`
	SweepWindowDays    int      `json:"sweepWindowDays"`
	SweepIntervalHours int      `json:"sweepIntervalHours"`
}

type Gemini struct {
	APIKey          string  `json:"apiKey"`
	Model           string  `json:"model"`
	Endpoint        string  `json:"endpoint"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int64   `json:"maxOutputTokens"`
	MaxInputChars   int     `json:"maxInputChars"`
}

type Slack struct {
	BotToken             string `json:"botToken"`
	DefaultChannelID     string `json:"defaultChannelId"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	APIURL               string `json:"apiURL"`
}

type Campaign struct {
	UTMParams string `json:"utmParams"`
}

type Digest struct {
	IntervalHours int `json:"intervalHours"`
	ChunkSize     int `json:"chunkSize"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

// Load reads config[-ENV].json through viper, then applies environment overrides and defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	name := getConfig()
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found, using environment only")
		} else {
			return nil, fmt.Errorf("reading config %s: %w", name, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", name, err)
	}

	initDatabase(cfg)
	initApp(cfg)
	initPipeline(cfg)
	initIntegrations(cfg)

	logger.GetLogger().WithFields(map[string]interface{}{
		"config":      name,
		"feeds":       len(cfg.Feeds.URLs),
		"scrapeQueue": cfg.Scrape.Queue,
		"slack":       cfg.Slack.NotificationsEnabled,
	}).Info("Config set up successfully")
	return cfg, nil
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(c *Config) {
	c.Database.Psql.URL = getConfigValue(c.Database.Psql.URL, "DATABASE_URL", "")
	c.Database.Psql.Name = getConfigValue(c.Database.Psql.Name, "DB_NAME", "promoter")
	c.Database.Psql.Host = getConfigValue(c.Database.Psql.Host, "DB_HOST", "localhost")
	c.Database.Psql.Port = getConfigValue(c.Database.Psql.Port, "DB_PORT", "5432")
	c.Database.Psql.User = getConfigValue(c.Database.Psql.User, "DB_USER", "postgres")
	c.Database.Psql.Password = getConfigValue(c.Database.Psql.Password, "DB_PASSWORD", "")
	c.Database.Psql.SSLMode = getConfigValue(c.Database.Psql.SSLMode, "DB_SSLMODE", "disable")

	c.Database.Mongo.URI = getConfigValue(c.Database.Mongo.URI, "MONGO_URI", "")
	c.Database.Mongo.Database = getConfigValue(c.Database.Mongo.Database, "MONGO_DATABASE", "promoter")
	c.Database.Mongo.Collection = getConfigValue(c.Database.Mongo.Collection, "MONGO_COLLECTION", "extractions")

	c.RedisClient.Host = getConfigValue(c.RedisClient.Host, "REDIS_HOST", "localhost")
	c.RedisClient.Port = getConfigValue(c.RedisClient.Port, "REDIS_PORT", "6379")
	c.RedisClient.Username = getConfigValue(c.RedisClient.Username, "REDIS_USERNAME", "")
	c.RedisClient.Password = getConfigValue(c.RedisClient.Password, "REDIS_PASSWORD", "")
}

func initApp(c *Config) {
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	c.App.Port = getEnvInt("APP_PORT", getEnvInt("PORT", c.App.Port))
	if c.App.Port == 0 {
		c.App.Port = 10001
	}
	c.App.SecretKey = getConfigValue(c.App.SecretKey, "SECRET_KEY", "")
	c.App.BaseURL = strings.TrimRight(getConfigValue(c.App.BaseURL, "BASE_URL", fmt.Sprintf("http://localhost:%d", c.App.Port)), "/")
	c.App.CompanyName = getConfigValue(c.App.CompanyName, "COMPANY_NAME", "Your Company")
	c.App.TLSEnabled = getEnvBool("TLS_ENABLED", c.App.TLSEnabled)
	c.App.TLSCertFile = getConfigValue(c.App.TLSCertFile, "TLS_CERT_FILE", "")
	c.App.TLSKeyFile = getConfigValue(c.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if len(c.App.AllowOrigins) == 0 {
		c.App.AllowOrigins = []string{c.App.BaseURL}
	}
	if c.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initPipeline(c *Config) {
	if v := os.Getenv("CONTENT_FEEDS"); v != "" {
		c.Feeds.URLs = splitFeeds(v)
	}
	c.Feeds.TimeoutSeconds = defaultInt(c.Feeds.TimeoutSeconds, 10)
	c.Feeds.PollIntervalMinutes = getEnvInt("FEED_POLL_INTERVAL_MINUTES", defaultInt(c.Feeds.PollIntervalMinutes, 60))
	c.Feeds.ValidatorCacheSize = defaultInt(c.Feeds.ValidatorCacheSize, 256)

	c.Scrape.MaxAttempts = getEnvInt("SCRAPE_MAX_ATTEMPTS", defaultInt(c.Scrape.MaxAttempts, 5))
	c.Scrape.BaseDelaySeconds = getEnvInt("SCRAPE_BASE_DELAY", defaultInt(c.Scrape.BaseDelaySeconds, 60))
	c.Scrape.Concurrency = getEnvInt("SCRAPE_CONCURRENCY", defaultInt(c.Scrape.Concurrency, 4))
	c.Scrape.BatchSize = defaultInt(c.Scrape.BatchSize, 10)
	c.Scrape.PollEverySeconds = defaultInt(c.Scrape.PollEverySeconds, 15)
	c.Scrape.TimeoutSeconds = defaultInt(c.Scrape.TimeoutSeconds, 30)
	if c.Scrape.RequestsPerSecond <= 0 {
		c.Scrape.RequestsPerSecond = 2
	}
	c.Scrape.UserAgent = getConfigValue(c.Scrape.UserAgent, "SCRAPE_USER_AGENT", "ai-promoter/1.0 (+content scraper)")
	c.Scrape.Queue = getConfigValue(c.Scrape.Queue, "SCRAPE_QUEUE", "database")

	c.Campaign.UTMParams = getConfigValue(c.Campaign.UTMParams, "UTM_PARAMS", "")

	c.Digest.IntervalHours = defaultInt(c.Digest.IntervalHours, 24)
	c.Digest.ChunkSize = defaultInt(c.Digest.ChunkSize, 15)
}

func initIntegrations(c *Config) {
	c.LinkedIn.ClientID = getConfigValue(c.LinkedIn.ClientID, "LINKEDIN_CLIENT_ID", "")
	c.LinkedIn.ClientSecret = getConfigValue(c.LinkedIn.ClientSecret, "LINKEDIN_CLIENT_SECRET", "")
	c.LinkedIn.RedirectURI = getConfigValue(c.LinkedIn.RedirectURI, "LINKEDIN_REDIRECT_URI", c.App.BaseURL+"/auth/linkedin/callback")
	if len(c.LinkedIn.Scopes) == 0 {
		c.LinkedIn.Scopes = []string{"openid", "profile", "email", "w_member_social"}
	}
	c.LinkedIn.APIBaseURL = strings.TrimRight(getConfigValue(c.LinkedIn.APIBaseURL, "LINKEDIN_API_BASE_URL", "https://api.linkedin.com/v2"), "/")
	c.LinkedIn.AuthURL = getConfigValue(c.LinkedIn.AuthURL, "LINKEDIN_AUTH_URL", "https://www.linkedin.com/oauth/v2/authorization")
	c.LinkedIn.TokenURL = getConfigValue(c.LinkedIn.TokenURL, "LINKEDIN_TOKEN_URL", "https://www.linkedin.com/oauth/v2/accessToken")
	c.LinkedIn.RevokeURL = getConfigValue(c.LinkedIn.RevokeURL, "LINKEDIN_REVOKE_URL", "https://www.linkedin.com/oauth/v2/revoke")
	c.LinkedIn.RefreshSkewMinutes = defaultInt(c.LinkedIn.RefreshSkewMinutes, 5)
	c.LinkedIn.SweepWindowDays = defaultInt(c.LinkedIn.SweepWindowDays, 7)
	c.LinkedIn.SweepIntervalHours = defaultInt(c.LinkedIn.SweepIntervalHours, 24)

	c.Gemini.APIKey = getConfigValue(c.Gemini.APIKey, "GEMINI_API_KEY", "")
	c.Gemini.Model = getConfigValue(c.Gemini.Model, "GEMINI_MODEL", "gemini-1.5-pro")
	c.Gemini.Endpoint = getConfigValue(c.Gemini.Endpoint, "GEMINI_ENDPOINT", "")
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.1
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = 1000
	}
	c.Gemini.MaxInputChars = defaultInt(c.Gemini.MaxInputChars, 60000)

	c.Slack.BotToken = getConfigValue(c.Slack.BotToken, "SLACK_BOT_TOKEN", "")
	c.Slack.DefaultChannelID = getConfigValue(c.Slack.DefaultChannelID, "SLACK_DEFAULT_CHANNEL_ID", "")
	c.Slack.NotificationsEnabled = getEnvBool("SLACK_NOTIFICATIONS_ENABLED", c.Slack.NotificationsEnabled)
	c.Slack.APIURL = getConfigValue(c.Slack.APIURL, "SLACK_API_URL", "")

	c.Pubsub.ProjectID = getConfigValue(c.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	c.Pubsub.Topic = getConfigValue(c.Pubsub.Topic, "PUBSUB_TOPIC", "promoter-events")
	c.ServiceBus.Namespace = getConfigValue(c.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	c.ServiceBus.Queue = getConfigValue(c.ServiceBus.Queue, "SERVICEBUS_QUEUE", "scrape-jobs")
}

func (f Feeds) Timeout() time.Duration { return time.Duration(f.TimeoutSeconds) * time.Second }

func (f Feeds) PollInterval() time.Duration { return time.Duration(f.PollIntervalMinutes) * time.Minute }

func (s Scrape) BaseDelay() time.Duration { return time.Duration(s.BaseDelaySeconds) * time.Second }

func (s Scrape) PollEvery() time.Duration { return time.Duration(s.PollEverySeconds) * time.Second }

func (s Scrape) Timeout() time.Duration { return time.Duration(s.TimeoutSeconds) * time.Second }

func (l LinkedIn) RefreshSkew() time.Duration { return time.Duration(l.RefreshSkewMinutes) * time.Minute }

func (l LinkedIn) SweepWindow() time.Duration {
	return time.Duration(l.SweepWindowDays) * 24 * time.Hour
}

func (l LinkedIn) SweepInterval() time.Duration {
	return time.Duration(l.SweepIntervalHours) * time.Hour
}

func (d Digest) Interval() time.Duration { return time.Duration(d.IntervalHours) * time.Hour }

// DSN returns a lib/pq connection string, preferring an explicit DATABASE_URL.
func (d Db) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
