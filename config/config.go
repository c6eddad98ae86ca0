// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dappstore.GO/service/registry"
	"dappstore.GO/service/search"
)

// Config is the full service configuration.
type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	Auth     Auth
	Registry Registry
	GitHub   GitHub
	Elastic  Elastic
	Redis    Redis
	DB       DB
	Cron     Cron
	Boosts   search.Boosts
}

// Auth configures the admin API.
type Auth struct {
	// Type is "basic", "key" or "token".
	Type   string
	APIKey string
	User   string
	Pass   string
	// Maintainers may edit registry featured sections and, with token auth,
	// call the admin API.
	Maintainers []string
}

type Registry struct {
	Strategy     registry.Strategy
	CacheTTL     time.Duration
	FetchTimeout time.Duration
	RegistryURL  string
	StoresURL    string
}

type GitHub struct {
	Owner      string
	Repo       string
	Host       string
	APIURL     string
	APITimeout time.Duration
	ForkWait   time.Duration
}

type Elastic struct {
	Addresses []string
	Username  string
	Password  string
	// IndexPrefix is the environment part of index and alias names.
	IndexPrefix string
}

type Redis struct {
	Addr string
	Pass string
	DB   int
	// Prefix namespaces every key of this service.
	Prefix string
}

type DB struct {
	// DSN selects MySQL when set; otherwise the ledger uses SQLitePath.
	DSN        string
	SQLitePath string
	LogOff     bool
}

var defaults = map[string]any{
	"APP_NAME":               "dappstore",
	"PORT":                   "8080",
	"APP_ENV":                "production",
	"DEBUG":                  false,
	"AUTH_TYPE":              "basic",
	"REGISTRY_STRATEGY":      string(registry.StrategyRemote),
	"REGISTRY_CACHE_TTL":     registry.DefaultTTL,
	"REGISTRY_FETCH_TIMEOUT": 10 * time.Second,
	"GITHUB_OWNER":           "polygon-dappstore",
	"GITHUB_REPO":            "registry",
	"GITHUB_HOST":            "github.com",
	"GITHUB_API_TIMEOUT":     30 * time.Second,
	"GITHUB_FORK_WAIT":       10 * time.Second,
	"ELASTICSEARCH_HOST":     "http://localhost:9200",
	"ENVIRONMENT":            "dev",
	"REDIS_PREFIX":           "dappstore",
	"MYSQL_PORT":             "3306",
	"SQLITE_PATH":            "dappstore.db",
	"BOOST_NAME":             search.DefaultBoosts.Name,
	"BOOST_DESCRIPTION":      search.DefaultBoosts.Description,
	"BOOST_DAPP_ID":          search.DefaultBoosts.DAppID,
	"BOOST_CATEGORY":         search.DefaultBoosts.Category,
	"CRON_REFRESH":           DefaultRefreshSchedule,
	"CRON_REINDEX":           DefaultReindexSchedule,
}

// Load reads the configuration from the environment. Call LoadEnv first to
// pick up a .env file.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		Port:    v.GetString("PORT"),
		Env:     v.GetString("APP_ENV"),
		Debug:   v.GetBool("DEBUG"),
		Auth: Auth{
			Type:        strings.ToLower(v.GetString("AUTH_TYPE")),
			APIKey:      v.GetString("API_KEY"),
			User:        v.GetString("API_USER"),
			Pass:        v.GetString("API_PASS"),
			Maintainers: list(v.GetString("MAINTAINERS")),
		},
		Registry: Registry{
			Strategy:     registry.Strategy(strings.ToLower(v.GetString("REGISTRY_STRATEGY"))),
			CacheTTL:     v.GetDuration("REGISTRY_CACHE_TTL"),
			FetchTimeout: v.GetDuration("REGISTRY_FETCH_TIMEOUT"),
			RegistryURL:  v.GetString("REGISTRY_URL"),
			StoresURL:    v.GetString("STORES_URL"),
		},
		GitHub: GitHub{
			Owner:      v.GetString("GITHUB_OWNER"),
			Repo:       v.GetString("GITHUB_REPO"),
			Host:       v.GetString("GITHUB_HOST"),
			APIURL:     v.GetString("GITHUB_API_URL"),
			APITimeout: v.GetDuration("GITHUB_API_TIMEOUT"),
			ForkWait:   v.GetDuration("GITHUB_FORK_WAIT"),
		},
		Elastic: Elastic{
			Addresses:   list(v.GetString("ELASTICSEARCH_HOST")),
			Username:    v.GetString("ELASTICSEARCH_USER"),
			Password:    v.GetString("ELASTICSEARCH_PASS"),
			IndexPrefix: v.GetString("ELASTICSEARCH_INDEX_PREFIX"),
		},
		Redis: Redis{
			Addr:   v.GetString("REDIS_ADDR"),
			Pass:   v.GetString("REDIS_PASS"),
			DB:     v.GetInt("REDIS_DB"),
			Prefix: v.GetString("REDIS_PREFIX"),
		},
		DB: DB{
			DSN:        mysqlDSN(v),
			SQLitePath: v.GetString("SQLITE_PATH"),
			LogOff:     v.GetString("GORM_LOG") == "off",
		},
		Cron: Cron{
			Refresh: v.GetString("CRON_REFRESH"),
			Reindex: v.GetString("CRON_REINDEX"),
		},
		Boosts: search.Boosts{
			Name:        v.GetFloat64("BOOST_NAME"),
			Description: v.GetFloat64("BOOST_DESCRIPTION"),
			DAppID:      v.GetFloat64("BOOST_DAPP_ID"),
			Category:    v.GetFloat64("BOOST_CATEGORY"),
		},
	}
	if cfg.Elastic.IndexPrefix == "" {
		cfg.Elastic.IndexPrefix = v.GetString("ENVIRONMENT")
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Registry.Strategy {
	case registry.StrategyRemote, registry.StrategyStatic:
	default:
		return fmt.Errorf("REGISTRY_STRATEGY must be %q or %q, got %q",
			registry.StrategyRemote, registry.StrategyStatic, c.Registry.Strategy)
	}
	switch c.Auth.Type {
	case "basic", "key", "token":
	default:
		return fmt.Errorf("AUTH_TYPE must be basic, key or token, got %q", c.Auth.Type)
	}
	if c.Auth.Type == "key" && c.Auth.APIKey == "" {
		return fmt.Errorf("AUTH_TYPE=key needs API_KEY")
	}
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required")
	}
	return nil
}

func mysqlDSN(v *viper.Viper) string {
	if dsn := v.GetString("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	host := v.GetString("MYSQL_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		v.GetString("MYSQL_USER"), v.GetString("MYSQL_PASS"), host,
		v.GetString("MYSQL_PORT"), v.GetString("MYSQL_DB"))
}

func list(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
