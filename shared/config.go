package shared

import (
	"encoding/json"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
	"log"
	"os"
	"time"
)

const (
	configVarName  = "CONFIG"                      // If set, will load config.json from this path and not from devConfigPath
	secretsVarName = "SECRETS"                     // If set, will load secrets.json from this path and not from devSecretsPath
	devConfigPath  = "../../dev/config.dev.jsonc"  // Path to config.json in development environment
	devSecretsPath = "../../dev/secrets.dev.jsonc" // Path to config.json in development environment
)

const (
	FederationModeAll       = "all"
	FederationModeSpecified = "specified"
	FederationModeNone      = "none"
)

const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	Secrets          Secrets          `json:"-"`
	LogFile          string           `json:"log_file"`
	LogLevel         string           `json:"log_level"`
	ServicePort      uint             `json:"service_port"`
	Host             string           `json:"host"`
	DbFile           string           `json:"db_file"`
	BlockedHostsFile string           `json:"blocked_hosts_file"`
	ProfileDir       string           `json:"profile_dir"`
	ProfileKeepDays  int              `json:"profile_keep_days"`
	SystemActor      *UserInfo        `json:"system_actor"`
	Federation       FederationConfig `json:"federation"`
	Delivery         DeliveryConfig   `json:"delivery"`
	Locks            LockConfig       `json:"locks"`
}

type UserInfo struct {
	User           string    `json:"user"`
	Published      time.Time `json:"published"`
	PubKey         string    `json:"pub_key"`
	PrivKey        string    `json:"priv_key"`
	Ed25519PrivKey string    `json:"ed25519_priv_key"`
}

type FederationConfig struct {
	Mode                       string            `json:"mode"`
	BlockedHosts               []string          `json:"blocked_hosts"`
	AllowedHosts               []string          `json:"allowed_hosts"`
	SignedFetch                bool              `json:"signed_fetch"`
	SigLevelOverrides          map[string]string `json:"sig_level_overrides"`
	AutoSuspendDays            int               `json:"auto_suspend_days"`
	SuspendedHostsCacheMinutes int               `json:"suspended_hosts_cache_minutes"`
	FetchInstanceMetadata      bool              `json:"fetch_instance_metadata"`
	ResolveRecursionLimit      int               `json:"resolve_recursion_limit"`
}

type DeliveryConfig struct {
	MaxAttempts       int     `json:"max_attempts"`
	MaxParallelSends  int     `json:"max_parallel_sends"`
	RequestTimeoutSec int     `json:"request_timeout_sec"`
	PerHostRps        float64 `json:"per_host_rps"`
	BackoffBaseSec    int     `json:"backoff_base_sec"`
	BackoffMaxSec     int     `json:"backoff_max_sec"`
}

type LockConfig struct {
	Backend           string `json:"backend"`
	RedisAddr         string `json:"redis_addr"`
	RedisDb           int    `json:"redis_db"`
	LeaseSec          int    `json:"lease_sec"`
	AcquireTimeoutSec int    `json:"acquire_timeout_sec"`
}

type Secrets struct {
	PrivKeyPass   string   `json:"privkey_passphrase"`
	MetricsAuth   string   `json:"metrics_auth"`
	ApiKeys       []string `json:"api_keys"`
	RedisPassword string   `json:"redis_password"`
}

func (cfg *Config) AutoSuspendAfter() time.Duration {
	return time.Duration(cfg.Federation.AutoSuspendDays) * 24 * time.Hour
}

func (cfg *Config) SuspendedHostsCacheTtl() time.Duration {
	return time.Duration(cfg.Federation.SuspendedHostsCacheMinutes) * time.Minute
}

func LoadConfig() *Config {

	// Where are our config and secrets files?
	flags := pflag.NewFlagSet("fedi_engine", pflag.ExitOnError)
	cfgPath := flags.String("config", os.Getenv(configVarName), "path to config.jsonc")
	secretsPath := flags.String("secrets", os.Getenv(secretsVarName), "path to secrets.jsonc")
	_ = flags.Parse(os.Args[1:])
	if len(*cfgPath) == 0 {
		*cfgPath = devConfigPath
	}
	if len(*secretsPath) == 0 {
		*secretsPath = devSecretsPath
	}

	// Read config file
	var config Config
	mustDeserializeFile(*cfgPath, &config)
	// Read secrets member from secrets file
	mustDeserializeFile(*secretsPath, &config.Secrets)
	config.ApplyDefaults()
	return &config
}

// ApplyDefaults fills in every tunable that was left at its zero value.
func (cfg *Config) ApplyDefaults() {
	if cfg.Federation.Mode == "" {
		cfg.Federation.Mode = FederationModeAll
	}
	if cfg.Federation.AutoSuspendDays <= 0 {
		cfg.Federation.AutoSuspendDays = 7
	}
	if cfg.Federation.SuspendedHostsCacheMinutes <= 0 {
		cfg.Federation.SuspendedHostsCacheMinutes = 60
	}
	if cfg.Federation.ResolveRecursionLimit <= 0 {
		cfg.Federation.ResolveRecursionLimit = 100
	}
	if cfg.Delivery.MaxAttempts <= 0 {
		cfg.Delivery.MaxAttempts = 12
	}
	if cfg.Delivery.MaxParallelSends <= 0 {
		cfg.Delivery.MaxParallelSends = 5
	}
	if cfg.Delivery.RequestTimeoutSec <= 0 {
		cfg.Delivery.RequestTimeoutSec = 10
	}
	if cfg.Delivery.PerHostRps <= 0 {
		cfg.Delivery.PerHostRps = 10
	}
	if cfg.Delivery.BackoffBaseSec <= 0 {
		cfg.Delivery.BackoffBaseSec = 60
	}
	if cfg.Delivery.BackoffMaxSec <= 0 {
		cfg.Delivery.BackoffMaxSec = 8 * 60 * 60
	}
	if cfg.ProfileKeepDays <= 0 {
		cfg.ProfileKeepDays = 2
	}
	if cfg.Locks.Backend == "" {
		cfg.Locks.Backend = LockBackendMemory
	}
	if cfg.Locks.LeaseSec <= 0 {
		cfg.Locks.LeaseSec = 30
	}
	if cfg.Locks.AcquireTimeoutSec <= 0 {
		cfg.Locks.AcquireTimeoutSec = 10
	}
}

func mustDeserializeFile[T any](fileName string, obj *T) {
	var err error
	var cfgJson []byte
	cfgJson, err = os.ReadFile(fileName)
	if err != nil {
		log.Fatal(err)
	}
	// JSONC => JSON
	cfgJson, err = standardizeJSON(cfgJson)
	if err != nil {
		log.Fatal(err)
	}
	// Parse
	if err := json.Unmarshal(cfgJson, obj); err != nil {
		log.Fatal(err)
	}
}

func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return b, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}
