// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Поддерживаемые бэкенды хранилища blockhash.
const (
	StoreMemory  = "memory"
	StoreLevelDB = "leveldb"
	StoreRedis   = "redis"
)

type Config struct {
	RPCURL           string          `mapstructure:"rpc_url"`
	FeeAPIURL        string          `mapstructure:"fee_api_url"`
	PriorityLevel    string          `mapstructure:"priority_level"`
	FeeSettingsPath  string          `mapstructure:"fee_settings_path"`
	ComputeUnitLimit uint32          `mapstructure:"compute_unit_limit"`
	PrivateKey       string          `mapstructure:"private_key"`
	KeypairPath      string          `mapstructure:"keypair_path"`
	MetricsAddr      string          `mapstructure:"metrics_addr"`
	DebugLogging     bool            `mapstructure:"debug_logging"`
	LogFile          string          `mapstructure:"log_file"`
	Blockhash        BlockhashConfig `mapstructure:"blockhash"`
}

type BlockhashConfig struct {
	TTLMs         int    `mapstructure:"ttl_ms"`
	Store         string `mapstructure:"store"`
	Namespace     string `mapstructure:"namespace"`
	LevelDBPath   string `mapstructure:"leveldb_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RefreshMs     int    `mapstructure:"refresh_ms"`
}

const (
	DefaultBlockhashTTLMs   = 5000
	DefaultRefreshMs        = 2000
	DefaultComputeUnitLimit = 200_000
	DefaultNamespace        = "blockhash-cache"
	DefaultFeeSettingsPath  = "fee-settings.json"
	DefaultLevelDBPath      = "data/blockhash"
	DefaultLogFile          = "txprep.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"fee_settings_path":      DefaultFeeSettingsPath,
		"compute_unit_limit":     DefaultComputeUnitLimit,
		"log_file":               DefaultLogFile,
		"blockhash.ttl_ms":       DefaultBlockhashTTLMs,
		"blockhash.store":        StoreMemory,
		"blockhash.namespace":    DefaultNamespace,
		"blockhash.leveldb_path": DefaultLevelDBPath,
		"blockhash.refresh_ms":   DefaultRefreshMs,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if cfg.FeeAPIURL != "" {
		if err := validateURLWithCache(cfg.FeeAPIURL, "http"); err != nil {
			return errors.New("invalid fee API URL protocol")
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	return validateBlockhashStore(&cfg.Blockhash)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Blockhash.TTLMs <= 0 {
		return errors.New("invalid blockhash.ttl_ms")
	}
	if cfg.Blockhash.RefreshMs <= 0 {
		return errors.New("invalid blockhash.refresh_ms")
	}
	if cfg.ComputeUnitLimit == 0 {
		return errors.New("invalid compute_unit_limit")
	}
	return nil
}

func validateBlockhashStore(cfg *BlockhashConfig) error {
	switch cfg.Store {
	case StoreMemory:
	case StoreLevelDB:
		if cfg.LevelDBPath == "" {
			return errors.New("blockhash.leveldb_path is required for leveldb store")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return errors.New("blockhash.redis_addr is required for redis store")
		}
	default:
		return errors.New("unknown blockhash.store: " + cfg.Store)
	}
	if cfg.Namespace == "" {
		return errors.New("blockhash.namespace is empty")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("TXPREP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envRPC := strings.TrimSpace(v.GetString("RPC_URL")); envRPC != "" {
		cfg.RPCURL = envRPC
	}
	if envFeeAPI := strings.TrimSpace(v.GetString("FEE_API_URL")); envFeeAPI != "" {
		cfg.FeeAPIURL = envFeeAPI
	}
	if envKey := v.GetString("PRIVATE_KEY"); envKey != "" {
		cfg.PrivateKey = envKey
	}
	if envRedis := v.GetString("REDIS_ADDR"); envRedis != "" {
		cfg.Blockhash.RedisAddr = envRedis
	}
	return nil
}
