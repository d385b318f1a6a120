package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Quota     QuotaConfig     `yaml:"quota"`
	Identity  IdentityConfig  `yaml:"identity"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	// Transient failures (deadlock, lost connection) re-run the whole
	// transactional closure up to this many times.
	TxRetryMax    int `yaml:"tx_retry_max"`
	TxRetryBaseMs int `yaml:"tx_retry_base_ms"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type StorageConfig struct {
	// Backend selects the blob store: "disk" or "s3".
	Backend  string   `yaml:"backend"`
	BasePath string   `yaml:"base_path"`
	S3       S3Config `yaml:"s3"`
}

type QuotaConfig struct {
	// MaxUploadSize caps a single write; checked per save, not cumulative.
	MaxUploadSize int64 `yaml:"max_upload_size"`
	// Defaults used when a room/user row carries the inherit sentinel.
	DefaultRoomQuota int64 `yaml:"default_room_quota"`
	DefaultUserQuota int64 `yaml:"default_user_quota"`
	TenantQuota      int64 `yaml:"tenant_quota"`
	// TrashCountsTowardQuota decides whether trashed content keeps occupying
	// byte counters along the trash chain.
	TrashCountsTowardQuota bool `yaml:"trash_counts_toward_quota"`
}

type IdentityConfig struct {
	// ProviderPrefixes are external-provider id prefixes whose tokens can be
	// derived without a mapping lookup.
	ProviderPrefixes []string `yaml:"provider_prefixes"`
	CacheSize        int      `yaml:"cache_size"`
}

type ThumbnailConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Quality int `yaml:"quality"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyDefaults(cfg)
	AppConfig = cfg
	return cfg, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Charset == "" {
		cfg.Database.Charset = "utf8mb4"
	}
	if cfg.Database.TxRetryMax == 0 {
		cfg.Database.TxRetryMax = 3
	}
	if cfg.Database.TxRetryBaseMs == 0 {
		cfg.Database.TxRetryBaseMs = 50
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "disk"
	}
	if cfg.Quota.MaxUploadSize == 0 {
		cfg.Quota.MaxUploadSize = 5 * 1024 * 1024 * 1024
	}
	if len(cfg.Identity.ProviderPrefixes) == 0 {
		cfg.Identity.ProviderPrefixes = []string{
			"sbox-", "box-", "spoint-", "drive-", "dropbox-", "onedrive-", "webdav-",
		}
	}
	if cfg.Identity.CacheSize == 0 {
		cfg.Identity.CacheSize = 1024
	}
	if cfg.Thumbnail.Width == 0 {
		cfg.Thumbnail.Width = 256
	}
	if cfg.Thumbnail.Height == 0 {
		cfg.Thumbnail.Height = 256
	}
	if cfg.Thumbnail.Quality == 0 {
		cfg.Thumbnail.Quality = 85
	}
}
