package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Sql    SqlConfig    `toml:"sql"`
	Redis  RedisConfig  `toml:"redis"`
	Jwt    JwtConfig    `toml:"jwt"`
	Log    LogConfig    `toml:"log"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	Mode string `toml:"mode"` // debug/release
}

type SqlConfig struct {
	Dsn             string `toml:"dsn"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifeMins int    `toml:"conn_max_life_mins"`
}

type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	MaxRetries int    `toml:"max_retries"`
	// 重连退避区间，毫秒。有上限，不会无限退
	MinRetryBackoffMs int `toml:"min_retry_backoff_ms"`
	MaxRetryBackoffMs int `toml:"max_retry_backoff_ms"`
}

type JwtConfig struct {
	AccessSecret       string `toml:"access_secret"`
	RefreshSecret      string `toml:"refresh_secret"`
	AccessExpireHours  int    `toml:"access_expire_hours"`
	RefreshExpireHours int    `toml:"refresh_expire_hours"`
	UserInfoTTLSecs    int    `toml:"user_info_ttl_secs"`
	CaptchaTTLSecs     int    `toml:"captcha_ttl_secs"`
}

func (j JwtConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessExpireHours) * time.Hour
}

func (j JwtConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshExpireHours) * time.Hour
}

func (j JwtConfig) UserInfoTTL() time.Duration {
	return time.Duration(j.UserInfoTTLSecs) * time.Second
}

func (j JwtConfig) CaptchaTTL() time.Duration {
	return time.Duration(j.CaptchaTTLSecs) * time.Second
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text/json
}

// GetConfig 读取并校验配置文件
func GetConfig(path string) (*Config, error) {
	cfg := Config{}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Sql.MaxOpenConns == 0 {
		c.Sql.MaxOpenConns = 50
	}
	if c.Sql.MaxIdleConns == 0 {
		c.Sql.MaxIdleConns = 10
	}
	if c.Sql.ConnMaxLifeMins == 0 {
		c.Sql.ConnMaxLifeMins = 60
	}
	if c.Redis.MaxRetries == 0 {
		c.Redis.MaxRetries = 3
	}
	if c.Redis.MinRetryBackoffMs == 0 {
		c.Redis.MinRetryBackoffMs = 8
	}
	if c.Redis.MaxRetryBackoffMs == 0 {
		c.Redis.MaxRetryBackoffMs = 512
	}
	if c.Jwt.AccessExpireHours == 0 {
		c.Jwt.AccessExpireHours = 7 * 24
	}
	if c.Jwt.RefreshExpireHours == 0 {
		c.Jwt.RefreshExpireHours = 30 * 24
	}
	if c.Jwt.UserInfoTTLSecs == 0 {
		c.Jwt.UserInfoTTLSecs = 1800
	}
	if c.Jwt.CaptchaTTLSecs == 0 {
		c.Jwt.CaptchaTTLSecs = 300
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate 缺了不能跑的项直接报出来，不用半残配置起服务
func (c *Config) Validate() error {
	var missing []string
	if c.Sql.Dsn == "" {
		missing = append(missing, "sql.dsn")
	}
	if c.Redis.Addr == "" {
		missing = append(missing, "redis.addr")
	}
	if c.Jwt.AccessSecret == "" {
		missing = append(missing, "jwt.access_secret")
	}
	if c.Jwt.RefreshSecret == "" {
		missing = append(missing, "jwt.refresh_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config keys: %v", missing)
	}
	return nil
}
