package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// BackendConfig REST 后端地址解析配置
//
// 解析顺序：BaseURL（显式指定）> 本地主机名回退 > HostPattern 替换 > RemoteFallback
type BackendConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	LocalFallback   string        `mapstructure:"local_fallback"`
	RemoteFallback  string        `mapstructure:"remote_fallback"`
	HostPattern     string        `mapstructure:"host_pattern"`
	HostReplacement string        `mapstructure:"host_replacement"`
	Scheme          string        `mapstructure:"scheme"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// SessionConfig 会话存储与 Cookie 配置
type SessionConfig struct {
	Driver     string        `mapstructure:"driver"` // redis | postgres | memory
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxIdle    time.Duration `mapstructure:"max_idle"`
	Cookie     CookieConfig  `mapstructure:"cookie"`
}

// CookieConfig Cookie 安全配置
type CookieConfig struct {
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
}

// DatabaseConfig PostgreSQL 数据库配置（仅 session.driver=postgres 时使用）
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UploadConfig 文件上传限制
type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > .env > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_body_bytes", 32<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.local_fallback", "http://localhost:8000")
	v.SetDefault("backend.remote_fallback", "https://api.gestion.example.com")
	v.SetDefault("backend.host_pattern", `^(?:www\.)?app\.`)
	v.SetDefault("backend.host_replacement", "api.")
	v.SetDefault("backend.scheme", "https")
	v.SetDefault("backend.timeout", "30s")

	v.SetDefault("session.driver", "redis")
	v.SetDefault("session.cookie_name", "gestion_sid")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.max_idle", "2h")
	v.SetDefault("session.cookie.secure", false)
	v.SetDefault("session.cookie.same_site", "Lax")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "gestion_portal")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Africa/Casablanca")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("upload.max_file_size", 5<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("GESTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("配置校验失败: session.secret 不能为空")
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("配置校验失败: session.secret 长度不能少于 16 字符")
	}
	switch c.Session.Driver {
	case "redis", "postgres", "memory":
	default:
		return fmt.Errorf("配置校验失败: session.driver 必须为 redis、postgres 或 memory，当前为 %q", c.Session.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("配置校验失败: upload.max_file_size 必须大于 0")
	}
	if c.Backend.BaseURL == "" && c.Backend.LocalFallback == "" && c.Backend.RemoteFallback == "" {
		return fmt.Errorf("配置校验失败: 至少需要配置一个后端地址")
	}
	return nil
}
