package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 事实来源
const (
	FactSourceSPARQL   = "sparql"
	FactSourceDatabase = "database"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	StaticDir      string   `yaml:"static_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SPARQLConfig 三元组存储端点配置
type SPARQLConfig struct {
	Endpoint     string `yaml:"endpoint" validate:"required,url"`
	TimeoutMS    int    `yaml:"timeout_ms" validate:"gte=0"`
	RetryLimit   int    `yaml:"retry_limit" validate:"gte=0,lte=10"`
	RetryDelayMS int    `yaml:"retry_delay_ms" validate:"gte=0"`
}

// DatabaseConfig PostgreSQL 配置 (事实快照与用户表)
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" validate:"required_if=Enabled true"`
	Port     string `yaml:"port" validate:"required_if=Enabled true"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required_if=Enabled true"`
	SSLMode  string `yaml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	TimeZone string `yaml:"timezone"`
}

// DSN gorm postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// AuthConfig JWT 配置
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" validate:"required,min=16"`
	TokenTTLHours int    `yaml:"token_ttl_hours" validate:"gt=0"`
	ProtectQuery  bool   `yaml:"protect_query"`
	AdminPassword string `yaml:"admin_password" validate:"omitempty,min=6"` // 为空时不创建管理员
}

// CacheConfig 目录接口 (站点/线路列表) 的内存缓存
type CacheConfig struct {
	Size       int `yaml:"size" validate:"gt=0"`
	TTLSeconds int `yaml:"ttl_seconds" validate:"gte=0"`
}

// LogConfig 日志配置
type LogConfig struct {
	Development bool `yaml:"development"`
}

// Config 应用配置根结构
type Config struct {
	Server     ServerConfig   `yaml:"server"`
	SPARQL     SPARQLConfig   `yaml:"sparql"`
	FactSource string         `yaml:"fact_source" validate:"oneof=sparql database"`
	Database   DatabaseConfig `yaml:"database"`
	Auth       AuthConfig     `yaml:"auth"`
	Cache      CacheConfig    `yaml:"cache"`
	Log        LogConfig      `yaml:"log"`
}

// Default 默认配置, 对应本地 Fuseki 与本地 PostgreSQL
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		SPARQL: SPARQLConfig{
			Endpoint:     "http://localhost:3030/dataset/sparql",
			TimeoutMS:    20000,
			RetryLimit:   1,
			RetryDelayMS: 200,
		},
		FactSource: FactSourceSPARQL,
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "metro",
			Password: "metro",
			Name:     "metro",
			SSLMode:  "disable",
			TimeZone: "Europe/Madrid",
		},
		Auth: AuthConfig{
			JWTSecret:     "change-me-in-production-please",
			TokenTTLHours: 24,
		},
		Cache: CacheConfig{
			Size:       64,
			TTLSeconds: 60,
		},
	}
}

// Load 依次读取 .env, 配置文件 (不存在则使用默认值) 和环境变量, 最后校验
func Load(paths ...string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv 读取 .env, 文件不存在不算错误, 格式错误要报出来
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Validate 校验字段和字段之间的约束
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.FactSource == FactSourceDatabase && !c.Database.Enabled {
		return errors.New("invalid config: fact_source database requires database.enabled")
	}
	return nil
}

// applyEnv 环境变量覆盖配置文件 (方便 Docker 部署)
func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	cfg.Server.StaticDir = getEnvOrDefault("STATIC_DIR", cfg.Server.StaticDir)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	cfg.SPARQL.Endpoint = getEnvOrDefault("SPARQL_ENDPOINT", cfg.SPARQL.Endpoint)
	cfg.FactSource = getEnvOrDefault("FACT_SOURCE", cfg.FactSource)

	if v := os.Getenv("DB_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DB_ENABLED %q: %w", v, err)
		}
		cfg.Database.Enabled = enabled
	}
	cfg.Database.Host = getEnvOrDefault("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvOrDefault("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnvOrDefault("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnvOrDefault("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnvOrDefault("DB_NAME", cfg.Database.Name)

	cfg.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminPassword = getEnvOrDefault("ADMIN_PASSWORD", cfg.Auth.AdminPassword)
	return nil
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
