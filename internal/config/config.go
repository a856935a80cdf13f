package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	HTTP   HTTPConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Store: store, HTTP: httpCfg}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreKind selects the wish store implementation.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
)

// StoreConfig 描述心愿数据来源。
type StoreConfig struct {
	Kind     StoreKind
	DataFile string
}

func loadStoreConfig() (StoreConfig, error) {
	kind := StoreKind(strings.ToLower(getEnvOrDefault("WISH_STORE", string(StoreMemory))))
	switch kind {
	case StoreMemory, StoreFile:
	default:
		return StoreConfig{}, fmt.Errorf("invalid WISH_STORE value %q: want memory or file", kind)
	}

	return StoreConfig{
		Kind:     kind,
		DataFile: getEnvOrDefault("WISH_DATA_FILE", "data/wishes.json"),
	}, nil
}

// HTTPConfig 描述中间件相关配置。
type HTTPConfig struct {
	AllowedOrigin  string
	MetricsEnabled bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// RateLimitEnabled 表示是否开启限流。
func (c HTTPConfig) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

func loadHTTPConfig() (HTTPConfig, error) {
	metrics, err := parseBoolEnv("METRICS_ENABLED", true)
	if err != nil {
		return HTTPConfig{}, err
	}

	rps := 0.0
	if override, err := parseOptionalFloatEnv("RATE_LIMIT_RPS"); err != nil {
		return HTTPConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return HTTPConfig{}, fmt.Errorf("invalid RATE_LIMIT_RPS value %v: must not be negative", *override)
		}
		rps = *override
	}

	burst := 30
	if override, err := parseOptionalIntEnv("RATE_LIMIT_BURST"); err != nil {
		return HTTPConfig{}, err
	} else if override != nil {
		if *override < 1 {
			burst = 1
		} else {
			burst = *override
		}
	}

	return HTTPConfig{
		AllowedOrigin:  getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
		MetricsEnabled: metrics,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
