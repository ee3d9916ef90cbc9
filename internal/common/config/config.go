// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Commerce  CommerceConfig  `mapstructure:"commerce"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Caches    CachesConfig    `mapstructure:"caches"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Specific Configuration Sections ---

// AuthConfig holds settings for the commerce token endpoint. The token URL may
// contain an {env} placeholder that is substituted per request.
type AuthConfig struct {
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	GrantType    string `mapstructure:"grant_type"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// CommerceConfig holds settings for the commerce backend tools.
type CommerceConfig struct {
	Timeout        int `mapstructure:"timeout"` // milliseconds
	OrderRefine    int `mapstructure:"order_refine_code"`
	StoreLimit     int `mapstructure:"store_limit"`
	ProfileFields  int `mapstructure:"profile_fields"`
	MaxToolRetries int `mapstructure:"max_tool_retries"`
}

// LLMConfig holds settings for the completion API.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// RetrievalConfig holds settings for the per-concept vector stores.
type RetrievalConfig struct {
	TopK           int  `mapstructure:"top_k"`
	ContextDocs    int  `mapstructure:"context_docs"`
	WarmOnStart    bool `mapstructure:"warm_on_start"`
	ChunkSentences int  `mapstructure:"chunk_sentences"`
}

// CachesConfig holds settings for the response and classifier caches.
type CachesConfig struct {
	Response   ResponseCacheConfig `mapstructure:"response"`
	Classifier LRUCacheConfig      `mapstructure:"classifier"`
}

type ResponseCacheConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "redis"
	Size    int    `mapstructure:"size"`
	TTL     int    `mapstructure:"ttl"` // seconds, redis backend only
}

type LRUCacheConfig struct {
	Size int `mapstructure:"size"`
}

// AnalyticsConfig holds settings for conversation tracking.
type AnalyticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
	Table   string `mapstructure:"table"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
