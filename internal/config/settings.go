package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Pass string `mapstructure:"pass"`
}

type AssistantConfig struct {
	Provider     string   `mapstructure:"provider"` // openai | gemini | ollama
	Model        string   `mapstructure:"model"`
	OpenAIAPIKey string   `mapstructure:"open_ai_api_key"`
	GeminiAPIKey string   `mapstructure:"gemini_api_key"`
	OllamaURLs   []string `mapstructure:"ollama_urls"`
}

// VoiceConfig selects the synthesis backend and per-language defaults.
type VoiceConfig struct {
	Enabled          bool              `mapstructure:"enabled"`
	SynthURL         string            `mapstructure:"synth_url"` // wss endpoint of the synthesis backend
	APIKey           string            `mapstructure:"api_key"`
	DefaultVoices    map[string]string `mapstructure:"default_voices"` // language tag -> voice id
	Stability        float64           `mapstructure:"stability"`
	Similarity       float64           `mapstructure:"similarity"`
	Style            float64           `mapstructure:"style"`
	KeepaliveSecs    int               `mapstructure:"keepalive_secs"`
	SegmentDelayMs   int               `mapstructure:"segment_delay_ms"`
	AckTimeoutSecs   int               `mapstructure:"ack_timeout_secs"`
	PlaybackQueueCap int               `mapstructure:"playback_queue_cap"`
}

func (v VoiceConfig) KeepaliveWindow() time.Duration {
	if v.KeepaliveSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(v.KeepaliveSecs) * time.Second
}

func (v VoiceConfig) SegmentDelay() time.Duration {
	if v.SegmentDelayMs <= 0 {
		return 150 * time.Millisecond
	}
	return time.Duration(v.SegmentDelayMs) * time.Millisecond
}

// VoiceFor resolves the default voice id for a language tag.
func (v VoiceConfig) VoiceFor(language string) (string, bool) {
	id, ok := v.DefaultVoices[language]
	return id, ok
}

// CommerceConfig points at the external catalog service.
type CommerceConfig struct {
	CatalogURL  string `mapstructure:"catalog_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

func (c CommerceConfig) Timeout() time.Duration {
	if c.TimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

type PipelineConfig struct {
	Languages           []string `mapstructure:"languages"`
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold"`
	MsgTTLMins          int64    `mapstructure:"msg_ttl_mins"`
}

type Settings struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Commerce  CommerceConfig  `mapstructure:"commerce"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Env       string          `mapstructure:"env"`
	Debug     bool            `mapstructure:"debug" default:"false"`
}

func Load() (*Settings, error) {
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
