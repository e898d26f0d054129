// Package config loads settings from an optional config file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/liaozensiang/ebook-translater/internal/llm"
)

type Config struct {
	LLM struct {
		llm.BackendConfig `mapstructure:",squash"`
		RateLimit         float64 `mapstructure:"rate_limit"`
		MaxRetries        int     `mapstructure:"max_retries"`
	} `mapstructure:"llm"`

	Translation struct {
		SrcLang   string `mapstructure:"src_lang"`
		TgtLang   string `mapstructure:"tgt_lang"`
		BatchSize int    `mapstructure:"batch_size"`
	} `mapstructure:"translation"`

	Session struct {
		WorkDir string `mapstructure:"work_dir"`
	} `mapstructure:"session"`

	Glossary struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"glossary"`

	Cache struct {
		DB string `mapstructure:"db"`
	} `mapstructure:"cache"`

	Server struct {
		Port      int    `mapstructure:"port"`
		StaticDir string `mapstructure:"static_dir"`
	} `mapstructure:"server"`

	Google struct {
		Credentials string `mapstructure:"credentials"`
	} `mapstructure:"google"`
}

// Environment variables honoured without the EBT_ prefix.
var legacyEnv = map[string]string{
	"llm.base_url": "LLM_API_URL",
	"llm.api_key":  "LLM_API_KEY",
	"llm.model":    "LLM_MODEL",
}

// SetDefaults registers every key with its default so that AutomaticEnv and
// Unmarshal see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "http://vllm:8000/v1")
	v.SetDefault("llm.api_key", "sk-test")
	v.SetDefault("llm.model", "Qwen/Qwen2.5-7B-Instruct")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.rate_limit", 0.0)
	v.SetDefault("llm.max_retries", 1)

	v.SetDefault("translation.src_lang", "Japanese")
	v.SetDefault("translation.tgt_lang", "Traditional Chinese")
	v.SetDefault("translation.batch_size", 10)

	v.SetDefault("session.work_dir", "work_session")
	v.SetDefault("glossary.path", "glossary.json")
	v.SetDefault("cache.db", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("google.credentials", "")
}

// Init prepares v: defaults, environment binding and, when cfgFile is set,
// the config file. Environment keys use the EBT_ prefix with dots replaced
// by underscores (EBT_LLM_MODEL), plus the unprefixed LLM_API_URL,
// LLM_API_KEY and LLM_MODEL.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix("ebt")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "EBT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	return nil
}

// Load decodes the resolved settings.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
