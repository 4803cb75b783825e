package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// SupportedConfigVersion is the config schema version this build understands.
const SupportedConfigVersion = "1"

// Config represents the complete configuration structure
type Config struct {
	Version   string          `yaml:"version" default:"1"`
	Site      SiteConfig      `yaml:"site"`
	Server    ServerConfig    `yaml:"server"`
	Theme     ThemeConfig     `yaml:"theme"`
	Content   ContentConfig   `yaml:"content"`
	Features  FeaturesConfig  `yaml:"features"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
	AI        AIConfig        `yaml:"ai"`
	Media     MediaConfig     `yaml:"media"`
	Meta      MetaConfig      `yaml:"meta"`
	Social    SocialConfig    `yaml:"social"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"Apogee"`
	URL         string `yaml:"url" default:"http://localhost:12700"`
	Description string `yaml:"description" default:"Discover insightful articles, stories, and ideas from talented writers"`
	Tagline     string `yaml:"tagline" default:"Welcome to Apogee"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12700"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" default:"dark"`
	AllowSwitching     bool         `yaml:"allow_switching" default:"true"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

type ContentConfig struct {
	PostsPerPage int `yaml:"posts_per_page" default:"50"`
}

type FeaturesConfig struct {
	Authentication AuthConfig     `yaml:"authentication"`
	Editor         EditorConfig   `yaml:"editor"`
	Analytics      FeatureFlag    `yaml:"analytics"`
	Feeds          FeatureFlag    `yaml:"feeds"`
	Comments       CommentsConfig `yaml:"comments"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Type    string `yaml:"type" default:"clerk"`
}

type EditorConfig struct {
	Enabled     bool `yaml:"enabled" default:"true"`
	LivePreview bool `yaml:"live_preview" default:"true"`
}

type FeatureFlag struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// Comments are off until a comment backend ships.
type CommentsConfig struct {
	Enabled bool `yaml:"enabled" default:"false"`
}

// AnalyticsConfig tunes the view/read-time aggregation pipeline.
type AnalyticsConfig struct {
	// MinReadSeconds is the engagement floor below which read-time samples are dropped.
	MinReadSeconds int `yaml:"min_read_seconds" default:"10"`
	// BufferSize is the capacity of the in-flight event buffer.
	BufferSize int `yaml:"buffer_size" default:"1024"`
	// FlushIntervalSeconds is how often buffered events are written out.
	FlushIntervalSeconds int `yaml:"flush_interval_seconds" default:"5"`
	// FlushThreshold is the batch size that forces an early flush.
	FlushThreshold int `yaml:"flush_threshold" default:"50"`

	// RemoteEndpoint, when set, forwards events to an external collector
	// instead of the local database.
	RemoteEndpoint string `yaml:"remote_endpoint" default:""`
}

// AutosaveConfig tunes the editor draft auto-save engine.
type AutosaveConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
	// DelayMs is the debounce quiet period before an in-progress draft is persisted.
	DelayMs int `yaml:"delay_ms" default:"3000"`
}

// AIConfig selects and configures the writing-assistant provider.
// API keys come from the environment, never from the config file.
type AIConfig struct {
	Enabled  bool   `yaml:"enabled" default:"false"`
	Provider string `yaml:"provider" default:"openai"`

	OpenAIModel    string `yaml:"openai_model" default:"gpt-4-turbo-preview"`
	AnthropicModel string `yaml:"anthropic_model" default:"claude-3-sonnet-20240229"`
	GeminiModel    string `yaml:"gemini_model" default:"gemini-2.5-flash"`

	MaxTags int `yaml:"max_tags" default:"5"`
}

// MediaConfig configures the S3-compatible bucket used for featured images.
type MediaConfig struct {
	Enabled  bool   `yaml:"enabled" default:"false"`
	Bucket   string `yaml:"bucket" default:"apogee-media"`
	Endpoint string `yaml:"endpoint" default:""`

	// PublicURL is the base URL media objects are served from.
	PublicURL string `yaml:"public_url" default:""`
}

type MetaConfig struct {
	Author   string   `yaml:"author" default:""`
	Keywords []string `yaml:"keywords" default:"blog,writing,stories"`
	Favicon  string   `yaml:"favicon" default:"/static/favicon.ico"`
}

type SocialConfig struct {
	GitHub   string `yaml:"github" default:""`
	Twitter  string `yaml:"twitter" default:""`
	LinkedIn string `yaml:"linkedin" default:""`
	Email    string `yaml:"email" default:""`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Version != SupportedConfigVersion {
		return fmt.Errorf("unsupported configuration version %q, expected %q", config.Version, SupportedConfigVersion)
	}

	AppConfig = config
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
