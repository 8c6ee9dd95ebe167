package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "COOKING"

type Config struct {
	DBPath        string              `mapstructure:"db_path"`
	Log           LogConfig           `mapstructure:"log"`
	USDA          USDAConfig          `mapstructure:"usda"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Lookup        LookupConfig        `mapstructure:"lookup"`
	Recipes       RecipesConfig       `mapstructure:"recipes"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenFoodFactsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type LookupConfig struct {
	Providers     []string      `mapstructure:"providers"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

type RecipesConfig struct {
	Dir string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "")
	v.SetDefault("openfoodfacts.base_url", "")
	v.SetDefault("lookup.providers", []string{"usda"})
	v.SetDefault("lookup.timeout", "12s")
	v.SetDefault("lookup.cache_ttl", "720h")
	v.SetDefault("lookup.redis_addr", "")
	v.SetDefault("lookup.redis_password", "")
	v.SetDefault("lookup.redis_db", 0)
	v.SetDefault("recipes.dir", "recipes")
}

// LoadConfig layers defaults, the config file, a .env file in the working
// directory and COOKING_* environment variables, later layers winning. An
// explicit path must exist; the default config file is optional.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Name used by earlier versions of the tool.
	if err := v.BindEnv("usda.api_key", envPrefix+"_USDA_API_KEY", "NAL_USDA_GOV_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind usda api key: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Lookup.Timeout <= 0 {
		return fmt.Errorf("lookup.timeout must be > 0")
	}
	if cfg.Lookup.CacheTTL <= 0 {
		return fmt.Errorf("lookup.cache_ttl must be > 0")
	}
	providers := make([]string, 0, len(cfg.Lookup.Providers))
	for _, p := range cfg.Lookup.Providers {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			providers = append(providers, p)
		}
	}
	cfg.Lookup.Providers = providers
	return nil
}

// MaskSecret shows only the ends of a secret.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
