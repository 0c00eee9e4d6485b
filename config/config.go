package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBHost        string `mapstructure:"DB_HOST"`
	DBPort        string `mapstructure:"DB_PORT"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	AccessSecret  string `mapstructure:"ACCESS_SECRET"`
	RefreshSecret string `mapstructure:"REFRESH_SECRET"`
	HTTPPort      string `mapstructure:"HTTP_PORT"`
	CORSOrigins   string `mapstructure:"CORS_ORIGINS"`
	AIAPIURL      string `mapstructure:"AI_API_URL"`
	AIAPIKey      string `mapstructure:"AI_API_KEY"`
	AIModel       string `mapstructure:"AI_MODEL"`

	AccessTTL  time.Duration `mapstructure:"ACCESS_TTL"`
	RefreshTTL time.Duration `mapstructure:"REFRESH_TTL"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	// Явно биндим переменные, чтобы Viper видел их и без файла
	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("ACCESS_SECRET")
	viper.BindEnv("REFRESH_SECRET")
	viper.BindEnv("HTTP_PORT")
	viper.BindEnv("CORS_ORIGINS")
	viper.BindEnv("ACCESS_TTL")
	viper.BindEnv("REFRESH_TTL")
	viper.BindEnv("AI_API_URL")
	viper.BindEnv("AI_API_KEY")
	viper.BindEnv("AI_MODEL")

	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("AI_API_URL", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("AI_MODEL", "gpt-4o-mini")
	viper.SetDefault("ACCESS_TTL", 15*time.Minute)
	viper.SetDefault("REFRESH_TTL", 7*24*time.Hour)

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// Файла нет — работаем на ENV
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

func (c Config) CORSOriginList() []string {
	if c.CORSOrigins == "" {
		return []string{"http://localhost:5173"}
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
