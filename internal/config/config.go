package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	MongoURI          string `mapstructure:"MONGO_URI"`
	MongoDatabase     string `mapstructure:"MONGO_DATABASE"`
	RecommendationURL string `mapstructure:"RECOMMENDATION_URL"`
	UserManagementURL string `mapstructure:"USER_MANAGEMENT_URL"`
	DraftTTLSeconds   int    `mapstructure:"DRAFT_TTL_SECONDS"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	ClientOrigin      string `mapstructure:"CLIENT_ORIGIN"`
}

// DraftTTL is the ephemeral draft store expiration.
func (c *Config) DraftTTL() time.Duration {
	return time.Duration(c.DraftTTLSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("MONGO_URI", "mongodb://mongo-trip:27017")
	viper.SetDefault("MONGO_DATABASE", "voyage-db")
	viper.SetDefault("RECOMMENDATION_URL", "http://recommendations:8080")
	viper.SetDefault("USER_MANAGEMENT_URL", "http://user-management:8080")
	viper.SetDefault("DRAFT_TTL_SECONDS", 3600)
	viper.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")

	viper.AutomaticEnv() // Read in environment variables that match

	err := viper.ReadInConfig()
	if err != nil {
		// Allow a missing .env file; defaults plus environment are enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
