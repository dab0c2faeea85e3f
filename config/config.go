package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Database   Database
	OpenAI     OpenAI
	Plagiarism Plagiarism
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type OpenAI struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
}

type Plagiarism struct {
	SemanticTimeout time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small")
	viper.SetDefault("PLAGIARISM_SEMANTIC_TIMEOUT", "20s")

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.OpenAI.APIKey = viper.GetString("OPENAI_API_KEY")
	config.OpenAI.BaseURL = viper.GetString("OPENAI_BASE_URL")
	config.OpenAI.EmbeddingModel = viper.GetString("OPENAI_EMBEDDING_MODEL")

	config.Plagiarism.SemanticTimeout = viper.GetDuration("PLAGIARISM_SEMANTIC_TIMEOUT")

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
