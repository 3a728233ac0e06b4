package openlot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/openlot/openlot/openlot/database"
	"github.com/openlot/openlot/openlot/notifications"
	"github.com/openlot/openlot/openlot/services"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig                `toml:"log"`
	Server ServerConfig             `toml:"server"`
	Auth   AuthConfig               `toml:"auth"`
	DB     database.DBConfig        `toml:"db"`
	Spaces services.SpacesConfig    `toml:"spaces"`
	AMQP   notifications.AMQPConfig `toml:"amqp"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AuthConfig struct {
	// SessionTTLHours bounds how long a bearer token stays valid.
	SessionTTLHours int `toml:"session_ttl_hours"`
	// BcryptCost overrides the default cost when positive.
	BcryptCost int `toml:"bcrypt_cost"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
