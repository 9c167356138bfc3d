package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/truenumber/gameservice/pkg/mq"
	"github.com/truenumber/gameservice/pkg/sqldb"
)

type Config struct {
	API        API          `mapstructure:"api"`
	Database   sqldb.Config `mapstructure:"database"`
	RabbitMQ   mq.Config    `mapstructure:"rabbitmq"`
	Settlement Settlement   `mapstructure:"settlement"`
	Outbox     Outbox       `mapstructure:"outbox"`
	Metrics    Metrics      `mapstructure:"metrics"`
}

type API struct {
	Port        string `mapstructure:"port"`
	ServiceName string `mapstructure:"service_name"`
}

type Settlement struct {
	GeneratorRetries    int `mapstructure:"generator_retries"`
	CompensationRetries int `mapstructure:"compensation_retries"`
	RecentGames         int `mapstructure:"recent_games"`
}

type Outbox struct {
	BatchSize int           `mapstructure:"batch_size"`
	Interval  time.Duration `mapstructure:"interval"`
	Queue     string        `mapstructure:"queue"`
}

type Metrics struct {
	SystemInterval time.Duration `mapstructure:"system_interval"`
	DBInterval     time.Duration `mapstructure:"db_interval"`
}

// Load reads ./config/config.yml. Any key can be overridden from the
// environment, e.g. DATABASE_DRIVER=sqlite.
func Load() (cfg *Config, err error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	err = v.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", ":8080")
	v.SetDefault("api.service_name", "gameservice")
	v.SetDefault("database.driver", sqldb.DriverMySQL)
	v.SetDefault("settlement.generator_retries", 1)
	v.SetDefault("settlement.compensation_retries", 3)
	v.SetDefault("settlement.recent_games", 3)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.interval", 30*time.Second)
	v.SetDefault("outbox.queue", "game.settled")
	v.SetDefault("metrics.system_interval", 15*time.Second)
	v.SetDefault("metrics.db_interval", 30*time.Second)
}
