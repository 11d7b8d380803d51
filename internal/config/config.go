package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	StorageDSN string `yaml:"storage_dsn" env:"STORAGE_DSN" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	WSServer   `yaml:"ws_server"`
	Pusher     `yaml:"pusher"`
	Feed       `yaml:"feed"`
	Spin       `yaml:"spin"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type WSServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Pusher struct {
	AppID   string `yaml:"app_id" env:"PUSHER_APP_ID"`
	Key     string `yaml:"key" env:"PUSHER_KEY"`
	Secret  string `yaml:"secret" env:"PUSHER_SECRET"`
	Cluster string `yaml:"cluster" env:"PUSHER_CLUSTER" env-default:"eu"`
}

type Feed struct {
	RoomPollInterval time.Duration `yaml:"room_poll_interval" env-default:"500ms"`
	ChatPollInterval time.Duration `yaml:"chat_poll_interval" env-default:"3s"`
}

type Spin struct {
	Duration    time.Duration `yaml:"duration" env-default:"4s"`
	SettleGrace time.Duration `yaml:"settle_grace" env-default:"8s"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}
