package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Property struct {
		Name     string `yaml:"name" env-default:"HomeDesk Residences"`
		Timezone string `yaml:"timezone" env-default:"Europe/Kyiv"`
	} `yaml:"property"`
	Messenger struct {
		Enabled     bool   `yaml:"enabled" env-default:"false"`
		AccessToken string `yaml:"access_token" env-default:""`
		VerifyToken string `yaml:"verify_token" env-default:""`
		AppSecret   string `yaml:"app_secret" env-default:""`
	} `yaml:"messenger"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"HomeDeskBot"`
	} `yaml:"telegram"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Session struct {
		IdleMinutes  int `yaml:"idle_minutes" env-default:"30"`
		SweepMinutes int `yaml:"sweep_minutes" env-default:"30"`
	} `yaml:"session"`
	Timeouts struct {
		CommitSeconds int `yaml:"commit_seconds" env-default:"10"`
		DeviceSeconds int `yaml:"device_seconds" env-default:"8"`
	} `yaml:"timeouts"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
