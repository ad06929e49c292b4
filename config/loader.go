package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load 从 YAML 文件加载配置并叠加环境变量覆盖。
// 文件不存在时返回仅含默认值与环境覆盖的配置（便于纯环境变量部署）。
func Load(file string) (Config, error) {
	var c Config
	b, err := os.ReadFile(file)
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, err
		}
	} else if !os.IsNotExist(err) {
		return c, err
	}
	c.applyEnv()
	c.WithDefaults()
	return c, nil
}

// MustLoad 从 YAML 文件加载配置（失败 panic）。
func MustLoad(file string) Config {
	c, err := Load(file)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadDotenv 加载 .env 文件到进程环境（文件不存在时忽略）。
func LoadDotenv(path string) {
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
}

// applyEnv 用 CRYPTOPULSE_* 环境变量覆盖配置。
func (c *Config) applyEnv() {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setStr("CRYPTOPULSE_HOST", &c.Host)
	setInt("CRYPTOPULSE_PORT", &c.Port)
	setStr("CRYPTOPULSE_SQLITE_PATH", &c.Sqlite.Path)
	setStr("CRYPTOPULSE_SOURCE", &c.Source.Name)
	setStr("CRYPTOPULSE_COIN", &c.Source.Coin)
	setStr("CRYPTOPULSE_CURRENCY", &c.Source.Currency)
	setInt("CRYPTOPULSE_SAMPLE_SECONDS", &c.SampleSeconds)
	setInt("CRYPTOPULSE_TRAIN_SECONDS", &c.TrainSeconds)
	setInt("CRYPTOPULSE_HORIZON", &c.Horizon)
	setInt("CRYPTOPULSE_MIN_TRAIN_ROWS", &c.MinTrainRows)
}
