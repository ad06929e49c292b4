package config

import "fmt"

// Config 服务运行所需的完整配置。
// 来源优先级：环境变量（CRYPTOPULSE_*）> YAML 文件 > 默认值。
type Config struct {
	Host string `yaml:"host"` // 服务监听地址，例如 0.0.0.0
	Port int    `yaml:"port"` // 服务监听端口，例如 8000

	Sqlite struct {
		Path string `yaml:"path"` // 数据库文件路径，例如 data/prices.db
	} `yaml:"sqlite"`

	Source struct {
		Name     string `yaml:"name"`     // coingecko / binance
		Coin     string `yaml:"coin"`     // 币种标识，按行情源解释（bitcoin / BTC）
		Currency string `yaml:"currency"` // 计价货币，如 usd
	} `yaml:"source"`

	SampleSeconds int `yaml:"sample_seconds"` // >0 开启连续采样
	TrainSeconds  int `yaml:"train_seconds"`  // >0 开启周期重训
	Horizon       int `yaml:"horizon"`        // 预测步长
	MinTrainRows  int `yaml:"min_train_rows"` // 训练最小样本行数
}

// Addr 组合 HTTP 监听地址。
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// WithDefaults 填充默认值。
func (c *Config) WithDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.Sqlite.Path == "" {
		c.Sqlite.Path = "data/prices.db"
	}
	if c.Source.Name == "" {
		c.Source.Name = "coingecko"
	}
	if c.Source.Coin == "" {
		c.Source.Coin = "bitcoin"
	}
	if c.Source.Currency == "" {
		c.Source.Currency = "usd"
	}
	if c.Horizon <= 0 {
		c.Horizon = 5
	}
	if c.MinTrainRows <= 0 {
		c.MinTrainRows = 120
	}
}
