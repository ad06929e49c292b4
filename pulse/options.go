package pulse

import (
	"time"

	"github.com/mengeric/cryptopulse-go/client"
	"github.com/mengeric/cryptopulse-go/storage"
)

// Options 服务运行参数。
// 说明：批量采集的边界（count/delay 取值范围）固定在 HTTP 层，不在此配置。
type Options struct {
	ListenAddr   string        // HTTP 监听地址，如 :8000、127.0.0.1:0
	Source       string        // 行情源名称（coingecko/binance）
	Coin         string        // 币种标识（按行情源解释，如 bitcoin 或 BTC）
	Currency     string        // 计价货币，如 usd
	SampleEvery  time.Duration // >0 时开启连续采样循环
	TrainEvery   time.Duration // >0 时开启周期重训循环
	Horizon      int           // 预测步长（未来第 N 个读数的方向）
	MinTrainRows int           // 训练最小样本行数
}

// withDefaults 填充默认值。
func (o *Options) withDefaults() {
	if o.ListenAddr == "" {
		o.ListenAddr = ":8000"
	}
	if o.Source == "" {
		o.Source = "coingecko"
	}
	if o.Coin == "" {
		o.Coin = "bitcoin"
	}
	if o.Currency == "" {
		o.Currency = "usd"
	}
	if o.Horizon <= 0 {
		o.Horizon = 5
	}
	if o.MinTrainRows <= 0 {
		o.MinTrainRows = 120
	}
}

// serverConfig 组合可选项。
type serverConfig struct {
	opt   Options
	api   client.PriceAPI
	store storage.Storage
}

// Option 配置函数。
type Option func(*serverConfig)

// WithListenAddr 设置 HTTP 监听地址。
func WithListenAddr(addr string) Option { return func(c *serverConfig) { c.opt.ListenAddr = addr } }

// WithSource 设置行情源名称与交易对。
func WithSource(name, coin, currency string) Option {
	return func(c *serverConfig) { c.opt.Source = name; c.opt.Coin = coin; c.opt.Currency = currency }
}

// WithPriceAPI 注入行情源实现（优先于 WithSource 的名称构造）。
func WithPriceAPI(api client.PriceAPI) Option { return func(c *serverConfig) { c.api = api } }

// WithStore 注入存储实现；缺省使用内存存储。
func WithStore(st storage.Storage) Option { return func(c *serverConfig) { c.store = st } }

// WithSampleEvery 开启连续采样并设置周期。
func WithSampleEvery(d time.Duration) Option { return func(c *serverConfig) { c.opt.SampleEvery = d } }

// WithTrainEvery 开启周期重训并设置周期。
func WithTrainEvery(d time.Duration) Option { return func(c *serverConfig) { c.opt.TrainEvery = d } }

// WithHorizon 设置预测步长。
func WithHorizon(h int) Option { return func(c *serverConfig) { c.opt.Horizon = h } }

// WithMinTrainRows 设置训练最小样本行数。
func WithMinTrainRows(n int) Option { return func(c *serverConfig) { c.opt.MinTrainRows = n } }
