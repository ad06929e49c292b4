package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// PricePoint 单次行情读数。时间戳由进程时钟生成（UTC、秒级 RFC3339），不来自上游。
type PricePoint struct {
	TsUTC    string  `json:"ts_utc"`
	PriceUSD float64 `json:"price_usd"`
}

// PriceAPI 定义行情源的统一接口，便于 gomock 打桩。
// 功能：封装一次对外部行情 API 的取价；失败以 error 形式返回，由调用方决定重试策略。
type PriceAPI interface {
	FetchPrice(ctx context.Context) (PricePoint, error)
}

// Factory 按交易对构造行情源实现。
type Factory func(coin, currency string) PriceAPI

var (
	regMu     sync.RWMutex
	providers = map[string]Factory{}
)

// Register 注册行情源实现（在各实现文件的 init 中调用）。
func Register(name string, f Factory) { regMu.Lock(); defer regMu.Unlock(); providers[name] = f }

// New 按名称构造行情源。
// 参数：name 形如 coingecko/binance；coin、currency 交易对描述（各实现自行解释）。
// 返回：PriceAPI 实现；未注册名称返回错误。
func New(name, coin, currency string) (PriceAPI, error) {
	regMu.RLock()
	f, ok := providers[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown price source: %q", name)
	}
	return f(coin, currency), nil
}

// Names 返回已注册行情源名称（用于配置校验提示）。
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(providers))
	for n := range providers {
		out = append(out, n)
	}
	return out
}

// restClient 各实现共用的 HTTP 工具。
type restClient struct{ hc *http.Client }

func newRESTClient() restClient { return restClient{hc: &http.Client{Timeout: 10 * time.Second}} }

// get 执行 GET 请求并解码 JSON。
func (c restClient) get(ctx context.Context, url string, out any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	req.Header.Set("User-Agent", userAgent)
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("GET %s => %d: %s", url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

const userAgent = "cryptopulse/1.0 (+github.com/mengeric/cryptopulse-go)"

// nowISO 进程时钟的 UTC 秒级时间戳。
func nowISO() string { return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339) }
