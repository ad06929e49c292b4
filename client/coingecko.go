package client

import (
	"context"
	"fmt"
	"net/url"
)

// coinGeckoAPI 基于 CoinGecko simple/price 端点的 PriceAPI 实现。
// 端点：/api/v3/simple/price?ids=<coin>&vs_currencies=<currency>，免鉴权，有限流。
type coinGeckoAPI struct {
	restClient
	base     string
	coin     string
	currency string
}

// NewCoinGecko 构造 CoinGecko 行情源。
// 参数：coin 为 CoinGecko 的币种 id（如 bitcoin）；currency 为计价货币（如 usd）。
func NewCoinGecko(coin, currency string) PriceAPI {
	return &coinGeckoAPI{restClient: newRESTClient(), base: "https://api.coingecko.com", coin: coin, currency: currency}
}

// NewCoinGeckoWithBase 指定 base 地址的构造（测试用 httptest server）。
func NewCoinGeckoWithBase(base, coin, currency string) PriceAPI {
	return &coinGeckoAPI{restClient: newRESTClient(), base: base, coin: coin, currency: currency}
}

// FetchPrice 取一次现价。
// 返回：PricePoint，时间戳取自本机时钟；响应缺少请求的币种或货币时返回错误。
func (g *coinGeckoAPI) FetchPrice(ctx context.Context) (PricePoint, error) {
	u := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=%s",
		g.base, url.QueryEscape(g.coin), url.QueryEscape(g.currency))
	// 响应形如 {"bitcoin":{"usd":64321.5}}
	var resp map[string]map[string]float64
	if err := g.get(ctx, u, &resp); err != nil {
		return PricePoint{}, err
	}
	q, ok := resp[g.coin]
	if !ok {
		return PricePoint{}, fmt.Errorf("coingecko: coin %q missing in response", g.coin)
	}
	p, ok := q[g.currency]
	if !ok {
		return PricePoint{}, fmt.Errorf("coingecko: currency %q missing in response", g.currency)
	}
	return PricePoint{TsUTC: nowISO(), PriceUSD: p}, nil
}

func init() { Register("coingecko", NewCoinGecko) }
