package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// binanceAPI 基于 Binance ticker/price 端点的 PriceAPI 实现。
// 端点：/api/v3/ticker/price?symbol=<SYMBOL>，symbol 由 coin+currency 拼接（BTC+USDT -> BTCUSDT）。
type binanceAPI struct {
	restClient
	base   string
	symbol string
}

// NewBinance 构造 Binance 行情源。
// 参数：coin、currency 拼接为交易对符号并大写；currency 传 usd 时按惯例映射为 USDT。
func NewBinance(coin, currency string) PriceAPI {
	return &binanceAPI{restClient: newRESTClient(), base: "https://api.binance.com", symbol: binanceSymbol(coin, currency)}
}

// NewBinanceWithBase 指定 base 地址的构造（测试用 httptest server）。
func NewBinanceWithBase(base, coin, currency string) PriceAPI {
	return &binanceAPI{restClient: newRESTClient(), base: base, symbol: binanceSymbol(coin, currency)}
}

// binanceSymbol 组装交易对符号。
func binanceSymbol(coin, currency string) string {
	if strings.EqualFold(currency, "usd") {
		currency = "usdt"
	}
	return strings.ToUpper(coin + currency)
}

// FetchPrice 取一次现价。Binance 返回的 price 为字符串，需解析。
func (b *binanceAPI) FetchPrice(ctx context.Context) (PricePoint, error) {
	u := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.base, url.QueryEscape(b.symbol))
	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := b.get(ctx, u, &resp); err != nil {
		return PricePoint{}, err
	}
	p, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return PricePoint{}, fmt.Errorf("binance: bad price %q: %w", resp.Price, err)
	}
	return PricePoint{TsUTC: nowISO(), PriceUSD: p}, nil
}

func init() { Register("binance", NewBinance) }
