package engine

import (
	"github.com/shopspring/decimal"

	"options-analytics-engine/internal/marketdata"
	"options-analytics-engine/internal/stream"
)

func marketdataTradeFrom(t stream.OptionTrade) marketdata.Trade {
	return marketdata.Trade{
		Price: decimal.NewFromFloat(t.Price),
		Size:  t.Size,
		Time:  t.Time,
	}
}

func marketdataQuoteFrom(q stream.OptionQuote) marketdata.Quote {
	return marketdata.Quote{
		BidPrice: decimal.NewFromFloat(q.BidPrice),
		BidSize:  q.BidSize,
		AskPrice: decimal.NewFromFloat(q.AskPrice),
		AskSize:  q.AskSize,
		Time:     q.Time,
	}
}
