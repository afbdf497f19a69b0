package api

import (
	v1 "github.com/2187Nick/schwab-market-depth/internal/domain/depth/v1"
)

// PriceLevel is one ladder entry in a depth response.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Side     string  `json:"side"`
}

// DepthResponse is the latest-snapshot payload.
type DepthResponse struct {
	Symbol          string       `json:"symbol"`
	Timestamp       int64        `json:"timestamp"`
	Levels          []PriceLevel `json:"levels"`
	LastPrice       *float64     `json:"last_price"`
	LastSize        *float64     `json:"last_size"`
	UnderlyingPrice *float64     `json:"underlying_price"`
}

// HistoricalSnapshot is one element of a historical series; the symbol is
// carried once on the enclosing response.
type HistoricalSnapshot struct {
	Timestamp       int64        `json:"timestamp"`
	Levels          []PriceLevel `json:"levels"`
	LastPrice       *float64     `json:"last_price"`
	LastSize        *float64     `json:"last_size"`
	UnderlyingPrice *float64     `json:"underlying_price"`
}

// HistoricalResponse is the full/down-sampled series payload.
type HistoricalResponse struct {
	Symbol    string               `json:"symbol"`
	Snapshots []HistoricalSnapshot `json:"snapshots"`
}

// SymbolsResponse lists symbols.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// ErrorResponse carries diagnostic detail on server errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func toDepthResponse(snap *v1.Snapshot) DepthResponse {
	return DepthResponse{
		Symbol:          snap.Symbol,
		Timestamp:       snap.Timestamp,
		Levels:          toLevels(snap),
		LastPrice:       snap.LastPrice,
		LastSize:        snap.LastSize,
		UnderlyingPrice: snap.UnderlyingPrice,
	}
}

func toHistoricalSnapshot(snap *v1.Snapshot) HistoricalSnapshot {
	return HistoricalSnapshot{
		Timestamp:       snap.Timestamp,
		Levels:          toLevels(snap),
		LastPrice:       snap.LastPrice,
		LastSize:        snap.LastSize,
		UnderlyingPrice: snap.UnderlyingPrice,
	}
}

func toLevels(snap *v1.Snapshot) []PriceLevel {
	levels := make([]PriceLevel, len(snap.Levels))
	for i, l := range snap.Levels {
		levels[i] = PriceLevel{Price: l.Price, Quantity: l.Quantity, Side: l.Side}
	}
	return levels
}
