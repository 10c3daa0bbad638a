package model

import "time"

// QuoteSnapshot is one instrument's market-price record for one poll cycle:
// last price, session stats, the ten-level bid/ask ladders, and the aggregate
// queue volumes, exactly as reported by the market-price endpoint. Field tags
// follow the venue's column names. Snapshots are immutable once decoded.
type QuoteSnapshot struct {
	IssueCode string `json:"sIssueCode"`

	LastPrice Numeric `json:"pDPP"`  // current price
	Volume    Numeric `json:"pDV"`   // day volume
	PrevClose Numeric `json:"pPRP"`  // previous close
	Open      Numeric `json:"pDOP"`  // session open
	High      Numeric `json:"pDHP"`  // session high
	Low       Numeric `json:"pDLP"`  // session low
	VWAP      Numeric `json:"pVWAP"` // volume-weighted average

	AskPrice Numeric    `json:"pQAP"` // best ask quote
	AskType  NullString `json:"pQAS"` // ask quote flag
	BidPrice Numeric    `json:"pQBP"` // best bid quote
	BidType  NullString `json:"pQBS"` // bid quote flag

	MarketSellVol Numeric `json:"pAAV"` // at-market sell volume
	MarketBuyVol  Numeric `json:"pABV"` // at-market buy volume
	OverVol       Numeric `json:"pQOV"` // volume above the displayed ladder
	UnderVol      Numeric `json:"pQUV"` // volume below the displayed ladder

	AskPrice10 Numeric `json:"pGAP10"`
	AskPrice9  Numeric `json:"pGAP9"`
	AskPrice8  Numeric `json:"pGAP8"`
	AskPrice7  Numeric `json:"pGAP7"`
	AskPrice6  Numeric `json:"pGAP6"`
	AskPrice5  Numeric `json:"pGAP5"`
	AskPrice4  Numeric `json:"pGAP4"`
	AskPrice3  Numeric `json:"pGAP3"`
	AskPrice2  Numeric `json:"pGAP2"`
	AskPrice1  Numeric `json:"pGAP1"`

	BidPrice10 Numeric `json:"pGBP10"`
	BidPrice9  Numeric `json:"pGBP9"`
	BidPrice8  Numeric `json:"pGBP8"`
	BidPrice7  Numeric `json:"pGBP7"`
	BidPrice6  Numeric `json:"pGBP6"`
	BidPrice5  Numeric `json:"pGBP5"`
	BidPrice4  Numeric `json:"pGBP4"`
	BidPrice3  Numeric `json:"pGBP3"`
	BidPrice2  Numeric `json:"pGBP2"`
	BidPrice1  Numeric `json:"pGBP1"`

	AskSize10 Numeric `json:"pGAV10"`
	AskSize9  Numeric `json:"pGAV9"`
	AskSize8  Numeric `json:"pGAV8"`
	AskSize7  Numeric `json:"pGAV7"`
	AskSize6  Numeric `json:"pGAV6"`
	AskSize5  Numeric `json:"pGAV5"`
	AskSize4  Numeric `json:"pGAV4"`
	AskSize3  Numeric `json:"pGAV3"`
	AskSize2  Numeric `json:"pGAV2"`
	AskSize1  Numeric `json:"pGAV1"`

	BidSize10 Numeric `json:"pGBV10"`
	BidSize9  Numeric `json:"pGBV9"`
	BidSize8  Numeric `json:"pGBV8"`
	BidSize7  Numeric `json:"pGBV7"`
	BidSize6  Numeric `json:"pGBV6"`
	BidSize5  Numeric `json:"pGBV5"`
	BidSize4  Numeric `json:"pGBV4"`
	BidSize3  Numeric `json:"pGBV3"`
	BidSize2  Numeric `json:"pGBV2"`
	BidSize1  Numeric `json:"pGBV1"`

	// CreatedAt is the server-reported response timestamp, shared by every
	// snapshot decoded from the same response.
	CreatedAt time.Time `json:"created_at"`
}
