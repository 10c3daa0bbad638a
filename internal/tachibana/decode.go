package tachibana

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kabudata/tachibana-adapter/pkg/model"
)

const responseDateLayout = "2006-01-02-15:04:05.000000"

func unmarshalLogin(body []byte, resp *loginResponse) error {
	if err := json.Unmarshal(body, resp); err != nil {
		return &DecodeError{Reason: "invalid login body", Err: err}
	}
	if resp.Errno == "" {
		return &DecodeError{Reason: "missing p_errno"}
	}
	return nil
}

type marketPriceResponse struct {
	Date string                `json:"p_rv_date"`
	Rows []model.QuoteSnapshot `json:"aCLMMfdsMarketPrice"`
}

// parseResponseDate normalizes the venue timestamp, which arrives as
// "YYYY.MM.DD-HH:MM:SS.ffffff" with occasional stray spaces. The first two
// dots separate date components and are rewritten to dashes; the last one is
// the fractional seconds separator and stays.
func parseResponseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ".", "-", 2)
	if t, err := time.ParseInLocation(responseDateLayout, s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02-15:04:05.000", s, loc)
}

// decodeMarketPrice parses one price response. Every row in the batch shares
// the response timestamp. An empty row set for a non-empty request is a
// protocol fault and fails the cycle.
func decodeMarketPrice(body []byte, loc *time.Location) ([]model.QuoteSnapshot, error) {
	var resp marketPriceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DecodeError{Reason: "invalid response body", Err: err}
	}
	if resp.Date == "" {
		return nil, &DecodeError{Reason: "missing p_rv_date"}
	}
	if len(resp.Rows) == 0 {
		return nil, &DecodeError{Reason: "empty snapshot set"}
	}
	ts, err := parseResponseDate(resp.Date, loc)
	if err != nil {
		return nil, &DecodeError{Reason: "bad p_rv_date " + resp.Date, Err: err}
	}
	for i := range resp.Rows {
		resp.Rows[i].CreatedAt = ts
	}
	return resp.Rows, nil
}
