package model

// Instrument is one row of the instrument reference table: the identity and
// classification of a tradable code. Descriptive fields are replaced wholesale
// on refresh; APIID marks which polling account is responsible for the code
// and is only ever written by an explicit assignment.
type Instrument struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Segment string `json:"market_product_category"` // single-letter market segment

	Sector33Code     *string `json:"sector33_code"`
	Sector33Category *string `json:"sector33_category"`
	Sector17Code     *string `json:"sector17_code"`
	Sector17Category *string `json:"sector17_category"`
	ScaleCode        *string `json:"scale_code"`
	ScaleCategory    *string `json:"scale_category"`

	APIID *string `json:"api_id,omitempty"`
}
