package tachibana

// Function message IDs.
const (
	clmidLogin       = "CLMAuthLoginRequest"
	clmidMarketPrice = "CLMMfdsGetMarketPrice"
)

// jsonOutputFormat asks the venue for the compact response encoding.
const jsonOutputFormat = "4"

// targetColumns is the fixed column set requested on every price fetch:
// last/prev/open/high/low, VWAP, best quotes with their condition flags,
// market order and over/under volumes, and the ten-level depth ladder.
const targetColumns = "pDPP,pDV,pPRP,pDOP,pDHP,pDLP,pVWAP,pQAP,pQAS,pQBP,pQBS,pAAV,pABV,pQOV,pQUV," +
	"pGAP10,pGAP9,pGAP8,pGAP7,pGAP6,pGAP5,pGAP4,pGAP3,pGAP2,pGAP1," +
	"pGBP10,pGBP9,pGBP8,pGBP7,pGBP6,pGBP5,pGBP4,pGBP3,pGBP2,pGBP1," +
	"pGAV10,pGAV9,pGAV8,pGAV7,pGAV6,pGAV5,pGAV4,pGAV3,pGAV2,pGAV1," +
	"pGBV10,pGBV9,pGBV8,pGBV7,pGBV6,pGBV5,pGBV4,pGBV3,pGBV2,pGBV1"

// Endpoints are the per-session virtual URLs handed out by a successful
// login, plus the account's capital gains tax category.
type Endpoints struct {
	Request     string
	Event       string
	Master      string
	Price       string
	TaxCategory string
}

type loginResponse struct {
	Errno       string `json:"p_errno"`
	ErrText     string `json:"p_err"`
	URLRequest  string `json:"sUrlRequest"`
	URLEvent    string `json:"sUrlEvent"`
	URLMaster   string `json:"sUrlMaster"`
	URLPrice    string `json:"sUrlPrice"`
	TaxCategory string `json:"sZyoutoekiKazeiC"`
}
