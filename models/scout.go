package models

// Mode selects the eBay search context: listings currently for sale vs
// completed transactions.
type Mode string

const (
	ModeActive Mode = "active"
	ModeSold   Mode = "sold"
)

// ItemGuess is the rough identification produced by the (external) image
// understanding step. Any field may be "unknown" or empty.
type ItemGuess struct {
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Condition string `json:"condition"`
}

// Listing is one parsed search-result entry. PriceUSD is nil when the raw
// price text could not be parsed.
type Listing struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	RawPrice string   `json:"raw_price"`
	PriceUSD *float64 `json:"price_usd"`
	SoldDate *string  `json:"sold_date,omitempty"`
}

// PriceRange is an inclusive USD price envelope with Low <= High.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// NewPriceRange builds a PriceRange, swapping inverted bounds.
func NewPriceRange(low, high float64) PriceRange {
	if high < low {
		low, high = high, low
	}
	return PriceRange{Low: low, High: high}
}

// ModeResult holds the outcome of one (query, mode) search. PriceRange is
// nil when no listing in the result carries a parsed price.
type ModeResult struct {
	Query      string      `json:"query"`
	Mode       Mode        `json:"mode"`
	CountText  *string     `json:"count_text"`
	PriceRange *PriceRange `json:"price_range_usd"`
	Listings   []Listing   `json:"examples"`
}

// ScoutReport is the full outcome of scouting one item across every derived
// query in both modes. OverallSoldRange spans every parsed sold price over
// all queries; nil when no sold price was found.
type ScoutReport struct {
	Platform         string       `json:"platform"`
	QueriesUsed      []string     `json:"queries_used"`
	Active           []ModeResult `json:"active"`
	Sold             []ModeResult `json:"sold"`
	OverallSoldRange *PriceRange  `json:"overall_sold_price_range_usd"`
	Note             string       `json:"note"`
}
