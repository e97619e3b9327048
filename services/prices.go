package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"flea-scout/models"
)

// priceRegexp captures the first maximal numeric substring of a price text.
var priceRegexp = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// ParsePriceUSD extracts a numeric USD price from unstructured listing price
// text ("$1,299.50", "EUR 45 + shipping", "$10 to $15"). Thousands commas
// are stripped first; the first number wins. Returns nil when the text
// contains no number. Multi-price text ("$10 to $15") intentionally yields
// only the first value — each listing counts as a single price point.
func ParsePriceUSD(raw string) *float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// MinMax folds a price sample into its (min, max) envelope, rounded to
// cents. Returns nil for an empty sample.
func MinMax(prices []float64) *models.PriceRange {
	if len(prices) == 0 {
		return nil
	}
	min, max := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	r := models.NewPriceRange(round2(min), round2(max))
	return &r
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
