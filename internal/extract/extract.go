// Package extract turns the semi-structured blobs stored with each product
// into typed values. Every function here is total: malformed JSON, missing
// keys, or wrong types resolve to nil (or zero for counts), never an error.
// Nil and zero are distinct on purpose — a nutrient measured at 0 is data,
// an absent nutrient is not.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

const (
	carbonNutrientKey = "carbon-footprint_100g"
	sugarsKey         = "sugars_100g"
	saltKey           = "salt_100g"
	energyKcalKey     = "energy-kcal_100g"
)

// Metrics bundles the derived values readers query on.
type Metrics struct {
	SugarsPer100g     *float64
	SaltPer100g       *float64
	EnergyKcalPer100g *float64
	CarbonPer100g     *float64
	OriginCountry     *string
	AdditivesCount    int
	ImageURL          string
}

// Derive computes all metrics for one stored product.
func Derive(nutriments, ecoscoreData, raw []byte) Metrics {
	return Metrics{
		SugarsPer100g:     Nutrient(nutriments, sugarsKey),
		SaltPer100g:       Nutrient(nutriments, saltKey),
		EnergyKcalPer100g: Nutrient(nutriments, energyKcalKey),
		CarbonPer100g:     CarbonFootprint(nutriments, ecoscoreData),
		OriginCountry:     OriginCountry(raw),
		AdditivesCount:    AdditivesCount(raw),
		ImageURL:          ImageURL(raw),
	}
}

// Nutrient reads one named value from the nutriments blob.
func Nutrient(nutriments []byte, key string) *float64 {
	obj := decodeObject(nutriments)
	if obj == nil {
		return nil
	}
	return asFloat(obj[key])
}

// CarbonFootprint returns g CO2e per 100g. The direct nutriment value wins;
// otherwise the agribalyse life-cycle total (kg CO2e per kg of product) is
// converted by x100.
func CarbonFootprint(nutriments, ecoscoreData []byte) *float64 {
	if v := Nutrient(nutriments, carbonNutrientKey); v != nil {
		return v
	}

	obj := decodeObject(ecoscoreData)
	if obj == nil {
		return nil
	}
	agribalyse, ok := obj["agribalyse"].(map[string]any)
	if !ok {
		return nil
	}
	total := asFloat(agribalyse["co2_total"])
	if total == nil {
		return nil
	}
	g := *total * 100.0
	return &g
}

// OriginCountry guesses where a product comes from. Precedence: free-text
// origins, machine-readable origin tags, manufacturing places, and finally
// the countries of sale (a weaker signal, but better than nothing).
func OriginCountry(raw []byte) *string {
	obj := decodeObject(raw)
	if obj == nil {
		return nil
	}

	if v := firstToken(asString(obj["origins"])); v != "" {
		return &v
	}
	if tags, ok := obj["origins_tags"].([]any); ok && len(tags) > 0 {
		if v := countryFromTag(asString(tags[0])); v != "" {
			return &v
		}
	}
	if v := firstToken(asString(obj["manufacturing_places"])); v != "" {
		return &v
	}
	if v := firstToken(asString(obj["countries"])); v != "" {
		return &v
	}
	return nil
}

// AdditivesCount prefers the tag list length over the raw count field.
func AdditivesCount(raw []byte) int {
	obj := decodeObject(raw)
	if obj == nil {
		return 0
	}
	if tags, ok := obj["additives_tags"].([]any); ok {
		return len(tags)
	}
	if n := asFloat(obj["additives_n"]); n != nil && *n >= 0 {
		return int(*n)
	}
	return 0
}

// ImageURL picks the smallest usable product image from the raw payload.
func ImageURL(raw []byte) string {
	obj := decodeObject(raw)
	if obj == nil {
		return ""
	}
	if v := strings.TrimSpace(asString(obj["image_small_url"])); v != "" {
		return v
	}
	return strings.TrimSpace(asString(obj["image_front_small_url"]))
}

func decodeObject(blob []byte) map[string]any {
	if len(blob) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(blob, &obj); err != nil {
		return nil
	}
	return obj
}

func asFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func firstToken(s string) string {
	token, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(token)
}

// countryFromTag turns a tag like "en:united-states" into "United states".
func countryFromTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if _, rest, found := strings.Cut(tag, ":"); found {
		tag = rest
	}
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "-", " "))
	if tag == "" {
		return ""
	}
	runes := []rune(tag)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
