package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RangeKind selects the pattern table used by ExtractRange.
type RangeKind int

const (
	RangeTemperature RangeKind = iota
	RangeAcidity
)

// NumberKind selects the pattern table used by ExtractNumber.
type NumberKind int

const (
	NumberTankVolume NumberKind = iota
	NumberSize
)

// singleValueSpread widens a lone reading into a range.
const singleValueSpread = 0.5

const num = `(\d[\d.,]*)`

var rangePatterns = map[RangeKind][]*regexp.Regexp{
	RangeAcidity: {
		regexp.MustCompile(`(?i)\bpH[:\s]+` + num + `[\s\-–—]+` + num),
		regexp.MustCompile(`(?i)\bpH[:\s]+` + num),
		regexp.MustCompile(`(?i)кислотность[:\s]+` + num + `[\s\-–—]+` + num),
		regexp.MustCompile(`(?i)\bacidity[:\s]+` + num + `[\s\-–—]+` + num),
	},
	RangeTemperature: {
		regexp.MustCompile(`(?i)температур[аы][:\s]+` + num + `[\s\-–—°]+` + num),
		regexp.MustCompile(`(\d+)[\s\-–—°]+(\d+)\s*°[СC]`),
		regexp.MustCompile(`(?i)(\d+)[\s\-–—]+(\d+)\s*градус`),
		regexp.MustCompile(`(?i)\btemperature[:\s]+` + num + `[\s\-–—°]+` + num),
	},
}

var numberPatterns = map[NumberKind][]*regexp.Regexp{
	NumberTankVolume: {
		regexp.MustCompile(`(?i)минимальн[ый]+[й\s]+объ[её]м[:\s]+(\d+)`),
		regexp.MustCompile(`(?i)от\s+(\d+)\s+литр`),
		regexp.MustCompile(`(?i)минимум[:\s]+(\d+)\s+л`),
		regexp.MustCompile(`(?i)объ[её]м[:\s]+(\d+)\s+л`),
		regexp.MustCompile(`(?i)аквариум[:\s]+(\d+)\s+л`),
	},
	NumberSize: {
		regexp.MustCompile(`(?i)размер[:\s]+до\s+(\d+[,.]?\d*)\s*см`),
		regexp.MustCompile(`(?i)длина[:\s]+(?:до\s+)?(\d+[,.]?\d*)\s*см`),
		regexp.MustCompile(`(?i)(\d+[,.]?\d*)\s*см\s+в\s+длину`),
		regexp.MustCompile(`(?i)до\s+(\d+[,.]?\d*)\s*см`),
	},
}

// ExtractRange returns the first range matched in text. Two captured values
// are returned as found; a single value v becomes (v-0.5, v+0.5). Both
// results are nil when nothing matches.
func ExtractRange(text string, kind RangeKind) (*float64, *float64) {
	for _, re := range rangePatterns[kind] {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		lo, err := parseNumber(m[1])
		if err != nil {
			continue
		}
		if len(m) < 3 {
			lo, hi := lo-singleValueSpread, lo+singleValueSpread
			return &lo, &hi
		}

		hi, err := parseNumber(m[2])
		if err != nil {
			continue
		}
		return &lo, &hi
	}
	return nil, nil
}

// ExtractNumber returns the first value matched in text, or nil.
func ExtractNumber(text string, kind NumberKind) *float64 {
	for _, re := range numberPatterns[kind] {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := parseNumber(m[1])
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}

// ExtractTankVolume returns the minimum tank volume in whole liters.
func ExtractTankVolume(text string) *int {
	v := ExtractNumber(text, NumberTankVolume)
	if v == nil {
		return nil
	}
	liters := int(math.Round(*v))
	return &liters
}

// ExtractSize returns the adult body length in centimeters.
func ExtractSize(text string) *float64 {
	return ExtractNumber(text, NumberSize)
}

// parseNumber accepts a decimal comma and ignores trailing punctuation picked
// up at the end of a sentence.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), ".,")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
