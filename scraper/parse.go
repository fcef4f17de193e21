package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var (
	nonDigitRegex   = regexp.MustCompile(`\D`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)

// htmlToText strips markup and applies NFKC so that non-breaking spaces and
// ligatures compare equal to their plain forms.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return norm.NFKC.String(html)
	}
	return norm.NFKC.String(doc.Text())
}

func cleanText(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

func collapseSpaces(s string) string {
	return multiSpaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// parsePrice keeps only the digits: "1 250 000 zł" -> 1250000.
func parsePrice(s string) (int, error) {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if digits == "" {
		return 0, fmt.Errorf("no digits in price %q", s)
	}
	return strconv.Atoi(digits)
}

// parseArea handles Polish formatting: "1 234,5 m2" -> 1234.5.
func parseArea(s string) (float64, error) {
	v := stripSpaces(s)
	v = strings.ReplaceAll(v, ",", ".")
	v = strings.ReplaceAll(v, "m2", "")
	v = strings.ReplaceAll(v, "m²", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse area %q: %w", s, err)
	}
	return f, nil
}

// parseWholeArea is used for plot sizes, which are listed without decimals.
func parseWholeArea(s string) (int, error) {
	v := strings.ReplaceAll(s, "m2", "")
	v = strings.ReplaceAll(v, "m²", "")
	n, err := strconv.Atoi(stripSpaces(v))
	if err != nil {
		return 0, fmt.Errorf("parse area %q: %w", s, err)
	}
	return n, nil
}

func parseCoordinate(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parse coordinate %q: %w", s, err)
	}
	return f, nil
}

// floorNumber reads labels such as ["floor_3"]; "ground_floor" and friends yield nil.
func floorNumber(labels []string) *int {
	if len(labels) == 0 {
		return nil
	}
	parts := strings.Split(labels[0], "_")
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return nil
	}
	return &n
}

var floorsCounts = map[string]int{
	"one_floor":    1,
	"two_floors":   2,
	"three_floors": 3,
	"four_floors":  4,
}

// floorsCount maps a single enumerated label to a count.
func floorsCount(labels []string) *int {
	if len(labels) != 1 {
		return nil
	}
	n, ok := floorsCounts[labels[0]]
	if !ok {
		return nil
	}
	return &n
}
