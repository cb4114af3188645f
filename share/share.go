// Package share encodes a chart's selection into a link and back.
//
// A link carries the category id and a JSON payload naming the measure and
// the checked labels of every filter that has any:
//
//	{base}/category?id=c1&graph={"categoryId":"c1","measureId":"M-1",
//	  "checkedFilters":[{"filterId":"f-year","checkedLabels":["2020"]}]}
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spektr-org/statboard/engine"
)

// ErrInvalidPayload reports a link that cannot be decoded.
var ErrInvalidPayload = errors.New("invalid share payload")

// Payload is the shareable part of a chart.
type Payload struct {
	CategoryID     string          `json:"categoryId"`
	MeasureID      string          `json:"measureId"`
	CheckedFilters []CheckedFilter `json:"checkedFilters"`
}

// CheckedFilter lists the checked labels of one filter.
type CheckedFilter struct {
	FilterID      string   `json:"filterId"`
	CheckedLabels []string `json:"checkedLabels"`
}

// FromGraph captures the selection behind g. Only the x-axis measure's
// groups are recorded; filters with nothing checked are omitted.
func FromGraph(g *engine.GraphData) (Payload, error) {
	if g == nil || g.Categories == nil || g.Categories.MeasureID == "" {
		return Payload{}, fmt.Errorf("%w: graph has no measure", ErrInvalidPayload)
	}

	p := Payload{
		CategoryID:     g.CategoryID,
		MeasureID:      g.Categories.MeasureID,
		CheckedFilters: []CheckedFilter{},
	}
	groups := append([]*engine.FilterGroup{g.Categories}, g.FilterGroups...)
	seen := make(map[string]bool)
	for _, fg := range groups {
		if fg == nil || fg.MeasureID != p.MeasureID || seen[fg.Filter.ID] {
			continue
		}
		seen[fg.Filter.ID] = true

		var titles []string
		for _, l := range fg.CheckedLabels() {
			titles = append(titles, l.Title)
		}
		if len(titles) == 0 {
			continue
		}
		p.CheckedFilters = append(p.CheckedFilters, CheckedFilter{FilterID: fg.Filter.ID, CheckedLabels: titles})
	}
	return p, nil
}

// Checked returns the checked label titles of one filter as a set.
func (p Payload) Checked(filterID string) map[string]bool {
	out := make(map[string]bool)
	for _, cf := range p.CheckedFilters {
		if cf.FilterID != filterID {
			continue
		}
		for _, title := range cf.CheckedLabels {
			out[title] = true
		}
	}
	return out
}

// Encode returns the query parameters of a share link.
func (p Payload) Encode() (url.Values, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal share payload: %w", err)
	}
	v := url.Values{}
	v.Set("id", p.CategoryID)
	v.Set("graph", string(raw))
	return v, nil
}

// Decode parses the query parameters of a share link. The id parameter
// fills a missing categoryId.
func Decode(v url.Values) (Payload, error) {
	raw := strings.TrimSpace(v.Get("graph"))
	if raw == "" {
		return Payload{}, fmt.Errorf("%w: missing graph parameter", ErrInvalidPayload)
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if p.MeasureID == "" {
		return Payload{}, fmt.Errorf("%w: missing measureId", ErrInvalidPayload)
	}
	if p.CategoryID == "" {
		p.CategoryID = v.Get("id")
	}
	return p, nil
}

// URL builds a share link under base.
func URL(base string, p Payload) (string, error) {
	v, err := p.Encode()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base, "/") + "/category?" + v.Encode(), nil
}

// Parse decodes a full share link.
func Parse(link string) (Payload, error) {
	u, err := url.Parse(link)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return Decode(u.Query())
}
