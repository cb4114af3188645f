// Package statboard turns the datasets of a government statistics
// dashboard into chart-ready series.
//
// Usage:
//
//	import "github.com/spektr-org/statboard/session"
//
//	st := store.New(store.Config{Source: source.NewHTTP(source.HTTPConfig{BaseURL: api})})
//	s := session.New(session.Config{Store: st})
//	graph, err := s.SelectMeasure(ctx, "M-1")
//	graph = s.ToggleLabel("M-1", "f-region", "North")
//
// The engine package is pure: catalogs, filter groups and rows in, a
// GraphData snapshot out. The session package drives it from label and
// measure selections, and share and saved persist what it produces.
package statboard
