package scraper

import (
	"fmt"
	"strings"
)

const (
	StrategyJSONLD = "json-ld"
	StrategyLinks  = "links"
)

// Registry returns every known extraction strategy keyed by name.
func Registry() map[string]Strategy {
	return map[string]Strategy{
		StrategyJSONLD: StructuredData{},
		StrategyLinks:  LinkHeuristic{},
	}
}

// ExtractorFor builds an extractor from strategy names, keeping the given
// order. An empty list yields the default extractor.
func ExtractorFor(names []string) (*Extractor, error) {
	names = NormalizeStrategies(names)
	if len(names) == 0 {
		return DefaultExtractor(), nil
	}

	registry := Registry()
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		strategy, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
		strategies = append(strategies, strategy)
	}
	return NewExtractor(strategies...), nil
}

func NormalizeStrategies(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "":
			continue
		case "jsonld", "ld+json":
			name = StrategyJSONLD
		case "anchors", "heuristic":
			name = StrategyLinks
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
