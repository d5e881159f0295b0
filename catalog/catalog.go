// Package catalog is the built-in destination reference: an embedded YAML
// list of destinations with lookup by id or name, keyword matching and a
// scored criteria search.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/namancryu/TravelPMS/core"
	"gopkg.in/yaml.v3"
)

//go:embed destinations.yaml
var defaultData []byte

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("destination not found")

// KeywordRule maps a country or city word to catalog ids.
type KeywordRule struct {
	Keyword string   `yaml:"keyword"`
	IDs     []string `yaml:"ids"`
}

type document struct {
	Destinations []core.DestinationRecord `yaml:"destinations"`
	Keywords     []KeywordRule            `yaml:"keywords"`
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	records  []core.DestinationRecord
	byID     map[string]int
	byName   map[string]int
	keywords []KeywordRule
}

// New builds a Catalog. IDs must be unique and non-empty.
func New(records []core.DestinationRecord, keywords []KeywordRule) (*Catalog, error) {
	c := &Catalog{
		records:  make([]core.DestinationRecord, 0, len(records)),
		byID:     make(map[string]int, len(records)),
		byName:   make(map[string]int, len(records)),
		keywords: append([]KeywordRule(nil), keywords...),
	}
	for _, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog: destination %q has no id", r.Name)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", r.ID)
		}
		c.byID[r.ID] = len(c.records)
		if _, seen := c.byName[r.Name]; !seen && r.Name != "" {
			c.byName[r.Name] = len(c.records)
		}
		c.records = append(c.records, r.Clone())
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return New(doc.Destinations, doc.Keywords)
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the embedded catalog.
func Default() *Catalog { return defaultCatalog() }

// LookupByID implements core.DestinationReference.
func (c *Catalog) LookupByID(id string) (core.DestinationRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return core.DestinationRecord{}, false
	}
	return c.records[i].Clone(), true
}

// LookupByName finds a destination by its display name.
func (c *Catalog) LookupByName(name string) (core.DestinationRecord, bool) {
	i, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return core.DestinationRecord{}, false
	}
	return c.records[i].Clone(), true
}

// Get is LookupByID returning ErrNotFound.
func (c *Catalog) Get(id string) (core.DestinationRecord, error) {
	r, ok := c.LookupByID(id)
	if !ok {
		return core.DestinationRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// All returns every destination in catalog order.
func (c *Catalog) All() []core.DestinationRecord {
	out := make([]core.DestinationRecord, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Len is the number of destinations.
func (c *Catalog) Len() int { return len(c.records) }

// MatchKeywords returns destinations whose keyword rules occur in the joined
// keywords, in rule order without duplicates. Unknown ids are skipped.
func (c *Catalog) MatchKeywords(keywords []string) []core.DestinationRecord {
	joined := strings.ToLower(strings.Join(keywords, " "))
	if joined == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []core.DestinationRecord
	for _, rule := range c.keywords {
		if rule.Keyword == "" || !strings.Contains(joined, strings.ToLower(rule.Keyword)) {
			continue
		}
		for _, id := range rule.IDs {
			if seen[id] {
				continue
			}
			if r, ok := c.LookupByID(id); ok {
				seen[id] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// Score weights: each matching style counts double, a budget tier match adds
// three, a companion match two, and a flight-time match one.
const (
	styleWeight     = 2
	budgetWeight    = 3
	travelersWeight = 2
	flightWeight    = 1
)

// Find returns destinations with a positive score for cr, ordered by the
// number of matching styles (ties keep catalog order).
func (c *Catalog) Find(cr core.Criteria) []core.DestinationRecord {
	type scored struct {
		rec    core.DestinationRecord
		styles int
	}
	var hits []scored
	for _, r := range c.records {
		styles := countShared(cr.Styles, r.Styles)
		score := styles * styleWeight
		if cr.Budget != "" && contains(r.BudgetRange, string(cr.Budget)) {
			score += budgetWeight
		}
		if cr.Travelers != "" && contains(r.BestFor, cr.Travelers) {
			score += travelersWeight
		}
		if cr.FlightTime != "" && r.FlightTime == cr.FlightTime {
			score += flightWeight
		}
		if score > 0 {
			hits = append(hits, scored{rec: r, styles: styles})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].styles > hits[j].styles })

	out := make([]core.DestinationRecord, len(hits))
	for i, h := range hits {
		out[i] = h.rec.Clone()
	}
	return out
}

func countShared(want, have []string) int {
	n := 0
	for _, w := range want {
		if contains(have, w) {
			n++
		}
	}
	return n
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
