// Package regions maps fine-grained locations to the location which
// represents the whole country.
//
// Location table has rows for countries (empty region field) and rows
// for regions and cities inside them. Country rows are expected to come
// before the rows of their regions, so a region which appears earlier
// than its country is not mapped at all.
package regions

import "github.com/9seconds/geoblocks/csvdb"

// Lookup is an immutable mapping from location identifier to the
// identifier of its country-level location.
type Lookup struct {
	blocks map[string]string
}

// Get returns a country-level location for the given location
// identifier.
func (l *Lookup) Get(id string) (string, bool) {
	value, ok := l.blocks[id]

	return value, ok
}

// Len returns a number of mapped locations.
func (l *Lookup) Len() int {
	return len(l.blocks)
}

// New builds a Lookup from the ordered rows of location table.
func New(locations []csvdb.Location) *Lookup {
	countries := map[string]string{}
	blocks := make(map[string]string, len(locations))

	for _, v := range locations {
		if v.Region == "" {
			countries[v.Country] = v.ID
			blocks[v.ID] = v.ID
		} else if countryID, ok := countries[v.Country]; ok {
			blocks[v.ID] = countryID
		}
	}

	return &Lookup{blocks: blocks}
}
