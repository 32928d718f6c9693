package reconcile

import (
	"fmt"

	"github.com/9seconds/geoblocks/csvdb"
)

// Kind is a type of diagnostic event.
type Kind uint8

const (
	// KindAutomaticSubstitution is reported when placeholder block got a
	// classifier of its neighbours.
	KindAutomaticSubstitution Kind = iota

	// KindUnknownRegion is reported when neighbour classifier has no
	// country-level location, so neighbours cannot be compared by country.
	KindUnknownRegion

	// KindManualSubstitution is reported when correction replaced a
	// classifier.
	KindManualSubstitution

	// KindManualDeletion is reported when correction removed a block.
	KindManualDeletion

	// KindDuplicateOverride is reported when 2 corrections have the same
	// start. The first one is discarded.
	KindDuplicateOverride

	// KindPartialOverride is reported when correction and block start at
	// the same number but end differently. Block is left as is.
	KindPartialOverride

	// KindRedundantOverride is reported when correction sets the value
	// block already has.
	KindRedundantOverride

	// KindUnresolvedPlaceholder is reported for placeholder block which
	// was neither resolved automatically nor corrected manually.
	KindUnresolvedPlaceholder

	// KindUnappliedOverride is reported for each correction which has not
	// matched any block.
	KindUnappliedOverride
)

func (k Kind) String() string {
	switch k {
	case KindAutomaticSubstitution:
		return "automatic-substitution"
	case KindUnknownRegion:
		return "unknown-region"
	case KindManualSubstitution:
		return "manual-substitution"
	case KindManualDeletion:
		return "manual-deletion"
	case KindDuplicateOverride:
		return "duplicate-override"
	case KindPartialOverride:
		return "partial-override"
	case KindRedundantOverride:
		return "redundant-override"
	case KindUnresolvedPlaceholder:
		return "unresolved-placeholder"
	case KindUnappliedOverride:
		return "unapplied-override"
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Warning tells if event is a data conflict an operator has to look at.
// Other events are changes made to the data.
func (k Kind) Warning() bool {
	switch k {
	case KindAutomaticSubstitution, KindManualSubstitution, KindManualDeletion:
		return false
	}

	return true
}

// Event is a single diagnostic. Only the fields relevant to its Kind are
// set.
type Event struct {
	Kind Kind

	// Block is the record as it was before the pass.
	Block csvdb.Block

	// Replacement is a new record for substitutions.
	Replacement csvdb.Block

	// Correction is the override involved.
	Correction csvdb.Block

	// Discarded is an override shadowed by the Correction with the
	// same start.
	Discarded csvdb.Block

	// Classifier is a classifier missing from region lookup.
	Classifier string
}

// Message returns a human-readable description of the event. Changes are
// rendered as diff lines.
func (e Event) Message() string {
	switch e.Kind {
	case KindAutomaticSubstitution, KindManualSubstitution:
		return fmt.Sprintf("-%s\n+%s", e.Block, e.Replacement)
	case KindManualDeletion:
		return fmt.Sprintf("-%s", e.Block)
	case KindUnknownRegion:
		return fmt.Sprintf("no country-level location for %s, cannot compare neighbours of:\n  %s",
			e.Classifier, e.Block)
	case KindDuplicateOverride:
		return fmt.Sprintf("duplicate start number in manual assignments:\n  %s\n  %s\ndiscarding first entry",
			e.Discarded, e.Correction)
	case KindPartialOverride:
		return fmt.Sprintf("only partial match between automatically replaced assignment and manual assignment:\n  %s\n  %s\nnot applying manual change",
			e.Block, e.Correction)
	case KindRedundantOverride:
		return fmt.Sprintf("automatic and manual replacement already match:\n  %s\n  %s\nnot applying manual change",
			e.Block, e.Correction)
	case KindUnresolvedPlaceholder:
		return fmt.Sprintf("no manual replacement for placeholder entry:\n  %s", e.Block)
	case KindUnappliedOverride:
		return fmt.Sprintf("could not apply manual assignment:\n  %s", e.Correction)
	}

	return e.Kind.String()
}

// Report collects events of a single pass in order of appearance.
type Report struct {
	Events []Event
}

func (r *Report) add(event Event) {
	r.Events = append(r.Events, event)
}

// Count returns a number of events of the given kind.
func (r *Report) Count(kind Kind) int {
	count := 0

	for _, v := range r.Events {
		if v.Kind == kind {
			count++
		}
	}

	return count
}

// Filter returns events of the given kind.
func (r *Report) Filter(kind Kind) []Event {
	events := []Event{}

	for _, v := range r.Events {
		if v.Kind == kind {
			events = append(events, v)
		}
	}

	return events
}

// Warnings returns a number of data conflicts.
func (r *Report) Warnings() int {
	count := 0

	for _, v := range r.Events {
		if v.Kind.Warning() {
			count++
		}
	}

	return count
}

func newReport() *Report {
	return &Report{Events: []Event{}}
}
