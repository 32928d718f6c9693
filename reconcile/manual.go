package reconcile

import (
	"sort"

	"github.com/9seconds/geoblocks/csvdb"
)

type pendingCorrections map[uint64]csvdb.Block

func (p pendingCorrections) leftovers() []csvdb.Block {
	rv := make([]csvdb.Block, 0, len(p))

	for _, v := range p {
		rv = append(rv, v)
	}

	sort.Slice(rv, func(i, j int) bool {
		return rv[i].Start < rv[j].Start
	})

	return rv
}

func newPendingCorrections(corrections []csvdb.Block, report *Report) pendingCorrections {
	pending := make(pendingCorrections, len(corrections))

	for _, v := range corrections {
		if discarded, ok := pending[v.Start]; ok {
			report.add(Event{
				Kind:       KindDuplicateOverride,
				Correction: v,
				Discarded:  discarded,
			})
		}
		pending[v.Start] = v
	}

	return pending
}

// ManualOverlay applies manually curated corrections on top of the
// automatically resolved blocks. Correction matches a block only if both
// start and end are the same.
type ManualOverlay struct {
	placeholder string
}

// Apply returns blocks with corrections applied. Without corrections
// blocks are returned as is and report is empty.
func (m *ManualOverlay) Apply(blocks, corrections []csvdb.Block) ([]csvdb.Block, *Report) {
	report := newReport()

	if len(corrections) == 0 {
		return blocks, report
	}

	pending := newPendingCorrections(corrections, report)
	result := make([]csvdb.Block, 0, len(blocks))

	for _, block := range blocks {
		correction, ok := pending[block.Start]

		switch {
		case ok && correction.End != block.End:
			report.add(Event{
				Kind:       KindPartialOverride,
				Block:      block,
				Correction: correction,
			})
			result = append(result, block)
		case ok && correction.IsDeletion():
			report.add(Event{
				Kind:       KindManualDeletion,
				Block:      block,
				Correction: correction,
			})
			delete(pending, block.Start)
		case ok && correction.Classifier == block.Classifier:
			report.add(Event{
				Kind:       KindRedundantOverride,
				Block:      block,
				Correction: correction,
			})
			result = append(result, block)
			delete(pending, block.Start)
		case ok:
			replacement := block.WithClassifier(correction.Classifier)
			report.add(Event{
				Kind:        KindManualSubstitution,
				Block:       block,
				Replacement: replacement,
				Correction:  correction,
			})
			result = append(result, replacement)
			delete(pending, block.Start)
		case block.Classifier == m.placeholder:
			report.add(Event{
				Kind:  KindUnresolvedPlaceholder,
				Block: block,
			})
			result = append(result, block)
		default:
			result = append(result, block)
		}
	}

	for _, v := range pending.leftovers() {
		report.add(Event{
			Kind:       KindUnappliedOverride,
			Correction: v,
		})
	}

	return result, report
}

// NewManualOverlay creates an overlay which warns about unresolved
// placeholder blocks.
func NewManualOverlay(placeholder string) *ManualOverlay {
	return &ManualOverlay{placeholder: placeholder}
}
