package reconcile

import "github.com/9seconds/geoblocks/csvdb"

// RegionMapper maps location identifier to its country-level location.
type RegionMapper interface {
	Get(id string) (string, bool)
}

// AutomaticResolver replaces isolated placeholder blocks with the
// classifier of their neighbours if both neighbours agree.
type AutomaticResolver struct {
	placeholder string
	regions     RegionMapper
}

// Resolve walks sorted blocks once and returns a new sequence of the
// same length and order.
func (a *AutomaticResolver) Resolve(blocks []csvdb.Block) ([]csvdb.Block, *Report) {
	report := newReport()
	result := make([]csvdb.Block, 0, len(blocks))
	run := []csvdb.Block{}

	var prev *csvdb.Block

	for i := range blocks {
		current := &blocks[i]

		if current.Classifier == a.placeholder {
			run = append(run, *current)
			continue
		}

		if len(run) > 0 {
			result = append(result, a.resolveRun(prev, run, current, report)...)
			run = run[:0]
		}

		result = append(result, *current)
		prev = current
	}

	if len(run) > 0 {
		result = append(result, a.resolveRun(prev, run, nil, report)...)
	}

	return result, report
}

func (a *AutomaticResolver) resolveRun(prev *csvdb.Block, run []csvdb.Block, next *csvdb.Block, report *Report) []csvdb.Block {
	if prev == nil || next == nil || len(run) > 1 {
		return run
	}

	block := run[0]
	if prev.End+1 != block.Start || block.End+1 != next.Start {
		return run
	}

	classifier, ok := a.commonClassifier(block, prev, next, report)
	if !ok {
		return run
	}

	replacement := block.WithClassifier(classifier)
	report.add(Event{
		Kind:        KindAutomaticSubstitution,
		Block:       block,
		Replacement: replacement,
	})

	return []csvdb.Block{replacement}
}

func (a *AutomaticResolver) commonClassifier(block csvdb.Block, prev, next *csvdb.Block, report *Report) (string, bool) {
	if prev.Classifier == next.Classifier {
		return prev.Classifier, true
	}

	prevRegion, ok := a.region(block, prev.Classifier, report)
	if !ok {
		return "", false
	}

	nextRegion, ok := a.region(block, next.Classifier, report)
	if !ok {
		return "", false
	}

	return prevRegion, prevRegion == nextRegion
}

func (a *AutomaticResolver) region(block csvdb.Block, classifier string, report *Report) (string, bool) {
	region, ok := a.regions.Get(classifier)
	if !ok {
		report.add(Event{
			Kind:       KindUnknownRegion,
			Block:      block,
			Classifier: classifier,
		})
	}

	return region, ok
}

// NewAutomaticResolver creates a resolver for blocks classified as
// placeholder.
func NewAutomaticResolver(placeholder string, regions RegionMapper) *AutomaticResolver {
	return &AutomaticResolver{
		placeholder: placeholder,
		regions:     regions,
	}
}
