// Package reconcile contains the two passes over geolocation blocks.
//
// The automatic pass merges isolated placeholder blocks into their
// neighbours. The manual pass applies a curated list of corrections on
// top of it. Both passes return a Report with structured events instead
// of printing anything, so callers decide how to present them.
package reconcile

import (
	"os"

	"github.com/9seconds/geoblocks/csvdb"
	"github.com/9seconds/geoblocks/regions"
	"github.com/juju/errors"
)

// Options are paths and settings of a single reconciliation run.
type Options struct {
	Blocks          string
	Locations       string
	Overrides       string
	AutomaticOutput string
	ManualOutput    string
	Placeholder     string
}

// Inputs are loaded tables. Overrides is nil if there is no overrides
// file.
type Inputs struct {
	Blocks    []csvdb.Block
	Locations []csvdb.Location
	Overrides []csvdb.Block
}

// Result contains outputs of both passes.
type Result struct {
	Automatic       []csvdb.Block
	AutomaticReport *Report
	Manual          []csvdb.Block
	ManualReport    *Report
}

// Output describes a written file.
type Output struct {
	Path     string
	Checksum string
	Changed  bool
	Records  int
}

// IsMissingInput tells if error means that required input file is
// absent.
func IsMissingInput(err error) bool {
	return errors.IsNotFound(err)
}

// IsMalformedRecord tells if error means that block table or overrides
// have a row with non-integer range.
func IsMalformedRecord(err error) bool {
	return errors.Cause(err) == csvdb.ErrMalformedRecord
}

// Load reads all input tables. Existence of both required files is
// checked before anything is read. An absent overrides file is not an
// error.
func Load(opts Options) (*Inputs, error) {
	for _, path := range []string{opts.Blocks, opts.Locations} {
		if err := ensureExists(path); err != nil {
			return nil, err
		}
	}

	locations, err := readLocations(opts.Locations)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot read locations")
	}

	blocks, err := readBlocks(opts.Blocks)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot read blocks")
	}

	inputs := &Inputs{
		Blocks:    blocks,
		Locations: locations,
	}

	if opts.Overrides == "" {
		return inputs, nil
	}

	if err := ensureExists(opts.Overrides); err != nil {
		if IsMissingInput(err) {
			return inputs, nil
		}
		return nil, err
	}

	overrides, err := readBlocks(opts.Overrides)
	if err != nil {
		return nil, errors.Annotate(err, "Cannot read overrides")
	}
	inputs.Overrides = overrides

	return inputs, nil
}

// Reconcile runs automatic and then manual pass.
func Reconcile(inputs *Inputs, placeholder string) *Result {
	lookup := regions.New(inputs.Locations)

	automatic, automaticReport := NewAutomaticResolver(placeholder, lookup).Resolve(inputs.Blocks)
	manual, manualReport := NewManualOverlay(placeholder).Apply(automatic, inputs.Overrides)

	return &Result{
		Automatic:       automatic,
		AutomaticReport: automaticReport,
		Manual:          manual,
		ManualReport:    manualReport,
	}
}

// Write stores both sequences of the result.
func Write(result *Result, opts Options) ([]Output, error) {
	outputs := []Output{
		{Path: opts.AutomaticOutput, Records: len(result.Automatic)},
		{Path: opts.ManualOutput, Records: len(result.Manual)},
	}
	sequences := [][]csvdb.Block{result.Automatic, result.Manual}

	for i := range outputs {
		checksum, changed, err := csvdb.WriteFile(outputs[i].Path, sequences[i])
		if err != nil {
			return nil, errors.Annotatef(err, "Cannot write %s", outputs[i].Path)
		}

		outputs[i].Checksum = checksum
		outputs[i].Changed = changed
	}

	return outputs, nil
}

// Run loads inputs, reconciles and writes outputs.
func Run(opts Options) (*Result, []Output, error) {
	inputs, err := Load(opts)
	if err != nil {
		return nil, nil, err
	}

	result := Reconcile(inputs, opts.Placeholder)

	outputs, err := Write(result, opts)
	if err != nil {
		return result, nil, err
	}

	return result, outputs, nil
}

func ensureExists(path string) error {
	stat, err := os.Stat(path)

	switch {
	case os.IsNotExist(err):
		return errors.NotFoundf("File %s", path)
	case err != nil:
		return errors.Annotatef(err, "Cannot access file %s", path)
	case stat.IsDir():
		return errors.Errorf("%s is a directory", path)
	}

	return nil
}

func readBlocks(path string) ([]csvdb.Block, error) {
	fp, err := csvdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close() // nolint

	blocks, err := csvdb.ReadBlocks(fp)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot parse %s", path)
	}

	return blocks, nil
}

func readLocations(path string) ([]csvdb.Location, error) {
	fp, err := csvdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close() // nolint

	locations, err := csvdb.ReadLocations(fp)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot parse %s", path)
	}

	return locations, nil
}
