package csvdb

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/juju/errors"
)

// SkipFunc tells if stripped line has to be ignored (comment, header,
// empty line).
type SkipFunc func(string) bool

// CSVReader reads a CSV file line by line. Each row keeps its original
// text so unchanged records can be written back exactly as they were.
type CSVReader struct {
	reader *bufio.Reader
	skip   SkipFunc
	lineNo int
	done   bool
}

// Read returns parsed fields of the next meaningful line and its
// stripped text. It returns io.EOF when there is nothing to read.
func (cr *CSVReader) Read() ([]string, string, error) {
	line, err := cr.next()
	if err != nil {
		if err == io.EOF {
			return nil, "", io.EOF
		}
		return nil, "", errors.Annotate(err, "Cannot read new record")
	}

	reader := csv.NewReader(strings.NewReader(line))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	data, err := reader.Read()
	if err != nil {
		return nil, line, errors.Annotatef(err, "Cannot parse line %d", cr.lineNo)
	}

	return data, line, nil
}

// Line returns a number of the line returned by the latest Read.
func (cr *CSVReader) Line() int {
	return cr.lineNo
}

func (cr *CSVReader) next() (string, error) {
	for !cr.done {
		raw, err := cr.reader.ReadString('\n')
		switch {
		case err == io.EOF:
			cr.done = true
			if raw == "" {
				return "", io.EOF
			}
		case err != nil:
			return "", err
		}
		cr.lineNo++

		line := strings.TrimSpace(raw)
		if line == "" || cr.skip(line) {
			continue
		}

		return line, nil
	}

	return "", io.EOF
}

// NewCSVReader converts given io.Reader instance into CSVReader.
func NewCSVReader(filefp io.Reader, skip SkipFunc) *CSVReader {
	if skip == nil {
		skip = func(string) bool { return false }
	}

	return &CSVReader{
		reader: bufio.NewReader(filefp),
		skip:   skip,
	}
}

// SkipComments skips lines starting with #.
func SkipComments(line string) bool {
	return strings.HasPrefix(line, "#")
}

// SkipLocationHeaders skips copyright notice and column header of
// location table.
func SkipLocationHeaders(line string) bool {
	return strings.HasPrefix(line, "C") || strings.HasPrefix(line, "l")
}

// ReadBlocks reads a whole blocks table (or a list of corrections). Any
// malformed row is an error.
func ReadBlocks(filefp io.Reader) ([]Block, error) {
	reader := NewCSVReader(filefp, SkipComments)
	blocks := []Block{}

	for {
		data, line, err := reader.Read()
		if err == io.EOF {
			return blocks, nil
		}
		if err != nil {
			return nil, errors.Annotate(err, "Error during parsing CSV")
		}

		block, err := ParseBlock(data)
		if err != nil {
			return nil, errors.Annotatef(err, "Cannot parse line %d", reader.Line())
		}
		block.line = line

		blocks = append(blocks, block)
	}
}

// ReadLocations reads a location table. Rows which cannot be parsed are
// skipped.
func ReadLocations(filefp io.Reader) ([]Location, error) {
	reader := NewCSVReader(filefp, SkipLocationHeaders)
	locations := []Location{}

	for {
		data, line, err := reader.Read()
		if err == io.EOF {
			return locations, nil
		}
		if err != nil {
			return nil, errors.Annotate(err, "Error during parsing CSV")
		}

		location, err := NewLocation(data)
		if err != nil {
			log.WithFields(log.Fields{
				"line": line,
				"err":  err,
			}).Debug("Cannot parse location")
			continue
		}

		locations = append(locations, *location)
	}
}
