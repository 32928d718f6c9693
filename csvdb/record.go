package csvdb

import (
	"encoding/binary"
	"net"
	"strconv"
	"strings"

	cidrman "github.com/EvilSuperstars/go-cidrman"

	"github.com/juju/errors"
)

// ErrMalformedRecord is returned if start or end of the block range is
// not an integer.
var ErrMalformedRecord = errors.New("Malformed record")

// Block presents a numeric IP range mapped to a classifier (location
// block number). The same structure is used for manual corrections where
// an empty classifier means deletion.
type Block struct {
	Start      uint64
	End        uint64
	Classifier string

	line string
}

// String returns a line in blocks file format. Blocks which were read
// from a file and never changed keep their original text.
func (b Block) String() string {
	if b.line != "" {
		return b.line
	}

	return `"` + strconv.FormatUint(b.Start, 10) + `","` +
		strconv.FormatUint(b.End, 10) + `","` + b.Classifier + `"`
}

// WithClassifier returns a new block with the same range but another
// classifier.
func (b Block) WithClassifier(classifier string) Block {
	return NewBlock(b.Start, b.End, classifier)
}

// IsDeletion tells if block, used as a correction, removes a record.
func (b Block) IsDeletion() bool {
	return b.Classifier == ""
}

// GetSubnets returns non-overlapping subnets of the given Block.
func (b Block) GetSubnets() (subnets []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			switch x := rec.(type) {
			case string:
				err = errors.Annotate(errors.New(x), "Incorrect subnets")
			case error:
				err = errors.Annotate(x, "Incorrect subnets")
			}
		}
	}()

	if b.Start > b.End {
		return nil, errors.Errorf("Start %d is greater than end %d", b.Start, b.End)
	}

	startIP, err := uint64ToIPv4(b.Start)
	if err != nil {
		return nil, errors.Annotate(err, "Start IP is not correct")
	}

	finishIP, err := uint64ToIPv4(b.End)
	if err != nil {
		return nil, errors.Annotate(err, "Finish IP is not correct")
	}

	subnets, err = cidrman.IPRangeToCIDRs(startIP.String(), finishIP.String())

	return
}

// NewBlock creates a new block which has no original text.
func NewBlock(start, end uint64, classifier string) Block {
	return Block{Start: start, End: end, Classifier: classifier}
}

// ParseBlock makes a Block from the fields of CSV row. Row is
// start,end[,classifier].
func ParseBlock(data []string) (Block, error) {
	if len(data) < 2 || len(data) > 3 {
		return Block{}, errors.Annotatef(ErrMalformedRecord, "Unexpected number of fields %d", len(data))
	}

	start, err := strconv.ParseUint(strings.TrimSpace(data[0]), 10, 64)
	if err != nil {
		return Block{}, errors.Annotatef(ErrMalformedRecord, "Incorrect start %q", data[0])
	}

	end, err := strconv.ParseUint(strings.TrimSpace(data[1]), 10, 64)
	if err != nil {
		return Block{}, errors.Annotatef(ErrMalformedRecord, "Incorrect end %q", data[1])
	}

	block := NewBlock(start, end, "")
	if len(data) == 3 {
		block.Classifier = strings.TrimSpace(data[2])
	}

	return block, nil
}

// Location is a row of the location table.
type Location struct {
	ID         string
	Country    string
	Region     string
	City       string
	PostalCode string
	Latitude   string
	Longitude  string
	MetroCode  string
	AreaCode   string
}

// NewLocation creates a Location from the fields of location row. Missing
// trailing fields are left empty.
func NewLocation(data []string) (*Location, error) {
	if len(data) < 3 {
		return nil, errors.Errorf("Location has only %d fields", len(data))
	}

	fields := make([]string, 9)
	copy(fields, data)

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[0] == "" {
		return nil, errors.New("Location has no identifier")
	}

	return &Location{
		ID:         fields[0],
		Country:    fields[1],
		Region:     fields[2],
		City:       fields[3],
		PostalCode: fields[4],
		Latitude:   fields[5],
		Longitude:  fields[6],
		MetroCode:  fields[7],
		AreaCode:   fields[8],
	}, nil
}

func uint64ToIPv4(num uint64) (net.IP, error) {
	if num > 0xffffffff {
		return nil, errors.Errorf("%d does not fit into IPv4 address", num)
	}

	ip := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(ip, uint32(num))

	return ip, nil
}
