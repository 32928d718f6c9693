package csvdb

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestBlockOK(t *testing.T) {
	block, err := ParseBlock([]string{"16777216", "16777471", "17"})
	assert.Nil(t, err)
	assert.Equal(t, block.Start, uint64(16777216))
	assert.Equal(t, block.End, uint64(16777471))
	assert.Equal(t, block.Classifier, "17")
	assert.False(t, block.IsDeletion())
	assert.Equal(t, block.String(), `"16777216","16777471","17"`)

	subnets, err := block.GetSubnets()
	assert.Nil(t, err)
	assert.Equal(t, subnets, []string{"1.0.0.0/24"})
}

func TestBlockSubnetsUneven(t *testing.T) {
	block := NewBlock(1566465793, 1566466047, "ru")

	subnets, err := block.GetSubnets()
	assert.Nil(t, err)
	assert.Len(t, subnets, 8)
}

func TestBlockSubnetsIncorrectRange(t *testing.T) {
	_, err := NewBlock(10, 5, "1").GetSubnets()
	assert.NotNil(t, err)

	_, err = NewBlock(0, 1<<33, "1").GetSubnets()
	assert.NotNil(t, err)
}

func TestBlockDeletion(t *testing.T) {
	for _, data := range [][]string{{"5", "9", ""}, {"5", "9"}} {
		block, err := ParseBlock(data)
		assert.Nil(t, err)
		assert.True(t, block.IsDeletion())
	}
}

func TestBlockMalformed(t *testing.T) {
	for _, data := range [][]string{
		{"x", "9", "1"},
		{"5", "9.5", "1"},
		{"-1", "9", "1"},
		{"5"},
		{"5", "9", "1", "2"},
	} {
		_, err := ParseBlock(data)
		assert.NotNil(t, err)
		assert.Equal(t, errors.Cause(err), ErrMalformedRecord)
	}
}

func TestBlockWithClassifier(t *testing.T) {
	block, _ := ParseBlock([]string{"10", "10", "242"})
	block.line = `"10","10","242"`

	changed := block.WithClassifier("223")
	assert.Equal(t, changed.Start, uint64(10))
	assert.Equal(t, changed.End, uint64(10))
	assert.Equal(t, changed.String(), `"10","10","223"`)
	assert.Equal(t, block.String(), `"10","10","242"`)
}

func TestLocationOK(t *testing.T) {
	location, err := NewLocation([]string{"17", "US", "CA", "Mountain View", "94043", "37.4192", "-122.0574", "807", "650"})
	assert.Nil(t, err)
	assert.Equal(t, location.ID, "17")
	assert.Equal(t, location.Country, "US")
	assert.Equal(t, location.Region, "CA")
	assert.Equal(t, location.City, "Mountain View")
	assert.Equal(t, location.AreaCode, "650")
}

func TestLocationShort(t *testing.T) {
	location, err := NewLocation([]string{"223", "US", ""})
	assert.Nil(t, err)
	assert.Equal(t, location.Region, "")
	assert.Equal(t, location.City, "")

	_, err = NewLocation([]string{"223", "US"})
	assert.NotNil(t, err)

	_, err = NewLocation([]string{"", "US", ""})
	assert.NotNil(t, err)
}
