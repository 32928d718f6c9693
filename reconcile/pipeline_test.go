package reconcile

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

const (
	testLocations = `Copyright (c) 2012 MaxMind LLC.  All Rights Reserved.
locId,country,region,city,postalCode,latitude,longitude,metroCode,areaCode
223,"US","","","",38.0000,-97.0000,,
2703,"US","CA","Mountain View","94043",37.4192,-122.0574,807,650
5000,"US","NY","New York","",40.7143,-74.0060,501,212
75,"FR","","","",46.0000,2.0000,,
`
	testBlocks = `# GeoLite City blocks
"0","9","2703"
"10","10","242"
"11","20","5000"
"21","30","75"

"31","31","242"
"32","40","75"
"41","50","242"
`
)

type PipelineTestSuite struct {
	suite.Suite

	tmpDir string
	opts   Options
}

func (suite *PipelineTestSuite) SetupTest() {
	dir, err := ioutil.TempDir("", "geoblocks_reconcile_test_")
	if err != nil {
		panic(err)
	}

	suite.tmpDir = dir
	suite.opts = Options{
		Blocks:          suite.path("blocks.csv"),
		Locations:       suite.path("locations.csv"),
		Overrides:       suite.path("geoip-manual"),
		AutomaticOutput: suite.path("automatic.csv"),
		ManualOutput:    suite.path("manual.csv"),
		Placeholder:     "242",
	}

	suite.write("blocks.csv", testBlocks)
	suite.write("locations.csv", testLocations)
}

func (suite *PipelineTestSuite) TearDownTest() {
	os.RemoveAll(suite.tmpDir)
}

func (suite *PipelineTestSuite) path(name string) string {
	return filepath.Join(suite.tmpDir, name)
}

func (suite *PipelineTestSuite) write(name, content string) {
	if err := ioutil.WriteFile(suite.path(name), []byte(content), 0644); err != nil {
		panic(err)
	}
}

func (suite *PipelineTestSuite) read(name string) string {
	content, err := ioutil.ReadFile(suite.path(name))
	suite.NoError(err)

	return string(content)
}

func (suite *PipelineTestSuite) exists(name string) bool {
	_, err := os.Stat(suite.path(name))

	return err == nil
}

func (suite *PipelineTestSuite) TestRunWithoutOverrides() {
	result, outputs, err := Run(suite.opts)

	suite.NoError(err)
	suite.Len(outputs, 2)
	suite.True(outputs[0].Changed)
	suite.Equal(7, outputs[0].Records)

	expected := `"0","9","2703"
"10","10","223"
"11","20","5000"
"21","30","75"
"31","31","75"
"32","40","75"
"41","50","242"`

	suite.Equal(expected, suite.read("automatic.csv"))
	suite.Equal(expected, suite.read("manual.csv"))
	suite.Equal(2, result.AutomaticReport.Count(KindAutomaticSubstitution))
	suite.Len(result.ManualReport.Events, 0)
}

func (suite *PipelineTestSuite) TestRunWithOverrides() {
	suite.write("geoip-manual", `# manual corrections
"41","50","75"
"0","9",""
"11","25","75"
`)

	result, _, err := Run(suite.opts)
	suite.NoError(err)

	suite.Equal(`"10","10","223"
"11","20","5000"
"21","30","75"
"31","31","75"
"32","40","75"
"41","50","75"`, suite.read("manual.csv"))
	suite.Equal(1, result.ManualReport.Count(KindManualDeletion))
	suite.Equal(1, result.ManualReport.Count(KindManualSubstitution))
	suite.Equal(1, result.ManualReport.Count(KindPartialOverride))
	suite.Equal(1, result.ManualReport.Count(KindUnappliedOverride))
	suite.Len(result.Automatic, 7)
	suite.Len(result.Manual, 6)
}

func (suite *PipelineTestSuite) TestRunUnresolvedPlaceholder() {
	suite.write("geoip-manual", `"21","30","75"`)

	result, _, err := Run(suite.opts)
	suite.NoError(err)

	suite.Equal(1, result.ManualReport.Count(KindRedundantOverride))
	suite.Equal(1, result.ManualReport.Count(KindUnresolvedPlaceholder))
	suite.Equal(0, result.ManualReport.Count(KindUnappliedOverride))
}

func (suite *PipelineTestSuite) TestMissingBlocks() {
	os.Remove(suite.path("blocks.csv"))

	_, _, err := Run(suite.opts)

	suite.Error(err)
	suite.True(IsMissingInput(err))
	suite.False(suite.exists("automatic.csv"))
	suite.False(suite.exists("manual.csv"))
}

func (suite *PipelineTestSuite) TestMissingLocations() {
	os.Remove(suite.path("locations.csv"))

	_, err := Load(suite.opts)

	suite.Error(err)
	suite.True(IsMissingInput(err))
}

func (suite *PipelineTestSuite) TestMalformedBlocks() {
	suite.write("blocks.csv", "\"0\",\"nine\",\"2703\"\n")

	_, _, err := Run(suite.opts)

	suite.Error(err)
	suite.False(IsMissingInput(err))
	suite.True(IsMalformedRecord(err))
	suite.False(suite.exists("automatic.csv"))
}

func (suite *PipelineTestSuite) TestMalformedOverrides() {
	suite.write("geoip-manual", "\"x\",\"9\",\"2703\"\n")

	_, err := Load(suite.opts)

	suite.True(IsMalformedRecord(err))
}

func (suite *PipelineTestSuite) TestLoadOverrides() {
	inputs, err := Load(suite.opts)
	suite.NoError(err)
	suite.Nil(inputs.Overrides)
	suite.Len(inputs.Blocks, 7)
	suite.Len(inputs.Locations, 4)

	suite.write("geoip-manual", `"0","9",""`)

	inputs, err = Load(suite.opts)
	suite.NoError(err)
	suite.Len(inputs.Overrides, 1)

	suite.opts.Overrides = ""
	inputs, err = Load(suite.opts)
	suite.NoError(err)
	suite.Nil(inputs.Overrides)
}

func (suite *PipelineTestSuite) TestRunTwiceKeepsFiles() {
	_, outputs, err := Run(suite.opts)
	suite.NoError(err)

	_, again, err := Run(suite.opts)
	suite.NoError(err)

	suite.False(again[0].Changed)
	suite.False(again[1].Changed)
	suite.Equal(outputs[0].Checksum, again[0].Checksum)
}

func TestPipeline(t *testing.T) {
	suite.Run(t, &PipelineTestSuite{})
}
