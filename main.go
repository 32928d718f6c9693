package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/geoblocks/config"
	"github.com/9seconds/geoblocks/lookup"
	"github.com/9seconds/geoblocks/reconcile"
)

var (
	app = kingpin.New(
		"geoblocks",
		"Replace placeholder entries of GeoLite City blocks with their neighbours and manual corrections")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOBLOCKS_DEBUG").
		Bool()
	configFile = app.Flag("config", "Path to the config.").
			Short('c').
			File()
	inBlocks = app.Flag("blocks", "Blocks .csv file to use as input. Default is "+config.DefaultBlocks).
			Short('i').
			PlaceHolder("FILE").
			String()
	inLocations = app.Flag("locations", "Location .csv file to use as input. Default is "+config.DefaultLocations).
			Short('l').
			PlaceHolder("FILE").
			String()
	placeholder = app.Flag("placeholder", "Replace entries with this block number. Default is 242.").
			Short('b').
			PlaceHolder("NUM").
			String()

	inOverrides = app.Flag("overrides", "File with manual changes. Default is "+config.DefaultOverrides).
			Short('g').
			PlaceHolder("FILE").
			String()
	outAutomatic = app.Flag("automatic", "Write input plus automatic changes to this file. Default is "+config.DefaultAutomaticOutput).
			Short('a').
			PlaceHolder("FILE").
			String()
	outManual = app.Flag("manual", "Write input plus automatic and manual changes to this file. Default is "+config.DefaultManualOutput).
			Short('m').
			PlaceHolder("FILE").
			String()

	reconcileCommand = app.Command("reconcile", "Apply automatic and manual changes.").Default()

	lookupCommand = app.Command("lookup", "Resolve IP addresses using blocks and location files.")
	lookupIPs     = lookupCommand.Arg("ip", "IPv4 addresses to resolve.").
			Required().
			IPList()
)

func init() {
	app.Version("0.0.1")
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	conf, err := makeConfig()
	if err != nil {
		log.Fatalf(err.Error())
	}

	runLog := log.WithField("run", uuid.New().String())

	switch command {
	case reconcileCommand.FullCommand():
		runReconcile(conf, runLog)
	case lookupCommand.FullCommand():
		runLookup(conf, runLog)
	}
}

func makeConfig() (*config.Config, error) {
	conf := config.Default()

	if *configFile != nil {
		defer (*configFile).Close() // nolint

		parsed, err := config.Parse(*configFile)
		if err != nil {
			return nil, err
		}
		conf = parsed
	}

	overrideValue(&conf.Input.Blocks, *inBlocks)
	overrideValue(&conf.Input.Locations, *inLocations)
	overrideValue(&conf.Input.Overrides, *inOverrides)
	overrideValue(&conf.Output.Automatic, *outAutomatic)
	overrideValue(&conf.Output.Manual, *outManual)

	if *placeholder != "" {
		if err := conf.SetPlaceholder(*placeholder); err != nil {
			return nil, err
		}
	}

	return conf, conf.Validate()
}

func overrideValue(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func makeOptions(conf *config.Config) reconcile.Options {
	return reconcile.Options{
		Blocks:          conf.Input.Blocks,
		Locations:       conf.Input.Locations,
		Overrides:       conf.Input.Overrides,
		AutomaticOutput: conf.Output.Automatic,
		ManualOutput:    conf.Output.Manual,
		Placeholder:     conf.PlaceholderClassifier(),
	}
}

func runReconcile(conf *config.Config, runLog *log.Entry) {
	opts := makeOptions(conf)
	rep := newReporter(runLog)

	inputs, err := reconcile.Load(opts)
	if err != nil {
		rep.Fatal(err)
	}

	if inputs.Overrides == nil {
		runLog.WithField("path", opts.Overrides).Info("No manual changes to apply.")
	}

	result := reconcile.Reconcile(inputs, opts.Placeholder)
	rep.Report("automatic", result.AutomaticReport)
	rep.Report("manual", result.ManualReport)

	outputs, err := reconcile.Write(result, opts)
	if err != nil {
		rep.Fatal(err)
	}

	for _, v := range outputs {
		rep.Output(v)
	}
}

func runLookup(conf *config.Config, runLog *log.Entry) {
	opts := makeOptions(conf)
	opts.Overrides = ""

	inputs, err := reconcile.Load(opts)
	if err != nil {
		newReporter(runLog).Fatal(err)
	}

	index, err := lookup.NewIndex(inputs.Blocks, inputs.Locations, opts.Placeholder, conf.Lookup.CacheSize)
	if err != nil {
		runLog.Fatalf(err.Error())
	}

	ips := *lookupIPs
	results := index.Resolve(ips)
	for _, ip := range ips {
		result, ok := results[ip.String()]
		if !ok {
			fmt.Printf("%s\t-\n", ip)
			continue
		}

		fmt.Printf("%s\t%s\n", ip, strings.Join([]string{
			result.LocationID,
			result.Country,
			result.Region,
			result.City,
			result.PostalCode,
			result.Latitude,
			result.Longitude,
		}, "\t"))
	}

	lookedUp, resolved := index.Stats()
	runLog.WithFields(log.Fields{
		"looked_up": humanize.Comma(int64(lookedUp)),
		"resolved":  humanize.Comma(int64(resolved)),
	}).Info("Addresses were resolved.")
}
