package main

import (
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/9seconds/geoblocks/reconcile"
)

type reporter struct {
	log *log.Entry
}

func (r *reporter) Report(pass string, report *reconcile.Report) {
	passLog := r.log.WithField("pass", pass)

	for _, v := range report.Events {
		entry := passLog.WithField("kind", v.Kind.String())

		if v.Kind.Warning() {
			entry.Warn(v.Message())
		} else {
			entry.Info(v.Message())
		}
	}

	passLog.WithFields(log.Fields{
		"events":   humanize.Comma(int64(len(report.Events))),
		"warnings": humanize.Comma(int64(report.Warnings())),
	}).Info("Changes were applied.")
}

func (r *reporter) Output(output reconcile.Output) {
	entry := r.log.WithFields(log.Fields{
		"path":     output.Path,
		"records":  humanize.Comma(int64(output.Records)),
		"checksum": output.Checksum,
	})

	if output.Changed {
		entry.Info("File was written.")
	} else {
		entry.Info("File is up to date.")
	}
}

func (r *reporter) Fatal(err error) {
	switch {
	case reconcile.IsMissingInput(err):
		r.log.WithField("err", err).Fatal("Required input file does not exist.")
	case reconcile.IsMalformedRecord(err):
		r.log.WithField("err", err).Fatal("Input file has malformed records.")
	default:
		r.log.WithField("err", err).Fatal("Cannot process input.")
	}
}

func newReporter(entry *log.Entry) *reporter {
	return &reporter{log: entry}
}
