package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/logedit-go/internal/apperr"
	"github.com/masmgr/logedit-go/internal/output"
)

func writeChangelogReport(c *cli.Context, report *output.ChangelogReport) error {
	opts := OutputOptions(c)
	writer := output.NewChangelogReportWriter(opts.Format)
	if err := writer.Write(report, opts); err != nil {
		return apperr.IO(err, "cannot write report")
	}
	return nil
}

func writeCommitReport(c *cli.Context, report *output.CommitListReport) error {
	opts := OutputOptions(c)
	writer := output.NewCommitReportWriter(opts.Format)
	if err := writer.Write(report, opts); err != nil {
		return apperr.IO(err, "cannot write report")
	}
	return nil
}
