package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/email-reply-parser/internal/batch"
	"github.com/dtnitsch/email-reply-parser/internal/db"
	"github.com/dtnitsch/email-reply-parser/internal/extract"
	"github.com/dtnitsch/email-reply-parser/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "mailparse",
		Usage: "Split email HTML into the new reply and the quoted history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"MAILPARSE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "db-path",
				Usage: "SQLite database for recorded runs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract the reply from one .html, .txt or .eml file",
				ArgsUsage: "<file>",
				Action:    extract.ExtractAction,
				Flags: append(extractionFlags(),
					&cli.StringFlag{Name: "subject", Usage: "Subject header of the message"},
					&cli.StringFlag{Name: "prior-subject", Usage: "Subject of the message being replied to"},
					&cli.StringFlag{Name: "sender", Usage: "From header of the message"},
					&cli.StringFlag{Name: "date", Usage: "Date header of the message"},
					&cli.StringFlag{Name: "fields", Usage: "Comma separated top-level fields to print (e.g. reply_text,ratio)"},
				),
			},
			{
				Name:      "detect",
				Usage:     "Print the detected mail client format of each file",
				ArgsUsage: "<file>...",
				Action:    extract.DetectAction,
			},
			{
				Name:      "batch",
				Usage:     "Extract every input file under a directory",
				ArgsUsage: "<dir>",
				Action:    batch.BatchAction,
				Flags: append(extractionFlags(),
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers"},
					&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Directory for result files and the summary"},
					&cli.BoolFlag{Name: "record", Usage: "Record the run in the database"},
					&cli.StringFlag{Name: "cache-dir", Usage: "Reuse results of unchanged messages from this directory"},
					&cli.DurationFlag{Name: "cache-ttl", Usage: "How long cached results stay valid (0 for forever)"},
				),
			},
			{
				Name:  "quickstart",
				Usage: "Print a YAML cheat sheet of commands and result fields",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:   "runs",
				Usage:  "List recorded batch runs",
				Action: db.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum runs to list (0 for all)"},
				},
			},
			{
				Name:      "run",
				Usage:     "Show a recorded run (latest if no id is given)",
				ArgsUsage: "[id]",
				Action:    db.RunAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format-filter", Usage: "Only show results of this detected format"},
					&cli.StringFlag{Name: "status", Usage: "Only show results with this status (success, degraded, failed)"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// extractionFlags are shared by every command that runs the pipeline.
func extractionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json or yaml"},
		&cli.BoolFlag{Name: "include-signature", Value: true, Usage: "Keep a detected signature in the reply body"},
		&cli.BoolFlag{Name: "full-thread", Usage: "Report every message of a detected thread"},
		&cli.BoolFlag{Name: "detect-language", Usage: "Detect the reply language"},
		&cli.DurationFlag{Name: "timeout", Usage: "Quotation extraction timeout (e.g. 5s)"},
	}
}
