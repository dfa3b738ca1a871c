package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/email-reply-parser/internal/common"
	"github.com/dtnitsch/email-reply-parser/pkg/detector"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
	"github.com/dtnitsch/email-reply-parser/pkg/preprocess"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

// ExtractAction runs the pipeline over a single file and prints the response.
func ExtractAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no input file given. Usage: mailparse extract <file.html|file.eml>")
	}
	path := c.Args().First()

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := common.NewLogger(c, cfg)

	p, err := common.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	email, size, err := common.LoadInput(path)
	if err != nil {
		return err
	}
	// Flags override whatever the .eml headers carried
	if c.IsSet("subject") {
		email.Subject = c.String("subject")
	}
	if c.IsSet("prior-subject") {
		email.PriorSubject = c.String("prior-subject")
	}
	if c.IsSet("sender") {
		email.SenderHeader = c.String("sender")
	}
	if c.IsSet("date") {
		email.DateHeader = c.String("date")
	}
	logger.Info("Extracting reply", "file", path, "size", humanize.Bytes(uint64(size)), "attachments", len(email.Attachments))

	resp := p.Process(context.Background(), email, cfg.ExtractOptions())

	var output interface{} = resp
	if c.IsSet("fields") {
		output = common.FilterResultFields(resp, c.String("fields"))
	}
	data, err := common.Marshal(output, c.String("format"))
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if !resp.Success {
		return cli.Exit(fmt.Sprintf("extraction failed: [%s] %s", resp.ErrorKind, resp.Error), 2)
	}
	return nil
}

// DetectAction prints the detected client format of each file, with the
// fingerprints that matched and the normalizers that would run.
func DetectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no input files given. Usage: mailparse detect <file>...")
	}

	registry := preprocess.DefaultRegistry()
	for _, path := range c.Args().Slice() {
		email, _, err := common.LoadInput(path)
		if err != nil {
			fmt.Printf("%-40s error: %v\n", path, err)
			continue
		}

		doc, err := htmldoc.Parse(email.HTML)
		if err != nil {
			fmt.Printf("%-40s %-16s (%v)\n", path, "unknown", err)
			continue
		}
		detection := detector.Analyze(doc)

		matched := make([]string, len(detection.Matched))
		for i, f := range detection.Matched {
			matched[i] = string(f)
		}
		var normalizers []string
		for _, n := range registry.For(detection.Format) {
			normalizers = append(normalizers, n.Name())
		}

		fmt.Printf("%-40s %-16s matched=[%s] normalizers=[%s]\n",
			path, detection.Format, strings.Join(matched, ","), strings.Join(normalizers, ","))
	}
	return nil
}
