package db

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/email-reply-parser/internal/common"
	dbpkg "github.com/dtnitsch/email-reply-parser/pkg/db"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

// RunsAction lists recorded batch runs, most recent first.
func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-7s %-8s %-9s %-7s %-30s\n",
		"ID", "Created", "Files", "Success", "Degraded", "Failed", "Input")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-7d %-8d %-9d %-7d %-30s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.FileCount,
			r.SuccessCount,
			r.DegradedCount,
			r.FailedCount,
			r.InputDir,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'mailparse run <id>' to see details\n")

	return nil
}

// RunAction shows one run with its per-format counts and per-file results.
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	counts, err := database.FormatCounts(runID)
	if err != nil {
		return err
	}

	results, err := database.GetRunResults(runID, dbpkg.ResultFilter{
		Format: c.String("format-filter"),
		Status: c.String("status"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %d (%s)\n", run.RunID, run.RunUUID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Input:       %s\n", run.InputDir)
	fmt.Printf("Output:      %s\n", run.OutputDir)
	fmt.Printf("Files:       %d total (%d success, %d degraded, %d failed)\n",
		run.FileCount, run.SuccessCount, run.DegradedCount, run.FailedCount)
	fmt.Printf("Options:     include_signature=%v full_thread=%v\n", run.IncludeSignature, run.FullThread)

	fmt.Printf("\nFormats:\n")
	for _, format := range sortedKeys(counts) {
		fmt.Printf("  %-16s %d\n", format, counts[format])
	}

	if len(results) > 0 {
		fmt.Printf("\nResults (%d):\n", len(results))
		fmt.Println(strings.Repeat("-", 60))
		for i, r := range results {
			fmt.Printf("%2d. [%s] %s (%s)\n", i+1, r.Status, r.FilePath, r.Format)
			if r.Status == dbpkg.StatusFailed {
				fmt.Printf("    Error: [%s] %s\n", r.ErrorKind, r.ErrorMessage)
				continue
			}
			fmt.Printf("    Ratio: %.2f | Reply: %v | Signature: %v | Messages: %d | Size: %s\n",
				r.Ratio, r.HasReply, r.SignatureFound, r.MessageCount, humanize.Bytes(uint64(r.InputBytes)))
			if r.ErrorKind != "" {
				fmt.Printf("    Degraded: %s\n", r.ErrorKind)
			}
		}
	}

	return nil
}

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
