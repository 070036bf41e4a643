package main

import (
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/autopo-proposals/internal/app"
	"github.com/andresuchdata/autopo-proposals/internal/config"
	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/urfave/cli/v2"
)

func generateCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a proposal batch from a snapshot source",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory holding inventory, products and suppliers CSV/XLSX files",
			},
			&cli.StringFlag{
				Name:  "source-url",
				Usage: "Base URL of a REST API serving the snapshot collections",
			},
			&cli.StringFlag{
				Name:  "drive-folder",
				Usage: "Google Drive folder ID holding the snapshot files",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the batch as CSV to this path (- for stdout)",
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload the CSV export to the configured bucket",
			},
		},
		Action: func(c *cli.Context) error {
			applySourceFlags(&cfg.Source, c.String("dir"), c.String("source-url"), c.String("drive-folder"))
			return runGenerate(c, cfg)
		},
	}
}

// applySourceFlags points the source config at whichever flag was given. The
// first non-empty flag wins: dir, then source-url, then drive-folder.
func applySourceFlags(cfg *config.SourceConfig, dir, sourceURL, driveFolder string) {
	switch {
	case dir != "":
		cfg.Kind = config.SourceFile
		cfg.FileDir = dir
	case sourceURL != "":
		cfg.Kind = config.SourceREST
		cfg.RESTBaseURL = sourceURL
	case driveFolder != "":
		cfg.Kind = config.SourceDrive
		cfg.DriveFolderID = driveFolder
	}
}

func runGenerate(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()
	svc := application.ProposalService

	batch, err := svc.Generate(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, len(batch.Proposals))
	for i, p := range batch.Proposals {
		ids[i] = p.ID
	}
	summary, err := svc.Impact(ctx, ids)
	if err != nil {
		return err
	}

	if err := writeSummary(os.Stderr, batch, summary); err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := writeExport(c, out, func(w io.Writer) error {
			_, err := svc.ExportCSV(ctx, w)
			return err
		}); err != nil {
			return err
		}
	}

	if c.Bool("upload") {
		info, err := svc.UploadExport(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "uploaded %s (%d bytes)\n", info.Key, info.Size)
	}
	return nil
}

func writeExport(c *cli.Context, out string, export func(io.Writer) error) error {
	if out == "-" {
		return export(c.App.Writer)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSummary(w io.Writer, batch *domain.Batch, summary *domain.ImpactSummary) error {
	_, err := fmt.Fprintf(w,
		"batch %s generated at %s\n  inventory records: %d\n  flagged:           %d\n  stock increase:    %d\n  cash impact:       %s\n  max lead time:     %d days\n",
		batch.ID,
		batch.GeneratedAt.Format("2006-01-02 15:04:05"),
		batch.InventoryCount,
		batch.FlaggedCount,
		summary.TotalStockIncrease,
		summary.TotalCashImpact.StringFixed(2),
		summary.TotalLeadTimeDays,
	)
	if err != nil {
		return err
	}

	for _, warn := range summary.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warn)
	}

	if len(batch.Warnings) > 0 {
		fmt.Fprintf(w, "  missing references: %d\n", len(batch.Warnings))
		for _, warn := range batch.Warnings {
			fmt.Fprintf(w, "    - inventory %d: missing %s %d, used %q\n", warn.InventoryID, warn.Kind, warn.RefID, warn.Substitute)
		}
	}
	return nil
}
