package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andresuchdata/autopo-proposals/internal/app"
	"github.com/andresuchdata/autopo-proposals/internal/config"
	"github.com/andresuchdata/autopo-proposals/internal/storage"
	"github.com/urfave/cli/v2"
)

func exportsCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "exports",
		Usage: "List proposal CSV exports uploaded to the bucket",
		Action: func(c *cli.Context) error {
			store, err := app.NewStorage(cfg.Storage)
			if err != nil {
				return err
			}

			prefix := cfg.Storage.ExportPrefix
			if prefix != "" {
				prefix += "/"
			}
			objects, err := store.ListObjects(c.Context, prefix)
			if err != nil {
				return err
			}
			return writeExportList(c.App.Writer, objects)
		},
	}
}

func writeExportList(w io.Writer, objects []storage.ObjectInfo) error {
	if len(objects) == 0 {
		_, err := fmt.Fprintln(w, "no exports found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSIZE\tLAST MODIFIED")
	for _, obj := range objects {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
