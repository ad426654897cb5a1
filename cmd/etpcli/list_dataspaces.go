package main

import (
	"context"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listDataspacesCmd = &cobra.Command{
	Use:     "list-dataspaces",
	Aliases: []string{"dataspaces", "ds"},
	Short:   "List dataspaces on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Close("list-dataspaces done")

		dataspaces, err := c.GetDataspaces(ctx, nil, requestTimeout())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"URI", "Path", "Store Created", "Store Last Write"})
		table.SetBorder(true)
		for _, ds := range dataspaces {
			table.Append([]string{
				ds.URI,
				ds.Path,
				formatUnixMillis(ds.StoreCreated),
				formatUnixMillis(ds.StoreLastWrite),
			})
		}
		table.Render()
		return nil
	},
}

func formatUnixMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).Format(time.RFC3339)
}
