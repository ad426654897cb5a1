package main

import (
	"context"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/types"
)

var (
	resourceURI   string
	resourceScope string
	resourceDepth int32
)

var listResourcesCmd = &cobra.Command{
	Use:     "list-resources",
	Aliases: []string{"resources", "rs"},
	Short:   "Traverse the resource graph from a dataspace or object URI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Close("list-resources done")

		resources, _, err := c.GetResources(ctx, types.GetResources{
			URI:   resourceURI,
			Depth: resourceDepth,
			Scope: types.Scope(resourceScope),
		}, requestTimeout())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"URI", "Name", "Active Status", "Last Changed"})
		table.SetBorder(true)
		for _, r := range resources {
			table.Append([]string{r.URI, r.Name, r.ActiveStatus, formatUnixMillis(r.LastChanged)})
		}
		table.Render()
		return nil
	},
}

func init() {
	listResourcesCmd.Flags().StringVar(&resourceURI, "uri", "", "root dataspace or object URI (bare dataspace names are normalized)")
	listResourcesCmd.Flags().StringVar(&resourceScope, "scope", string(types.ScopeSelf), "self, sources, targets, sourcesOrSelf, targetsOrSelf, targetsAndSelf")
	listResourcesCmd.Flags().Int32Var(&resourceDepth, "depth", 1, "traversal depth")
	_ = listResourcesCmd.MarkFlagRequired("uri")
}
