package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var createDataspaceCmd = &cobra.Command{
	Use:     "create-dataspace NAME...",
	Aliases: []string{"put-dataspaces"},
	Short:   "Create or update dataspaces, applying the configured ACL/legal-tag defaults",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Close("create-dataspace done")

		result, err := c.PutDataspacesWithACL(ctx, args, cfg, requestTimeout())
		if err != nil {
			return err
		}
		for name, ok := range result {
			fmt.Printf("%s: %v\n", name, ok)
		}
		return nil
	},
}
