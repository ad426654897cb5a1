package main

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Dial the server, handshake, and send a Core Ping",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		c, err := connect(ctx)
		if err != nil {
			return err
		}
		defer c.Close("ping done")

		start := time.Now()
		pong, err := c.Ping(ctx, requestTimeout())
		if err != nil {
			return err
		}
		color.Green("pong received in %s (server time %d)", time.Since(start), pong.CurrentDateTime)
		return nil
	},
}
