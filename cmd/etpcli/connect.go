package main

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/geosiris-technologies/etp-go-client/pkg/etp/client"
)

func connect(ctx context.Context) (*client.Client, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("etpcli: --url (or URL env var) is required")
	}
	if accessToken == "" && password == "" && username != "" {
		fmt.Print("Enter password: ")
		bytePwd, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("etpcli: reading password: %w", err)
		}
		password = string(bytePwd)
	}

	return client.Connect(ctx, client.Options{
		URL:                serverURL,
		Username:           username,
		Password:           password,
		AccessToken:        accessToken,
		AdditionalHeaders:  cfg.AdditionalHeaders,
		InsecureSkipVerify: insecure,
		ApplicationName:    "etpcli",
		ApplicationVersion: "0.1.0",
		HandshakeTimeout:   10 * time.Second,
	})
}

func requestTimeout() time.Duration {
	return time.Duration(timeoutSec) * time.Second
}
