// Package cli implements the meetcli commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var serverURL string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "meetcli",
	Short: "Talk to the meeting agent from a terminal",
	Long:  "meetcli keeps the conversation history locally and sends it with every turn, over WebSocket or plain HTTP.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Server base URL (default: $MEETAGENT_SERVER or http://localhost:3001)")
}

func getServerURL() string {
	if serverURL != "" {
		return strings.TrimRight(serverURL, "/")
	}
	if env := os.Getenv("MEETAGENT_SERVER"); env != "" {
		return strings.TrimRight(env, "/")
	}
	return "http://localhost:3001"
}

// wsURL turns an http(s) base URL into the WebSocket turn endpoint.
func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/chat"
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
