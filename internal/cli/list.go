package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		Run:   runList,
	}

	cmd.Flags().Bool("json", false, "Print the raw JSON")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	asJSON, _ := cmd.Flags().GetBool("json")

	meetings, err := NewAPIClient(getServerURL()).ListMeetings(cmd.Context())
	if err != nil {
		exitErr("list", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(meetings)
		return
	}

	if len(meetings) == 0 {
		fmt.Println("No meetings.")
		return
	}
	for _, m := range meetings {
		fmt.Printf("%s  %-25s  %s  %d mins\n", m.ID, m.Title, m.Datetime, m.DurationMinutes)
	}
}
