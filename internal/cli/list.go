package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored research runs",
	Long: `List shows every research run in the local database, newest first,
with its ID for use in the script and package commands.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openRunStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	runs, err := s.List(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No research runs stored yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run ID", "Topic", "Created", "Items", "Script"})
	for _, run := range runs {
		script := ""
		if run.HasScript {
			script = "yes"
		}
		t.AppendRow(table.Row{
			run.ID,
			run.Topic,
			run.CreatedAt.Local().Format(time.DateTime),
			run.ItemsCount,
			script,
		})
	}
	t.Render()
	return nil
}
