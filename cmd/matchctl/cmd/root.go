package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/internmatch/matcher/internal/app"
	"github.com/internmatch/matcher/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "matchctl",
	Short:         "Operate the internship matching engine",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newGenerateCmd(), newGenerateAllCmd(), newClearCmd(), newListCmd())
}

func withContainer(run func(c *app.Container) error) error {
	c, err := app.New(config.Load())
	if err != nil {
		return err
	}
	defer c.Close()
	return run(c)
}

func studentFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("student")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --student %q: %w", raw, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
