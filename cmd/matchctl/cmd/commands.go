package cmd

import (
	"github.com/spf13/cobra"

	"github.com/internmatch/matcher/internal/app"
	"github.com/internmatch/matcher/internal/models"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate matches for one student",
		RunE: func(cmd *cobra.Command, _ []string) error {
			studentID, err := studentFlag(cmd)
			if err != nil {
				return err
			}
			return withContainer(func(c *app.Container) error {
				report, err := c.Matching.Generate(cmd.Context(), studentID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().String("student", "", "student ID")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func newGenerateAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-all",
		Short: "Generate matches for every student",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(func(c *app.Container) error {
				report, err := c.Matching.GenerateAll(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every match of one student",
		RunE: func(cmd *cobra.Command, _ []string) error {
			studentID, err := studentFlag(cmd)
			if err != nil {
				return err
			}
			return withContainer(func(c *app.Container) error {
				deleted, err := c.Matching.Clear(cmd.Context(), studentID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), models.ClearResponse{StudentID: studentID.String(), Deleted: deleted})
			})
		},
	}
	cmd.Flags().String("student", "", "student ID")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ranked matches of one student",
		RunE: func(cmd *cobra.Command, _ []string) error {
			studentID, err := studentFlag(cmd)
			if err != nil {
				return err
			}
			return withContainer(func(c *app.Container) error {
				matches, err := c.Matching.ListMatches(cmd.Context(), studentID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), models.MatchListResponse{
					StudentID: studentID.String(),
					Count:     len(matches),
					Matches:   matches,
				})
			})
		},
	}
	cmd.Flags().String("student", "", "student ID")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}
