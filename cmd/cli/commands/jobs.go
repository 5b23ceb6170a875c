package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/resumeforge/forge/internal/api/v1/handlers"
)

func init() {
	jobsCmd.AddCommand(submitJobCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(listJobsCmd)

	submitJobCmd.Flags().StringP("url", "u", "", "URL of the captured job posting")
	submitJobCmd.Flags().StringP("description", "d", "", "Job description text")
	submitJobCmd.Flags().StringP("description-file", "f", "", "Read the job description from a file")
	_ = submitJobCmd.MarkFlagRequired("url")

	listJobsCmd.Flags().IntP("limit", "l", 10, "Limit the number of jobs returned")
	listJobsCmd.Flags().IntP("offset", "o", 0, "Offset into the job listing")
	listJobsCmd.Flags().String("status", "", "Filter jobs by status (pending, processing, done, error)")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Submit and track jobs",
}

var submitJobCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a captured job posting",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, _ := cmd.Flags().GetString("url")
		description, _ := cmd.Flags().GetString("description")
		descriptionFile, _ := cmd.Flags().GetString("description-file")

		if descriptionFile != "" {
			data, err := os.ReadFile(descriptionFile)
			if err != nil {
				return fmt.Errorf("error reading description file: %w", err)
			}
			description = string(data)
		}

		id, err := apiClient.SubmitJob(context.Background(), handlers.SubmitRequest{
			URL:         url,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("error submitting job: %w", err)
		}

		fmt.Println(id)
		return nil
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a job record",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		job, err := apiClient.GetJob(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("error fetching job: %w", err)
		}

		prettyJSON, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))
		return nil
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		status, _ := cmd.Flags().GetString("status")

		result, err := apiClient.ListJobs(context.Background(), limit, offset, status)
		if err != nil {
			return fmt.Errorf("error fetching jobs: %w", err)
		}

		prettyJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))
		return nil
	},
}
