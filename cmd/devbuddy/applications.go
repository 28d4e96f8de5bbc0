package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/garnizeh/devbuddy/internal/listing"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <projectID>",
	Short: "Apply to a project (freelancers)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		var in models.ApplyInput
		in.CoverLetter, _ = cmd.Flags().GetString("cover")
		in.ProposedRate, _ = cmd.Flags().GetFloat64("rate")
		in.EstimatedDuration, _ = cmd.Flags().GetInt("days")

		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			p, err := e.client.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("project %d not found", id)
			}
			s := workflow.NewSubmitter(e.client, e.session, e.notices, logger)
			if err := s.Submit(cmd.Context(), *p, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Application submitted successfully")
			return nil
		})
	},
}

var applicationsCmd = &cobra.Command{
	Use:   "applications [projectID]",
	Short: "List your applications, or a project's applications as its client",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var projectID *int64
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			projectID = &id
		}
		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			list := listing.NewApplicationList(e.client, projectID, e.notices, logger)
			defer list.Close()
			if err := list.Reload(cmd.Context()); err != nil {
				return err
			}
			printApplications(cmd, list.View())
			return nil
		})
	},
}

func printApplications(cmd *cobra.Command, v listing.ApplicationsView) {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tRATE\tDAYS\tSTATUS\tREASON")
	for _, a := range v.Items {
		fmt.Fprintf(tw, "%d\t%d\t%.0f\t%d\t%s\t%s\n", a.ID, a.ProjectID, a.ProposedRate, a.EstimatedDuration, a.Status.Label(), a.RejectionReason)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "total %d, active %d, success rate %d%%\n", v.Stats.Total, v.Stats.Active, v.Stats.SuccessRate)
}

var reviewCmd = &cobra.Command{
	Use:   "review <applicationID> <status>",
	Short: "Move an application of your project to interview, accepted or rejected",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid application id %q", args[0])
		}
		projectID, _ := cmd.Flags().GetInt64("project")
		reason, _ := cmd.Flags().GetString("reason")
		req := workflow.Request{Status: models.ApplicationStatus(args[1]), Reason: reason}

		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			list := listing.NewApplicationList(e.client, &projectID, e.notices, logger)
			defer list.Close()
			if err := list.Reload(cmd.Context()); err != nil {
				return err
			}
			app, ok := list.Get(id)
			if !ok {
				return fmt.Errorf("application %d not found in project %d", id, projectID)
			}
			r := workflow.NewReviewer(e.client, e.session, e.notices, logger)
			if err := r.Review(cmd.Context(), app, req, list); err != nil {
				return err
			}
			printApplications(cmd, list.View())
			return nil
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <applicationID>",
	Short: "Withdraw one of your applications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid application id %q", args[0])
		}
		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			list := listing.NewApplicationList(e.client, nil, e.notices, logger)
			defer list.Close()
			if err := list.Reload(cmd.Context()); err != nil {
				return err
			}
			app, ok := list.Get(id)
			if !ok {
				return fmt.Errorf("application %d not found", id)
			}
			s := workflow.NewSubmitter(e.client, e.session, e.notices, logger)
			if err := s.Withdraw(cmd.Context(), app, list); err != nil {
				return err
			}
			printApplications(cmd, list.View())
			return nil
		})
	},
}

func init() {
	applyCmd.Flags().String("cover", "", "Cover letter")
	applyCmd.Flags().Float64("rate", 0, "Proposed rate")
	applyCmd.Flags().Int("days", 0, "Estimated duration in days")

	reviewCmd.Flags().Int64("project", 0, "Project the application belongs to")
	reviewCmd.Flags().String("reason", "", "Rejection reason (required when rejecting)")
	_ = reviewCmd.MarkFlagRequired("project")
}
