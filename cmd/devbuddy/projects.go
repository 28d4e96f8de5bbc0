package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/garnizeh/devbuddy/internal/filter"
	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/internal/listing"
	"github.com/garnizeh/devbuddy/internal/policy"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse and manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects: your own as a client, open ones as a freelancer",
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := cmd.Flags()
		search, _ := fl.GetString("search")
		page, _ := fl.GetInt("page")
		budget, _ := fl.GetString("budget")
		var c filter.Candidate
		c.Status, _ = fl.GetString("status")
		if fl.Changed("min") {
			v, _ := fl.GetFloat64("min")
			c.BudgetMin = &v
		}
		if fl.Changed("max") {
			v, _ := fl.GetFloat64("max")
			c.BudgetMax = &v
		}
		c.HasDeadlineBefore, _ = fl.GetString("before")

		return withEnv(cmd.Context(), func(e *env) error {
			u, err := e.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			f := filter.Validate(c, time.Now())
			if budget != "" {
				// the bridge maps the shortcut onto canonical bounds
				b := filter.NewBridge(func(ch filter.Change) {
					f.BudgetMin, f.BudgetMax = ch.Filter.BudgetMin, ch.Filter.BudgetMax
				}, nil)
				if err := b.SetQuickBudget(filter.BudgetShortcut(budget)); err != nil {
					return fmt.Errorf("--budget %q: %w", budget, err)
				}
			}

			ctrl := listing.NewController(e.client, e.client, policy.ListingScope(u), e.notices, listing.Options{Limit: e.cfg.PageSize, Logger: logger})
			defer ctrl.Close()
			ctrl.Apply(listing.Update{Filter: &f, Search: &search, Page: &page})
			if err := ctrl.WaitIdle(cmd.Context()); err != nil {
				return err
			}
			printView(cmd, ctrl.View())
			return nil
		})
	},
}

func printView(cmd *cobra.Command, v listing.View) {
	out := cmd.OutOrStdout()
	if v.Failed {
		fmt.Fprintln(out, "Failed to load projects")
		return
	}
	fmt.Fprintf(out, "%s (%d)\n", v.Heading, v.Total)
	if len(v.ActiveFilters) > 0 {
		fmt.Fprintf(out, "filters: %v\n", v.ActiveFilters)
	}
	if v.Empty {
		fmt.Fprintln(out, v.EmptyHint)
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tBUDGET\tDAYS LEFT\tAPPLIED")
	now := time.Now()
	for _, it := range v.Items {
		applied := ""
		if it.Applied() {
			applied = it.Application.Status.Label()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.0f-%.0f\t%d\t%s\n", it.ID, it.Title, it.Status.Label(), it.BudgetMin, it.BudgetMax, it.DaysRemaining(now), applied)
	}
	_ = tw.Flush()
	if v.ShowPagination {
		fmt.Fprint(out, "pages:")
		for _, p := range v.Pages {
			switch {
			case p.Ellipsis:
				fmt.Fprint(out, " ...")
			case p.Current:
				fmt.Fprintf(out, " [%d]", p.Number)
			default:
				fmt.Fprintf(out, " %d", p.Number)
			}
		}
		fmt.Fprintln(out)
	}
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <projectID>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		return withEnv(cmd.Context(), func(e *env) error {
			u, err := e.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			p, err := e.client.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("project %d not found", id)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s [%s]\n%s\n", p.Title, p.Status.Label(), p.Description)
			fmt.Fprintf(out, "budget: %.0f-%.0f  deadline: %s (%d days left)  applicants: %d\n",
				p.BudgetMin, p.BudgetMax, p.Deadline.Format(time.DateOnly), p.DaysRemaining(time.Now()), p.ApplicantsCount)
			if u.IsFreelancer() {
				mine, err := workflow.ExistingApplication(cmd.Context(), e.client, p.ID)
				if err != nil {
					return err
				}
				if mine != nil {
					fmt.Fprintf(out, "your application: %s\n", mine.Status.Label())
				}
			}
			return nil
		})
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Post a new project (clients)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := cmd.Flags()
		var in models.CreateProjectInput
		in.Title, _ = fl.GetString("title")
		in.Description, _ = fl.GetString("description")
		in.BudgetMin, _ = fl.GetFloat64("min")
		in.BudgetMax, _ = fl.GetFloat64("max")
		in.Skills, _ = fl.GetInt64Slice("skill")
		deadline, _ := fl.GetString("deadline")
		if t, ok := filter.ParseDeadline(deadline); ok {
			in.Deadline = t
		}
		if err := forms.ValidateProject(in, time.Now()); err != nil {
			return err
		}
		return withEnv(cmd.Context(), func(e *env) error {
			u, err := e.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			if !u.IsClient() {
				return workflow.ErrForbidden
			}
			p, err := e.client.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project created successfully (id %d)\n", p.ID)
			return nil
		})
	},
}

func init() {
	fl := projectsListCmd.Flags()
	fl.String("search", "", "Search text")
	fl.Int("page", 1, "Page number")
	fl.String("status", "", "Project status")
	fl.String("budget", "", "Budget shortcut: 0-1000, 1000-5000 or 5000+")
	fl.Float64("min", 0, "Minimum budget")
	fl.Float64("max", 0, "Maximum budget")
	fl.String("before", "", "Deadline before (YYYY-MM-DD)")

	fc := projectsCreateCmd.Flags()
	fc.String("title", "", "Project title")
	fc.String("description", "", "Project description")
	fc.Float64("min", 0, "Minimum budget")
	fc.Float64("max", 0, "Maximum budget")
	fc.String("deadline", "", "Deadline (YYYY-MM-DD)")
	fc.Int64Slice("skill", nil, "Required skill id (repeatable)")

	projectsCmd.AddCommand(projectsListCmd, projectsShowCmd, projectsCreateCmd)
}
