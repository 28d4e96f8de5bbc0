package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/garnizeh/devbuddy/internal/catalog"
	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Manage the skills on your profile",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your skills and the ones you can still add",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			mine, err := e.client.ListUserSkills(cmd.Context())
			if err != nil {
				return err
			}
			all, err := e.catalog.Skills(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSKILL\tLEVEL")
			for _, us := range mine {
				name := ""
				if us.Skill != nil {
					name = us.Skill.Name
				} else if s, ok := e.catalog.Lookup(us.SkillID); ok {
					name = s.Name
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\n", us.ID, name, us.ProficiencyLevel)
			}
			_ = tw.Flush()

			fmt.Fprintln(out, "\navailable:")
			for _, s := range catalog.Available(all, mine) {
				fmt.Fprintf(out, "  %d %s\n", s.ID, s.Name)
			}
			return nil
		})
	},
}

var skillsAddCmd = &cobra.Command{
	Use:   "add <skillID> <beginner|intermediate|expert>",
	Short: "Add a skill to your profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid skill id %q", args[0])
		}
		in := models.UserSkillInput{SkillID: id, ProficiencyLevel: models.Proficiency(args[1])}
		if err := forms.ValidateUserSkill(in); err != nil {
			return err
		}
		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			us, err := e.client.AddUserSkill(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Skill added (id %d)\n", us.ID)
			return nil
		})
	},
}

var skillsRemoveCmd = &cobra.Command{
	Use:   "remove <userSkillID>",
	Short: "Remove a skill from your profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		return withEnv(cmd.Context(), func(e *env) error {
			if _, err := e.signedIn(cmd.Context()); err != nil {
				return err
			}
			return e.client.RemoveUserSkill(cmd.Context(), id)
		})
	},
}

func init() {
	skillsCmd.AddCommand(skillsListCmd, skillsAddCmd, skillsRemoveCmd)
}
