package main

import (
	"errors"
	"fmt"

	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the credential locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		in := models.LoginInput{Email: email, Password: password}
		if err := forms.ValidateLogin(in); err != nil {
			return err
		}
		return withEnv(cmd.Context(), func(e *env) error {
			u, err := e.session.Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s\n", u.Name)
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a client or freelancer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		name, _ := f.GetString("name")
		email, _ := f.GetString("email")
		password, _ := f.GetString("password")
		userType, _ := f.GetString("type")
		acct := forms.Account{Name: name, Email: email, Password: password, ConfirmPassword: password}

		var reg forms.Registration
		switch models.UserType(userType) {
		case models.UserTypeClient:
			reg = forms.ClientRegistration(acct)
		case models.UserTypeFreelancer:
			var p forms.FreelancerProfile
			p.Title, _ = f.GetString("title")
			p.Bio, _ = f.GetString("bio")
			p.HourlyRate, _ = f.GetFloat64("rate")
			p.LinkedinURL, _ = f.GetString("linkedin")
			p.GithubURL, _ = f.GetString("github")
			p.ExperienceYears, _ = f.GetInt("years")
			p.ExperienceMonths, _ = f.GetInt("months")
			reg = forms.FreelancerRegistration(acct, p)
		default:
			return errors.New("--type must be client or freelancer")
		}
		if err := reg.Validate(); err != nil {
			return err
		}
		return withEnv(cmd.Context(), func(e *env) error {
			u, err := e.session.Register(cmd.Context(), reg.Input())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s (%s)\n", u.Name, u.UserType)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), func(e *env) error {
			return e.session.Logout(cmd.Context())
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd.Context(), func(e *env) error {
			u, err := e.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", u.Name, u.Email, u.UserType)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")

	f := registerCmd.Flags()
	f.String("name", "", "Full name")
	f.String("email", "", "Account email")
	f.String("password", "", "Account password")
	f.String("type", "", "Account type: client or freelancer")
	f.String("title", "", "Professional title (freelancer)")
	f.String("bio", "", "Short bio (freelancer)")
	f.Float64("rate", 0, "Hourly rate (freelancer)")
	f.String("linkedin", "", "LinkedIn URL (freelancer)")
	f.String("github", "", "GitHub URL (freelancer)")
	f.Int("years", 0, "Years of experience (freelancer)")
	f.Int("months", 0, "Additional months of experience (freelancer)")
}
