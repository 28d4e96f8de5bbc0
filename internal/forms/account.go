package forms

import (
	"strings"

	"github.com/garnizeh/devbuddy/pkg/models"
)

// Account holds the fields every registration has.
type Account struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// FreelancerProfile holds the extra registration fields of a freelancer.
type FreelancerProfile struct {
	Title            string
	Bio              string
	HourlyRate       float64
	LinkedinURL      string
	GithubURL        string
	ExperienceYears  int
	ExperienceMonths int
}

// Registration is a sign-up form. Build it with ClientRegistration or
// FreelancerRegistration.
type Registration struct {
	account    Account
	freelancer *FreelancerProfile
}

func ClientRegistration(a Account) Registration {
	return Registration{account: a}
}

func FreelancerRegistration(a Account, p FreelancerProfile) Registration {
	return Registration{account: a, freelancer: &p}
}

func (r Registration) UserType() models.UserType {
	if r.freelancer != nil {
		return models.UserTypeFreelancer
	}
	return models.UserTypeClient
}

var accountForm = load("account", map[string]string{
	"name":     "Name must be at least 2 characters",
	"password": "Password must be at least 6 characters",
})

var freelancerForm = load("freelancer", map[string]string{
	"title":            "Professional title must be at least 2 characters",
	"bio":              "Bio must be at least 10 characters",
	"hourlyRate":       "Hourly rate must be between 0 and 1000",
	"experienceYears":  "Years of experience must be between 0 and 50",
	"experienceMonths": "Months must be between 0 and 11",
})

func (r Registration) Validate() error {
	errs := Errors{}
	a := r.account
	accountForm.check(map[string]any{
		"name":     strings.TrimSpace(a.Name),
		"password": a.Password,
	}, errs)
	if !validEmail(strings.TrimSpace(a.Email)) {
		errs.add("email", "Invalid email address")
	}
	if a.Password != a.ConfirmPassword {
		errs.add("confirmPassword", "Passwords do not match")
	}

	if p := r.freelancer; p != nil {
		freelancerForm.check(map[string]any{
			"title":            strings.TrimSpace(p.Title),
			"bio":              strings.TrimSpace(p.Bio),
			"hourlyRate":       p.HourlyRate,
			"experienceYears":  p.ExperienceYears,
			"experienceMonths": p.ExperienceMonths,
		}, errs)
		if p.LinkedinURL != "" && !validURL(p.LinkedinURL) {
			errs.add("linkedinUrl", "Invalid LinkedIn URL")
		}
		if p.GithubURL != "" && !validURL(p.GithubURL) {
			errs.add("githubUrl", "Invalid GitHub URL")
		}
	}
	return errs.orNil()
}

// Input converts the form into the register request. Experience is sent in
// months.
func (r Registration) Input() models.RegisterInput {
	a := r.account
	in := models.RegisterInput{
		Name:     strings.TrimSpace(a.Name),
		Email:    strings.TrimSpace(a.Email),
		Password: a.Password,
		UserType: r.UserType(),
	}
	if p := r.freelancer; p != nil {
		rate := p.HourlyRate
		months := p.ExperienceYears*12 + p.ExperienceMonths
		in.Title = strings.TrimSpace(p.Title)
		in.Bio = strings.TrimSpace(p.Bio)
		in.HourlyRate = &rate
		in.LinkedinURL = p.LinkedinURL
		in.GithubURL = p.GithubURL
		in.ExperienceInMonths = &months
	}
	return in
}

var loginForm = load("login", map[string]string{
	"password": "Password must be at least 6 characters",
})

func ValidateLogin(in models.LoginInput) error {
	errs := Errors{}
	if !validEmail(strings.TrimSpace(in.Email)) {
		errs.add("email", "Invalid email address")
	}
	loginForm.check(map[string]any{"password": in.Password}, errs)
	return errs.orNil()
}

var userSkillForm = load("user_skill", map[string]string{
	"skillId":          "Select a skill",
	"proficiencyLevel": "Select a proficiency level",
})

func ValidateUserSkill(in models.UserSkillInput) error {
	errs := Errors{}
	userSkillForm.check(map[string]any{
		"skillId":          in.SkillID,
		"proficiencyLevel": string(in.ProficiencyLevel),
	}, errs)
	return errs.orNil()
}

var profileForm = load("profile", map[string]string{
	"name":               "Name must be at least 2 characters",
	"title":              "Professional title must be at least 2 characters",
	"bio":                "Bio must be at least 10 characters",
	"hourlyRate":         "Hourly rate must be between 0 and 1000",
	"experienceInMonths": "Experience must be between 0 and 50 years",
})

// ValidateProfile checks the fields present in a profile update. Freelancer
// attributes are refused for clients.
func ValidateProfile(in models.UpdateProfileInput, t models.UserType) error {
	errs := Errors{}
	doc := map[string]any{}
	if in.Name != nil {
		doc["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Title != nil {
		doc["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Bio != nil {
		doc["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.HourlyRate != nil {
		doc["hourlyRate"] = *in.HourlyRate
	}
	if in.ExperienceInMonths != nil {
		doc["experienceInMonths"] = *in.ExperienceInMonths
	}
	profileForm.check(doc, errs)

	if in.Email != nil && !validEmail(strings.TrimSpace(*in.Email)) {
		errs.add("email", "Invalid email address")
	}
	if in.LinkedinURL != nil && *in.LinkedinURL != "" && !validURL(*in.LinkedinURL) {
		errs.add("linkedinUrl", "Invalid LinkedIn URL")
	}
	if in.GithubURL != nil && *in.GithubURL != "" && !validURL(*in.GithubURL) {
		errs.add("githubUrl", "Invalid GitHub URL")
	}

	if t != models.UserTypeFreelancer {
		for field, set := range map[string]bool{
			"title":              in.Title != nil,
			"bio":                in.Bio != nil,
			"hourlyRate":         in.HourlyRate != nil,
			"linkedinUrl":        in.LinkedinURL != nil,
			"githubUrl":          in.GithubURL != nil,
			"experienceInMonths": in.ExperienceInMonths != nil,
		} {
			if set {
				errs.add(field, "Only freelancers have this field")
			}
		}
	}
	return errs.orNil()
}
