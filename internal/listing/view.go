package listing

import (
	"github.com/garnizeh/devbuddy/pkg/models"
)

// Item is a listed project, annotated with the caller's own application
// when the caller is a freelancer who applied.
type Item struct {
	models.Project
	Application *models.ProjectApplication `json:"application,omitempty"`
}

// Applied reports a live application by the caller.
func (it Item) Applied() bool {
	return it.Application != nil && it.Application.Status != models.ApplicationStatusWithdrawn
}

// Stats is computed from the fetched page only.
type Stats struct {
	ByStatus   map[models.ProjectStatus]int `json:"byStatus"`
	Applicants int                          `json:"applicants"`
}

func statsOf(items []Item) Stats {
	s := Stats{ByStatus: map[models.ProjectStatus]int{}}
	for _, it := range items {
		s.ByStatus[it.Status]++
		s.Applicants += it.ApplicantsCount
	}
	return s
}

// PageLink is one entry of the pagination control: a page number or a gap.
type PageLink struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// Siblings is how many pages are shown on each side of the current one.
const Siblings = 1

// PageWindow lays out the pagination control: the first and last pages,
// current +/- siblings, and an ellipsis for each hidden run.
func PageWindow(current, total, siblings int) []PageLink {
	if total < 1 {
		total = 1
	}
	current = min(max(current, 1), total)

	var nums []int
	// first + last + current + siblings + two gaps
	if total <= 2*siblings+5 {
		for i := 1; i <= total; i++ {
			nums = append(nums, i)
		}
	} else {
		left := max(current-siblings, 1)
		right := min(current+siblings, total)
		leftGap, rightGap := left > 2, right < total-1
		span := 3 + 2*siblings

		switch {
		case !leftGap && rightGap:
			for i := 1; i <= span; i++ {
				nums = append(nums, i)
			}
			nums = append(nums, 0, total)
		case leftGap && !rightGap:
			nums = append(nums, 1, 0)
			for i := total - span + 1; i <= total; i++ {
				nums = append(nums, i)
			}
		default:
			nums = append(nums, 1, 0)
			for i := left; i <= right; i++ {
				nums = append(nums, i)
			}
			nums = append(nums, 0, total)
		}
	}

	out := make([]PageLink, 0, len(nums))
	for _, n := range nums {
		if n == 0 {
			out = append(out, PageLink{Ellipsis: true})
			continue
		}
		out = append(out, PageLink{Number: n, Current: n == current})
	}
	return out
}

// View is the rendered state of a project listing.
type View struct {
	Items            []Item     `json:"items"`
	Total            int        `json:"total"`
	TotalPages       int        `json:"totalPages"`
	Page             int        `json:"page"`
	Limit            int        `json:"limit"`
	Loading          bool       `json:"loading"`
	Failed           bool       `json:"failed"`
	Search           string     `json:"search"`
	ActiveFilters    []string   `json:"activeFilters"`
	HasActiveFilters bool       `json:"hasActiveFilters"`
	Stats            Stats      `json:"stats"`
	ShowPagination   bool       `json:"showPagination"`
	Pages            []PageLink `json:"pages,omitempty"`
	Empty            bool       `json:"empty"`
	Heading          string     `json:"heading"`
	EmptyHint        string     `json:"emptyHint,omitempty"`
}

func (v *View) derive(owned bool) {
	v.Stats = statsOf(v.Items)
	v.ShowPagination = v.Total > v.Limit
	v.Pages = nil
	if v.ShowPagination {
		v.Pages = PageWindow(v.Page, v.TotalPages, Siblings)
	}
	v.Empty = !v.Loading && len(v.Items) == 0
	v.Heading = "Available Projects"
	if owned {
		v.Heading = "My Projects"
	}
	v.EmptyHint = ""
	if v.Empty {
		switch {
		case v.HasActiveFilters || v.Search != "":
			v.EmptyHint = "Try adjusting your filters or search terms"
		case owned:
			v.EmptyHint = "Create your first project to get started"
		default:
			v.EmptyHint = "Check back later for new projects"
		}
	}
}

func (v View) clone() View {
	v.Items = append([]Item{}, v.Items...)
	v.ActiveFilters = append([]string{}, v.ActiveFilters...)
	v.Pages = append([]PageLink(nil), v.Pages...)
	by := make(map[models.ProjectStatus]int, len(v.Stats.ByStatus))
	for k, n := range v.Stats.ByStatus {
		by[k] = n
	}
	v.Stats.ByStatus = by
	return v
}
