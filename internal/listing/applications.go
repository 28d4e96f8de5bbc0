package listing

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// ApplicationStats summarises an application collection.
type ApplicationStats struct {
	Total    int                              `json:"total"`
	Active   int                              `json:"active"`
	ByStatus map[models.ApplicationStatus]int `json:"byStatus"`
	// SuccessRate is the accepted share in whole percent.
	SuccessRate int `json:"successRate"`
}

func applicationStats(apps []models.ProjectApplication) ApplicationStats {
	s := ApplicationStats{Total: len(apps), ByStatus: map[models.ApplicationStatus]int{}}
	for _, a := range apps {
		s.ByStatus[a.Status]++
		if a.Active() {
			s.Active++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = int(math.Round(float64(s.ByStatus[models.ApplicationStatusAccepted]) / float64(s.Total) * 100))
	}
	return s
}

// RecentLimit is how many applications a dashboard timeline shows.
const RecentLimit = 5

// Recent returns at most n applications, newest first.
func Recent(apps []models.ProjectApplication, n int) []models.ProjectApplication {
	out := slices.Clone(apps)
	slices.SortStableFunc(out, func(a, b models.ProjectApplication) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type ApplicationsView struct {
	Items   []models.ProjectApplication `json:"items"`
	Loading bool                        `json:"loading"`
	Failed  bool                        `json:"failed"`
	Stats   ApplicationStats            `json:"stats"`
}

// ApplicationList holds one application collection: a project's
// applications for its client, or the caller's own when projectID is nil.
// Like Controller, only the latest Reload may change the view.
type ApplicationList struct {
	apps      repository.ApplicationRepo
	projectID *int64
	notifier  notify.Notifier
	logger    *slog.Logger

	mu     sync.Mutex
	seq    uint64
	view   ApplicationsView
	subs   map[int]func(ApplicationsView)
	nextID int
	closed bool
}

func NewApplicationList(apps repository.ApplicationRepo, projectID *int64, n notify.Notifier, logger *slog.Logger) *ApplicationList {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notify.Discard{}
	}
	return &ApplicationList{
		apps:      apps,
		projectID: projectID,
		notifier:  n,
		logger:    logger,
		view:      ApplicationsView{Items: []models.ProjectApplication{}, Stats: applicationStats(nil)},
		subs:      map[int]func(ApplicationsView){},
	}
}

// Reload fetches the whole collection again.
func (l *ApplicationList) Reload(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.seq++
	seq := l.seq
	l.view.Loading = true
	l.mu.Unlock()
	l.publish()

	items, err := l.apps.ListApplications(ctx, l.projectID)

	l.mu.Lock()
	if l.closed || seq != l.seq {
		l.mu.Unlock()
		return err
	}
	if err != nil {
		l.logger.Error("listing: fetch applications", slog.Any("err", err))
		items = nil
	}
	if items == nil {
		items = []models.ProjectApplication{}
	}
	l.view = ApplicationsView{Items: items, Failed: err != nil, Stats: applicationStats(items)}
	l.mu.Unlock()

	if err != nil {
		l.notifier.Notify(notify.LevelError, "Failed to load applications", "")
	}
	l.publish()
	return err
}

func (l *ApplicationList) View() ApplicationsView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view.clone()
}

// Get finds an application of the collection by id.
func (l *ApplicationList) Get(id int64) (models.ProjectApplication, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.view.Items {
		if a.ID == id {
			return a, true
		}
	}
	return models.ProjectApplication{}, false
}

func (l *ApplicationList) Subscribe(fn func(ApplicationsView)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Close drops subscribers; responses arriving later are ignored.
func (l *ApplicationList) Close() {
	l.mu.Lock()
	l.closed = true
	l.subs = map[int]func(ApplicationsView){}
	l.mu.Unlock()
}

func (l *ApplicationList) publish() {
	l.mu.Lock()
	v := l.view.clone()
	subs := make([]func(ApplicationsView), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

func (v ApplicationsView) clone() ApplicationsView {
	v.Items = append([]models.ProjectApplication{}, v.Items...)
	by := make(map[models.ApplicationStatus]int, len(v.Stats.ByStatus))
	for k, n := range v.Stats.ByStatus {
		by[k] = n
	}
	v.Stats.ByStatus = by
	return v
}
