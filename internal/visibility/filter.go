package visibility

import (
	"sort"
	"strings"
	"time"

	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/models"
)

// UnassignedEditor is the editor filter value matching submissions with no
// editor or with an editor no longer on the roster.
const UnassignedEditor = "unassigned"

// UnassignedName is shown for submissions without a resolvable editor.
const UnassignedName = "Unassigned"

type SortKey string

const (
	SortOrderDate    SortKey = "order_date"
	SortDeliveryDate SortKey = "delivery_date"
)

// Query carries the dashboard filters. Zero values mean "no filter",
// newest order first.
type Query struct {
	Status       models.Status
	Plan         models.PlanType
	ShowOnlyMine bool
	EditorID     string
	Search       string
	SortBy       SortKey
	Ascending    bool
}

// Entry is a visible submission with its derived fields.
type Entry struct {
	Submission        models.Submission
	HasUnread         bool
	EstimatedDelivery time.Time
	EditorName        string
}

// Filter projects a submission set onto what one viewer may see.
type Filter struct {
	loc *time.Location
}

func NewFilter(loc *time.Location) *Filter {
	if loc == nil {
		loc = time.UTC
	}
	return &Filter{loc: loc}
}

// Apply returns the submissions visible to viewer under q. latest maps a
// submission id to its most recent message.
func (f *Filter) Apply(subs []models.Submission, viewer models.User, q Query, editors []models.Editor, latest map[string]models.Message) []Entry {
	names := editorNames(editors)

	if q.ShowOnlyMine && viewer.EditorRecordID == "" {
		return []Entry{}
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	entries := make([]Entry, 0, len(subs))
	for _, sub := range subs {
		if !visibleInQueue(sub, viewer) {
			continue
		}
		if q.ShowOnlyMine && sub.AssignedEditorID != viewer.EditorRecordID {
			continue
		}
		if viewer.Role == models.RoleAdmin && q.EditorID != "" && !matchesEditor(sub, q.EditorID, names) {
			continue
		}
		if q.Status != "" && sub.Status != q.Status {
			continue
		}
		if q.Plan != "" && sub.Plan != q.Plan {
			continue
		}

		var last *models.Message
		if msg, ok := latest[sub.ID]; ok {
			last = &msg
		}
		entry := f.entry(sub, names, last)
		if search != "" && !matchesSearch(sub, entry.EditorName, search) {
			continue
		}
		entries = append(entries, entry)
	}

	sortEntries(entries, q.SortBy, q.Ascending)
	return entries
}

// Describe derives the display fields of a single submission. latest is
// the newest message of its thread, or nil.
func (f *Filter) Describe(sub models.Submission, editors []models.Editor, latest *models.Message) Entry {
	return f.entry(sub, editorNames(editors), latest)
}

func (f *Filter) entry(sub models.Submission, names map[string]string, latest *models.Message) Entry {
	name, ok := names[sub.AssignedEditorID]
	if !ok || sub.AssignedEditorID == "" {
		name = UnassignedName
	}
	return Entry{
		Submission:        sub,
		HasUnread:         latest != nil && latest.SenderRole == models.RoleUser,
		EstimatedDelivery: lifecycle.EstimatedDelivery(sub.Timestamp, f.loc),
		EditorName:        name,
	}
}

func editorNames(editors []models.Editor) map[string]string {
	names := make(map[string]string, len(editors))
	for _, e := range editors {
		names[e.ID] = e.Name
	}
	return names
}

// visibleInQueue applies the role and payment scoping of list views.
func visibleInQueue(sub models.Submission, viewer models.User) bool {
	switch viewer.Role {
	case models.RoleAdmin:
		return sub.PaymentStatus != models.PaymentUnpaid
	case models.RoleEditor:
		return sub.PaymentStatus != models.PaymentUnpaid &&
			viewer.EditorRecordID != "" &&
			sub.AssignedEditorID == viewer.EditorRecordID
	default:
		return sub.OwnerID == viewer.ID &&
			(sub.PaymentStatus == models.PaymentPaid || sub.PaymentStatus == models.PaymentQuotePending)
	}
}

func matchesEditor(sub models.Submission, editorID string, names map[string]string) bool {
	if editorID == UnassignedEditor {
		_, known := names[sub.AssignedEditorID]
		return sub.AssignedEditorID == "" || !known
	}
	return sub.AssignedEditorID == editorID
}

func matchesSearch(sub models.Submission, editorName, search string) bool {
	fields := []string{sub.ID, sub.OwnerEmail, sub.FileName, sub.Instructions, string(sub.Plan), editorName}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func sortEntries(entries []Entry, key SortKey, ascending bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		var a, b int64
		if key == SortDeliveryDate {
			a, b = entries[i].EstimatedDelivery.UnixMilli(), entries[j].EstimatedDelivery.UnixMilli()
		} else {
			a, b = entries[i].Submission.Timestamp, entries[j].Submission.Timestamp
		}
		if ascending {
			return a < b
		}
		return a > b
	})
}

// CanView reports whether viewer may open a single submission. Owners
// may open their own unpaid orders to finish checkout; the production
// queue rules do not apply here.
func CanView(sub models.Submission, viewer models.User) bool {
	switch viewer.Role {
	case models.RoleAdmin:
		return true
	case models.RoleEditor:
		if viewer.EditorRecordID != "" && sub.AssignedEditorID == viewer.EditorRecordID {
			return true
		}
	}
	return sub.OwnerID == viewer.ID
}

// Stats counts visible entries per status.
func Stats(entries []Entry) map[models.Status]int {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, e := range entries {
		counts[e.Submission.Status]++
	}
	return counts
}
