package dashboard

import (
	"time"

	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/patients"
)

const displayDate = "Jan 2, 2006"

// Row actions.
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

type PatientRow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Problem   string   `json:"problem"`
	Notes     string   `json:"notes,omitempty"`
	Severity  Badge    `json:"severity"`
	Status    Badge    `json:"status"`
	DateAdded string   `json:"dateAdded"`
	LastVisit string   `json:"lastVisit,omitempty"`
	Actions   []string `json:"actions"`
}

type PatientListView struct {
	Query     string       `json:"query"`
	Total     int          `json:"total"`
	CanAdd    bool         `json:"canAdd"`
	Patients  []PatientRow `json:"patients"`
	Empty     bool         `json:"empty"`
	EmptyText string       `json:"emptyText,omitempty"`
	EmptyHint string       `json:"emptyHint,omitempty"`
}

// BuildPatientList filters the collection by query with the store's search
// rule and decorates each match for display. Doctors and admins may add, edit
// and delete; other roles only view.
func BuildPatientList(list []models.Patient, query string, role models.Role) PatientListView {
	matches := patients.Filter(list, query)
	canEdit := role.CanViewPatients()

	actions := []string{ActionView}
	if canEdit {
		actions = []string{ActionView, ActionEdit, ActionDelete}
	}

	view := PatientListView{
		Query:    query,
		Total:    len(matches),
		CanAdd:   canEdit,
		Patients: make([]PatientRow, 0, len(matches)),
	}
	for _, p := range matches {
		row := PatientRow{
			ID:        p.ID,
			Name:      p.Name,
			Age:       p.Age,
			Phone:     p.Phone,
			Email:     p.Email,
			Problem:   p.Problem,
			Notes:     p.Notes,
			Severity:  SeverityBadge(p.Severity),
			Status:    StatusBadge(p.Status),
			DateAdded: formatDate(p.DateAdded),
			Actions:   actions,
		}
		if p.LastVisit != nil {
			row.LastVisit = formatDate(*p.LastVisit)
		}
		view.Patients = append(view.Patients, row)
	}

	if len(matches) == 0 {
		view.Empty = true
		view.EmptyText = "No patients found"
		if query != "" {
			view.EmptyHint = "Try adjusting your search terms"
		} else {
			view.EmptyHint = "Start by adding your first patient"
		}
	}
	return view
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDate)
}
