package shell

import "fmt"

// Sections a screen is composed of.
const (
	SectionStats          = "stats"
	SectionCalendar       = "calendar"
	SectionPatients       = "patients"
	SectionMedicalRecords = "medical-records"
	SectionDoctors        = "doctors"
	SectionProfile        = "profile"
)

type Screen struct {
	// View is the screen actually rendered; Requested is what was navigated to.
	View      string   `json:"view"`
	Requested string   `json:"requested"`
	Title     string   `json:"title"`
	Greeting  string   `json:"greeting,omitempty"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Sections  []string `json:"sections"`
}

// Screen resolves the active view. Unrecognized views render exactly like
// the dashboard.
func (s *Shell) Screen() (Screen, error) {
	s.expireStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return Screen{}, ErrNotAuthenticated
	}

	firstName := ""
	if s.user != nil {
		firstName = s.user.FirstName
	}
	return Resolve(s.view, firstName), nil
}

// Resolve is the total mapping from a view name to its screen.
func Resolve(view, firstName string) Screen {
	var screen Screen
	switch view {
	case ViewAppointments:
		screen = Screen{View: view, Title: "Appointments", Sections: []string{SectionCalendar}}
	case ViewPatients:
		screen = Screen{View: view, Title: "Patients", Sections: []string{SectionPatients}}
	case ViewMedicalRecords:
		screen = Screen{View: view, Title: "Medical Records", Sections: []string{SectionMedicalRecords}}
	case ViewDoctors:
		screen = Screen{View: view, Title: "Doctors", Sections: []string{SectionDoctors}}
	case ViewProfile:
		screen = Screen{View: view, Title: "Profile", Sections: []string{SectionProfile}}
	default:
		screen = Screen{
			View:     ViewDashboard,
			Title:    "Dashboard",
			Greeting: fmt.Sprintf("Welcome back, %s!", firstName),
			Subtitle: "Here's what's happening in your eye care practice today.",
			Sections: []string{SectionStats, SectionCalendar},
		}
	}
	screen.Requested = view
	return screen
}
