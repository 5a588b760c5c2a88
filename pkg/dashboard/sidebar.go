package dashboard

import "github.com/eyecare-clinic/console/pkg/common/models"

type MenuItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var (
	menuDashboard      = MenuItem{ID: "dashboard", Label: "Dashboard"}
	menuAppointments   = MenuItem{ID: "appointments", Label: "Appointments"}
	menuPatients       = MenuItem{ID: "patients", Label: "Patients"}
	menuMedicalRecords = MenuItem{ID: "medical-records", Label: "Medical Records"}
	menuDoctors        = MenuItem{ID: "doctors", Label: "Doctors"}
	menuReports        = MenuItem{ID: "reports", Label: "Reports"}
	menuProfile        = MenuItem{ID: "profile", Label: "Profile"}
	menuSettings       = MenuItem{ID: "settings", Label: "Settings"}
)

// MenuFor returns the navigation entries of a role in display order. Every
// role, known or not, gets a menu.
func MenuFor(role models.Role) []MenuItem {
	switch role {
	case models.RoleAdmin:
		return []MenuItem{
			menuDashboard, menuAppointments, menuPatients, menuMedicalRecords,
			menuDoctors, menuReports, menuProfile, menuSettings,
		}
	case models.RoleDoctor:
		return []MenuItem{
			menuDashboard, menuAppointments, menuPatients, menuMedicalRecords,
			menuProfile, menuSettings,
		}
	default:
		return []MenuItem{
			menuDashboard, menuAppointments, menuMedicalRecords,
			menuProfile, menuSettings,
		}
	}
}
