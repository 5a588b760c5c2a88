package dashboard

import "github.com/eyecare-clinic/console/pkg/common/models"

// Badge colors.
const (
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorRed    = "red"
	ColorGray   = "gray"
)

type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// SeverityBadge is total: values outside the declared severities get the
// neutral color and keep their own label.
func SeverityBadge(s models.Severity) Badge {
	color := ColorGray
	switch s {
	case models.SeverityLow:
		color = ColorGreen
	case models.SeverityMedium:
		color = ColorYellow
	case models.SeverityHigh:
		color = ColorOrange
	case models.SeverityCritical:
		color = ColorRed
	}
	return Badge{Label: string(s), Color: color}
}

func StatusBadge(s models.PatientStatus) Badge {
	color := ColorGray
	switch s {
	case models.PatientStatusActive:
		color = ColorBlue
	case models.PatientStatusTreated:
		color = ColorGreen
	case models.PatientStatusFollowUp:
		color = ColorYellow
	}
	return Badge{Label: string(s), Color: color}
}

func AppointmentBadge(s models.AppointmentStatus) Badge {
	color := ColorGray
	switch s {
	case models.AppointmentScheduled:
		color = ColorBlue
	case models.AppointmentCompleted:
		color = ColorGreen
	case models.AppointmentCancelled:
		color = ColorRed
	case models.AppointmentNoShow:
		color = ColorGray
	}
	return Badge{Label: string(s), Color: color}
}
