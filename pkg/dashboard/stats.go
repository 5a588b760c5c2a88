package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
)

const dateLayout = "2006-01-02"

// StatsSource is the part of the clinic API the stats need.
type StatsSource interface {
	GetAppointments(ctx context.Context, filters models.Filters) ([]models.Appointment, error)
	GetMedicalRecords(ctx context.Context, filters models.Filters) ([]models.MedicalRecord, error)
	GetPatients(ctx context.Context, filters models.Filters) ([]models.RemotePatient, error)
}

type Stats struct {
	TotalPatients       int `json:"totalPatients"`
	TodayAppointments   int `json:"todayAppointments"`
	TotalRecords        int `json:"totalRecords"`
	PendingAppointments int `json:"pendingAppointments"`
	CompletedToday      int `json:"completedToday"`
	CriticalCases       int `json:"criticalCases"`
}

type StatCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type StatsController struct {
	src   StatsSource
	now   func() time.Time
	guard loadGuard
	stats Stats
}

func NewStatsController(src StatsSource, now func() time.Time) *StatsController {
	if now == nil {
		now = time.Now
	}
	return &StatsController{src: src, now: now}
}

// Load recomputes every figure from fresh API data and returns the
// controller's state afterwards. A failed load resets the figures to zero.
// A load overtaken by a newer one is discarded.
func (c *StatsController) Load(ctx context.Context, role models.Role) Stats {
	gen := c.guard.begin()

	stats, err := c.fetch(ctx, role)
	if err != nil {
		logger.Log.WithError(err).WithField("role", string(role)).Error("Failed to load stats")
		stats = Stats{}
	}
	if !c.guard.commit(gen, func() { c.stats = stats }) {
		logger.Log.WithField("generation", gen).Debug("Discarding superseded stats load")
	}
	return c.Stats()
}

func (c *StatsController) Stats() Stats {
	var s Stats
	c.guard.locked(func() { s = c.stats })
	return s
}

func (c *StatsController) fetch(ctx context.Context, role models.Role) (Stats, error) {
	// The clinic API keys appointments by UTC date.
	today := c.now().UTC().Format(dateLayout)

	todays, err := c.src.GetAppointments(ctx, models.Filters{"date": today})
	if err != nil {
		return Stats{}, fmt.Errorf("today's appointments: %w", err)
	}
	all, err := c.src.GetAppointments(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("appointments: %w", err)
	}
	records, err := c.src.GetMedicalRecords(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("medical records: %w", err)
	}

	var totalPatients int
	if role.CanViewPatients() {
		patients, err := c.src.GetPatients(ctx, nil)
		if err != nil {
			return Stats{}, fmt.Errorf("patients: %w", err)
		}
		totalPatients = len(patients)
	}

	return derive(today, todays, all, records, totalPatients), nil
}

func derive(today string, todays, all []models.Appointment, records []models.MedicalRecord, totalPatients int) Stats {
	s := Stats{
		TotalPatients:     totalPatients,
		TodayAppointments: len(todays),
		TotalRecords:      len(records),
	}
	for _, a := range all {
		if a.Status == models.AppointmentScheduled {
			s.PendingAppointments++
		}
	}
	for _, a := range todays {
		if a.Status == models.AppointmentCompleted && a.AppointmentDate == today {
			s.CompletedToday++
		}
	}
	for _, r := range records {
		if r.IsCritical() {
			s.CriticalCases++
		}
	}
	return s
}

// Cards lays out the stat cards a role sees, in display order.
func Cards(role models.Role, s Stats) []StatCard {
	cards := make([]StatCard, 0, 5)
	if role.CanViewPatients() {
		cards = append(cards, StatCard{Key: "totalPatients", Title: "Total Patients", Value: s.TotalPatients, Color: "purple"})
	}
	cards = append(cards,
		StatCard{Key: "todayAppointments", Title: "Today's Appointments", Value: s.TodayAppointments, Color: ColorBlue},
		StatCard{Key: "totalRecords", Title: "Medical Records", Value: s.TotalRecords, Color: ColorGreen},
		StatCard{Key: "pendingAppointments", Title: "Pending Appointments", Value: s.PendingAppointments, Color: ColorYellow},
	)
	switch role {
	case models.RoleDoctor:
		cards = append(cards, StatCard{Key: "completedToday", Title: "Completed Today", Value: s.CompletedToday, Color: "emerald"})
	case models.RoleAdmin:
		cards = append(cards, StatCard{Key: "criticalCases", Title: "Critical Cases", Value: s.CriticalCases, Color: ColorRed})
	}
	return cards
}

// LocalCards summarizes the local patient register.
func LocalCards(s models.PatientStats) []StatCard {
	return []StatCard{
		{Key: "total", Title: "Total Patients", Value: s.Total, Color: ColorBlue},
		{Key: "active", Title: "Active Cases", Value: s.Active, Color: ColorGreen},
		{Key: "followUp", Title: "Follow-up Required", Value: s.FollowUp, Color: ColorYellow},
		{Key: "critical", Title: "Critical Cases", Value: s.Critical, Color: ColorRed},
	}
}
