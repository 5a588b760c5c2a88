package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
)

// NoAppointmentsMessage is shown for a day without appointments.
const NoAppointmentsMessage = "No appointments scheduled"

// AppointmentSource lists appointments from the clinic API.
type AppointmentSource interface {
	GetAppointments(ctx context.Context, filters models.Filters) ([]models.Appointment, error)
}

type CalendarDay struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
	Today    bool   `json:"today"`
}

type AppointmentItem struct {
	ID      int64  `json:"id"`
	Time    string `json:"time"`
	Status  Badge  `json:"status"`
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Reason  string `json:"reason,omitempty"`
}

type DayPanel struct {
	Date         string            `json:"date"`
	Title        string            `json:"title"`
	Appointments []AppointmentItem `json:"appointments"`
	Empty        bool              `json:"empty"`
	EmptyMessage string            `json:"emptyMessage,omitempty"`
}

type CalendarView struct {
	Month string `json:"month"`
	Title string `json:"title"`
	// LeadingBlanks is the weekday of the first day, Sunday = 0.
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
	Selected      DayPanel      `json:"selected"`
	Loading       bool          `json:"loading"`
}

// Calendar holds the displayed month, the selected date and the appointments
// fetched for the displayed month.
type Calendar struct {
	src   AppointmentSource
	now   func() time.Time
	guard loadGuard

	// state, guarded by guard.mu
	month        time.Time
	selected     time.Time
	appointments []models.Appointment
	loading      bool
}

func NewCalendar(src AppointmentSource, now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	today := dateOnly(now())
	return &Calendar{
		src:      src,
		now:      now,
		month:    firstOfMonth(today),
		selected: today,
	}
}

// SelectDate changes the day shown in the detail panel. The displayed month
// is left as it is.
func (c *Calendar) SelectDate(d time.Time) {
	c.guard.locked(func() { c.selected = dateOnly(d) })
}

func (c *Calendar) NextMonth(ctx context.Context) CalendarView {
	return c.shiftMonth(ctx, 1)
}

func (c *Calendar) PrevMonth(ctx context.Context) CalendarView {
	return c.shiftMonth(ctx, -1)
}

// CurrentMonth jumps back to the month containing today.
func (c *Calendar) CurrentMonth(ctx context.Context) CalendarView {
	today := dateOnly(c.now())
	return c.ShowMonth(ctx, today.Year(), today.Month())
}

// ShowMonth displays the given month and reloads its appointments.
func (c *Calendar) ShowMonth(ctx context.Context, year int, month time.Month) CalendarView {
	target := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	c.guard.locked(func() { c.month = target })
	return c.Load(ctx)
}

func (c *Calendar) shiftMonth(ctx context.Context, delta int) CalendarView {
	c.guard.locked(func() { c.month = c.month.AddDate(0, delta, 0) })
	return c.Load(ctx)
}

// Load fetches the displayed month, first through last day inclusive.
func (c *Calendar) Load(ctx context.Context) CalendarView {
	gen := c.guard.begin()
	var month time.Time
	c.guard.locked(func() {
		month = c.month
		c.loading = true
	})

	first := month
	last := month.AddDate(0, 1, -1)
	appts, err := c.src.GetAppointments(ctx, models.Filters{
		"startDate": first.Format(dateLayout),
		"endDate":   last.Format(dateLayout),
	})
	if err != nil {
		logger.Log.WithError(err).WithField("month", month.Format("2006-01")).Error("Failed to load appointments")
		appts = nil
	}

	if !c.guard.commit(gen, func() {
		c.appointments = appts
		c.loading = false
	}) {
		logger.Log.WithField("generation", gen).Debug("Discarding superseded calendar load")
	}
	return c.View()
}

// View renders the current state without fetching.
func (c *Calendar) View() CalendarView {
	var (
		month, selected time.Time
		appts           []models.Appointment
		loading         bool
	)
	c.guard.locked(func() {
		month, selected, loading = c.month, c.selected, c.loading
		appts = c.appointments
	})
	today := dateOnly(c.now()).Format(dateLayout)

	days := make([]CalendarDay, 0, 31)
	for d := month; d.Month() == month.Month(); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		days = append(days, CalendarDay{
			Date:     date,
			Day:      d.Day(),
			Count:    len(AppointmentsOn(appts, date)),
			Selected: date == selected.Format(dateLayout),
			Today:    date == today,
		})
	}

	return CalendarView{
		Month:         month.Format("2006-01"),
		Title:         month.Format("January 2006"),
		LeadingBlanks: int(month.Weekday()),
		Days:          days,
		Selected:      dayPanel(selected, appts),
		Loading:       loading,
	}
}

// AppointmentsOn keeps the appointments whose date string equals date, in the
// order given.
func AppointmentsOn(appts []models.Appointment, date string) []models.Appointment {
	var out []models.Appointment
	for _, a := range appts {
		if a.AppointmentDate == date {
			out = append(out, a)
		}
	}
	return out
}

func dayPanel(day time.Time, appts []models.Appointment) DayPanel {
	date := day.Format(dateLayout)
	matches := AppointmentsOn(appts, date)

	panel := DayPanel{
		Date:         date,
		Title:        day.Format("Monday, January 2"),
		Appointments: make([]AppointmentItem, 0, len(matches)),
	}
	for _, a := range matches {
		panel.Appointments = append(panel.Appointments, AppointmentItem{
			ID:      a.ID,
			Time:    a.AppointmentTime,
			Status:  AppointmentBadge(a.Status),
			Patient: joinName(a.PatientFirstName, a.PatientLastName),
			Doctor:  "Dr. " + joinName(a.DoctorFirstName, a.DoctorLastName),
			Reason:  a.Reason,
		})
	}
	if len(matches) == 0 {
		panel.Empty = true
		panel.EmptyMessage = NoAppointmentsMessage
	}
	return panel
}

// ParseDate reads a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// ParseMonth reads a YYYY-MM month.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Year(), t.Month(), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
