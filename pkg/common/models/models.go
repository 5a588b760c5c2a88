package models

import (
	"strings"
	"time"
)

// Severity is the clinical urgency of a patient's condition.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists the declared severities in ascending urgency.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// PatientStatus is the treatment progress of a patient.
type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "Active"
	PatientStatusTreated  PatientStatus = "Treated"
	PatientStatusFollowUp PatientStatus = "Follow-up Required"
)

var PatientStatuses = []PatientStatus{PatientStatusActive, PatientStatusTreated, PatientStatusFollowUp}

func (s PatientStatus) IsValid() bool {
	switch s {
	case PatientStatusActive, PatientStatusTreated, PatientStatusFollowUp:
		return true
	}
	return false
}

// Patient is a record held by the local record store. The JSON layout is the
// serialized form kept under the patients storage key.
type Patient struct {
	ID        string        `json:"id" yaml:"-"`
	Name      string        `json:"name" yaml:"name"`
	Age       int           `json:"age" yaml:"age"`
	Phone     string        `json:"phone" yaml:"phone"`
	Email     string        `json:"email" yaml:"email"`
	Problem   string        `json:"problem" yaml:"problem"`
	Severity  Severity      `json:"severity" yaml:"severity"`
	Status    PatientStatus `json:"status" yaml:"status"`
	DateAdded time.Time     `json:"dateAdded" yaml:"-"`
	LastVisit *time.Time    `json:"lastVisit,omitempty" yaml:"lastVisit,omitempty"`
	Notes     string        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewPatient carries the caller-supplied fields of a patient; the store assigns
// the id and the creation timestamp.
type NewPatient struct {
	Name      string        `json:"name" yaml:"name"`
	Age       int           `json:"age" yaml:"age"`
	Phone     string        `json:"phone" yaml:"phone"`
	Email     string        `json:"email" yaml:"email"`
	Problem   string        `json:"problem" yaml:"problem"`
	Severity  Severity      `json:"severity" yaml:"severity"`
	Status    PatientStatus `json:"status" yaml:"status"`
	LastVisit *time.Time    `json:"lastVisit,omitempty" yaml:"lastVisit,omitempty"`
	Notes     string        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// PatientPatch is a partial update. Nil fields are left untouched.
type PatientPatch struct {
	Name      *string        `json:"name,omitempty"`
	Age       *int           `json:"age,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	Email     *string        `json:"email,omitempty"`
	Problem   *string        `json:"problem,omitempty"`
	Severity  *Severity      `json:"severity,omitempty"`
	Status    *PatientStatus `json:"status,omitempty"`
	LastVisit *time.Time     `json:"lastVisit,omitempty"`
	Notes     *string        `json:"notes,omitempty"`
}

// Apply merges the non-nil fields of the patch into p.
func (pp PatientPatch) Apply(p *Patient) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if pp.Phone != nil {
		p.Phone = *pp.Phone
	}
	if pp.Email != nil {
		p.Email = *pp.Email
	}
	if pp.Problem != nil {
		p.Problem = *pp.Problem
	}
	if pp.Severity != nil {
		p.Severity = *pp.Severity
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.LastVisit != nil {
		lv := *pp.LastVisit
		p.LastVisit = &lv
	}
	if pp.Notes != nil {
		p.Notes = *pp.Notes
	}
}

// IsEmpty reports whether the patch changes nothing.
func (pp PatientPatch) IsEmpty() bool {
	return pp.Name == nil && pp.Age == nil && pp.Phone == nil && pp.Email == nil &&
		pp.Problem == nil && pp.Severity == nil && pp.Status == nil &&
		pp.LastVisit == nil && pp.Notes == nil
}

// PatientStats is derived from the current patient collection and never stored.
type PatientStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Treated  int `json:"treated"`
	FollowUp int `json:"followUp"`
	Critical int `json:"critical"`
}

// AppointmentStatus is the scheduling lifecycle of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no-show"
)

// Appointment as served by the clinic API. Ids are assigned by the API.
type Appointment struct {
	ID               int64             `json:"id"`
	PatientFirstName string            `json:"patient_first_name"`
	PatientLastName  string            `json:"patient_last_name"`
	DoctorFirstName  string            `json:"doctor_first_name"`
	DoctorLastName   string            `json:"doctor_last_name"`
	AppointmentDate  string            `json:"appointment_date"`
	AppointmentTime  string            `json:"appointment_time"`
	Duration         int               `json:"duration,omitempty"`
	Status           AppointmentStatus `json:"status"`
	Reason           string            `json:"reason,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        string            `json:"created_at,omitempty"`
	UpdatedAt        string            `json:"updated_at,omitempty"`
}

// AppointmentRequest creates an appointment.
type AppointmentRequest struct {
	PatientID       int64  `json:"patientId"`
	DoctorID        int64  `json:"doctorId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Duration        int    `json:"duration,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// AppointmentUpdate is a partial appointment update.
type AppointmentUpdate struct {
	AppointmentDate *string            `json:"appointmentDate,omitempty"`
	AppointmentTime *string            `json:"appointmentTime,omitempty"`
	Duration        *int               `json:"duration,omitempty"`
	Status          *AppointmentStatus `json:"status,omitempty"`
	Reason          *string            `json:"reason,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}

// MedicalRecord as served by the clinic API.
type MedicalRecord struct {
	ID                int64  `json:"id"`
	PatientFirstName  string `json:"patient_first_name"`
	PatientLastName   string `json:"patient_last_name"`
	DoctorFirstName   string `json:"doctor_first_name"`
	DoctorLastName    string `json:"doctor_last_name"`
	VisitDate         string `json:"visit_date"`
	ChiefComplaint    string `json:"chief_complaint,omitempty"`
	Diagnosis         string `json:"diagnosis,omitempty"`
	TreatmentPlan     string `json:"treatment_plan,omitempty"`
	Prescription      string `json:"prescription,omitempty"`
	FollowUpDate      string `json:"follow_up_date,omitempty"`
	VisualAcuityRight string `json:"visual_acuity_right,omitempty"`
	VisualAcuityLeft  string `json:"visual_acuity_left,omitempty"`
	EyePressureRight  string `json:"eye_pressure_right,omitempty"`
	EyePressureLeft   string `json:"eye_pressure_left,omitempty"`
	Notes             string `json:"notes,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// IsCritical reports whether the diagnosis mentions a critical condition.
func (r MedicalRecord) IsCritical() bool {
	return r.Diagnosis != "" && strings.Contains(strings.ToLower(r.Diagnosis), "critical")
}

// MedicalRecordRequest creates or updates a medical record.
type MedicalRecordRequest struct {
	PatientID         int64  `json:"patientId,omitempty"`
	DoctorID          int64  `json:"doctorId,omitempty"`
	AppointmentID     int64  `json:"appointmentId,omitempty"`
	VisitDate         string `json:"visitDate,omitempty"`
	ChiefComplaint    string `json:"chiefComplaint,omitempty"`
	Diagnosis         string `json:"diagnosis,omitempty"`
	TreatmentPlan     string `json:"treatmentPlan,omitempty"`
	Prescription      string `json:"prescription,omitempty"`
	FollowUpDate      string `json:"followUpDate,omitempty"`
	VisualAcuityRight string `json:"visualAcuityRight,omitempty"`
	VisualAcuityLeft  string `json:"visualAcuityLeft,omitempty"`
	EyePressureRight  string `json:"eyePressureRight,omitempty"`
	EyePressureLeft   string `json:"eyePressureLeft,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// RemotePatient is a patient profile owned by the clinic API.
type RemotePatient struct {
	ID                 int64  `json:"id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	DateOfBirth        string `json:"date_of_birth,omitempty"`
	Address            string `json:"address,omitempty"`
	EmergencyContact   string `json:"emergency_contact,omitempty"`
	EmergencyPhone     string `json:"emergency_phone,omitempty"`
	InsuranceProvider  string `json:"insurance_provider,omitempty"`
	InsuranceNumber    string `json:"insurance_number,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	CurrentMedications string `json:"current_medications,omitempty"`
	MedicalHistory     string `json:"medical_history,omitempty"`
}

// Doctor is a doctor profile owned by the clinic API.
type Doctor struct {
	ID              int64   `json:"id"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone,omitempty"`
	Specialization  string  `json:"specialization,omitempty"`
	LicenseNumber   string  `json:"license_number,omitempty"`
	YearsExperience int     `json:"years_experience,omitempty"`
	ConsultationFee float64 `json:"consultation_fee,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	AvailableDays   string  `json:"available_days,omitempty"`
	AvailableHours  string  `json:"available_hours,omitempty"`
}

// Role is the access level of the logged-in user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// CanViewPatients reports whether the role sees patient data.
func (r Role) CanViewPatients() bool {
	return r == RoleAdmin || r == RoleDoctor
}

// User is the profile returned on login and kept with the session.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        Role   `json:"role,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
}

type AuthResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// MutationResponse is the acknowledgement returned by create/update/delete calls.
type MutationResponse struct {
	Message       string `json:"message,omitempty"`
	AppointmentID int64  `json:"appointmentId,omitempty"`
	RecordID      int64  `json:"recordId,omitempty"`
	UserID        int64  `json:"userId,omitempty"`
}

// Filters are encoded as URL query parameters.
type Filters map[string]string

// Activity event kinds.
const (
	EventPatientAdded   = "patient.added"
	EventPatientUpdated = "patient.updated"
	EventPatientDeleted = "patient.deleted"
	EventSessionLogin   = "session.login"
	EventSessionLogout  = "session.logout"
)

// Event is published on the activity bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}
