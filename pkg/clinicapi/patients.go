package clinicapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

func (c *Client) GetPatients(ctx context.Context, filters models.Filters) ([]models.RemotePatient, error) {
	var out []models.RemotePatient
	if err := c.Do(ctx, http.MethodGet, "/patients", filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*models.RemotePatient, error) {
	var out models.RemotePatient
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/patients/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePatient sends a partial profile; only the keys present in updates change.
func (c *Client) UpdatePatient(ctx context.Context, id int64, updates map[string]interface{}) (*models.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/patients/%d", id), updates)
}

func (c *Client) GetPatientAppointments(ctx context.Context, id int64, filters models.Filters) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/patients/%d/appointments", id), filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatientMedicalRecords(ctx context.Context, id int64) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/patients/%d/medical-records", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
