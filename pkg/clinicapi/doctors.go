package clinicapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

func (c *Client) GetDoctors(ctx context.Context, filters models.Filters) ([]models.Doctor, error) {
	var out []models.Doctor
	if err := c.Do(ctx, http.MethodGet, "/doctors", filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDoctor(ctx context.Context, id int64) (*models.Doctor, error) {
	var out models.Doctor
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/doctors/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDoctor(ctx context.Context, id int64, updates map[string]interface{}) (*models.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/doctors/%d", id), updates)
}

func (c *Client) GetDoctorAppointments(ctx context.Context, id int64, filters models.Filters) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/doctors/%d/appointments", id), filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
