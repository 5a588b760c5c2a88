package clinicapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

func (c *Client) GetAppointments(ctx context.Context, filters models.Filters) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := c.Do(ctx, http.MethodGet, "/appointments", filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req models.AppointmentRequest) (*models.MutationResponse, error) {
	if req.Duration == 0 {
		req.Duration = 30
	}
	return c.mutate(ctx, http.MethodPost, "/appointments", req)
}

func (c *Client) UpdateAppointment(ctx context.Context, id int64, upd models.AppointmentUpdate) (*models.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/appointments/%d", id), upd)
}

func (c *Client) DeleteAppointment(ctx context.Context, id int64) (*models.MutationResponse, error) {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), nil)
}

func (c *Client) mutate(ctx context.Context, method, path string, body interface{}) (*models.MutationResponse, error) {
	var resp models.MutationResponse
	if err := c.Do(ctx, method, path, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
