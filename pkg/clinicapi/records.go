package clinicapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

func (c *Client) GetMedicalRecords(ctx context.Context, filters models.Filters) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	if err := c.Do(ctx, http.MethodGet, "/medical-records", filters, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMedicalRecord(ctx context.Context, req models.MedicalRecordRequest) (*models.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPost, "/medical-records", req)
}

func (c *Client) UpdateMedicalRecord(ctx context.Context, id int64, req models.MedicalRecordRequest) (*models.MutationResponse, error) {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("/medical-records/%d", id), req)
}
