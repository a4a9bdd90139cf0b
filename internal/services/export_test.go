package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talkbot-gateway/internal/entities"
	"talkbot-gateway/internal/integrations/mock"
	apperrors "talkbot-gateway/pkg/errors"
	"talkbot-gateway/pkg/validation"
)

func newExportService(t *testing.T) (*ProvisioningService, *mock.CRM) {
	t.Helper()
	crm := mock.NewCRM()
	svc := NewProvisioningService(NewCRMProxyService(crm, zap.NewNop()), mock.NewTelephony(), validation.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC) }
	return svc, crm
}

func TestExportPhoneNumbers_FiltersByAccount(t *testing.T) {
	svc, crm := newExportService(t)
	crm.Seed(entities.PhoneNumberEntityType, map[string]interface{}{
		"phoneNumber": "+13055550100", "twilioSid": "PN1", "accountId": "acc-1", "monthlyCost": 1.15,
		"status": "Active", "n8nWebhookUrl": "https://h.example.com/1", "purchaseDate": "2026-10-01",
	})
	crm.Seed(entities.PhoneNumberEntityType, map[string]interface{}{
		"phoneNumber": "+13055550101", "twilioSid": "PN2", "accountId": "acc-2", "status": "Active",
	})
	crm.Seed(entities.PhoneNumberEntityType, map[string]interface{}{
		"phoneNumber": "+13055550102", "twilioSid": "PN3", "accountId": "acc-1", "status": "Released",
	})

	export, err := svc.ExportPhoneNumbers(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, export.Rows)
	assert.Equal(t, "phone_numbers_acc-1_2026-10-17.xlsx", export.FileName)

	rows, err := export.File.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Phone number", rows[0][1])
	assert.Equal(t, "+13055550100", rows[1][1])
	assert.Equal(t, "PN1", rows[1][2])
	assert.Equal(t, "2026-10-01", rows[1][7])
	assert.Equal(t, "Released", rows[2][4])
}

func TestExportPhoneNumbers_All(t *testing.T) {
	svc, crm := newExportService(t)
	crm.Seed(entities.PhoneNumberEntityType, map[string]interface{}{"phoneNumber": "+1", "accountId": "a"})
	crm.Seed(entities.PhoneNumberEntityType, map[string]interface{}{"phoneNumber": "+2", "accountId": "b"})

	export, err := svc.ExportPhoneNumbers(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, export.Rows)
	assert.Equal(t, "phone_numbers_2026-10-17.xlsx", export.FileName)
	assert.Equal(t, 1, crm.Calls("list", entities.PhoneNumberEntityType))
}

func TestExportPhoneNumbers_CRMError(t *testing.T) {
	svc, crm := newExportService(t)
	crm.FailOn("list", entities.PhoneNumberEntityType, &apperrors.UpstreamError{Status: http.StatusForbidden, Message: "No access"})

	_, err := svc.ExportPhoneNumbers(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))
}
