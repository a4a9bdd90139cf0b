package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"talkbot-gateway/internal/entities"
	apperrors "talkbot-gateway/pkg/errors"
)

const (
	exportSheet    = "Phone numbers"
	exportPageSize = 200 // EspoCRM's maxSize ceiling
)

var exportHeaders = []interface{}{
	"ID", "Phone number", "Twilio SID", "Account ID", "Status", "Monthly cost", "Webhook URL", "Purchase date",
}

type PhoneNumberExport struct {
	File     *excelize.File
	FileName string
	Rows     int
}

// ExportPhoneNumbers renders every cPhoneNumber record, optionally of one account, as a workbook.
func (s *ProvisioningService) ExportPhoneNumbers(ctx context.Context, accountID string) (*PhoneNumberExport, error) {
	records, err := s.listPhoneNumbers(ctx, accountID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "H1", style)
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.ID, r.PhoneNumber, r.TwilioSID, r.AccountID, string(r.Status), r.MonthlyCost, r.WebhookURL, r.PurchaseDate.String(),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(exportSheet, "B", "D", 22)
	_ = f.SetColWidth(exportSheet, "G", "G", 45)

	name := "phone_numbers_" + s.now().Format("2006-01-02") + ".xlsx"
	if accountID != "" {
		name = fmt.Sprintf("phone_numbers_%s_%s.xlsx", accountID, s.now().Format("2006-01-02"))
	}

	s.logger.Info("phone numbers exported", zap.String("accountId", accountID), zap.Int("rows", len(records)))
	return &PhoneNumberExport{File: f, FileName: name, Rows: len(records)}, nil
}

func (s *ProvisioningService) listPhoneNumbers(ctx context.Context, accountID string) ([]entities.PhoneNumberRecord, error) {
	var records []entities.PhoneNumberRecord

	for offset := 0; ; {
		params := url.Values{}
		params.Set("maxSize", strconv.Itoa(exportPageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("orderBy", "purchaseDate")
		params.Set("order", "desc")
		if accountID != "" {
			params.Set("where[0][type]", "equals")
			params.Set("where[0][attribute]", "accountId")
			params.Set("where[0][value]", accountID)
		}

		raw, err := s.crm.List(ctx, entities.PhoneNumberEntityType, params)
		if err != nil {
			return nil, err
		}

		var page entities.PhoneNumberList
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, &apperrors.UpstreamError{
				Status:  http.StatusInternalServerError,
				Message: fmt.Sprintf(invalidCRMRecordMsg, entities.PhoneNumberEntityType, err),
				Err:     err,
			}
		}

		records = append(records, page.List...)
		offset += len(page.List)
		if len(page.List) == 0 || offset >= page.Total {
			return records, nil
		}
	}
}
