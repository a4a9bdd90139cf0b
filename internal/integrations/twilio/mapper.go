package twilio

import (
	"fmt"
	"time"

	"talkbot-gateway/internal/integrations/dto"
)

func mapAvailableNumbers(numbers []availablePhoneNumber) []dto.AvailableNumber {
	out := make([]dto.AvailableNumber, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, dto.AvailableNumber{
			PhoneNumber:  n.PhoneNumber,
			FriendlyName: n.FriendlyName,
			Locality:     n.Locality,
			Region:       n.Region,
			PostalCode:   n.PostalCode,
			Capabilities: dto.Capabilities{
				Voice: n.Capabilities.Voice,
				SMS:   n.Capabilities.SMS,
				MMS:   n.Capabilities.MMS,
				Fax:   n.Capabilities.Fax,
			},
		})
	}
	return out
}

// mapPurchasedNumber always returns a result; the error only reports an unparseable date_created.
func mapPurchasedNumber(n incomingPhoneNumber) (*dto.PurchasedNumber, error) {
	purchased := &dto.PurchasedNumber{
		SID:            n.SID,
		PhoneNumber:    n.PhoneNumber,
		FriendlyName:   n.FriendlyName,
		VoiceURL:       n.VoiceURL,
		SmsURL:         n.SmsURL,
		StatusCallback: n.StatusCallback,
		Status:         dto.PurchasedNumberStatusActive,
	}
	if n.DateCreated == "" {
		return purchased, nil
	}
	created, err := time.Parse(time.RFC1123Z, n.DateCreated)
	if err != nil {
		return purchased, fmt.Errorf("date_created %q: %w", n.DateCreated, err)
	}
	purchased.DateCreated = created.UTC()
	return purchased, nil
}
