package entities

import (
	"github.com/aarondl/null/v8"

	"talkbot-gateway/pkg/types"
)

// CRM entity types the provisioning workflows touch.
const (
	AccountEntityType     = "Account"
	PhoneNumberEntityType = "cPhoneNumber"
)

// DefaultMonthlyCost is what a local number is billed at; written on every purchase.
const DefaultMonthlyCost = 1.15

type PhoneNumberStatus string

const (
	PhoneNumberStatusActive   PhoneNumberStatus = "Active"
	PhoneNumberStatusReleased PhoneNumberStatus = "Released"
)

// PhoneNumberRecord is the cPhoneNumber entity stored in the CRM. TwilioSID is never cleared,
// a released number keeps it.
type PhoneNumberRecord struct {
	ID           string            `json:"id,omitempty"`
	PhoneNumber  string            `json:"phoneNumber"`
	TwilioSID    string            `json:"twilioSid"`
	AccountID    string            `json:"accountId"`
	MonthlyCost  float64           `json:"monthlyCost"`
	Status       PhoneNumberStatus `json:"status"`
	WebhookURL   string            `json:"n8nWebhookUrl"`
	PurchaseDate types.Date        `json:"purchaseDate"`
}

// PhoneNumberRef is the part of a cPhoneNumber record the update and release workflows read.
// Only twilioSid is decoded; the other fields may hold any shape.
type PhoneNumberRef struct {
	TwilioSID string `json:"twilioSid"`
}

// PhoneNumberPatch is a partial cPhoneNumber update. Only valid fields are sent.
type PhoneNumberPatch struct {
	WebhookURL null.String `json:"n8nWebhookUrl,omitzero"`
	Status     null.String `json:"status,omitzero"`
}

// PhoneNumberList is the CRM list response for cPhoneNumber.
type PhoneNumberList struct {
	Total int                 `json:"total"`
	List  []PhoneNumberRecord `json:"list"`
}

// Account is the slice of the CRM Account entity the workflows read.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
