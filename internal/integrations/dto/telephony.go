package dto

import "time"

// Capabilities mirrors the provider's capability flags for a number.
type Capabilities struct {
	Voice bool `json:"voice"`
	SMS   bool `json:"SMS"`
	MMS   bool `json:"MMS"`
	Fax   bool `json:"fax"`
}

// AvailableNumber is a purchasable number returned by a search. Never persisted.
type AvailableNumber struct {
	PhoneNumber  string       `json:"phoneNumber"`
	FriendlyName string       `json:"friendlyName"`
	Locality     string       `json:"locality"`
	Region       string       `json:"region"`
	PostalCode   string       `json:"postalCode"`
	Capabilities Capabilities `json:"capabilities"`
}

// PurchasedNumber is the provider side of a purchase. Status is always "active"; the provider's own
// status field is not polled.
type PurchasedNumber struct {
	SID            string    `json:"sid"`
	PhoneNumber    string    `json:"phoneNumber"`
	FriendlyName   string    `json:"friendlyName"`
	VoiceURL       string    `json:"voiceUrl"`
	SmsURL         string    `json:"smsUrl"`
	StatusCallback string    `json:"statusCallback"`
	DateCreated    time.Time `json:"dateCreated"`
	Status         string    `json:"status"`
}

// UpdatedNumber is the result of repointing a number's webhooks.
type UpdatedNumber struct {
	SID         string `json:"sid"`
	PhoneNumber string `json:"phoneNumber"`
	VoiceURL    string `json:"voiceUrl"`
}

const PurchasedNumberStatusActive = "active"
