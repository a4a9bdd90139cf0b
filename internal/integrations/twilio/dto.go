package twilio

// availableNumberPage is the body of GET .../AvailablePhoneNumbers/{country}/Local.json.
type availableNumberPage struct {
	AvailablePhoneNumbers []availablePhoneNumber `json:"available_phone_numbers"`
	URI                   string                 `json:"uri"`
}

type availablePhoneNumber struct {
	FriendlyName string       `json:"friendly_name"`
	PhoneNumber  string       `json:"phone_number"`
	Locality     string       `json:"locality"`
	Region       string       `json:"region"`
	PostalCode   string       `json:"postal_code"`
	IsoCountry   string       `json:"iso_country"`
	Capabilities capabilities `json:"capabilities"`
}

type capabilities struct {
	Voice bool `json:"voice"`
	SMS   bool `json:"SMS"`
	MMS   bool `json:"MMS"`
	Fax   bool `json:"fax"`
}

// incomingPhoneNumber is the IncomingPhoneNumber resource.
type incomingPhoneNumber struct {
	SID            string `json:"sid"`
	AccountSID     string `json:"account_sid"`
	PhoneNumber    string `json:"phone_number"`
	FriendlyName   string `json:"friendly_name"`
	VoiceURL       string `json:"voice_url"`
	VoiceMethod    string `json:"voice_method"`
	SmsURL         string `json:"sms_url"`
	SmsMethod      string `json:"sms_method"`
	StatusCallback string `json:"status_callback"`
	DateCreated    string `json:"date_created"`
	Status         string `json:"status"`
}

// apiError is Twilio's error body.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}
