package mock

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"talkbot-gateway/internal/integrations"
	"talkbot-gateway/internal/integrations/dto"
	apperrors "talkbot-gateway/pkg/errors"
)

const ProviderName = "sandbox"

type ownedNumber struct {
	sid          string
	phoneNumber  string
	friendlyName string
	webhookURL   string
}

// Telephony is an in-memory telephony provider. It backs TELEPHONY_PROVIDER=sandbox and the tests.
// It counts calls per operation and can be told to fail an operation.
type Telephony struct {
	mu       sync.Mutex
	numbers  map[string]*ownedNumber
	seq      int
	calls    map[string]int
	failures map[string]error
	now      func() time.Time
}

func NewTelephony() *Telephony {
	return &Telephony{
		numbers:  make(map[string]*ownedNumber),
		calls:    make(map[string]int),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

var _ integrations.TelephonyProvider = (*Telephony)(nil)

func (m *Telephony) Name() string {
	return ProviderName
}

// FailOn makes every later call to operation ("search", "purchase", "update", "release") return err.
func (m *Telephony) FailOn(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[operation] = err
}

// Calls reports how many times operation was invoked, failed calls included.
func (m *Telephony) Calls(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[operation]
}

// WebhookURL returns the webhook currently configured on sid and whether the number is owned.
func (m *Telephony) WebhookURL(sid string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.numbers[sid]
	if !ok {
		return "", false
	}
	return n.webhookURL, true
}

// Owned reports whether sid is currently provisioned.
func (m *Telephony) Owned(sid string) bool {
	_, ok := m.WebhookURL(sid)
	return ok
}

// OwnedSIDs lists the provisioned numbers, sorted.
func (m *Telephony) OwnedSIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	sids := make([]string, 0, len(m.numbers))
	for sid := range m.numbers {
		sids = append(sids, sid)
	}
	sort.Strings(sids)
	return sids
}

func (m *Telephony) begin(operation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[operation]++
	return m.failures[operation]
}

func (m *Telephony) SearchAvailableNumbers(ctx context.Context, areaCode, countryCode string, limit int) ([]dto.AvailableNumber, error) {
	if err := m.begin("search"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	numbers := make([]dto.AvailableNumber, 0, limit)
	for i := 0; i < limit; i++ {
		numbers = append(numbers, dto.AvailableNumber{
			PhoneNumber:  fmt.Sprintf("+1%s5550%03d", areaCode, 100+i),
			FriendlyName: fmt.Sprintf("(%s) 555-0%03d", areaCode, 100+i),
			Locality:     "Sandbox",
			Region:       countryCode,
			Capabilities: dto.Capabilities{Voice: true, SMS: true},
		})
	}
	return numbers, nil
}

func (m *Telephony) PurchaseAndConfigureNumber(ctx context.Context, phoneNumber, webhookURL, friendlyName string) (*dto.PurchasedNumber, error) {
	if err := m.begin("purchase"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.numbers {
		if n.phoneNumber == phoneNumber {
			return nil, &apperrors.ProvisioningError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("phone number %s is not available", phoneNumber),
				Code:    21422,
			}
		}
	}

	m.seq++
	sid := fmt.Sprintf("PN%032d", m.seq)
	m.numbers[sid] = &ownedNumber{sid: sid, phoneNumber: phoneNumber, friendlyName: friendlyName, webhookURL: webhookURL}

	return &dto.PurchasedNumber{
		SID:            sid,
		PhoneNumber:    phoneNumber,
		FriendlyName:   friendlyName,
		VoiceURL:       webhookURL,
		SmsURL:         webhookURL,
		StatusCallback: webhookURL + "/status",
		DateCreated:    m.now().UTC(),
		Status:         dto.PurchasedNumberStatusActive,
	}, nil
}

func (m *Telephony) UpdateNumberConfiguration(ctx context.Context, sid, webhookURL string) (*dto.UpdatedNumber, error) {
	if err := m.begin("update"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.numbers[sid]
	if !ok {
		return nil, notFound(sid)
	}
	n.webhookURL = webhookURL
	return &dto.UpdatedNumber{SID: n.sid, PhoneNumber: n.phoneNumber, VoiceURL: webhookURL}, nil
}

func (m *Telephony) ReleaseNumber(ctx context.Context, sid string) error {
	if err := m.begin("release"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.numbers[sid]; !ok {
		return notFound(sid)
	}
	delete(m.numbers, sid)
	return nil
}

func notFound(sid string) error {
	return &apperrors.ProvisioningError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("the requested resource /IncomingPhoneNumbers/%s.json was not found", strings.TrimSpace(sid)),
		Code:    20404,
	}
}
