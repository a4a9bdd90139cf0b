package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talkbot-gateway/pkg/config"
	apperrors "talkbot-gateway/pkg/errors"
)

const accountPath = "/2010-04-01/Accounts/AC123"

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TwilioConfig{AccountSID: "AC123", AuthToken: "token", BaseURL: server.URL, Timeout: time.Second}
	return New(cfg, server.Client(), zap.NewNop())
}

func assertBasicAuth(t *testing.T, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "token", pass)
}

func TestProvider_SearchAvailableNumbers(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assertBasicAuth(t, r)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, accountPath+"/AvailablePhoneNumbers/US/Local.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "305", q.Get("AreaCode"))
		assert.Equal(t, "true", q.Get("VoiceEnabled"))
		assert.Equal(t, "true", q.Get("SmsEnabled"))
		assert.Equal(t, "5", q.Get("PageSize"))

		// The provider may return more than asked for; the client trims.
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"available_phone_numbers":[`)
		for i := 0; i < 7; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"friendly_name":"(305) 555-01%02d","phone_number":"+130555501%02d","locality":"Miami","region":"FL","postal_code":"33101","capabilities":{"voice":true,"SMS":true,"MMS":false,"fax":false}}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	})

	numbers, err := p.SearchAvailableNumbers(context.Background(), "305", "", 5)
	require.NoError(t, err)
	require.Len(t, numbers, 5)
	for i, n := range numbers {
		assert.NotEmpty(t, n.PhoneNumber)
		assert.Equal(t, fmt.Sprintf("+130555501%02d", i), n.PhoneNumber)
		assert.True(t, n.Capabilities.Voice)
		assert.True(t, n.Capabilities.SMS)
	}
	assert.Equal(t, "Miami", numbers[0].Locality)
	assert.Equal(t, "33101", numbers[0].PostalCode)
}

func TestProvider_PurchaseAndConfigureNumber(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assertBasicAuth(t, r)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, accountPath+"/IncomingPhoneNumbers.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+13055550199", r.PostForm.Get("PhoneNumber"))
		assert.Equal(t, "Acme - Talkbot", r.PostForm.Get("FriendlyName"))
		assert.Equal(t, "https://hooks.example.com/talkbot", r.PostForm.Get("VoiceUrl"))
		assert.Equal(t, "POST", r.PostForm.Get("VoiceMethod"))
		assert.Equal(t, "https://hooks.example.com/talkbot", r.PostForm.Get("SmsUrl"))
		assert.Equal(t, "POST", r.PostForm.Get("SmsMethod"))
		assert.Equal(t, "https://hooks.example.com/talkbot/status", r.PostForm.Get("StatusCallback"))
		assert.Equal(t, "POST", r.PostForm.Get("StatusCallbackMethod"))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"sid":"PN0001","phone_number":"+13055550199","friendly_name":"Acme - Talkbot",
			"voice_url":"https://hooks.example.com/talkbot","sms_url":"https://hooks.example.com/talkbot",
			"status_callback":"https://hooks.example.com/talkbot/status","date_created":"Sat, 17 Oct 2026 10:00:00 +0000","status":"in-use"}`)
	})

	purchased, err := p.PurchaseAndConfigureNumber(context.Background(), "+13055550199", "https://hooks.example.com/talkbot", "Acme - Talkbot")
	require.NoError(t, err)
	assert.Equal(t, "PN0001", purchased.SID)
	assert.Equal(t, "active", purchased.Status)
	assert.Equal(t, "https://hooks.example.com/talkbot/status", purchased.StatusCallback)
	assert.Equal(t, time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC), purchased.DateCreated)
}

func TestProvider_PurchaseError_KeepsProviderCode(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":21422,"message":"PhoneNumber is not available","more_info":"https://www.twilio.com/docs/errors/21422","status":400}`)
	})

	_, err := p.PurchaseAndConfigureNumber(context.Background(), "+13055550199", "https://hooks.example.com", "x")
	require.Error(t, err)

	var provErr *apperrors.ProvisioningError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusBadRequest, provErr.Status)
	assert.Equal(t, 21422, provErr.Code)
	assert.Equal(t, "error purchasing number: PhoneNumber is not available", provErr.Message)

	code, ok := apperrors.ProviderCode(err)
	assert.True(t, ok)
	assert.Equal(t, 21422, code)
}

func TestProvider_UpdateNumberConfiguration(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, accountPath+"/IncomingPhoneNumbers/PN0001.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://new.example.com/hook", r.PostForm.Get("VoiceUrl"))
		assert.Equal(t, "https://new.example.com/hook", r.PostForm.Get("SmsUrl"))
		assert.Empty(t, r.PostForm.Get("StatusCallback"))

		fmt.Fprint(w, `{"sid":"PN0001","phone_number":"+13055550199","voice_url":"https://new.example.com/hook"}`)
	})

	updated, err := p.UpdateNumberConfiguration(context.Background(), "PN0001", "https://new.example.com/hook")
	require.NoError(t, err)
	assert.Equal(t, "PN0001", updated.SID)
	assert.Equal(t, "+13055550199", updated.PhoneNumber)
	assert.Equal(t, "https://new.example.com/hook", updated.VoiceURL)
}

func TestProvider_ReleaseTwice_SecondFails(t *testing.T) {
	var released atomic.Bool
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if released.Swap(true) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":20404,"message":"The requested resource was not found","status":404}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, p.ReleaseNumber(context.Background(), "PN0001"))

	err := p.ReleaseNumber(context.Background(), "PN0001")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
	code, _ := apperrors.ProviderCode(err)
	assert.Equal(t, 20404, code)
}

func TestProvider_NotConfigured_FailsWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	p := New(config.TwilioConfig{BaseURL: server.URL}, server.Client(), zap.NewNop())
	ctx := context.Background()

	_, err := p.SearchAvailableNumbers(ctx, "305", "US", 5)
	assert.ErrorIs(t, err, apperrors.ErrTelephonyNotConfigured)
	_, err = p.PurchaseAndConfigureNumber(ctx, "+13055550199", "https://h.example.com", "x")
	assert.ErrorIs(t, err, apperrors.ErrTelephonyNotConfigured)
	_, err = p.UpdateNumberConfiguration(ctx, "PN1", "https://h.example.com")
	assert.ErrorIs(t, err, apperrors.ErrTelephonyNotConfigured)
	err = p.ReleaseNumber(ctx, "PN1")
	assert.ErrorIs(t, err, apperrors.ErrTelephonyNotConfigured)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))

	assert.Equal(t, int32(0), hits.Load())
}

func TestProvider_EmptySIDRejected(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	err := p.ReleaseNumber(context.Background(), " ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
}

func TestProvider_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := New(config.TwilioConfig{AccountSID: "AC1", AuthToken: "t", BaseURL: server.URL, Timeout: time.Second}, nil, zap.NewNop())
	_, err := p.SearchAvailableNumbers(context.Background(), "305", "US", 5)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))
	assert.Contains(t, err.Error(), "error searching numbers")
}

func TestStatusCallbackURL(t *testing.T) {
	assert.Equal(t, "https://a.example.com/hook/status", StatusCallbackURL("https://a.example.com/hook"))
}
