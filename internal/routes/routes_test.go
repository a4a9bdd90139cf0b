package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"talkbot-gateway/internal/entities"
	"talkbot-gateway/internal/integrations/espocrm"
	"talkbot-gateway/internal/integrations/mock"
	"talkbot-gateway/pkg/config"
	"talkbot-gateway/pkg/validation"
)

func testLoggers() *Loggers {
	nop := zap.NewNop()
	return &Loggers{Main: nop, CRM: nop, Telephony: nop}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

func do(e *echo.Echo, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCRMProxy_CreateReturnsExactBody(t *testing.T) {
	crmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/Contact", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"X"}`, string(raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","name":"X"}`))
	}))
	defer crmServer.Close()

	e := newEcho()
	crm := espocrm.New(crmServer.URL+"/api/v1", "key", time.Second, crmServer.Client(), zap.NewNop())
	InitRouter(e, crm, mock.NewTelephony(), validation.New(), testLoggers(), &config.Config{})

	rec := do(e, http.MethodPost, "/api/crm/Contact", `{"name":"X"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"id":"1","name":"X"}`, rec.Body.String())
}

func TestCRMProxy_ErrorsAndDelete(t *testing.T) {
	crmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte(`true`))
		default:
			w.Header().Set("X-Status-Reason", "No access to scope")
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer crmServer.Close()

	e := newEcho()
	crm := espocrm.New(crmServer.URL, "key", time.Second, crmServer.Client(), zap.NewNop())
	InitRouter(e, crm, mock.NewTelephony(), validation.New(), testLoggers(), &config.Config{})

	rec := do(e, http.MethodGet, "/api/crm/Secret?maxSize=1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"No access to scope"}`, rec.Body.String())

	rec = do(e, http.MethodDelete, "/api/crm/Contact/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(e, http.MethodPut, "/api/crm/Contact/1", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"request body must be valid JSON"}`, rec.Body.String())
}

type TelephonyRoutesTestSuite struct {
	suite.Suite
	e         *echo.Echo
	crm       *mock.CRM
	telephony *mock.Telephony
	accountID string
}

func (s *TelephonyRoutesTestSuite) SetupTest() {
	s.crm = mock.NewCRM()
	s.telephony = mock.NewTelephony()
	s.e = newEcho()
	InitRouter(s.e, s.crm, s.telephony, validation.New(), testLoggers(), &config.Config{})
	s.accountID = s.crm.Seed(entities.AccountEntityType, map[string]interface{}{"name": "Acme"})
}

func TestTelephonyRoutesTestSuite(t *testing.T) {
	suite.Run(t, new(TelephonyRoutesTestSuite))
}

func (s *TelephonyRoutesTestSuite) TestHealthAndWelcome() {
	rec := do(s.e, http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok","message":"Server is running"}`, rec.Body.String())

	rec = do(s.e, http.MethodGet, "/api/", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"message":"Welcome to CRM APIs"}`, rec.Body.String())
}

func (s *TelephonyRoutesTestSuite) TestSearchNumbers() {
	rec := do(s.e, http.MethodGet, "/api/twilio/search-numbers?areaCode=305&limit=3", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			AreaCode    string `json:"areaCode"`
			CountryCode string `json:"countryCode"`
			Total       int    `json:"total"`
			Numbers     []struct {
				PhoneNumber string `json:"phoneNumber"`
			} `json:"numbers"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.True(body.Success)
	s.Equal("305", body.Data.AreaCode)
	s.Equal("US", body.Data.CountryCode)
	s.Equal(3, body.Data.Total)
	s.Len(body.Data.Numbers, 3)
}

func (s *TelephonyRoutesTestSuite) TestSearchNumbers_LowercaseCountryCode() {
	rec := do(s.e, http.MethodGet, "/api/twilio/search-numbers?areaCode=416&countryCode=ca", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			CountryCode string `json:"countryCode"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("CA", body.Data.CountryCode)
	s.Equal(1, s.telephony.Calls("search"))
}

func (s *TelephonyRoutesTestSuite) TestSearchNumbers_MissingAreaCode() {
	rec := do(s.e, http.MethodGet, "/api/twilio/search-numbers", "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"success":false,"error":"areaCode is required"}`, rec.Body.String())
	s.Zero(s.telephony.Calls("search"))
}

func (s *TelephonyRoutesTestSuite) TestPurchase_ValidationNoCalls() {
	before := s.crm.TotalCalls()
	rec := do(s.e, http.MethodPost, "/api/twilio/purchase-number", `{"phoneNumber":"+13055550199","webhookUrl":"https://h.example.com"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"success":false,"error":"accountId is required"}`, rec.Body.String())
	s.Equal(before, s.crm.TotalCalls())
	s.Zero(s.telephony.Calls("purchase"))
}

func (s *TelephonyRoutesTestSuite) TestPurchase_ProviderErrorIncludesCode() {
	rec := do(s.e, http.MethodPost, "/api/twilio/purchase-number",
		`{"phoneNumber":"+13055550199","accountId":"`+s.accountID+`","webhookUrl":"https://h.example.com"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	// Same number again: the sandbox reports it unavailable.
	rec = do(s.e, http.MethodPost, "/api/twilio/purchase-number",
		`{"phoneNumber":"+13055550199","accountId":"`+s.accountID+`","webhookUrl":"https://h.example.com"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"success":false,"error":"phone number +13055550199 is not available","code":21422}`, rec.Body.String())
}

func (s *TelephonyRoutesTestSuite) TestPurchase_EmptyCRMCreateBody() {
	s.crm.EmptyCreateBody = true

	rec := do(s.e, http.MethodPost, "/api/twilio/purchase-number",
		`{"phoneNumber":"+13055550199","accountId":"`+s.accountID+`","webhookUrl":"https://h.example.com"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			CRM json.RawMessage `json:"crm"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.True(body.Success)
	s.Equal("null", string(body.Data.CRM))
}

func (s *TelephonyRoutesTestSuite) TestLifecycle() {
	rec := do(s.e, http.MethodPost, "/api/twilio/purchase-number",
		`{"phoneNumber":"+13055550199","accountId":"`+s.accountID+`","webhookUrl":"https://h.example.com/v1"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var purchase struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Twilio struct {
				SID          string `json:"sid"`
				FriendlyName string `json:"friendlyName"`
			} `json:"twilio"`
			CRM entities.PhoneNumberRecord `json:"crm"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &purchase))
	s.True(purchase.Success)
	s.Equal("Number purchased and configured successfully", purchase.Message)
	s.Equal("Acme - Talkbot", purchase.Data.Twilio.FriendlyName)
	s.Equal(entities.PhoneNumberStatusActive, purchase.Data.CRM.Status)
	id := purchase.Data.CRM.ID

	rec = do(s.e, http.MethodPut, "/api/twilio/update-webhook/"+id, `{"webhookUrl":"https://h.example.com/v2"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"voiceUrl":"https://h.example.com/v2"`)

	rec = do(s.e, http.MethodDelete, "/api/twilio/release-number/"+id, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"success":true,"message":"Number released successfully"}`, rec.Body.String())

	record := s.crm.Record(entities.PhoneNumberEntityType, id)
	s.Equal("Released", record["status"])
	s.Equal("https://h.example.com/v2", record["n8nWebhookUrl"])

	rec = do(s.e, http.MethodDelete, "/api/twilio/release-number/"+id, "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), `"code":20404`)
}

func (s *TelephonyRoutesTestSuite) TestRelease_UnknownRecord() {
	rec := do(s.e, http.MethodDelete, "/api/twilio/release-number/nope", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Zero(s.telephony.Calls("release"))
}

func (s *TelephonyRoutesTestSuite) TestExport() {
	s.crm.Seed(entities.PhoneNumberEntityType, map[string]interface{}{"phoneNumber": "+13055550100", "accountId": s.accountID})

	rec := do(s.e, http.MethodGet, "/api/twilio/numbers/export?accountId="+s.accountID, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=phone_numbers_")
	s.NotZero(rec.Body.Len())
}

func TestAPIKey(t *testing.T) {
	e := newEcho()
	cfg := &config.Config{}
	cfg.Security.APIKey = "s3cret"
	InitRouter(e, mock.NewCRM(), mock.NewTelephony(), validation.New(), testLoggers(), cfg)

	rec := do(e, http.MethodGet, "/api/crm/Account", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"invalid or missing API key"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/crm/Account", "", "X-API-Key", "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"list":[]}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/crm/Account", "", echo.HeaderAuthorization, "Bearer s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
