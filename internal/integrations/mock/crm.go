package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"talkbot-gateway/internal/integrations"
	apperrors "talkbot-gateway/pkg/errors"
)

// CRM is an in-memory stand-in for the EspoCRM entity API.
type CRM struct {
	mu       sync.Mutex
	entities map[string]map[string]map[string]interface{}
	order    map[string][]string
	seq      int
	calls    map[string]int
	failures map[string]error

	// EmptyOnMissing makes GetByID answer an unknown id with an empty body instead of a 404.
	EmptyOnMissing bool

	// EmptyCreateBody makes Create store the entity but answer with an empty 2xx body.
	EmptyCreateBody bool
}

func NewCRM() *CRM {
	return &CRM{
		entities: make(map[string]map[string]map[string]interface{}),
		order:    make(map[string][]string),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

var _ integrations.CRMClient = (*CRM)(nil)

// Seed stores fields under entityType and returns the new id. An "id" in fields is kept.
func (m *CRM) Seed(entityType string, fields map[string]interface{}) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(entityType, fields)
}

// Record returns a copy of the stored entity, or nil.
func (m *CRM) Record(entityType, id string) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.entities[entityType][id]
	if !ok {
		return nil
	}
	return copyFields(rec)
}

// Count returns how many entities of entityType are stored.
func (m *CRM) Count(entityType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities[entityType])
}

// FailOn makes every later call to operation ("list", "get", "create", "update", "delete") on
// entityType return err.
func (m *CRM) FailOn(operation, entityType string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[operation+":"+entityType] = err
}

// Calls reports how many times operation was invoked on entityType.
func (m *CRM) Calls(operation, entityType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[operation+":"+entityType]
}

// TotalCalls reports every call made to the CRM.
func (m *CRM) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *CRM) begin(operation, entityType string) error {
	m.calls[operation+":"+entityType]++
	return m.failures[operation+":"+entityType]
}

// List supports EspoCRM's single "equals" where clause (where[0][attribute], where[0][value]).
func (m *CRM) List(ctx context.Context, entityType string, params url.Values) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("list", entityType); err != nil {
		return nil, err
	}

	attr, value := params.Get("where[0][attribute]"), params.Get("where[0][value]")
	list := make([]map[string]interface{}, 0)
	for _, id := range m.order[entityType] {
		rec, ok := m.entities[entityType][id]
		if !ok {
			continue
		}
		if attr != "" && fmt.Sprint(rec[attr]) != value {
			continue
		}
		list = append(list, rec)
	}

	return json.Marshal(map[string]interface{}{"total": len(list), "list": list})
}

func (m *CRM) GetByID(ctx context.Context, entityType, id string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("get", entityType); err != nil {
		return nil, err
	}

	rec, ok := m.entities[entityType][id]
	if !ok {
		if m.EmptyOnMissing {
			return json.RawMessage{}, nil
		}
		return nil, &apperrors.UpstreamError{Status: http.StatusNotFound, Message: "Not Found"}
	}
	return json.Marshal(rec)
}

func (m *CRM) Create(ctx context.Context, entityType string, data interface{}) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("create", entityType); err != nil {
		return nil, err
	}

	fields, err := toFields(data)
	if err != nil {
		return nil, &apperrors.UpstreamError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	delete(fields, "id")
	id := m.insert(entityType, fields)
	if m.EmptyCreateBody {
		return json.RawMessage{}, nil
	}
	return json.Marshal(m.entities[entityType][id])
}

func (m *CRM) Update(ctx context.Context, entityType, id string, data interface{}) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("update", entityType); err != nil {
		return nil, err
	}

	rec, ok := m.entities[entityType][id]
	if !ok {
		return nil, &apperrors.UpstreamError{Status: http.StatusNotFound, Message: "Not Found"}
	}
	fields, err := toFields(data)
	if err != nil {
		return nil, &apperrors.UpstreamError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	for k, v := range fields {
		if k != "id" {
			rec[k] = v
		}
	}
	return json.Marshal(rec)
}

func (m *CRM) Delete(ctx context.Context, entityType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("delete", entityType); err != nil {
		return err
	}

	if _, ok := m.entities[entityType][id]; !ok {
		return &apperrors.UpstreamError{Status: http.StatusNotFound, Message: "Not Found"}
	}
	delete(m.entities[entityType], id)
	return nil
}

func (m *CRM) insert(entityType string, fields map[string]interface{}) string {
	rec := copyFields(fields)
	id, _ := rec["id"].(string)
	if id == "" {
		m.seq++
		id = fmt.Sprintf("%s-%d", entityType, m.seq)
	}
	rec["id"] = id

	if m.entities[entityType] == nil {
		m.entities[entityType] = make(map[string]map[string]interface{})
	}
	if _, exists := m.entities[entityType][id]; !exists {
		m.order[entityType] = append(m.order[entityType], id)
	}
	m.entities[entityType][id] = rec
	return id
}

// toFields normalises any payload to the map a JSON round trip would give the real CRM.
func toFields(data interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{})
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("entity payload must be a JSON object: %w", err)
	}
	return fields, nil
}

func copyFields(src map[string]interface{}) map[string]interface{} {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	dst := make(map[string]interface{}, len(src))
	for _, k := range keys {
		dst[k] = src[k]
	}
	return dst
}
