package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xtopay/checkout-backend/models"
)

// ---- mock business repository ----

type mockBusinessRepo struct {
	businesses map[string]*models.Business
	err        error
	finds      int
}

func (m *mockBusinessRepo) FindByBusinessID(_ context.Context, id string) (*models.Business, error) {
	m.finds++
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.businesses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (m *mockBusinessRepo) Create(_ context.Context, b *models.Business) error {
	m.businesses[b.BusinessID] = b
	return nil
}

// ---- mock business cache ----

type mockBusinessCache struct {
	entries map[string]*models.Business
	getErr  error
	setErr  error
	sets    int
}

func (m *mockBusinessCache) Get(_ context.Context, id string) (*models.Business, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.entries[id]
	return b, ok, nil
}

func (m *mockBusinessCache) Set(_ context.Context, b *models.Business) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[b.BusinessID] = b
	return nil
}

// ---- in-memory customer repository keyed by phone ----

type mockCustomerRepo struct {
	mu      sync.Mutex
	byPhone map[string]*models.Customer
	err     error
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{byPhone: map[string]*models.Customer{}}
}

func (m *mockCustomerRepo) UpsertByPhone(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if existing, ok := m.byPhone[c.Phone]; ok {
		existing.Name = c.Name
		existing.Email = c.Email
		c.ID = existing.ID
		return nil
	}
	c.ID = uuid.New()
	stored := *c
	m.byPhone[c.Phone] = &stored
	return nil
}

// ---- in-memory checkout repository ----

type mockCheckoutRepo struct {
	mu        sync.Mutex
	byRef     map[string]*models.Checkout
	created   []*models.Checkout
	createErr error
	findErr   error
	cancelErr error
}

func newMockCheckoutRepo() *mockCheckoutRepo {
	return &mockCheckoutRepo{byRef: map[string]*models.Checkout{}}
}

func (m *mockCheckoutRepo) Create(_ context.Context, c *models.Checkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.byRef[c.ClientReference] = c
	m.created = append(m.created, c)
	return nil
}

func (m *mockCheckoutRepo) FindByClientReference(_ context.Context, ref string) (*models.Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byRef[ref]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockCheckoutRepo) Cancel(_ context.Context, ref string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelErr != nil {
		return 0, m.cancelErr
	}
	c, ok := m.byRef[ref]
	if !ok {
		return 0, nil
	}
	c.Status = models.CheckoutStatusCancelled
	c.CancelledAt = &at
	return 1, nil
}

// ---- mock SNS publisher ----

type publishedEvent struct {
	topic      string
	message    []byte
	attributes map[string]string
}

type mockSNS struct {
	mu         sync.Mutex
	published  []publishedEvent
	publishErr error
}

func (m *mockSNS) Publish(_ context.Context, topic string, message []byte, attributes map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedEvent{topic: topic, message: message, attributes: attributes})
	return m.publishErr
}

// ---- mock metrics ----

type mockMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMockMetrics() *mockMetrics { return &mockMetrics{counts: map[string]int{}} }

func (m *mockMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
	return nil
}

func (m *mockMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}
