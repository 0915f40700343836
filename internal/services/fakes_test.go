package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"copyflow/internal/models/db_models"
	"copyflow/internal/repositories"
)

// In-memory doubles for the repository and gateway boundaries. They honor the
// same contracts the gorm implementations get from the database: unique
// webhook ids, serialized subscription mutation (the mutex held across the
// whole upsert stands in for the per-user advisory transaction lock), lazy
// expiry. Lock-level interleavings against real Postgres are out of reach
// here; those belong to an integration suite.

type fakeWebhookRepo struct {
	mu      sync.Mutex
	records map[string]*db_models.WebhookEvent
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{records: make(map[string]*db_models.WebhookEvent)}
}

func (f *fakeWebhookRepo) Register(ctx context.Context, webhookID, eventType, paymentID string, rawBody []byte) (repositories.RegistrationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.records[webhookID]; ok {
		switch existing.Status {
		case db_models.WebhookStatusCompleted:
			return repositories.AlreadyCompleted, nil
		case db_models.WebhookStatusFailed:
			existing.Status = db_models.WebhookStatusPending
			return repositories.Registered, nil
		default:
			return repositories.AlreadyProcessing, nil
		}
	}

	f.records[webhookID] = &db_models.WebhookEvent{
		WebhookID: webhookID,
		EventType: eventType,
		PaymentID: paymentID,
		Status:    db_models.WebhookStatusPending,
		RawData:   rawBody,
	}
	return repositories.Registered, nil
}

func (f *fakeWebhookRepo) MarkCompleted(ctx context.Context, webhookID string) error {
	return f.setStatus(webhookID, db_models.WebhookStatusCompleted)
}

func (f *fakeWebhookRepo) MarkFailed(ctx context.Context, webhookID string) error {
	return f.setStatus(webhookID, db_models.WebhookStatusFailed)
}

func (f *fakeWebhookRepo) setStatus(webhookID string, status db_models.WebhookStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[webhookID]
	if !ok {
		return fmt.Errorf("no record for %s", webhookID)
	}
	record.Status = status
	return nil
}

func (f *fakeWebhookRepo) FindByWebhookID(ctx context.Context, webhookID string) (*db_models.WebhookEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[webhookID]
	if !ok {
		return nil, nil
	}
	snapshot := *record
	return &snapshot, nil
}

func (f *fakeWebhookRepo) status(webhookID string) db_models.WebhookStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record, ok := f.records[webhookID]; ok {
		return record.Status
	}
	return ""
}

type fakeSubscriptionRepo struct {
	mu          sync.Mutex
	subs        []*db_models.Subscription
	upsertCalls int
	failUpsert  error
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{}
}

func (f *fakeSubscriptionRepo) UpsertActivePeriod(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, paymentRef string, amount float64, period time.Duration) (*db_models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpsert != nil {
		return nil, f.failUpsert
	}
	f.upsertCalls++

	now := time.Now()
	expiresAt := now.Add(period).Unix()

	var current *db_models.Subscription
	for _, sub := range f.subs {
		if sub.UserID != userID || sub.Status != db_models.SubStatusActive {
			continue
		}
		if sub.ExpiredBy(now) {
			sub.Status = db_models.SubStatusExpired
			continue
		}
		if current == nil {
			current = sub
		}
	}

	if current != nil {
		current.PlanType = plan
		current.MercadoPagoPaymentID = paymentRef
		current.LastPaymentAmount = amount
		current.ExpiresAt = &expiresAt
		snapshot := *current
		return &snapshot, nil
	}

	fresh := &db_models.Subscription{
		UserID:               userID,
		PlanType:             plan,
		Status:               db_models.SubStatusActive,
		StartsAt:             now.Unix(),
		ExpiresAt:            &expiresAt,
		MercadoPagoPaymentID: paymentRef,
		LastPaymentAmount:    amount,
	}
	fresh.ID = uuid.New()
	f.subs = append(f.subs, fresh)
	snapshot := *fresh
	return &snapshot, nil
}

func (f *fakeSubscriptionRepo) CancelActive(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.Status == db_models.SubStatusActive {
			sub.Status = db_models.SubStatusCancelled
		}
	}
	return nil
}

func (f *fakeSubscriptionRepo) FindActive(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	var current *db_models.Subscription
	for _, sub := range f.subs {
		if sub.UserID != userID || sub.Status != db_models.SubStatusActive {
			continue
		}
		if sub.ExpiredBy(now) {
			sub.Status = db_models.SubStatusExpired
			continue
		}
		if current == nil {
			current = sub
		}
	}
	if current == nil {
		return nil, nil
	}
	snapshot := *current
	return &snapshot, nil
}

func (f *fakeSubscriptionRepo) RestorePeriod(ctx context.Context, prior *db_models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.ID == prior.ID {
			sub.PlanType = prior.PlanType
			sub.Status = prior.Status
			sub.StartsAt = prior.StartsAt
			sub.ExpiresAt = prior.ExpiresAt
			sub.MercadoPagoPaymentID = prior.MercadoPagoPaymentID
			sub.LastPaymentAmount = prior.LastPaymentAmount
			return nil
		}
	}
	return fmt.Errorf("no subscription %s to restore", prior.ID)
}

func (f *fakeSubscriptionRepo) rowsFor(userID uuid.UUID) []db_models.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []db_models.Subscription
	for _, sub := range f.subs {
		if sub.UserID == userID {
			rows = append(rows, *sub)
		}
	}
	return rows
}

func (f *fakeSubscriptionRepo) activeRowsFor(userID uuid.UUID) []db_models.Subscription {
	var rows []db_models.Subscription
	for _, sub := range f.rowsFor(userID) {
		if sub.Status == db_models.SubStatusActive {
			rows = append(rows, sub)
		}
	}
	return rows
}

type fakeProfileRepo struct {
	mu             sync.Mutex
	profiles       map[uuid.UUID]*db_models.Profile
	failUpdatePlan error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*db_models.Profile)}
}

func (f *fakeProfileRepo) add(profile *db_models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	f.profiles[profile.ID] = profile
}

func (f *fakeProfileRepo) Insert(ctx context.Context, profile *db_models.Profile) error {
	f.add(profile)
	return nil
}

func (f *fakeProfileRepo) FindById(ctx context.Context, id uuid.UUID) (*db_models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	snapshot := *profile
	return &snapshot, nil
}

func (f *fakeProfileRepo) FindByEmail(ctx context.Context, email string) (*db_models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, profile := range f.profiles {
		if profile.Email == email {
			snapshot := *profile
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (f *fakeProfileRepo) UpdatePlan(ctx context.Context, id uuid.UUID, plan db_models.PlanType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdatePlan != nil {
		return f.failUpdatePlan
	}
	profile, ok := f.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	profile.Plan = plan
	return nil
}

func (f *fakeProfileRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	profile.PasswordHash = passwordHash
	return nil
}

func (f *fakeProfileRepo) IncrementGenerations(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	profile.GenerationsUsed++
	return nil
}

func (f *fakeProfileRepo) planOf(id uuid.UUID) db_models.PlanType {
	f.mu.Lock()
	defer f.mu.Unlock()
	if profile, ok := f.profiles[id]; ok {
		return profile.Plan
	}
	return ""
}

type fakeGateway struct {
	mu            sync.Mutex
	payments      map[string]*PaymentDetail
	subscriptions map[string]*SubscriptionDetail
	err           error
	created       []CheckoutPreference
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		payments:      make(map[string]*PaymentDetail),
		subscriptions: make(map[string]*SubscriptionDetail),
	}
}

func (f *fakeGateway) GetPayment(ctx context.Context, id string) (*PaymentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	detail, ok := f.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", id)
	}
	snapshot := *detail
	return &snapshot, nil
}

func (f *fakeGateway) GetSubscription(ctx context.Context, id string) (*SubscriptionDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	detail, ok := f.subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("preapproval %s not found", id)
	}
	snapshot := *detail
	return &snapshot, nil
}

func (f *fakeGateway) CreatePreference(ctx context.Context, pref CheckoutPreference) (*CreatedPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, pref)
	return &CreatedPreference{
		ID:        fmt.Sprintf("pref-%d", len(f.created)),
		InitPoint: "https://mercadopago.test/checkout",
	}, nil
}
