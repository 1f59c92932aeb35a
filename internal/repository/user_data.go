package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/store"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// DefaultMaxConsultations is the retention cap of the consultation history
const DefaultMaxConsultations = 50

// UserDataRepository manages the per-account {profile, consultations} bucket
type UserDataRepository struct {
	store            store.Store
	namespace        string
	maxConsultations int
	logger           *zap.Logger
	now              func() time.Time

	mu    sync.Mutex
	locks map[string]*accountLock
}

// accountLock is removed from the map once no caller holds or waits on it
type accountLock struct {
	sync.Mutex
	refs int
}

// NewUserDataRepository creates a new UserDataRepository
func NewUserDataRepository(s store.Store, namespace string, maxConsultations int, logger *zap.Logger) *UserDataRepository {
	if maxConsultations <= 0 {
		maxConsultations = DefaultMaxConsultations
	}
	return &UserDataRepository{
		store:            s,
		namespace:        namespace,
		maxConsultations: maxConsultations,
		logger:           logger,
		now:              time.Now,
		locks:            make(map[string]*accountLock),
	}
}

func (r *UserDataRepository) key(accountID string) string {
	return store.Key(r.namespace, "user", accountID)
}

// lock serializes read-modify-write cycles for one account
func (r *UserDataRepository) lock(accountID string) func() {
	r.mu.Lock()
	l, ok := r.locks[accountID]
	if !ok {
		l = &accountLock{}
		r.locks[accountID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, accountID)
		}
		r.mu.Unlock()
	}
}

func emptyUserData() model.UserData {
	return model.UserData{Consultations: []model.ConsultationRecord{}}
}

// load reads the bucket. A missing bucket yields the empty default; a corrupt
// bucket is reported with errCorrupt so writers can replace it.
func (r *UserDataRepository) load(ctx context.Context, accountID string) (model.UserData, error) {
	data, err := r.store.Get(ctx, r.key(accountID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return emptyUserData(), nil
		}
		return emptyUserData(), apperr.Storage("failed to read user data", err)
	}

	var userData model.UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return emptyUserData(), fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if userData.Consultations == nil {
		userData.Consultations = []model.ConsultationRecord{}
	}
	return userData, nil
}

var errCorrupt = errors.New("corrupt user data bucket")

// loadForWrite tolerates corrupt buckets but not unreachable storage, so a
// transient outage never overwrites existing history with an empty bucket.
func (r *UserDataRepository) loadForWrite(ctx context.Context, accountID string) (model.UserData, error) {
	userData, err := r.load(ctx, accountID)
	if err != nil {
		if errors.Is(err, errCorrupt) {
			r.logger.Warn("replacing corrupt user data bucket", zap.String("account_id", accountID), zap.Error(err))
			return emptyUserData(), nil
		}
		return userData, err
	}
	return userData, nil
}

func (r *UserDataRepository) save(ctx context.Context, accountID string, userData model.UserData) error {
	data, err := json.Marshal(userData)
	if err != nil {
		return fmt.Errorf("failed to marshal user data: %w", err)
	}
	if err := r.store.Put(ctx, r.key(accountID), data); err != nil {
		r.logger.Error("failed to save user data", zap.Error(err), zap.String("account_id", accountID))
		return apperr.Storage("failed to save user data", err)
	}
	return nil
}

// GetData returns the account's profile and consultations. Storage failures
// are logged and answered with the empty default.
func (r *UserDataRepository) GetData(ctx context.Context, accountID string) model.UserData {
	userData, err := r.load(ctx, accountID)
	if err != nil {
		r.logger.Warn("failed to load user data, using defaults", zap.String("account_id", accountID), zap.Error(err))
		return emptyUserData()
	}
	return userData
}

// Initialize creates an empty bucket if none exists
func (r *UserDataRepository) Initialize(ctx context.Context, accountID string) error {
	unlock := r.lock(accountID)
	defer unlock()

	_, err := r.store.Get(ctx, r.key(accountID))
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return apperr.Storage("failed to read user data", err)
	}

	return r.save(ctx, accountID, emptyUserData())
}

// SaveProfile replaces the whole profile and stamps LastUpdated, never earlier
// than the previously stored stamp.
func (r *UserDataRepository) SaveProfile(ctx context.Context, accountID string, profile model.HealthProfile) (model.HealthProfile, error) {
	unlock := r.lock(accountID)
	defer unlock()

	userData, err := r.loadForWrite(ctx, accountID)
	if err != nil {
		return model.HealthProfile{}, err
	}

	stamp := r.now().UTC()
	if userData.Profile != nil && stamp.Before(userData.Profile.LastUpdated) {
		stamp = userData.Profile.LastUpdated
	}

	if profile.ID == "" {
		if userData.Profile != nil && userData.Profile.ID != "" {
			profile.ID = userData.Profile.ID
		} else {
			profile.ID = uuid.New().String()
		}
	}
	profile.LastUpdated = stamp
	userData.Profile = &profile

	if err := r.save(ctx, accountID, userData); err != nil {
		return model.HealthProfile{}, err
	}

	r.logger.Info("profile saved", zap.String("account_id", accountID))
	return profile, nil
}

// SaveConsultation prepends record and evicts the oldest beyond the retention cap
func (r *UserDataRepository) SaveConsultation(ctx context.Context, accountID string, record model.ConsultationRecord) error {
	unlock := r.lock(accountID)
	defer unlock()

	userData, err := r.loadForWrite(ctx, accountID)
	if err != nil {
		return err
	}

	userData.Consultations = append([]model.ConsultationRecord{record}, userData.Consultations...)
	if len(userData.Consultations) > r.maxConsultations {
		userData.Consultations = userData.Consultations[:r.maxConsultations]
	}

	if err := r.save(ctx, accountID, userData); err != nil {
		return err
	}

	r.logger.Info("consultation saved",
		zap.String("account_id", accountID),
		zap.String("consultation_id", record.ID),
		zap.String("kind", string(record.Kind)),
	)
	return nil
}

// DeleteConsultation removes a record by id; an unknown id is a no-op
func (r *UserDataRepository) DeleteConsultation(ctx context.Context, accountID, id string) error {
	unlock := r.lock(accountID)
	defer unlock()

	userData, err := r.loadForWrite(ctx, accountID)
	if err != nil {
		return err
	}

	kept := userData.Consultations[:0]
	for _, c := range userData.Consultations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(userData.Consultations) {
		return nil
	}
	userData.Consultations = kept

	return r.save(ctx, accountID, userData)
}

// GetConsultation returns one record by id
func (r *UserDataRepository) GetConsultation(ctx context.Context, accountID, id string) (*model.ConsultationRecord, bool) {
	for _, c := range r.GetData(ctx, accountID).Consultations {
		if c.ID == id {
			return &c, true
		}
	}
	return nil, false
}
