package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/store"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// MockStore is a mock implementation of store.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

func newTestRepository() (*UserDataRepository, *store.MemoryStore) {
	s := store.NewMemoryStore()
	return NewUserDataRepository(s, "aidoctor", 0, zap.NewNop()), s
}

func sampleRecord(id string) model.ConsultationRecord {
	return model.ConsultationRecord{
		ID:        id,
		StartTime: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Kind:      model.KindSymptomTriage,
		Symptoms: []model.Symptom{
			{ID: "s1", Name: "Headache", Severity: model.SeverityModerate, Duration: "1 day"},
		},
		Diagnosis: &model.DiagnosisResult{
			PossibleConditions: []model.PossibleCondition{
				{Name: "Tension headache", Likelihood: model.LikelihoodHigh, ConfidenceScore: 72, Description: "Common"},
			},
			UrgencyLevel:       model.UrgencyLow,
			RecommendedActions: []string{"Rest", "Hydrate"},
			Disclaimer:         "Not medical advice",
		},
	}
}

func TestGetData_EmptyDefault(t *testing.T) {
	repo, _ := newTestRepository()

	data := repo.GetData(context.Background(), "acc-1")
	assert.Nil(t, data.Profile)
	assert.NotNil(t, data.Consultations)
	assert.Empty(t, data.Consultations)
}

func TestGetData_CorruptBucketFallsBack(t *testing.T) {
	repo, s := newTestRepository()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "aidoctor_user_acc-1", []byte("{broken")))

	data := repo.GetData(ctx, "acc-1")
	assert.Nil(t, data.Profile)
	assert.Empty(t, data.Consultations)

	// writers replace the corrupt bucket
	require.NoError(t, repo.SaveConsultation(ctx, "acc-1", sampleRecord("c-1")))
	assert.Len(t, repo.GetData(ctx, "acc-1").Consultations, 1)
}

func TestGetData_StorageFailureFallsBack(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Get", mock.Anything, "aidoctor_user_acc-1").Return(nil, errors.New("connection reset"))

	repo := NewUserDataRepository(mockStore, "aidoctor", 0, zap.NewNop())
	data := repo.GetData(context.Background(), "acc-1")

	assert.Nil(t, data.Profile)
	assert.Empty(t, data.Consultations)
	mockStore.AssertExpectations(t)
}

func TestSaveConsultation_StorageReadFailureDoesNotOverwrite(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Get", mock.Anything, "aidoctor_user_acc-1").Return(nil, errors.New("timeout"))

	repo := NewUserDataRepository(mockStore, "aidoctor", 0, zap.NewNop())
	err := repo.SaveConsultation(context.Background(), "acc-1", sampleRecord("c-1"))

	assert.ErrorIs(t, err, apperr.ErrStorage)
	mockStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveConsultation_WriteFailure(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Get", mock.Anything, "aidoctor_user_acc-1").Return(nil, store.ErrNotFound)
	mockStore.On("Put", mock.Anything, "aidoctor_user_acc-1", mock.Anything).Return(errors.New("disk full"))

	repo := NewUserDataRepository(mockStore, "aidoctor", 0, zap.NewNop())
	err := repo.SaveConsultation(context.Background(), "acc-1", sampleRecord("c-1"))

	assert.ErrorIs(t, err, apperr.ErrStorage)
	mockStore.AssertExpectations(t)
}

func TestInitialize(t *testing.T) {
	repo, s := newTestRepository()
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx, "acc-1"))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, repo.SaveConsultation(ctx, "acc-1", sampleRecord("c-1")))
	require.NoError(t, repo.Initialize(ctx, "acc-1"))
	assert.Len(t, repo.GetData(ctx, "acc-1").Consultations, 1, "initialize must not reset an existing bucket")
}

func TestSaveProfile_AssignsIDAndKeepsIt(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	first, err := repo.SaveProfile(ctx, "acc-1", model.HealthProfile{Age: 30, Gender: model.GenderMale, Weight: 80, Height: 180})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := repo.SaveProfile(ctx, "acc-1", model.HealthProfile{Age: 31, Gender: model.GenderMale, Weight: 79, Height: 180})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 31, repo.GetData(ctx, "acc-1").Profile.Age)
}

func TestSaveProfile_ClockSkewNeverMovesStampBackwards(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	later := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return later }
	_, err := repo.SaveProfile(ctx, "acc-1", model.HealthProfile{Age: 30})
	require.NoError(t, err)

	repo.now = func() time.Time { return later.Add(-time.Hour) }
	saved, err := repo.SaveProfile(ctx, "acc-1", model.HealthProfile{Age: 40})
	require.NoError(t, err)

	assert.Equal(t, later, saved.LastUpdated)
	assert.Equal(t, 40, saved.Age)
}

func TestDeleteConsultation(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.SaveConsultation(ctx, "acc-1", sampleRecord(fmt.Sprintf("c-%d", i))))
	}

	require.NoError(t, repo.DeleteConsultation(ctx, "acc-1", "c-1"))
	consultations := repo.GetData(ctx, "acc-1").Consultations
	require.Len(t, consultations, 2)
	assert.Equal(t, "c-2", consultations[0].ID)
	assert.Equal(t, "c-0", consultations[1].ID)

	_, ok := repo.GetConsultation(ctx, "acc-1", "c-1")
	assert.False(t, ok)
	found, ok := repo.GetConsultation(ctx, "acc-1", "c-0")
	assert.True(t, ok)
	assert.Equal(t, "c-0", found.ID)
}

func TestConsultationsAreScopedByAccount(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveConsultation(ctx, "acc-1", sampleRecord("c-1")))
	assert.Empty(t, repo.GetData(ctx, "acc-2").Consultations)
}

func TestAccountLocksAreReleased(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		accountID := fmt.Sprintf("acc-%d", i%5)
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, repo.SaveConsultation(ctx, accountID, sampleRecord(fmt.Sprintf("c-%d", n))))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.Len(t, repo.GetData(ctx, fmt.Sprintf("acc-%d", i)).Consultations, 4)
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.locks, "idle accounts keep no lock entry")
}
