package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/models"
)

// MockRecordService is a mock implementation of db.RecordService
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) CreateOrGetDriver(ctx context.Context, name, driverID string) (string, error) {
	args := m.Called(ctx, name, driverID)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) CreateOrGetVehicle(ctx context.Context, vehicle models.VehicleSelection) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) CreateOrGetSupervisor(ctx context.Context, supervisor models.Supervisor) (string, error) {
	args := m.Called(ctx, supervisor)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) SaveInspection(ctx context.Context, inspection models.Inspection) (string, error) {
	args := m.Called(ctx, inspection)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockRecordService) ListSupervisors(ctx context.Context) ([]models.SupervisorRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupervisorRecord), args.Error(1)
}

func (m *MockRecordService) ListInspections(ctx context.Context, limit int64) ([]models.Inspection, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inspection), args.Error(1)
}

func (m *MockRecordService) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) InsertSupervisor(ctx context.Context, supervisor models.SupervisorRecord) (string, error) {
	args := m.Called(ctx, supervisor)
	return args.String(0), args.Error(1)
}

func happyRecords() *MockRecordService {
	records := new(MockRecordService)
	records.On("CreateOrGetDriver", mock.Anything, mock.Anything, mock.Anything).Return("d1", nil)
	records.On("CreateOrGetVehicle", mock.Anything, mock.Anything).Return("v1", nil)
	records.On("CreateOrGetSupervisor", mock.Anything, mock.Anything).Return("s1", nil)
	records.On("SaveInspection", mock.Anything, mock.Anything).Return("i1", nil)
	return records
}

func newTestWizard(records *MockRecordService, store *draft.MemoryStore, includeReview bool) (*Wizard, *draft.Records) {
	drafts := draft.NewRecords(store)
	w := New("test-session", Config{
		Records:       records,
		Drafts:        drafts,
		IncludeReview: includeReview,
	})
	return w, drafts
}

func janeDoe() models.DriverIdentity {
	return models.DriverIdentity{Name: "Jane Doe", ID: "D-42"}
}

func truck7() models.VehicleSelection {
	return models.VehicleSelection{Name: "Truck 7", PlateNumber: "ON-123", Type: "Truck"}
}

func samLee() models.Supervisor {
	return models.Supervisor{Name: "Sam Lee", Email: "sam@example.com", Department: "Public Works"}
}

func startRecord(odometer int) models.StartOfDayRecord {
	return models.StartOfDayRecord{
		Date:          "2025-06-14",
		Time:          "07:00",
		OdometerStart: odometer,
		Equipment:     models.EquipmentChecklist.EmptyEquipment(),
	}
}

func endRecord(odometer int) models.EndOfDayRecord {
	return models.EndOfDayRecord{
		EndTime:            "15:30",
		OdometerEnd:        &odometer,
		EquipmentCondition: models.ConditionGood,
		Equipment:          models.EquipmentChecklist.EmptyEquipment(),
	}
}

// Scenario A: full happy-path run without the review step.
func TestWizard_FullRun(t *testing.T) {
	ctx := context.Background()
	records := happyRecords()
	w, drafts := newTestWizard(records, draft.NewMemoryStore(), false)

	require.NoError(t, w.SignIn(ctx, janeDoe()))
	assert.Equal(t, StateStartOfDay, w.State())

	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	assert.Equal(t, StateEndOfDay, w.State())

	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
	assert.Equal(t, StateSignature, w.State())

	require.NoError(t, w.Sign(ctx, "data:image/png;base64,abc"))
	assert.Equal(t, StateSupervisor, w.State())

	report, outcome, err := w.Submit(ctx, samLee())
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, w.State())
	assert.Equal(t, StatusSubmitted, outcome.Status)
	assert.Equal(t, "i1", report.RemoteID)
	assert.Empty(t, report.Error)
	assert.Equal(t, "sam@example.com", report.Supervisor.Email)

	miles, ok := report.Distance()
	require.True(t, ok)
	assert.Equal(t, 80, miles)

	// Backup copy lands locally even on success.
	history := drafts.Inspections()
	require.Len(t, history, 1)
	assert.Equal(t, report.ReportID, history[0].ReportID)
}

// Scenario B: remote insert fails, the wizard still reaches success and the
// local history holds the only record, marked deferred.
func TestWizard_RemoteFailureFallsBackLocally(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordService)
	records.On("CreateOrGetDriver", mock.Anything, mock.Anything, mock.Anything).Return("d1", nil)
	records.On("CreateOrGetVehicle", mock.Anything, mock.Anything).Return("v1", nil)
	records.On("CreateOrGetSupervisor", mock.Anything, mock.Anything).Return("s1", nil)
	records.On("SaveInspection", mock.Anything, mock.Anything).Return("", errors.New("service unavailable"))
	w, drafts := newTestWizard(records, draft.NewMemoryStore(), false)

	require.NoError(t, w.SignIn(ctx, janeDoe()))
	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
	require.NoError(t, w.Sign(ctx, "sig"))

	report, outcome, err := w.Submit(ctx, samLee())
	require.NoError(t, err, "remote failure must not surface as a submit error")
	assert.Equal(t, StateSuccess, w.State())
	assert.Equal(t, StatusDeferred, outcome.Status)
	assert.Empty(t, report.RemoteID)
	assert.Equal(t, DeferredReason, report.Error)

	history := drafts.Inspections()
	require.Len(t, history, 1)
	assert.Equal(t, DeferredReason, history[0].Error)
	assert.Empty(t, history[0].RemoteID)
}

// P2: exactly one history record per submission, success or failure.
func TestWizard_ExactlyOneHistoryAppend(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name    string
		saveErr error
	}{
		{"remote success", nil},
		{"remote failure", errors.New("timeout")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			records := new(MockRecordService)
			records.On("CreateOrGetDriver", mock.Anything, mock.Anything, mock.Anything).Return("d1", nil)
			records.On("CreateOrGetVehicle", mock.Anything, mock.Anything).Return("v1", nil)
			records.On("CreateOrGetSupervisor", mock.Anything, mock.Anything).Return("s1", nil)
			records.On("SaveInspection", mock.Anything, mock.Anything).Return("i1", tc.saveErr)
			w, drafts := newTestWizard(records, draft.NewMemoryStore(), false)

			require.NoError(t, w.SignIn(ctx, janeDoe()))
			require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(100)))
			require.NoError(t, w.EndOfDay(ctx, endRecord(150)))
			require.NoError(t, w.Sign(ctx, "sig"))
			_, _, err := w.Submit(ctx, samLee())
			require.NoError(t, err)

			assert.Len(t, drafts.Inspections(), 1)
		})
	}
}

// P1: refused transitions leave state and draft untouched.
func TestWizard_GuardIntegrity(t *testing.T) {
	ctx := context.Background()

	t.Run("sign in requires name and id", func(t *testing.T) {
		w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
		err := w.SignIn(ctx, models.DriverIdentity{Name: "  ", ID: ""})
		require.Error(t, err)
		verr, ok := AsValidationError(err)
		require.True(t, ok, "expected a validation error, got %v", err)
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "id")
		assert.Equal(t, StateSignIn, w.State())
		assert.Equal(t, Draft{}, w.Draft())
	})

	t.Run("start of day requires a vehicle", func(t *testing.T) {
		w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
		require.NoError(t, w.SignIn(ctx, janeDoe()))
		before := w.Draft()

		err := w.StartOfDay(ctx, models.VehicleSelection{}, startRecord(5000))
		require.Error(t, err)
		_, ok := AsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, StateStartOfDay, w.State())
		assert.Equal(t, before, w.Draft())
	})

	t.Run("end of day requires a condition rating", func(t *testing.T) {
		w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
		require.NoError(t, w.SignIn(ctx, janeDoe()))
		require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
		before := w.Draft()

		err := w.EndOfDay(ctx, models.EndOfDayRecord{EndTime: "15:30"})
		require.Error(t, err)
		assert.Equal(t, StateEndOfDay, w.State())
		assert.Equal(t, before, w.Draft())
	})

	t.Run("supervisor requires name and email", func(t *testing.T) {
		w, drafts := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
		require.NoError(t, w.SignIn(ctx, janeDoe()))
		require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
		require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
		require.NoError(t, w.Sign(ctx, "sig"))

		_, _, err := w.Submit(ctx, models.Supervisor{Name: "Sam Lee"})
		require.Error(t, err)
		assert.Equal(t, StateSupervisor, w.State())
		assert.Empty(t, drafts.Inspections(), "a refused submit must not write history")
	})
}

// Scenario C: an empty signature canvas blocks the transition.
func TestWizard_EmptySignatureBlocked(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
	require.NoError(t, w.SignIn(ctx, janeDoe()))
	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))

	err := w.Sign(ctx, "   ")
	require.Error(t, err)
	assert.Equal(t, StateSignature, w.State())
	assert.Empty(t, w.Draft().Signature)
}

// Steps cannot be skipped: events out of order are refused.
func TestWizard_NoSkipping(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)

	require.Error(t, w.Sign(ctx, "sig"))
	_, _, err := w.Submit(ctx, samLee())
	require.Error(t, err)
	require.Error(t, w.EndOfDay(ctx, endRecord(100)))
	assert.Equal(t, StateSignIn, w.State())
}

func TestWizard_ReviewStep(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), true)
	require.NoError(t, w.SignIn(ctx, janeDoe()))
	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
	require.NoError(t, w.Sign(ctx, "sig"))
	assert.Equal(t, StateReview, w.State())

	// Back preserves all collected data.
	before := w.Draft()
	require.NoError(t, w.Back(ctx))
	assert.Equal(t, StateSignature, w.State())
	assert.Equal(t, before, w.Draft())

	require.NoError(t, w.Sign(ctx, "sig"))
	require.NoError(t, w.Proceed(ctx))
	assert.Equal(t, StateSupervisor, w.State())

	_, outcome, err := w.Submit(ctx, samLee())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, outcome.Status)
}

// Starting a new inspection clears everything, across repeated cycles.
func TestWizard_NewInspectionResets(t *testing.T) {
	ctx := context.Background()
	w, drafts := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)

	for cycle := 0; cycle < 2; cycle++ {
		require.NoError(t, w.SignIn(ctx, janeDoe()))
		require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
		require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
		require.NoError(t, w.Sign(ctx, "sig"))
		_, _, err := w.Submit(ctx, samLee())
		require.NoError(t, err)

		require.NoError(t, w.NewInspection(ctx))
		assert.Equal(t, StateSignIn, w.State())
		assert.Equal(t, Draft{}, w.Draft(), "cycle %d leaked draft state", cycle)
		_, _, ok := w.Report()
		assert.False(t, ok)
		_, sessionOK := drafts.DriverSession()
		assert.False(t, sessionOK, "reset must clear the persisted driver session")
	}

	// History is append-only across cycles.
	assert.Len(t, drafts.Inspections(), 2)
}

// Sign-in side effects are best-effort: a failing record service never
// blocks the driver.
func TestWizard_SignInSideEffectFailureNonBlocking(t *testing.T) {
	ctx := context.Background()
	records := new(MockRecordService)
	records.On("CreateOrGetDriver", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("network down"))
	w, drafts := newTestWizard(records, draft.NewMemoryStore(), false)

	require.NoError(t, w.SignIn(ctx, janeDoe()))
	assert.Equal(t, StateStartOfDay, w.State())

	// Session persistence still happened.
	driver, ok := drafts.DriverSession()
	assert.True(t, ok)
	assert.Equal(t, "D-42", driver.ID)
}

func TestWizard_SubmitFromSuccessRefused(t *testing.T) {
	ctx := context.Background()
	w, drafts := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
	require.NoError(t, w.SignIn(ctx, janeDoe()))
	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
	require.NoError(t, w.Sign(ctx, "sig"))

	_, _, err := w.Submit(ctx, samLee())
	require.NoError(t, err)

	_, _, err = w.Submit(ctx, samLee())
	require.Error(t, err, "a second submit must be refused")
	assert.Len(t, drafts.Inspections(), 1)
}

// A storage failure on the local append is surfaced but the wizard still
// lands in success: it is fatal to the durability action, not to the flow.
func TestWizard_StorageFailureSurfaced(t *testing.T) {
	ctx := context.Background()
	store := draft.NewMemoryStore()
	store.FailSet = errors.New("disk full")
	w, _ := newTestWizard(happyRecords(), store, false)

	require.NoError(t, w.SignIn(ctx, janeDoe()))
	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
	require.NoError(t, w.Sign(ctx, "sig"))

	_, outcome, err := w.Submit(ctx, samLee())
	require.Error(t, err)
	assert.Equal(t, StatusSubmitted, outcome.Status)
	assert.Equal(t, StateSuccess, w.State())
}

func TestWizard_ReportIDShape(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWizard(happyRecords(), draft.NewMemoryStore(), false)
	require.NoError(t, w.SignIn(ctx, janeDoe()))
	require.NoError(t, w.StartOfDay(ctx, truck7(), startRecord(5000)))
	require.NoError(t, w.EndOfDay(ctx, endRecord(5080)))
	require.NoError(t, w.Sign(ctx, "sig"))

	report, _, err := w.Submit(ctx, samLee())
	require.NoError(t, err)
	assert.Regexp(t, `^FL-\d{8}-\d{3}$`, report.ReportID)
}
