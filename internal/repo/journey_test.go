package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
	"github.com/pkordes/driver-compliance/backend/testutil"
)

// repos bundles every repo backed by one transaction so tests can create a
// driver, its time records, journeys, and audits together.
type repos struct {
	drivers  repo.DriverRepo
	records  repo.TimeRecordRepo
	journeys repo.JourneyRepo
	audits   repo.AuditRepo
}

// newTestRepos opens a transaction against the test database and returns
// repos backed by that transaction. The transaction is automatically rolled
// back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; TestMain applies the migrations.
func newTestRepos(t *testing.T) repos {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test, so no cleanup SQL is needed.
		_ = tx.Rollback(context.Background())
	})

	return repos{
		drivers:  repo.NewDriverRepo(tx),
		records:  repo.NewTimeRecordRepo(tx),
		journeys: repo.NewJourneyRepo(tx),
		audits:   repo.NewAuditRepo(tx),
	}
}

// mustCreateDriver inserts a driver and fails the test if the insert does not succeed.
func mustCreateDriver(t *testing.T, r repo.DriverRepo) domain.Driver {
	t.Helper()
	d, err := r.Create(context.Background(), domain.Driver{
		Name:          "Ana Souza",
		LicenseNumber: "CNH-0001",
		CompanyID:     42,
	})
	require.NoError(t, err, "create driver")
	return d
}

var journeyDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// journeyFixture returns a PENDING journey for the driver on journeyDay.
func journeyFixture(driver domain.Driver) domain.Journey {
	return domain.Journey{
		DriverID:         driver.ID,
		VehicleID:        7,
		CompanyID:        driver.CompanyID,
		JourneyDate:      journeyDay,
		ComplianceStatus: domain.StatusPending,
	}
}

func TestJourneyRepo_Create(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	driver := mustCreateDriver(t, r.drivers)

	got, err := r.journeys.Create(ctx, journeyFixture(driver))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, driver.ID, got.DriverID)
	assert.True(t, got.JourneyDate.Equal(journeyDay), "JourneyDate mismatch")
	assert.Equal(t, domain.StatusPending, got.ComplianceStatus)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestJourneyRepo_Create_ConflictReturnsExisting(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	driver := mustCreateDriver(t, r.drivers)

	first, err := r.journeys.Create(ctx, journeyFixture(driver))
	require.NoError(t, err)

	again := journeyFixture(driver)
	again.TotalDrivingMinutes = 999 // must not overwrite the existing row
	second, err := r.journeys.Create(ctx, again)

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Zero(t, second.TotalDrivingMinutes)
}

// TestJourneyRepo_Create_ConcurrentSameKey runs creates for one driver-day in
// parallel on separate connections and checks they all land on one row.
// It cannot use the rollback transaction, so it deletes its driver at the end.
func TestJourneyRepo_Create_ConcurrentSameKey(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()

	drivers := repo.NewDriverRepo(pool)
	journeys := repo.NewJourneyRepo(pool)
	driver, err := drivers.Create(ctx, domain.Driver{Name: "Race Fixture", LicenseNumber: committedLicense, CompanyID: 42})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM drivers WHERE id = $1`, driver.ID)
	})

	const workers = 8
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j, err := journeys.Create(ctx, journeyFixture(driver))
			ids[i], errs[i] = j.ID, err
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i], "worker %d got a different journey", i)
	}

	var count int
	err = pool.QueryRow(ctx, `SELECT count(*) FROM journeys WHERE driver_id = $1`, driver.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestJourneyRepo_GetByDriverAndDate(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	driver := mustCreateDriver(t, r.drivers)

	created, err := r.journeys.Create(ctx, journeyFixture(driver))
	require.NoError(t, err)

	// Any time on the same calendar date resolves to the same journey.
	got, err := r.journeys.GetByDriverAndDate(ctx, driver.ID, journeyDay.Add(15*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestJourneyRepo_GetByDriverAndDate_NotFound(t *testing.T) {
	r := newTestRepos(t)
	driver := mustCreateDriver(t, r.drivers)

	_, err := r.journeys.GetByDriverAndDate(context.Background(), driver.ID, journeyDay)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJourneyRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.journeys.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJourneyRepo_Update(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	driver := mustCreateDriver(t, r.drivers)

	created, err := r.journeys.Create(ctx, journeyFixture(driver))
	require.NoError(t, err)

	created.TotalDrivingMinutes = 650
	created.TotalRestMinutes = 500
	created.ComplianceStatus = domain.StatusNonCompliant
	created.DailyLimitExceeded = true

	updated, err := r.journeys.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 650, updated.TotalDrivingMinutes)
	assert.Equal(t, 500, updated.TotalRestMinutes)
	assert.Equal(t, domain.StatusNonCompliant, updated.ComplianceStatus)
	assert.True(t, updated.DailyLimitExceeded)
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestJourneyRepo_Update_NotFound(t *testing.T) {
	r := newTestRepos(t)
	driver := mustCreateDriver(t, r.drivers)

	ghost := journeyFixture(driver)
	ghost.ID = uuid.New()

	_, err := r.journeys.Update(context.Background(), ghost)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJourneyRepo_ListByDriver(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	driver := mustCreateDriver(t, r.drivers)

	for i := range 3 {
		j := journeyFixture(driver)
		j.JourneyDate = journeyDay.AddDate(0, 0, i)
		_, err := r.journeys.Create(ctx, j)
		require.NoError(t, err)
	}

	page, total, err := r.journeys.ListByDriver(ctx, driver.ID, domain.PaginationParams{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	// Most recent first.
	assert.True(t, page[0].JourneyDate.After(page[1].JourneyDate))
}
