package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"reportshare/config"
	"reportshare/internal/domain/entity"
	"reportshare/internal/domain/repository"
	"reportshare/internal/domain/savings"
	"reportshare/internal/domain/service"
	"reportshare/internal/infra/persistence/postgres"
	"reportshare/internal/infra/persistence/sqlitetest"
	"reportshare/internal/infra/secret"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testMaxAttempts  = 10
	testLockDuration = 30 * time.Minute
	testExpiry       = 720 * time.Hour
	testWindow       = 60 * time.Second
	testBaseURL      = "https://reports.example.com"
	testTrigger      = "employee_count"
)

var testUserID = uuid.MustParse("0190f3c2-7b1e-7c4a-9d2e-3f4a5b6c7d8e")

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Pepper: "test-pepper", Webhook: "hook"},
		Links: &config.LinksConfig{
			BaseURL:      testBaseURL,
			ExpiryWindow: testExpiry,
			MaxAttempts:  testMaxAttempts,
			LockDuration: testLockDuration,
		},
		Calculation: &config.CalculationConfig{RateTotal: 3356, RateEmployer: 1186, RateEmployee: 2170, Currency: "USD"},
		Generation: &config.GenerationConfig{
			IdempotencyWindow: testWindow,
			TriggerProperties: []string{testTrigger, "company_name"},
		},
		QRCode: &config.QRCodeConfig{Enabled: true, Size: 128},
	}

	return cfg
}

// testClock is a settable clock shared by all services of one testEnv.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishReportEvent(ctx context.Context, event *service.ReportEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventPublisher) Close() error {
	return m.Called().Error(0)
}

func (m *mockEventPublisher) events() []*service.ReportEvent {
	var events []*service.ReportEvent
	for _, call := range m.Calls {
		if call.Method == "PublishReportEvent" {
			events = append(events, call.Arguments.Get(1).(*service.ReportEvent))
		}
	}

	return events
}

type stubQRCode struct {
	urls []string
}

func (s *stubQRCode) GenerateLinkQR(linkURL string) ([]byte, error) {
	s.urls = append(s.urls, linkURL)

	return []byte("png:" + linkURL), nil
}

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	clock       *testClock
	hasher      service.SecretHasher
	publisher   *mockEventPublisher
	qrCode      *stubQRCode
	txManager   repository.TransactionManager
	subjectRepo repository.SubjectRepository
	linkRepo    repository.LinkRepository

	links   *linkService
	reports *reportService
	access  *accessService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := sqlitetest.New(t)
	cfg := newTestConfig()

	hasher, err := secret.NewPepperedHasher(cfg)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	calc, err := savings.NewCalculator(savings.Rates{
		Total:    cfg.Calculation.RateTotal,
		Employer: cfg.Calculation.RateEmployer,
		Employee: cfg.Calculation.RateEmployee,
		Currency: cfg.Calculation.Currency,
	}, clock.Now)
	require.NoError(t, err)

	publisher := &mockEventPublisher{}
	publisher.On("PublishReportEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	env := &testEnv{
		db:          db,
		cfg:         cfg,
		clock:       clock,
		hasher:      hasher,
		publisher:   publisher,
		qrCode:      &stubQRCode{},
		txManager:   postgres.NewTransactionManager(db),
		subjectRepo: postgres.NewSubjectRepository(db),
		linkRepo:    postgres.NewLinkRepository(db),
	}
	env.build(t, calc)

	return env
}

func (env *testEnv) build(t *testing.T, calc *savings.Calculator) {
	t.Helper()

	links, ok := NewLinkService(LinkServiceParams{
		TxManager:   env.txManager,
		SubjectRepo: env.subjectRepo,
		LinkRepo:    env.linkRepo,
		Hasher:      env.hasher,
		QRCode:      env.qrCode,
		Publisher:   env.publisher,
		Config:      env.cfg,
		Logger:      newDiscardLogger(),
	}).(*linkService)
	require.True(t, ok)
	links.now = env.clock.Now

	reports, ok := NewReportService(ReportServiceParams{
		TxManager:   env.txManager,
		SubjectRepo: env.subjectRepo,
		Links:       links,
		Calculator:  calc,
		Hasher:      env.hasher,
		QRCode:      env.qrCode,
		Publisher:   env.publisher,
		Config:      env.cfg,
		Logger:      newDiscardLogger(),
	}).(*reportService)
	require.True(t, ok)
	reports.now = env.clock.Now

	access, ok := NewAccessService(AccessServiceParams{
		SubjectRepo: env.subjectRepo,
		LinkRepo:    env.linkRepo,
		Hasher:      env.hasher,
		Config:      env.cfg,
		Logger:      newDiscardLogger(),
	}).(*accessService)
	require.True(t, ok)
	access.now = env.clock.Now

	env.links, env.reports, env.access = links, reports, access
}

// generate creates a report for a signed-in user and returns it with its first link.
func (env *testEnv) generate(t *testing.T, employeeCount any) *usecase.GenerateOutput {
	t.Helper()

	out, err := env.reports.GenerateForUser(context.Background(), testUserID, &usecase.GenerateReportInput{
		CompanyName:   "Acme",
		Industry:      "Manufacturing",
		EmployeeCount: employeeCount,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Link)

	return out
}

func (env *testEnv) verify(t *testing.T, issued *usecase.IssuedLink, passcode string) *usecase.VerifyAccessOutput {
	t.Helper()

	out, err := env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
		SubjectID: issued.SubjectID,
		Token:     issued.Token,
		Passcode:  passcode,
	})
	require.NoError(t, err)

	return out
}

func (env *testEnv) storedLink(t *testing.T, issued *usecase.IssuedLink) *entity.Link {
	t.Helper()

	link, err := env.linkRepo.FindLinkByTokenHash(context.Background(), issued.SubjectID, env.hasher.Hash(issued.Token))
	require.NoError(t, err)

	return link
}

func wrongPasscode(correct string) string {
	if correct == "000000" {
		return "000001"
	}

	return "000000"
}
