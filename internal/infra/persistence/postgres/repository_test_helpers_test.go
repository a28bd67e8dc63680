package postgres

import (
	"context"
	"testing"
	"time"

	"reportshare/internal/domain/entity"
	"reportshare/internal/infra/persistence/sqlitetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSubject(externalKey *string) *entity.Subject {
	return &entity.Subject{
		ExternalKey:   externalKey,
		CompanyName:   "Acme",
		Industry:      "Manufacturing",
		EmployeeCount: 20,
		Calculation: entity.Calculation{
			TotalSavings:    67120,
			EmployerSavings: 23720,
			EmployeeSavings: 43400,
			Inputs: entity.CalculationInputs{
				EmployeeCount: 20,
				Year:          2026,
				RateTotal:     3356,
				RateEmployer:  1186,
				RateEmployee:  2170,
				Currency:      "USD",
			},
			Explanation: "explanation",
		},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func seedSubject(t *testing.T, db *gorm.DB) *entity.Subject {
	t.Helper()

	subject := newTestSubject(nil)
	require.NoError(t, NewSubjectRepository(db).CreateSubject(context.Background(), subject))

	return subject
}

func seedLink(t *testing.T, db *gorm.DB, subjectID uuid.UUID, tokenHash string) *entity.Link {
	t.Helper()

	link := newTestLink(subjectID, tokenHash)
	require.NoError(t, NewLinkRepository(db).CreateLink(context.Background(), link))

	return link
}

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	return sqlitetest.New(t)
}

func newTestLink(subjectID uuid.UUID, tokenHash string) *entity.Link {
	return &entity.Link{
		ID:           uuid.New(),
		SubjectID:    subjectID,
		TokenHash:    tokenHash,
		PasscodeHash: "passcode-hash",
		ExpiresAt:    testNow.Add(24 * time.Hour),
		CreatedAt:    testNow,
	}
}
