package impl

import (
	"context"
	"testing"
	"time"

	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/repository"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService_UnknownTokenIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	out, err := env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
		SubjectID: issued.SubjectID,
		Token:     "not-a-token",
		Passcode:  issued.Passcode,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AccessStatusNotFound, out.Status)
	assert.Nil(t, out.Subject)

	// A valid token presented for another subject is indistinguishable from an unknown one.
	out, err = env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
		SubjectID: uuid.New(),
		Token:     issued.Token,
		Passcode:  issued.Passcode,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AccessStatusNotFound, out.Status)
}

func TestAccessService_EmptyPasscodeAwaitsPasscode(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	out := env.verify(t, issued, "")
	assert.Equal(t, entity.AccessStatusAwaitingPasscode, out.Status)
	assert.Equal(t, testMaxAttempts, out.RemainingAttempts)
	assert.Nil(t, out.Subject)

	link := env.storedLink(t, issued)
	assert.Zero(t, link.AttemptCount)
	assert.Zero(t, link.ViewCount)
}

func TestAccessService_SuccessReturnsReportAndCountsView(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	out := env.verify(t, issued, wrongPasscode(issued.Passcode))
	require.Equal(t, entity.AccessStatusWrongPasscode, out.Status)
	out = env.verify(t, issued, wrongPasscode(issued.Passcode))
	require.Equal(t, entity.AccessStatusWrongPasscode, out.Status)

	out = env.verify(t, issued, issued.Passcode)
	require.Equal(t, entity.AccessStatusSuccess, out.Status)
	require.NotNil(t, out.Subject)
	assert.Equal(t, issued.SubjectID, out.Subject.ID)
	assert.Equal(t, int64(67120), out.Subject.Calculation.TotalSavings)

	link := env.storedLink(t, issued)
	assert.Zero(t, link.AttemptCount)
	assert.Equal(t, 1, link.ViewCount)
	require.NotNil(t, link.LastViewedAt)
	assert.True(t, env.clock.Now().Equal(*link.LastViewedAt))

	env.verify(t, issued, issued.Passcode)
	assert.Equal(t, 2, env.storedLink(t, issued).ViewCount)
}

func TestAccessService_WrongPasscodeCountsDown(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	for i := 1; i < testMaxAttempts; i++ {
		out := env.verify(t, issued, wrongPasscode(issued.Passcode))
		require.Equal(t, entity.AccessStatusWrongPasscode, out.Status, "attempt %d", i)
		assert.Equal(t, testMaxAttempts-i, out.RemainingAttempts)
		assert.Nil(t, out.LockedUntil)
	}

	assert.Equal(t, testMaxAttempts-1, env.storedLink(t, issued).AttemptCount)
}

func TestAccessService_TenthWrongPasscodeLocks(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	for i := 1; i < testMaxAttempts; i++ {
		require.Equal(t, entity.AccessStatusWrongPasscode, env.verify(t, issued, wrongPasscode(issued.Passcode)).Status)
	}

	out := env.verify(t, issued, wrongPasscode(issued.Passcode))
	require.Equal(t, entity.AccessStatusLocked, out.Status)
	require.NotNil(t, out.LockedUntil)
	assert.True(t, env.clock.Now().Add(testLockDuration).Equal(*out.LockedUntil))
	assert.Equal(t, testLockDuration, out.RetryAfter)

	link := env.storedLink(t, issued)
	assert.Equal(t, testMaxAttempts, link.AttemptCount)
	assert.True(t, link.IsLocked(env.clock.Now()))
}

func TestAccessService_LockTakesPrecedenceOverCorrectPasscode(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	for range testMaxAttempts {
		env.verify(t, issued, wrongPasscode(issued.Passcode))
	}

	env.clock.Advance(10 * time.Minute)
	out := env.verify(t, issued, issued.Passcode)
	require.Equal(t, entity.AccessStatusLocked, out.Status)
	assert.Equal(t, testLockDuration-10*time.Minute, out.RetryAfter)

	// Attempts while locked are not counted.
	link := env.storedLink(t, issued)
	assert.Equal(t, testMaxAttempts, link.AttemptCount)
	assert.Zero(t, link.ViewCount)

	env.clock.Advance(testLockDuration)
	out = env.verify(t, issued, issued.Passcode)
	assert.Equal(t, entity.AccessStatusSuccess, out.Status)
	assert.Zero(t, env.storedLink(t, issued).AttemptCount)
}

func TestAccessService_WrongPasscodeAfterLockLapsesLocksAgain(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	for range testMaxAttempts {
		env.verify(t, issued, wrongPasscode(issued.Passcode))
	}
	env.clock.Advance(testLockDuration + time.Second)

	out := env.verify(t, issued, wrongPasscode(issued.Passcode))
	assert.Equal(t, entity.AccessStatusLocked, out.Status)
	assert.Equal(t, testMaxAttempts+1, env.storedLink(t, issued).AttemptCount)
}

func TestAccessService_RevokedLinkIsAlwaysRevoked(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	_, err := env.links.RevokeLinks(context.Background(), issued.SubjectID)
	require.NoError(t, err)

	for _, passcode := range []string{issued.Passcode, wrongPasscode(issued.Passcode), ""} {
		out := env.verify(t, issued, passcode)
		assert.Equal(t, entity.AccessStatusRevoked, out.Status)
	}
	assert.Zero(t, env.storedLink(t, issued).AttemptCount)
}

func TestAccessService_ExpiredLinkIsAlwaysExpired(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	env.clock.Advance(testExpiry)
	assert.Equal(t, entity.AccessStatusSuccess, env.verify(t, issued, issued.Passcode).Status, "valid up to expires_at")

	env.clock.Advance(time.Second)
	for _, passcode := range []string{issued.Passcode, wrongPasscode(issued.Passcode), ""} {
		out := env.verify(t, issued, passcode)
		assert.Equal(t, entity.AccessStatusExpired, out.Status)
	}
}

func TestAccessService_ReissueRevokesPreviousLink(t *testing.T) {
	env := newTestEnv(t)
	first := env.generate(t, 20).Link

	second, err := env.links.IssueLink(context.Background(), first.SubjectID)
	require.NoError(t, err)

	assert.Equal(t, entity.AccessStatusRevoked, env.verify(t, first, first.Passcode).Status)
	assert.Equal(t, entity.AccessStatusSuccess, env.verify(t, second, second.Passcode).Status)
}

// conflictingLinkRepo loses the first conflicts conditional updates, as if another request won each race.
type conflictingLinkRepo struct {
	repository.LinkRepository
	conflicts int
	calls     int
}

func (r *conflictingLinkRepo) RecordFailedAttempt(
	ctx context.Context,
	linkID uuid.UUID,
	expected int,
	lockUntil *time.Time,
	now time.Time,
) (bool, error) {
	r.calls++
	if r.calls <= r.conflicts {
		return false, nil
	}

	return r.LinkRepository.RecordFailedAttempt(ctx, linkID, expected, lockUntil, now)
}

func (r *conflictingLinkRepo) RecordSuccessfulView(ctx context.Context, linkID uuid.UUID, expected int, now time.Time) (bool, error) {
	r.calls++
	if r.calls <= r.conflicts {
		return false, nil
	}

	return r.LinkRepository.RecordSuccessfulView(ctx, linkID, expected, now)
}

func TestAccessService_RetriesAfterConflict(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	repo := &conflictingLinkRepo{LinkRepository: env.linkRepo, conflicts: 2}
	env.access.linkRepo = repo

	out := env.verify(t, issued, wrongPasscode(issued.Passcode))
	assert.Equal(t, entity.AccessStatusWrongPasscode, out.Status)
	assert.Equal(t, 3, repo.calls)
	assert.Equal(t, 1, env.storedLink(t, issued).AttemptCount)
}

func TestAccessService_FailsLoudlyWhenConflictsPersist(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	repo := &conflictingLinkRepo{LinkRepository: env.linkRepo, conflicts: maxVerifyRounds}
	env.access.linkRepo = repo

	out, err := env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
		SubjectID: issued.SubjectID,
		Token:     issued.Token,
		Passcode:  issued.Passcode,
	})
	require.ErrorIs(t, err, domainerrors.ErrLinkBusy)
	assert.Nil(t, out)
	assert.Equal(t, maxVerifyRounds, repo.calls)
	assert.Zero(t, env.storedLink(t, issued).ViewCount)
}

type brokenLinkRepo struct {
	repository.LinkRepository
	err error
}

func (r *brokenLinkRepo) FindLinkByTokenHash(context.Context, uuid.UUID, string) (*entity.Link, error) {
	return nil, r.err
}

func TestAccessService_StoreFailureIsAnError(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link

	storeErr := domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "failed to find link")
	env.access.linkRepo = &brokenLinkRepo{LinkRepository: env.linkRepo, err: storeErr}

	out, err := env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
		SubjectID: issued.SubjectID,
		Token:     issued.Token,
		Passcode:  issued.Passcode,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, out)
}

// lostWriteLinkRepo fails every counter mutation while reads still succeed.
type lostWriteLinkRepo struct {
	repository.LinkRepository
	err error
}

func (r *lostWriteLinkRepo) RecordFailedAttempt(context.Context, uuid.UUID, int, *time.Time, time.Time) (bool, error) {
	return false, r.err
}

func (r *lostWriteLinkRepo) RecordSuccessfulView(context.Context, uuid.UUID, int, time.Time) (bool, error) {
	return false, r.err
}

func TestAccessService_LostCounterWriteFailsRequest(t *testing.T) {
	tests := []struct {
		name     string
		passcode func(correct string) string
	}{
		{name: "wrong passcode", passcode: wrongPasscode},
		{name: "correct passcode", passcode: func(correct string) string { return correct }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			issued := env.generate(t, 20).Link

			writeErr := domainerrors.NewDatabaseExecuteError(errors.New("write lost"), "failed to update link")
			env.access.linkRepo = &lostWriteLinkRepo{LinkRepository: env.linkRepo, err: writeErr}

			out, err := env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
				SubjectID: issued.SubjectID,
				Token:     issued.Token,
				Passcode:  tt.passcode(issued.Passcode),
			})
			require.ErrorIs(t, err, writeErr)
			assert.Nil(t, out)

			stored := env.storedLink(t, issued)
			assert.Zero(t, stored.AttemptCount)
			assert.Zero(t, stored.ViewCount)
		})
	}
}

type brokenSubjectRepo struct {
	repository.SubjectRepository
	err error
}

func (r *brokenSubjectRepo) FindSubjectByID(context.Context, uuid.UUID) (*entity.Subject, error) {
	return nil, r.err
}

func TestAccessService_UnloadableReportIsNotCountedAsView(t *testing.T) {
	env := newTestEnv(t)
	issued := env.generate(t, 20).Link
	env.verify(t, issued, wrongPasscode(issued.Passcode))

	loadErr := domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "failed to find subject")
	env.access.subjectRepo = &brokenSubjectRepo{SubjectRepository: env.subjectRepo, err: loadErr}

	out, err := env.access.VerifyAccess(context.Background(), &usecase.VerifyAccessInput{
		SubjectID: issued.SubjectID,
		Token:     issued.Token,
		Passcode:  issued.Passcode,
	})
	require.ErrorIs(t, err, loadErr)
	assert.Nil(t, out)

	stored := env.storedLink(t, issued)
	assert.Zero(t, stored.ViewCount)
	assert.Equal(t, 1, stored.AttemptCount)
	assert.Nil(t, stored.LastViewedAt)
}
