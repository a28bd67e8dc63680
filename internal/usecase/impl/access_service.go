package impl

import (
	"context"
	"log/slog"
	"time"

	"reportshare/config"
	deliverycontext "reportshare/internal/delivery/context"
	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/repository"
	"reportshare/internal/domain/service"
	"reportshare/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// maxVerifyRounds bounds how often a verification is re-evaluated after losing a conditional update.
const maxVerifyRounds = 5

// accessService implements the AccessUsecase interface.
type accessService struct {
	subjectRepo  repository.SubjectRepository
	linkRepo     repository.LinkRepository
	hasher       service.SecretHasher
	maxAttempts  int
	lockDuration time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// AccessServiceParams holds dependencies for AccessService, injected by Fx.
type AccessServiceParams struct {
	fx.In

	SubjectRepo repository.SubjectRepository
	LinkRepo    repository.LinkRepository
	Hasher      service.SecretHasher
	Config      *config.Config
	Logger      *slog.Logger
}

// NewAccessService is the constructor for accessService.
func NewAccessService(params AccessServiceParams) usecase.AccessUsecase {
	srv := &accessService{
		subjectRepo: params.SubjectRepo,
		linkRepo:    params.LinkRepo,
		hasher:      params.Hasher,
		logger:      params.Logger,
		now:         utcNow,
	}
	if links := params.Config.Links; links != nil {
		srv.maxAttempts = links.MaxAttempts
		srv.lockDuration = links.LockDuration
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accessService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// VerifyAccess evaluates one visitor attempt against the link identified by subject and token.
// Storage failures are returned as errors and never reported as a verification state.
func (srv *accessService) VerifyAccess(ctx context.Context, input *usecase.VerifyAccessInput) (*usecase.VerifyAccessOutput, error) {
	logger := srv.log(ctx)
	tokenHash := srv.hasher.Hash(input.Token)

	for round := 1; round <= maxVerifyRounds; round++ {
		out, settled, err := srv.evaluate(ctx, input, tokenHash)
		if err != nil {
			logger.Error("Failed to verify link", slog.Any("subject_id", input.SubjectID), slog.Any("error", err))

			return nil, err
		}
		if settled {
			logger.Info("Link verified", slog.Any("subject_id", input.SubjectID), slog.String("status", string(out.Status)))

			return out, nil
		}

		logger.Debug("Link changed during verification, re-evaluating",
			slog.Any("subject_id", input.SubjectID),
			slog.Int("round", round),
		)
	}

	logger.Warn("Link verification kept conflicting", slog.Any("subject_id", input.SubjectID))

	return nil, domainerrors.ErrLinkBusy
}

// evaluate runs one pass of the state machine. settled is false when a conditional
// update lost against a concurrent writer and the link must be read again.
func (srv *accessService) evaluate(
	ctx context.Context,
	input *usecase.VerifyAccessInput,
	tokenHash string,
) (out *usecase.VerifyAccessOutput, settled bool, err error) {
	now := srv.now()

	link, err := srv.linkRepo.FindLinkByTokenHash(ctx, input.SubjectID, tokenHash)
	if errors.Is(err, repository.ErrLinkNotFound) {
		return &usecase.VerifyAccessOutput{Status: entity.AccessStatusNotFound}, true, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to find link")
	}

	switch {
	case link.IsRevoked():
		return &usecase.VerifyAccessOutput{Status: entity.AccessStatusRevoked}, true, nil
	case link.IsExpired(now):
		return &usecase.VerifyAccessOutput{Status: entity.AccessStatusExpired}, true, nil
	case link.IsLocked(now):
		return lockedOutput(*link.LockedUntil, now), true, nil
	}

	if input.Passcode == "" {
		return &usecase.VerifyAccessOutput{
			Status:            entity.AccessStatusAwaitingPasscode,
			RemainingAttempts: link.RemainingAttempts(srv.maxAttempts),
		}, true, nil
	}

	if !srv.hasher.Equal(srv.hasher.Hash(input.Passcode), link.PasscodeHash) {
		return srv.recordFailure(ctx, link, now)
	}

	// The report is loaded first so a view is only counted when it can be served.
	subject, err := srv.subjectRepo.FindSubjectByID(ctx, link.SubjectID)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to load report")
	}

	ok, err := srv.linkRepo.RecordSuccessfulView(ctx, link.ID, link.AttemptCount, now)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to record view")
	}
	if !ok {
		return nil, false, nil
	}

	return &usecase.VerifyAccessOutput{Status: entity.AccessStatusSuccess, Subject: subject}, true, nil
}

func (srv *accessService) recordFailure(
	ctx context.Context,
	link *entity.Link,
	now time.Time,
) (*usecase.VerifyAccessOutput, bool, error) {
	attempts := link.AttemptCount + 1

	var lockUntil *time.Time
	if attempts >= srv.maxAttempts {
		until := now.Add(srv.lockDuration)
		lockUntil = &until
	}

	ok, err := srv.linkRepo.RecordFailedAttempt(ctx, link.ID, link.AttemptCount, lockUntil, now)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to record failed attempt")
	}
	if !ok {
		return nil, false, nil
	}

	if lockUntil != nil {
		srv.log(ctx).Warn("Link locked after repeated wrong passcodes",
			slog.Any("link_id", link.ID),
			slog.Time("locked_until", *lockUntil),
		)

		return lockedOutput(*lockUntil, now), true, nil
	}

	return &usecase.VerifyAccessOutput{
		Status:            entity.AccessStatusWrongPasscode,
		RemainingAttempts: srv.maxAttempts - attempts,
	}, true, nil
}

func lockedOutput(lockedUntil, now time.Time) *usecase.VerifyAccessOutput {
	return &usecase.VerifyAccessOutput{
		Status:      entity.AccessStatusLocked,
		LockedUntil: &lockedUntil,
		RetryAfter:  lockedUntil.Sub(now),
	}
}
