// Package impl contains the implementation of the application's business logic.
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

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// linkService implements the LinkUsecase interface.
type linkService struct {
	txManager   repository.TransactionManager
	subjectRepo repository.SubjectRepository
	linkRepo    repository.LinkRepository
	issuer      *linkIssuer
	publisher   service.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// LinkServiceParams holds dependencies for LinkService, injected by Fx.
type LinkServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	SubjectRepo repository.SubjectRepository
	LinkRepo    repository.LinkRepository
	Hasher      service.SecretHasher
	QRCode      service.QRCodeService  `optional:"true"`
	Publisher   service.EventPublisher `optional:"true"`
	Config      *config.Config
	Logger      *slog.Logger
}

// NewLinkService is the constructor for linkService.
func NewLinkService(params LinkServiceParams) usecase.LinkUsecase {
	return &linkService{
		txManager:   params.TxManager,
		subjectRepo: params.SubjectRepo,
		linkRepo:    params.LinkRepo,
		issuer:      newLinkIssuer(params.Config, params.Hasher, params.QRCode),
		publisher:   params.Publisher,
		logger:      params.Logger,
		now:         utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *linkService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// IssueLink rotates the subject's link: every active link is revoked and a new pair is returned once.
func (srv *linkService) IssueLink(ctx context.Context, subjectID uuid.UUID) (*usecase.IssuedLink, error) {
	now := srv.now()
	logger := srv.log(ctx)

	var (
		subject *entity.Subject
		issued  *usecase.IssuedLink
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		subject, err = repoFactory.SubjectRepo().FindSubjectByID(ctx, subjectID)
		if err != nil {
			return mapSubjectLookupError(err)
		}

		issued, err = srv.issuer.issue(ctx, logger, repoFactory, subject.ID, now)

		return err
	})
	if err != nil {
		logger.Error("Failed to issue link", slog.Any("subject_id", subjectID), slog.Any("error", err))

		return nil, err
	}

	srv.issuer.attachQRCode(logger, issued)
	publishReportEvent(ctx, logger, srv.publisher,
		newReportEvent(service.ReportEventLinkRotated, eventSourceAdmin, subject, issued, now))

	logger.Info("Link issued", slog.Any("subject_id", subjectID), slog.Any("link_id", issued.LinkID))

	return issued, nil
}

// RevokeLinks revokes every active link of the subject.
func (srv *linkService) RevokeLinks(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	logger := srv.log(ctx)

	subject, err := srv.subjectRepo.FindSubjectByID(ctx, subjectID)
	if err != nil {
		return 0, mapSubjectLookupError(err)
	}

	now := srv.now()
	revoked, err := srv.linkRepo.RevokeActiveLinks(ctx, subjectID, now)
	if err != nil {
		logger.Error("Failed to revoke links", slog.Any("subject_id", subjectID), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to revoke links")
	}

	if revoked > 0 {
		publishReportEvent(ctx, logger, srv.publisher,
			newReportEvent(service.ReportEventLinksRevoked, eventSourceAdmin, subject, nil, now))
	}
	logger.Info("Links revoked", slog.Any("subject_id", subjectID), slog.Int64("count", revoked))

	return revoked, nil
}

// ListLinks returns the audit trail of the subject's links.
func (srv *linkService) ListLinks(ctx context.Context, subjectID uuid.UUID) ([]*entity.Link, error) {
	if _, err := srv.subjectRepo.FindSubjectByID(ctx, subjectID); err != nil {
		return nil, mapSubjectLookupError(err)
	}

	links, err := srv.linkRepo.ListLinksBySubject(ctx, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list links")
	}

	return links, nil
}

func mapSubjectLookupError(err error) error {
	if errors.Is(err, repository.ErrSubjectNotFound) {
		return domainerrors.ErrSubjectNotFound
	}

	return errors.Wrap(err, "failed to find subject")
}
