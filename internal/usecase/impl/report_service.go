package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reportshare/config"
	deliverycontext "reportshare/internal/delivery/context"
	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/repository"
	"reportshare/internal/domain/savings"
	"reportshare/internal/domain/service"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// fieldExternalID labels a missing CRM identifier in validation details.
const fieldExternalID = "external_id"

// errConcurrentTrigger signals that another trigger created the subject first.
var errConcurrentTrigger = errors.New("subject created by a concurrent trigger")

// reportService implements the ReportUsecase interface.
type reportService struct {
	txManager         repository.TransactionManager
	subjectRepo       repository.SubjectRepository
	links             usecase.LinkUsecase
	calculator        *savings.Calculator
	issuer            *linkIssuer
	publisher         service.EventPublisher
	triggerProperties map[string]struct{}
	idempotencyWindow time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// ReportServiceParams holds dependencies for ReportService, injected by Fx.
type ReportServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	SubjectRepo repository.SubjectRepository
	Links       usecase.LinkUsecase
	Calculator  *savings.Calculator
	Hasher      service.SecretHasher
	QRCode      service.QRCodeService  `optional:"true"`
	Publisher   service.EventPublisher `optional:"true"`
	Config      *config.Config
	Logger      *slog.Logger
}

// NewReportService is the constructor for reportService.
func NewReportService(params ReportServiceParams) usecase.ReportUsecase {
	srv := &reportService{
		txManager:         params.TxManager,
		subjectRepo:       params.SubjectRepo,
		links:             params.Links,
		calculator:        params.Calculator,
		issuer:            newLinkIssuer(params.Config, params.Hasher, params.QRCode),
		publisher:         params.Publisher,
		triggerProperties: make(map[string]struct{}),
		logger:            params.Logger,
		now:               utcNow,
	}
	if gen := params.Config.Generation; gen != nil {
		srv.idempotencyWindow = gen.IdempotencyWindow
		for _, property := range gen.TriggerProperties {
			if property = strings.TrimSpace(property); property != "" {
				srv.triggerProperties[property] = struct{}{}
			}
		}
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *reportService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GenerateFromTrigger computes and shares a report for a CRM event.
// Triggers for the same external key inside the idempotency window produce no new link.
func (srv *reportService) GenerateFromTrigger(ctx context.Context, input *usecase.TriggerInput) (*usecase.GenerateOutput, error) {
	logger := srv.log(ctx)

	if _, ok := srv.triggerProperties[input.PropertyName]; !ok {
		logger.Debug("Ignoring trigger for unrelated property", slog.String("property", input.PropertyName))

		return &usecase.GenerateOutput{Outcome: entity.GenerationOutcomeIgnored}, nil
	}

	externalID := strings.TrimSpace(input.ExternalID)
	report, failed := savings.NormalizeReportInput(savings.RawReportInput{
		CompanyName:   input.CompanyName,
		Industry:      input.Industry,
		EmployeeCount: input.EmployeeCount,
	})
	if externalID == "" {
		failed = append([]string{fieldExternalID}, failed...)
	}
	if len(failed) > 0 {
		return nil, validationError(failed)
	}

	calc, err := srv.calculator.Calculate(report.EmployeeCount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to calculate savings")
	}

	now := srv.now()
	out := &usecase.GenerateOutput{}
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		subjectRepo := repoFactory.SubjectRepo()

		subject, err := subjectRepo.FindSubjectByExternalKey(ctx, externalID)
		switch {
		case errors.Is(err, repository.ErrSubjectNotFound):
			subject = newSubjectEntity(report, calc, now)
			subject.ExternalKey = &externalID
			if err := subjectRepo.CreateSubject(ctx, subject); err != nil {
				if errors.Is(err, domainerrors.ErrSubjectAlreadyExists) {
					return errConcurrentTrigger
				}

				return errors.Wrap(err, "failed to create subject")
			}

		case err != nil:
			return errors.Wrap(err, "failed to find subject")

		default:
			if subject.GeneratedWithin(now, srv.idempotencyWindow) {
				out.Outcome, out.Subject = entity.GenerationOutcomeDuplicate, subject

				return nil
			}

			claimed, err := subjectRepo.ClaimGeneration(ctx, subject.ID, now, srv.idempotencyWindow)
			if err != nil {
				return errors.Wrap(err, "failed to claim generation")
			}
			if !claimed {
				out.Outcome, out.Subject = entity.GenerationOutcomeDuplicate, subject

				return nil
			}

			applyReport(subject, report, calc, now)
			if err := subjectRepo.UpdateSubject(ctx, subject); err != nil {
				return errors.Wrap(err, "failed to update subject")
			}
		}

		issued, err := srv.issuer.issue(ctx, logger, repoFactory, subject.ID, now)
		if err != nil {
			return err
		}
		out.Outcome, out.Subject, out.Link = entity.GenerationOutcomeGenerated, subject, issued

		return nil
	})
	if errors.Is(err, errConcurrentTrigger) {
		subject, findErr := srv.subjectRepo.FindSubjectByExternalKey(ctx, externalID)
		if findErr != nil {
			return nil, errors.Wrap(findErr, "failed to find concurrently created subject")
		}
		logger.Info("Duplicate trigger", slog.String("external_id", externalID), slog.Any("subject_id", subject.ID))

		return &usecase.GenerateOutput{Outcome: entity.GenerationOutcomeDuplicate, Subject: subject}, nil
	}
	if err != nil {
		logger.Error("Failed to generate report from trigger", slog.String("external_id", externalID), slog.Any("error", err))

		return nil, err
	}

	if out.Outcome == entity.GenerationOutcomeDuplicate {
		logger.Info("Duplicate trigger", slog.String("external_id", externalID), slog.Any("subject_id", out.Subject.ID))

		return out, nil
	}

	srv.issuer.attachQRCode(logger, out.Link)
	publishReportEvent(ctx, logger, srv.publisher,
		newReportEvent(service.ReportEventIssued, eventSourceCRM, out.Subject, out.Link, now))
	logger.Info("Report generated",
		slog.String("external_id", externalID),
		slog.Any("subject_id", out.Subject.ID),
		slog.Any("link_id", out.Link.LinkID),
	)

	return out, nil
}

// GenerateForUser always creates a new report owned by userID.
func (srv *reportService) GenerateForUser(
	ctx context.Context,
	userID uuid.UUID,
	input *usecase.GenerateReportInput,
) (*usecase.GenerateOutput, error) {
	logger := srv.log(ctx)

	report, failed := savings.NormalizeReportInput(savings.RawReportInput{
		CompanyName:   input.CompanyName,
		Industry:      input.Industry,
		EmployeeCount: input.EmployeeCount,
	})
	if len(failed) > 0 {
		return nil, validationError(failed)
	}

	calc, err := srv.calculator.Calculate(report.EmployeeCount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to calculate savings")
	}

	now := srv.now()
	subject := newSubjectEntity(report, calc, now)
	subject.CreatedBy = &userID

	var issued *usecase.IssuedLink
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.SubjectRepo().CreateSubject(ctx, subject); err != nil {
			return errors.Wrap(err, "failed to create subject")
		}

		var issueErr error
		issued, issueErr = srv.issuer.issue(ctx, logger, repoFactory, subject.ID, now)

		return issueErr
	})
	if err != nil {
		logger.Error("Failed to generate report", slog.Any("user_id", userID), slog.Any("error", err))

		return nil, err
	}

	srv.issuer.attachQRCode(logger, issued)
	publishReportEvent(ctx, logger, srv.publisher,
		newReportEvent(service.ReportEventIssued, eventSourceUser, subject, issued, now))
	logger.Info("Report generated", slog.Any("user_id", userID), slog.Any("subject_id", subject.ID))

	return &usecase.GenerateOutput{
		Outcome: entity.GenerationOutcomeGenerated,
		Subject: subject,
		Link:    issued,
	}, nil
}

// RegenerateLink rotates the link of an existing report.
func (srv *reportService) RegenerateLink(ctx context.Context, subjectID uuid.UUID) (*usecase.IssuedLink, error) {
	return srv.links.IssueLink(ctx, subjectID)
}

// GetReport returns a stored report.
func (srv *reportService) GetReport(ctx context.Context, subjectID uuid.UUID) (*entity.Subject, error) {
	subject, err := srv.subjectRepo.FindSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, mapSubjectLookupError(err)
	}

	return subject, nil
}

func newSubjectEntity(report savings.ReportInput, calc *entity.Calculation, now time.Time) *entity.Subject {
	subject := &entity.Subject{
		ID:        entity.NewID(),
		CreatedAt: now,
	}
	applyReport(subject, report, calc, now)

	return subject
}

func applyReport(subject *entity.Subject, report savings.ReportInput, calc *entity.Calculation, now time.Time) {
	subject.CompanyName = report.CompanyName
	subject.Industry = report.Industry
	subject.EmployeeCount = report.EmployeeCount
	subject.Calculation = *calc
	subject.LastGeneratedAt = &now
	subject.UpdatedAt = now
}

func validationError(failed []string) error {
	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(failed, ","))
}
