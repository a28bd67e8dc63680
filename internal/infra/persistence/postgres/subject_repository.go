package postgres

import (
	"context"
	"time"

	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/domain/repository"
	"reportshare/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// subjectRepository implements the domain.SubjectRepository interface.
type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository is the constructor for subjectRepository.
func NewSubjectRepository(db *gorm.DB) repository.SubjectRepository {
	return &subjectRepository{db: db}
}

// CreateSubject persists a new subject.
func (repo *subjectRepository) CreateSubject(ctx context.Context, subject *entity.Subject) error {
	if subject.ID == uuid.Nil {
		subject.ID = entity.NewID()
	}
	subjectM := fromSubjectDomain(subject)

	if err := repo.db.WithContext(ctx).Create(subjectM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrSubjectAlreadyExists.WrapMessage("external key already used")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("subject violates a check constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create subject")
	}

	subject.CreatedAt = subjectM.CreatedAt
	subject.UpdatedAt = subjectM.UpdatedAt

	return nil
}

// UpdateSubject overwrites the display attributes and calculation of an existing subject.
func (repo *subjectRepository) UpdateSubject(ctx context.Context, subject *entity.Subject) error {
	subjectM := fromSubjectDomain(subject)

	result := repo.db.WithContext(ctx).
		Model(&model.SubjectModel{}).
		Where("id = ?", subject.ID).
		Select(
			"CompanyName", "Industry", "EmployeeCount",
			"TotalSavings", "EmployerSavings", "EmployeeSavings",
			"Explanation", "CalculationInputs", "LastGeneratedAt", "UpdatedAt",
		).
		Updates(subjectM)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update subject")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSubjectNotFound
	}

	subject.UpdatedAt = subjectM.UpdatedAt

	return nil
}

// FindSubjectByID retrieves a subject by its identifier.
func (repo *subjectRepository) FindSubjectByID(ctx context.Context, id uuid.UUID) (*entity.Subject, error) {
	var subjectM model.SubjectModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&subjectM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSubjectNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toSubjectDomain(&subjectM), nil
}

// FindSubjectByExternalKey retrieves a subject by its upstream CRM key.
func (repo *subjectRepository) FindSubjectByExternalKey(ctx context.Context, externalKey string) (*entity.Subject, error) {
	var subjectM model.SubjectModel
	if err := repo.db.WithContext(ctx).Where("external_key = ?", externalKey).First(&subjectM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSubjectNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toSubjectDomain(&subjectM), nil
}

// ClaimGeneration stamps last_generated_at unless another trigger did so inside the window.
func (repo *subjectRepository) ClaimGeneration(ctx context.Context, id uuid.UUID, now time.Time, window time.Duration) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SubjectModel{}).
		Where("id = ?", id).
		Where("(last_generated_at IS NULL OR last_generated_at <= ?)", now.Add(-window)).
		Update("last_generated_at", now)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to claim subject generation")
	}

	return result.RowsAffected == 1, nil
}

// --- Mapper Functions ---

// toSubjectDomain converts a GORM SubjectModel to a domain Subject entity.
func toSubjectDomain(data *model.SubjectModel) *entity.Subject {
	if data == nil {
		return nil
	}

	return &entity.Subject{
		ID:            data.ID,
		ExternalKey:   data.ExternalKey,
		CompanyName:   data.CompanyName,
		Industry:      data.Industry,
		EmployeeCount: data.EmployeeCount,
		Calculation: entity.Calculation{
			TotalSavings:    data.TotalSavings,
			EmployerSavings: data.EmployerSavings,
			EmployeeSavings: data.EmployeeSavings,
			Inputs:          data.CalculationInputs.Data(),
			Explanation:     data.Explanation,
		},
		LastGeneratedAt: data.LastGeneratedAt,
		CreatedBy:       data.CreatedBy,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromSubjectDomain converts a domain Subject entity to a GORM SubjectModel.
func fromSubjectDomain(data *entity.Subject) *model.SubjectModel {
	if data == nil {
		return nil
	}

	return &model.SubjectModel{
		ID:                data.ID,
		ExternalKey:       data.ExternalKey,
		CompanyName:       data.CompanyName,
		Industry:          data.Industry,
		EmployeeCount:     data.EmployeeCount,
		TotalSavings:      data.Calculation.TotalSavings,
		EmployerSavings:   data.Calculation.EmployerSavings,
		EmployeeSavings:   data.Calculation.EmployeeSavings,
		Explanation:       data.Calculation.Explanation,
		CalculationInputs: datatypes.NewJSONType(data.Calculation.Inputs),
		LastGeneratedAt:   data.LastGeneratedAt,
		CreatedBy:         data.CreatedBy,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}
