package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"reportshare/internal/delivery/api/response"
	"reportshare/internal/delivery/api/validator"
	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ShareHandlerParams holds dependencies for ShareHandler, injected by Fx.
type ShareHandlerParams struct {
	fx.In

	AccessUC usecase.AccessUsecase
	Logger   *slog.Logger
}

// ShareHandler serves the public magic link endpoints.
type ShareHandler struct {
	accessUC usecase.AccessUsecase
	logger   *slog.Logger
}

// NewShareHandler is the constructor for ShareHandler
func NewShareHandler(params ShareHandlerParams) *ShareHandler {
	return &ShareHandler{
		accessUC: params.AccessUC,
		logger:   params.Logger,
	}
}

// AccessRequest is a visitor's attempt to open a shared report.
type AccessRequest struct {
	Token    string `json:"token" validate:"required,max=128"`
	Passcode string `json:"passcode" validate:"omitempty,max=64"`
}

// AccessView is the verification state returned to the visitor.
type AccessView struct {
	Status            entity.AccessStatus `json:"status"`
	RemainingAttempts *int                `json:"remaining_attempts,omitempty"`
	Report            *ReportView         `json:"report,omitempty"`
}

// LockedDetails tells a locked-out visitor when to retry.
type LockedDetails struct {
	LockedUntil       time.Time `json:"locked_until"`
	RetryAfterSeconds int       `json:"retry_after_seconds"`
}

// VerifyAccess handles POST /share/:subjectId/access
func (h *ShareHandler) VerifyAccess(c echo.Context) error {
	// A malformed id cannot match any link.
	subjectID, err := uuid.Parse(c.Param("subjectId"))
	if err != nil {
		return response.AppError(c, domainerrors.ErrLinkNotFound)
	}

	var req AccessRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid access request")
	}

	if err := c.Validate(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return response.BadRequestWithDetails(c, "VALIDATION_ERROR", "Invalid access request", fieldErrs)
		}

		return errors.WithStack(err)
	}

	out, err := h.accessUC.VerifyAccess(c.Request().Context(), &usecase.VerifyAccessInput{
		SubjectID: subjectID,
		Token:     req.Token,
		Passcode:  req.Passcode,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return renderAccess(c, out)
}

func renderAccess(c echo.Context, out *usecase.VerifyAccessOutput) error {
	switch out.Status {
	case entity.AccessStatusSuccess:
		return response.Success(c, http.StatusOK, &AccessView{
			Status: out.Status,
			Report: newReportView(out.Subject),
		})
	case entity.AccessStatusAwaitingPasscode:
		return response.Success(c, http.StatusOK, &AccessView{
			Status:            out.Status,
			RemainingAttempts: &out.RemainingAttempts,
		})
	case entity.AccessStatusWrongPasscode:
		return response.Error(c, http.StatusUnauthorized,
			domainerrors.ErrWrongPasscode.ErrorCode(), domainerrors.ErrWrongPasscode.Message(),
			map[string]int{"remaining_attempts": out.RemainingAttempts})
	case entity.AccessStatusLocked:
		retryAfter := retryAfterSeconds(out.RetryAfter)
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

		details := &LockedDetails{RetryAfterSeconds: retryAfter}
		if out.LockedUntil != nil {
			details.LockedUntil = *out.LockedUntil
		}

		return response.Error(c, http.StatusTooManyRequests,
			domainerrors.ErrLinkLocked.ErrorCode(), domainerrors.ErrLinkLocked.Message(), details)
	case entity.AccessStatusRevoked:
		return response.AppError(c, domainerrors.ErrLinkRevoked)
	case entity.AccessStatusExpired:
		return response.AppError(c, domainerrors.ErrLinkExpired)
	default:
		return response.AppError(c, domainerrors.ErrLinkNotFound)
	}
}

// retryAfterSeconds rounds up so a client never retries before the lock lapses.
func retryAfterSeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 1)
}
