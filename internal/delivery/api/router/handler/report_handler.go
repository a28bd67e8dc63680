package handler

import (
	"log/slog"
	"net/http"
	"time"

	"reportshare/internal/delivery/api/middleware"
	"reportshare/internal/delivery/api/response"
	"reportshare/internal/domain/entity"
	domainerrors "reportshare/internal/domain/errors"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ReportHandlerParams holds dependencies for ReportHandler, injected by Fx.
type ReportHandlerParams struct {
	fx.In

	ReportUC usecase.ReportUsecase
	LinkUC   usecase.LinkUsecase
	Logger   *slog.Logger
}

// ReportHandler serves the authenticated report API.
type ReportHandler struct {
	reportUC usecase.ReportUsecase
	linkUC   usecase.LinkUsecase
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportHandler is the constructor for ReportHandler
func NewReportHandler(params ReportHandlerParams) *ReportHandler {
	return &ReportHandler{
		reportUC: params.ReportUC,
		linkUC:   params.LinkUC,
		logger:   params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReportRequest is a signed-in user's report request.
type GenerateReportRequest struct {
	CompanyName   any `json:"company_name"`
	Industry      any `json:"industry"`
	EmployeeCount any `json:"employee_count"`
}

// GeneratedReportView is a new report together with its first link.
type GeneratedReportView struct {
	Report *ReportView     `json:"report"`
	Link   *IssuedLinkView `json:"link"`
}

// GenerateReport handles POST /api/v1/reports
func (h *ReportHandler) GenerateReport(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req GenerateReportRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid report input")
	}

	out, err := h.reportUC.GenerateForUser(c.Request().Context(), userID, &usecase.GenerateReportInput{
		CompanyName:   req.CompanyName,
		Industry:      req.Industry,
		EmployeeCount: req.EmployeeCount,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, &GeneratedReportView{
		Report: newReportView(out.Subject),
		Link:   newIssuedLinkView(out.Link),
	})
}

// GetReport handles GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c echo.Context) error {
	subject, err := h.ownedReport(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newReportView(subject))
}

// RotateLink handles POST /api/v1/reports/:id/links
func (h *ReportHandler) RotateLink(c echo.Context) error {
	subject, err := h.ownedReport(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	issued, err := h.reportUC.RegenerateLink(c.Request().Context(), subject.ID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, newIssuedLinkView(issued))
}

// ListLinks handles GET /api/v1/reports/:id/links
func (h *ReportHandler) ListLinks(c echo.Context) error {
	subject, err := h.ownedReport(c)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	links, err := h.linkUC.ListLinks(c.Request().Context(), subject.ID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	now := h.now()
	views := make([]*LinkAuditView, 0, len(links))
	for _, link := range links {
		views = append(views, newLinkAuditView(link, now))
	}

	return response.Success(c, http.StatusOK, views)
}

// RevokeLinks handles POST /api/v1/reports/:id/links/revoke (admin only)
func (h *ReportHandler) RevokeLinks(c echo.Context) error {
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid report ID")
	}

	revoked, err := h.linkUC.RevokeLinks(c.Request().Context(), subjectID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"revoked": revoked})
}

// ownedReport loads the report named by the :id parameter. Reports are visible to
// the user who created them and to administrators; CRM reports only to administrators.
func (h *ReportHandler) ownedReport(c echo.Context) (*entity.Subject, error) {
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("id")
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, domainerrors.ErrUnauthorized
	}

	subject, err := h.reportUC.GetReport(c.Request().Context(), subjectID)
	if err != nil {
		return nil, err
	}

	if middleware.HasRole(c, entity.RoleAdmin) {
		return subject, nil
	}
	if subject.CreatedBy == nil || *subject.CreatedBy != userID {
		return nil, domainerrors.ErrForbidden
	}

	return subject, nil
}
