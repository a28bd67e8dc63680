package handler

import (
	"log/slog"
	"net/http"

	"reportshare/internal/delivery/api/response"
	"reportshare/internal/domain/entity"
	"reportshare/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// WebhookHandlerParams holds dependencies for WebhookHandler, injected by Fx.
type WebhookHandlerParams struct {
	fx.In

	ReportUC usecase.ReportUsecase
	Logger   *slog.Logger
}

// WebhookHandler receives CRM property change events.
type WebhookHandler struct {
	reportUC usecase.ReportUsecase
	logger   *slog.Logger
}

// NewWebhookHandler is the constructor for WebhookHandler
func NewWebhookHandler(params WebhookHandlerParams) *WebhookHandler {
	return &WebhookHandler{
		reportUC: params.ReportUC,
		logger:   params.Logger,
	}
}

// CRMTriggerRequest is the CRM webhook payload. Report fields keep their decoded
// JSON types and are validated by the report usecase.
type CRMTriggerRequest struct {
	ExternalID    string `json:"external_id"`
	PropertyName  string `json:"property_name"`
	CompanyName   any    `json:"company_name"`
	Industry      any    `json:"industry"`
	EmployeeCount any    `json:"employee_count"`
}

// TriggerView reports what a CRM trigger did. Link fields are present only when a report was generated.
type TriggerView struct {
	Outcome   entity.GenerationOutcome `json:"outcome"`
	SubjectID *uuid.UUID               `json:"subject_id,omitempty"`
	*IssuedLinkView
}

// HandleCRMTrigger handles POST /webhooks/crm
func (h *WebhookHandler) HandleCRMTrigger(c echo.Context) error {
	var req CRMTriggerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid trigger payload")
	}

	out, err := h.reportUC.GenerateFromTrigger(c.Request().Context(), &usecase.TriggerInput{
		ExternalID:    req.ExternalID,
		PropertyName:  req.PropertyName,
		CompanyName:   req.CompanyName,
		Industry:      req.Industry,
		EmployeeCount: req.EmployeeCount,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	view := &TriggerView{Outcome: out.Outcome}
	if out.Subject != nil {
		view.SubjectID = &out.Subject.ID
	}

	status := http.StatusOK
	if out.Outcome == entity.GenerationOutcomeGenerated {
		status = http.StatusCreated
		view.IssuedLinkView = newIssuedLinkView(out.Link)
	}

	return response.Success(c, status, view)
}
