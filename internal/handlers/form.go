package handlers

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/gdg-garage/mosaic-visa/internal/archive"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/export"
	"github.com/gdg-garage/mosaic-visa/internal/metrics"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"github.com/gdg-garage/mosaic-visa/internal/notifier"
	"github.com/gdg-garage/mosaic-visa/internal/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pendingKey struct{}

// FormHandler drives the form -> preview -> download flow. The pending
// application lives in the session store under the caller's session id.
type FormHandler struct {
	db        *gorm.DB
	sessions  session.Store
	validator *application.Validator
	archive   *archive.Archive
	notifier  notifier.Notifier
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewFormHandler(db *gorm.DB, sessions session.Store, validator *application.Validator, arch *archive.Archive, n notifier.Notifier, m *metrics.Metrics, log *zap.Logger) *FormHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FormHandler{
		db:        db,
		sessions:  sessions,
		validator: validator,
		archive:   arch,
		notifier:  n,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// PendingRequired loads the pending application into the operation
// context, or sends the caller back to the form when there is none.
func (h *FormHandler) PendingRequired(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id, ok := auth.FromContext(ctx.Context())
		if !ok {
			redirect(ctx, "/login")
			return
		}

		sub, err := h.sessions.Get(ctx.Context(), id.SessionID)
		if errors.Is(err, session.ErrNotFound) {
			redirect(ctx, "/form")
			return
		}
		if err != nil {
			h.log.Error("failed to load pending application", zap.String("session_id", id.SessionID), zap.Error(err))
			huma.WriteErr(api, ctx, http.StatusInternalServerError, "Failed to load form state")
			return
		}

		next(huma.WithValue(ctx, pendingKey{}, sub))
	}
}

func redirect(ctx huma.Context, location string) {
	ctx.SetHeader("Location", location)
	ctx.SetStatus(http.StatusSeeOther)
}

func withPending(ctx context.Context, sub application.Submission) context.Context {
	return context.WithValue(ctx, pendingKey{}, sub)
}

func pendingFrom(ctx context.Context) (application.Submission, auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return application.Submission{}, auth.Identity{}, huma.Error401Unauthorized("Unauthorized")
	}
	sub, ok := ctx.Value(pendingKey{}).(application.Submission)
	if !ok {
		return application.Submission{}, auth.Identity{}, huma.Error409Conflict("No pending application")
	}
	return sub, id, nil
}

type FormState struct {
	Pending    bool                    `json:"pending" doc:"Whether the state comes from a previous submission"`
	Common     application.Common      `json:"common"`
	Applicants []application.Applicant `json:"applicants"`
}

type FormStateOutput struct {
	Body FormState
}

// HandleGetForm returns the pending application for editing, or the
// defaults of an empty form.
func (h *FormHandler) HandleGetForm(ctx context.Context, _ *struct{}) (*FormStateOutput, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	sub, err := h.sessions.Get(ctx, id.SessionID)
	switch {
	case err == nil:
		applicants := sub.Applicants
		if applicants == nil {
			applicants = []application.Applicant{}
		}
		return &FormStateOutput{Body: FormState{Pending: true, Common: sub.Common, Applicants: applicants}}, nil
	case errors.Is(err, session.ErrNotFound):
		return &FormStateOutput{Body: FormState{
			Common:     application.DefaultCommon(h.now()),
			Applicants: []application.Applicant{},
		}}, nil
	default:
		h.log.Error("failed to load pending application", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to load form state")
	}
}

type SubmitFormInput struct {
	Body struct {
		Common     application.CommonForm      `json:"common"`
		Applicants []application.ApplicantForm `json:"applicants,omitempty" doc:"Applicants in order; entries with an empty name are ignored"`
	}
}

type SubmitFormOutput struct {
	Location string `header:"Location"`
}

// HandleSubmitForm validates the form. On success the normalized
// application replaces any pending one and the caller is sent to preview.
func (h *FormHandler) HandleSubmitForm(ctx context.Context, input *SubmitFormInput) (*SubmitFormOutput, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	sub, err := h.validator.Validate(input.Body.Common, input.Body.Applicants)
	if err != nil {
		var verrs application.ValidationErrors
		if errors.As(err, &verrs) {
			h.metrics.ValidationFailure()
			return nil, huma.Error422UnprocessableEntity("Please correct the errors below.", fieldErrors(verrs)...)
		}
		return nil, huma.Error500InternalServerError("Failed to validate form")
	}

	if err := h.sessions.Put(ctx, id.SessionID, sub); err != nil {
		h.log.Error("failed to store pending application", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to save form state")
	}

	return &SubmitFormOutput{Location: "/preview"}, nil
}

// fieldErrors maps validation errors onto huma error details located in
// the request body.
func fieldErrors(verrs application.ValidationErrors) []error {
	var details []error
	for _, field := range verrs.Fields() {
		location := "body.common." + field
		if strings.HasPrefix(field, "applicants") {
			location = "body." + field
		}
		for _, msg := range verrs[field] {
			details = append(details, &huma.ErrorDetail{Message: msg, Location: location})
		}
	}
	return details
}

type PreviewOutput struct {
	Body struct {
		ApplicantData []application.Applicant `json:"APPLICANT_DATA"`
		CommonData    application.Common      `json:"COMMON_DATA"`
		Filename      string                  `json:"filename" doc:"Name the download will get"`
	}
}

func (h *FormHandler) HandlePreview(ctx context.Context, _ *struct{}) (*PreviewOutput, error) {
	sub, _, err := pendingFrom(ctx)
	if err != nil {
		return nil, err
	}

	out := &PreviewOutput{}
	out.Body.ApplicantData = sub.Applicants
	if out.Body.ApplicantData == nil {
		out.Body.ApplicantData = []application.Applicant{}
	}
	out.Body.CommonData = sub.Common
	out.Body.Filename = export.Filename(export.BuildDocument(sub))
	return out, nil
}

type FileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func attachment(contentType, filename string, content []byte) *FileOutput {
	return &FileOutput{
		ContentType:        contentType,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": filename}),
		Body:               content,
	}
}

// HandleDownload builds the export file, archives it for agency callers,
// notifies staff and clears the pending application.
func (h *FormHandler) HandleDownload(ctx context.Context, _ *struct{}) (*FileOutput, error) {
	sub, id, err := pendingFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := export.Export(sub)
	if err != nil {
		h.log.Error("failed to build export", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to build export")
	}

	if id.Role == auth.RoleAgency && h.archive != nil {
		record, err := h.archive.Record(ctx, id.UserID, res.Filename, res.Document)
		if err != nil {
			h.log.Error("failed to archive submission", zap.Uint("user_id", id.UserID), zap.Error(err))
			return nil, huma.Error500InternalServerError("Failed to archive submission")
		}
		h.notify(ctx, id.UserID, record)
	}

	if err := h.sessions.Clear(ctx, id.SessionID); err != nil {
		h.log.Warn("failed to clear pending application", zap.String("session_id", id.SessionID), zap.Error(err))
	}
	h.metrics.Export()

	return attachment("text/plain; charset=utf-8", res.Filename, res.Content), nil
}

func (h *FormHandler) notify(ctx context.Context, userID uint, record *models.Submission) {
	if h.notifier == nil {
		return
	}
	var user models.User
	if err := h.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error; err != nil {
		h.log.Warn("failed to load submission owner", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if err := h.notifier.NotifySubmission(user, *record); err != nil {
		h.log.Warn("failed to notify submission", zap.Uint("submission_id", record.ID), zap.Error(err))
	}
}
