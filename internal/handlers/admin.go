package handlers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/mosaic-visa/internal/archive"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/export"
	"github.com/gdg-garage/mosaic-visa/internal/metrics"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler serves the staff back office: archived submissions, invite
// links and agency accounts.
type AdminHandler struct {
	db        *gorm.DB
	archive   *archive.Archive
	auth      *auth.AuthHandler
	metrics   *metrics.Metrics
	log       *zap.Logger
	publicURL string
	now       func() time.Time
}

func NewAdminHandler(db *gorm.DB, arch *archive.Archive, authHandler *auth.AuthHandler, m *metrics.Metrics, log *zap.Logger, publicURL string) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		db:        db,
		archive:   arch,
		auth:      authHandler,
		metrics:   m,
		log:       log,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

type SubmissionSummary struct {
	ID         uint      `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Filename   string    `json:"filename"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	AgencyName string    `json:"agency_name"`
	Applicants int       `json:"applicants"`
}

func summarize(s models.Submission) SubmissionSummary {
	return SubmissionSummary{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		Filename:   s.Filename,
		UserID:     s.UserID,
		Email:      s.User.Email,
		AgencyName: s.User.Profile.AgencyName,
		Applicants: len(s.Document.ApplicantData),
	}
}

type ListSubmissionsInput struct {
	UserID uint `query:"user_id" doc:"Only submissions of this agency account"`
	Limit  int  `query:"limit" default:"50" minimum:"1" maximum:"200"`
	Offset int  `query:"offset" minimum:"0"`
}

type ListSubmissionsOutput struct {
	Body struct {
		Total int64               `json:"total"`
		Items []SubmissionSummary `json:"items"`
	}
}

func (h *AdminHandler) HandleListSubmissions(ctx context.Context, input *ListSubmissionsInput) (*ListSubmissionsOutput, error) {
	subs, total, err := h.archive.List(ctx, archive.Filter{UserID: input.UserID, Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		h.log.Error("failed to list submissions", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to list submissions")
	}

	out := &ListSubmissionsOutput{}
	out.Body.Total = total
	out.Body.Items = make([]SubmissionSummary, 0, len(subs))
	for _, s := range subs {
		out.Body.Items = append(out.Body.Items, summarize(s))
	}
	return out, nil
}

type SubmissionIDInput struct {
	ID uint `path:"id"`
}

type SubmissionOutput struct {
	Body struct {
		SubmissionSummary
		Document export.Document `json:"document"`
	}
}

func (h *AdminHandler) load(ctx context.Context, id uint) (*models.Submission, error) {
	sub, err := h.archive.Get(ctx, id)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, huma.Error404NotFound("Submission not found")
	}
	if err != nil {
		h.log.Error("failed to load submission", zap.Uint("id", id), zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to load submission")
	}
	return sub, nil
}

func submissionOutput(sub *models.Submission) *SubmissionOutput {
	out := &SubmissionOutput{}
	out.Body.SubmissionSummary = summarize(*sub)
	out.Body.Document = sub.Document
	return out
}

func (h *AdminHandler) HandleGetSubmission(ctx context.Context, input *SubmissionIDInput) (*SubmissionOutput, error) {
	sub, err := h.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return submissionOutput(sub), nil
}

// HandleDownloadSubmission re-renders the archived file, byte for byte what
// the agency downloaded.
func (h *AdminHandler) HandleDownloadSubmission(ctx context.Context, input *SubmissionIDInput) (*FileOutput, error) {
	sub, err := h.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	content, err := archive.Render(sub)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to render submission")
	}
	h.metrics.ArchiveDownload("single")
	return attachment("text/plain; charset=utf-8", sub.Filename, content), nil
}

func (h *AdminHandler) HandleRedactSlot(ctx context.Context, input *SubmissionIDInput) (*SubmissionOutput, error) {
	sub, err := h.archive.RedactSlot(ctx, input.ID)
	if errors.Is(err, archive.ErrNotFound) {
		return nil, huma.Error404NotFound("Submission not found")
	}
	if err != nil {
		h.log.Error("failed to redact submission", zap.Uint("id", input.ID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to redact submission")
	}
	return submissionOutput(sub), nil
}

type BulkExportInput struct {
	Body struct {
		IDs []uint `json:"ids" minItems:"1" doc:"Submissions to include; unknown ids are skipped"`
	}
}

func (h *AdminHandler) HandleBulkExport(ctx context.Context, input *BulkExportInput) (*FileOutput, error) {
	if len(input.Body.IDs) == 0 {
		return nil, huma.Error400BadRequest("No submissions selected")
	}

	var buf bytes.Buffer
	n, err := h.archive.BulkExport(ctx, input.Body.IDs, &buf)
	if err != nil {
		h.log.Error("bulk export failed", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to build archive")
	}
	h.metrics.ArchiveDownload("bulk")
	h.log.Info("bulk export", zap.Int("requested", len(input.Body.IDs)), zap.Int("files", n))

	return attachment("application/zip", archive.ArchiveName(h.now()), buf.Bytes()), nil
}

type InviteBody struct {
	ID        uint       `json:"id"`
	Token     string     `json:"token"`
	URL       string     `json:"url"`
	Note      string     `json:"note"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *AdminHandler) inviteBody(inv models.InviteLink) InviteBody {
	return InviteBody{
		ID:        inv.ID,
		Token:     inv.Token,
		URL:       h.publicURL + "/register/" + inv.Token,
		Note:      inv.Note,
		Used:      inv.Used,
		UsedAt:    inv.UsedAt,
		CreatedAt: inv.CreatedAt,
	}
}

type CreateInviteInput struct {
	Body struct {
		Note string `json:"note,omitempty" maxLength:"200" doc:"Who the invite is for"`
	}
}

type InviteOutput struct {
	Body InviteBody
}

func (h *AdminHandler) HandleCreateInvite(ctx context.Context, input *CreateInviteInput) (*InviteOutput, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	invite, err := h.auth.CreateInvite(ctx, id.UserID, strings.TrimSpace(input.Body.Note))
	if err != nil {
		h.log.Error("failed to create invite", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to create invite")
	}
	return &InviteOutput{Body: h.inviteBody(*invite)}, nil
}

type ListInvitesOutput struct {
	Body []InviteBody
}

func (h *AdminHandler) HandleListInvites(ctx context.Context, _ *struct{}) (*ListInvitesOutput, error) {
	invites, err := h.auth.ListInvites(ctx)
	if err != nil {
		h.log.Error("failed to list invites", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to list invites")
	}

	out := &ListInvitesOutput{Body: make([]InviteBody, 0, len(invites))}
	for _, inv := range invites {
		out.Body = append(out.Body, h.inviteBody(inv))
	}
	return out, nil
}

type AgencyBody struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	AgencyName  string    `json:"agency_name"`
	Phone       string    `json:"phone"`
	City        string    `json:"city"`
	Submissions int64     `json:"submissions"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListAgenciesOutput struct {
	Body []AgencyBody
}

func (h *AdminHandler) HandleListAgencies(ctx context.Context, _ *struct{}) (*ListAgenciesOutput, error) {
	var users []models.User
	if err := h.db.WithContext(ctx).Preload("Profile").Order("id").Find(&users).Error; err != nil {
		h.log.Error("failed to list agencies", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to list agencies")
	}

	var counts []struct {
		UserID uint
		Total  int64
	}
	err := h.db.WithContext(ctx).Model(&models.Submission{}).
		Select("user_id, count(*) as total").
		Group("user_id").
		Scan(&counts).Error
	if err != nil {
		h.log.Error("failed to count submissions", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to list agencies")
	}
	perUser := make(map[uint]int64, len(counts))
	for _, c := range counts {
		perUser[c.UserID] = c.Total
	}

	out := &ListAgenciesOutput{Body: make([]AgencyBody, 0, len(users))}
	for _, u := range users {
		out.Body = append(out.Body, AgencyBody{
			ID:          u.ID,
			Email:       u.Email,
			AgencyName:  u.Profile.AgencyName,
			Phone:       u.Profile.Phone,
			City:        u.Profile.City,
			Submissions: perUser[u.ID],
			CreatedAt:   u.CreatedAt,
		})
	}
	return out, nil
}
