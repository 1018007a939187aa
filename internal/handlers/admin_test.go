package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/gdg-garage/mosaic-visa/internal/auth"
	"github.com/gdg-garage/mosaic-visa/internal/export"
	"github.com/gdg-garage/mosaic-visa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archiveExport(t *testing.T, env *testEnv, name string) (*models.Submission, export.Result) {
	t.Helper()
	sub := application.Submission{
		Common:     application.DefaultCommon(fixedNow),
		Applicants: []application.Applicant{{Name: name, Surname: "Dupont", PassportNumber: "AB123456"}},
	}
	sub.Common.Phone = "0600000000"
	res, err := export.Export(sub)
	require.NoError(t, err)
	rec, err := env.archive.Record(context.Background(), env.agency.ID, res.Filename, res.Document)
	require.NoError(t, err)
	return rec, res
}

func TestAdminSubmissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.staffCtx()
	first, firstRes := archiveExport(t, env, "Jean")
	second, _ := archiveExport(t, env, "Paul")

	t.Run("List", func(t *testing.T) {
		resp, err := env.admin.HandleListSubmissions(ctx, &ListSubmissionsInput{Limit: 50})
		require.NoError(t, err)
		assert.EqualValues(t, 2, resp.Body.Total)
		require.Len(t, resp.Body.Items, 2)
		assert.Equal(t, second.ID, resp.Body.Items[0].ID)
		assert.Equal(t, "Atlas Voyages", resp.Body.Items[0].AgencyName)
		assert.Equal(t, 1, resp.Body.Items[0].Applicants)
	})

	t.Run("Get", func(t *testing.T) {
		resp, err := env.admin.HandleGetSubmission(ctx, &SubmissionIDInput{ID: first.ID})
		require.NoError(t, err)
		assert.Equal(t, "AB123456", resp.Body.Document.ApplicantData[0].PassportNumber)
		assert.Equal(t, env.agency.Email, resp.Body.Email)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		_, err := env.admin.HandleGetSubmission(ctx, &SubmissionIDInput{ID: 999})
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("Download", func(t *testing.T) {
		resp, err := env.admin.HandleDownloadSubmission(ctx, &SubmissionIDInput{ID: first.ID})
		require.NoError(t, err)
		assert.Equal(t, string(firstRes.Content), string(resp.Body))
		assert.Equal(t, "attachment; filename=Jean_Dupont_0600000000.txt", resp.ContentDisposition)
	})

	t.Run("RedactSlot", func(t *testing.T) {
		resp, err := env.admin.HandleRedactSlot(ctx, &SubmissionIDInput{ID: first.ID})
		require.NoError(t, err)
		assert.Empty(t, resp.Body.Document.CommonData.Slot)

		_, err = env.admin.HandleRedactSlot(ctx, &SubmissionIDInput{ID: 999})
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("BulkExport", func(t *testing.T) {
		input := &BulkExportInput{}
		input.Body.IDs = []uint{first.ID, second.ID, 999}
		resp, err := env.admin.HandleBulkExport(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "application/zip", resp.ContentType)
		assert.Equal(t, "attachment; filename=submissions_20261015_143000.zip", resp.ContentDisposition)

		zr, err := zip.NewReader(bytes.NewReader(resp.Body), int64(len(resp.Body)))
		require.NoError(t, err)
		var names []string
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		assert.ElementsMatch(t, []string{"Jean_Dupont_0600000000.txt", "Paul_Dupont_0600000000.txt"}, names)
	})

	t.Run("BulkExportNothingSelected", func(t *testing.T) {
		_, err := env.admin.HandleBulkExport(ctx, &BulkExportInput{})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}

func TestAdminInvitesAndRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := env.staffCtx()

	createInput := &CreateInviteInput{}
	createInput.Body.Note = " Sahara Tours "
	created, err := env.admin.HandleCreateInvite(ctx, createInput)
	require.NoError(t, err)
	assert.Equal(t, "Sahara Tours", created.Body.Note)
	assert.Equal(t, "https://visa.example.com/register/"+created.Body.Token, created.Body.URL)

	check, err := env.registration.HandleCheckInvite(context.Background(), &InviteTokenInput{Token: created.Body.Token})
	require.NoError(t, err)
	assert.True(t, check.Body.Valid)

	reg := &RegistrationRequest{Token: created.Body.Token}
	reg.Body.Email = "sahara@example.com"
	reg.Body.Password = "long-enough"
	reg.Body.AgencyName = "Sahara Tours"
	resp, err := env.registration.HandleRegister(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, auth.CookieName, resp.SetCookie.Name)
	assert.Equal(t, auth.RoleAgency, resp.Body.Role)

	t.Run("ReusedInvite", func(t *testing.T) {
		reg.Body.Email = "other@example.com"
		_, err := env.registration.HandleRegister(context.Background(), reg)
		assert.Equal(t, http.StatusNotFound, statusOf(err))

		_, err = env.registration.HandleCheckInvite(context.Background(), &InviteTokenInput{Token: created.Body.Token})
		assert.Equal(t, http.StatusNotFound, statusOf(err))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		other, err := env.admin.HandleCreateInvite(ctx, &CreateInviteInput{})
		require.NoError(t, err)

		dup := &RegistrationRequest{Token: other.Body.Token}
		dup.Body.Email = env.agency.Email
		dup.Body.Password = "long-enough"
		dup.Body.AgencyName = "Copycat"
		_, err = env.registration.HandleRegister(context.Background(), dup)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(err))
	})

	invites, err := env.admin.HandleListInvites(ctx, nil)
	require.NoError(t, err)
	require.Len(t, invites.Body, 2)
	used := 0
	for _, inv := range invites.Body {
		if inv.Used {
			used++
		}
	}
	assert.Equal(t, 1, used)

	agencies, err := env.admin.HandleListAgencies(ctx, nil)
	require.NoError(t, err)
	require.Len(t, agencies.Body, 2)
	assert.Equal(t, "Atlas Voyages", agencies.Body[0].AgencyName)
	assert.Equal(t, "Sahara Tours", agencies.Body[1].AgencyName)
}

func TestAdminListAgencies_CountsSubmissions(t *testing.T) {
	env := newTestEnv(t)
	archiveExport(t, env, "Jean")
	archiveExport(t, env, "Paul")

	resp, err := env.admin.HandleListAgencies(env.staffCtx(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Body, 1)
	assert.EqualValues(t, 2, resp.Body[0].Submissions)
}
