package service

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"donation-api/internal/dbtest"
	"donation-api/internal/model"
	"donation-api/internal/websocket"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) campaignService() CampaignService {
	return NewCampaignService(e.campaigns, e.donations, e.audit, e.tx, e.storage, e.events, e.log)
}

var campaignImage = &multipart.FileHeader{Filename: "cat.png"}

func createRequest() CreateCampaignRequest {
	return CreateCampaignRequest{
		Title:        "Surgery for Oyen",
		Description:  "Oyen was hit by a motorbike and needs a leg surgery.",
		Location:     "Yogyakarta",
		Category:     "medical",
		TargetAmount: "3500000",
		Deadline:     time.Now().Add(10 * 24 * time.Hour).Format(time.RFC3339),
		BankAccount:  "BCA 1234567890",
	}
}

func TestCreateCampaign(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	member := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	svc := e.campaignService()

	resp, err := svc.Create(ctx, member, createRequest(), campaignImage)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusPending, resp.Status)
	assert.True(t, resp.CurrentAmount.IsZero())
	assert.True(t, resp.TargetAmount.Equal(decimal.NewFromInt(3500000)))
	assert.Equal(t, "campaigns/cat.png", resp.ImageURL)
	assert.Equal(t, member.Name, resp.OwnerName)
	assert.Equal(t, 10, resp.DaysRemaining)
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionCreateCampaign))
	assert.Equal(t, []string{websocket.EventCampaignSubmitted}, e.events.names())

	t.Run("plain users are refused", func(t *testing.T) {
		plain := dbtest.User(t, e.db, model.UserRoleUser, true)
		_, err := svc.Create(ctx, plain, createRequest(), campaignImage)
		requireStatus(t, err, http.StatusForbidden)
	})

	t.Run("image is required", func(t *testing.T) {
		_, err := svc.Create(ctx, member, createRequest(), nil)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("sub-cent target", func(t *testing.T) {
		r := createRequest()
		r.TargetAmount = "0.004"
		_, err := svc.Create(ctx, member, r, campaignImage)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("deadline in the past", func(t *testing.T) {
		r := createRequest()
		r.Deadline = "2001-01-01"
		_, err := svc.Create(ctx, member, r, campaignImage)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("upload removed when insert fails", func(t *testing.T) {
		failing := NewCampaignService(e.campaigns, e.donations, failingAudit{e.audit}, e.tx, e.storage, e.events, e.log)
		before := len(e.storage.deleted)
		_, err := failing.Create(ctx, member, createRequest(), campaignImage)
		requireStatus(t, err, http.StatusInternalServerError)
		assert.Len(t, e.storage.deleted, before+1)
	})
}

func TestCampaignVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	stranger := dbtest.User(t, e.db, model.UserRoleUser, false)
	active := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "0")
	rejected := dbtest.Campaign(t, e.db, owner, model.CampaignStatusRejected, "0")
	svc := e.campaignService()

	list, total, err := svc.List(ctx, CampaignListFilter{}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	_, err = svc.GetByID(ctx, rejected.ID, Viewer{})
	requireStatus(t, err, http.StatusNotFound)
	_, err = svc.GetByID(ctx, rejected.ID, Viewer{UserID: &stranger.ID})
	requireStatus(t, err, http.StatusNotFound)

	got, err := svc.GetByID(ctx, rejected.ID, Viewer{UserID: &owner.ID})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusRejected, got.Status)
	_, err = svc.GetByID(ctx, rejected.ID, Viewer{Admin: true})
	require.NoError(t, err)

	mine, total, err := svc.ListByOwner(ctx, owner.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	all, total, err := svc.AdminList(ctx, "", pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestUpdateCampaign(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	other := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "0")
	svc := e.campaignService()

	title := "  Vaccines for the shelter  "
	target := json.Number("7500000")
	updated, err := svc.Update(ctx, c.ID, owner.ID, UpdateCampaignRequest{Title: &title, TargetAmount: &target})
	require.NoError(t, err)
	assert.Equal(t, "Vaccines for the shelter", updated.Title)
	assert.True(t, updated.TargetAmount.Equal(decimal.NewFromInt(7500000)))
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionUpdateCampaign))

	hijack := "Not your campaign"
	bigger := json.Number("99000000")
	_, err = svc.Update(ctx, c.ID, other.ID, UpdateCampaignRequest{Title: &hijack, TargetAmount: &bigger})
	appErr := requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "Campaign not found or access denied", appErr.Message)

	stored, err := e.campaigns.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vaccines for the shelter", stored.Title)
	assert.True(t, stored.TargetAmount.Equal(decimal.NewFromInt(7500000)), stored.TargetAmount.String())
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionUpdateCampaign))

	_, err = svc.Update(ctx, c.ID, owner.ID, UpdateCampaignRequest{})
	requireStatus(t, err, http.StatusBadRequest)

	for _, raw := range []string{"0", "0.004"} {
		bad := json.Number(raw)
		_, err = svc.Update(ctx, c.ID, owner.ID, UpdateCampaignRequest{TargetAmount: &bad})
		requireStatus(t, err, http.StatusBadRequest)
	}
}

func TestReviewCampaign(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	admin := dbtest.Admin(t, e.db, "reviewer", model.AdminRoleAdmin, "x", true)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusPending, "0")
	svc := e.campaignService()

	_, err := svc.Review(ctx, c.ID, admin.ID, ReviewCampaignRequest{Status: model.CampaignStatusActive})
	requireStatus(t, err, http.StatusBadRequest)

	reviewed, err := svc.Review(ctx, c.ID, admin.ID, ReviewCampaignRequest{Status: model.CampaignStatusActive, AdminNotes: "Documents check out"})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusActive, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)
	require.NotNil(t, reviewed.AdminNotes)
	assert.Equal(t, "Documents check out", *reviewed.AdminNotes)
	assert.Equal(t, []string{websocket.EventCampaignReviewed}, e.events.names())

	_, err = svc.Review(ctx, c.ID, admin.ID, ReviewCampaignRequest{Status: model.CampaignStatusRejected, AdminNotes: "Changed my mind"})
	requireStatus(t, err, http.StatusConflict)

	_, err = svc.Review(ctx, uuid.New(), admin.ID, ReviewCampaignRequest{Status: model.CampaignStatusRejected, AdminNotes: "n/a"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestCampaignDonationCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "0")

	_, err := e.donationService().Create(ctx, owner, donate(c.ID, "10000"))
	require.NoError(t, err)
	_, err = e.donationService().Create(ctx, owner, donate(c.ID, "20000"))
	require.NoError(t, err)

	featured, err := e.campaignService().Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, int64(2), featured[0].TotalDonations)
	assert.Equal(t, int64(2), featured[0].SuccessfulDonations)
	assert.True(t, featured[0].CurrentAmount.Equal(decimal.NewFromInt(30000)))
}
