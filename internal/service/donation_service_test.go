package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"donation-api/internal/dbtest"
	"donation-api/internal/logger"
	"donation-api/internal/model"
	"donation-api/internal/repository"
	"donation-api/internal/websocket"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) donationService() DonationService {
	return NewDonationService(e.donations, e.campaigns, e.audit, e.tx, e.events, e.log)
}

func donate(campaignID uuid.UUID, amount string) CreateDonationRequest {
	return CreateDonationRequest{CampaignID: campaignID.String(), Amount: json.Number(amount), PaymentMethod: model.PaymentMethodQRIS}
}

func TestCreateDonationIncrementsCampaign(t *testing.T) {
	e := newEnv(t)
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	donor := dbtest.User(t, e.db, model.UserRoleUser, false)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "1250000")

	resp, err := e.donationService().Create(context.Background(), donor, donate(c.ID, "100000"))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, resp.PaymentStatus)
	assert.Equal(t, c.Title, resp.CampaignTitle)
	assert.Equal(t, donor.Name, resp.DonorName)

	got, err := e.campaigns.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.RequireFromString("1350000")), got.CurrentAmount.String())
	assert.Equal(t, []string{websocket.EventDonationCreated}, e.events.names())
}

func TestCreateDonationRejectsInactiveCampaign(t *testing.T) {
	e := newEnv(t)
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	donor := dbtest.User(t, e.db, model.UserRoleUser, false)

	for _, status := range []string{model.CampaignStatusPending, model.CampaignStatusRejected, model.CampaignStatusCompleted} {
		t.Run(status, func(t *testing.T) {
			c := dbtest.Campaign(t, e.db, owner, status, "0")
			_, err := e.donationService().Create(context.Background(), donor, donate(c.ID, "5000"))
			appErr := requireStatus(t, err, http.StatusNotFound)
			assert.Equal(t, "Campaign not found or not active", appErr.Message)
		})
	}

	_, err := e.donationService().Create(context.Background(), donor, donate(uuid.New(), "5000"))
	requireStatus(t, err, http.StatusNotFound)

	var n int64
	require.NoError(t, e.db.Model(&model.Donation{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateDonationRejectsInvalidAmount(t *testing.T) {
	e := newEnv(t)
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "1000")

	for _, amount := range []string{"0", "-10", "abc", "0.004", "12.345"} {
		t.Run(amount, func(t *testing.T) {
			_, err := e.donationService().Create(context.Background(), owner, donate(c.ID, amount))
			requireStatus(t, err, http.StatusBadRequest)
		})
	}

	var n int64
	require.NoError(t, e.db.Model(&model.Donation{}).Count(&n).Error)
	assert.Zero(t, n)

	got, err := e.campaigns.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.NewFromInt(1000)), got.CurrentAmount.String())
}

func TestCreateDonationRollsBackWhenIncrementFails(t *testing.T) {
	e := newEnv(t)
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	donor := dbtest.User(t, e.db, model.UserRoleUser, false)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "1000")

	svc := NewDonationService(e.donations, failingAmount{e.campaigns}, e.audit, e.tx, e.events, e.log)
	_, err := svc.Create(context.Background(), donor, donate(c.ID, "500"))
	requireStatus(t, err, http.StatusInternalServerError)

	var n int64
	require.NoError(t, e.db.Model(&model.Donation{}).Count(&n).Error)
	assert.Zero(t, n, "donation row must not survive a failed increment")

	got, err := e.campaigns.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.NewFromInt(1000)))
	assert.Empty(t, e.events.names())
}

func TestConcurrentDonationsSumExactly(t *testing.T) {
	e := newEnv(t)
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	donor := dbtest.User(t, e.db, model.UserRoleUser, false)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "0")
	svc := e.donationService()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), donor, donate(c.ID, "12500.50"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := e.campaigns.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.RequireFromString("250010")), got.CurrentAmount.String())
}

// Runs the same race against a real Postgres, where the row lock is what keeps the sum exact.
func TestConcurrentDonationsPostgres(t *testing.T) {
	db := openPostgres(t)

	owner := dbtest.User(t, db, model.UserRoleCommunityMember, true)
	c := dbtest.Campaign(t, db, owner, model.CampaignStatusActive, "0")
	t.Cleanup(func() {
		db.Where("campaign_id = ?", c.ID).Delete(&model.Donation{})
		db.Delete(c)
		db.Unscoped().Delete(owner)
	})

	svc := NewDonationService(repository.NewDonationRepository(db), repository.NewCampaignRepository(db),
		repository.NewAuditRepository(db), repository.NewTransactionManager(db), websocket.NopPublisher{}, logger.Nop())

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), owner, donate(c.ID, "1000"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repository.NewCampaignRepository(db).GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.NewFromInt(n*1000)), got.CurrentAmount.String())
}

func TestDonationOwnershipAndPaymentUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	donor := dbtest.User(t, e.db, model.UserRoleUser, false)
	stranger := dbtest.User(t, e.db, model.UserRoleUser, false)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "0")
	svc := e.donationService()

	created, err := svc.Create(ctx, donor, donate(c.ID, "75000"))
	require.NoError(t, err)

	_, err = svc.GetForUser(ctx, created.ID, stranger.ID)
	requireStatus(t, err, http.StatusNotFound)

	list, total, err := svc.ListByUser(ctx, donor.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, c.Title, list[0].CampaignTitle)

	_, err = svc.UpdatePayment(ctx, created.ID, stranger.ID, UpdatePaymentRequest{PaymentStatus: model.PaymentStatusFailed})
	appErr := requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "Donation not found or access denied", appErr.Message)

	txID := " TX-99 "
	updated, err := svc.UpdatePayment(ctx, created.ID, donor.ID, UpdatePaymentRequest{PaymentStatus: model.PaymentStatusFailed, TransactionID: &txID})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, updated.PaymentStatus)
	require.NotNil(t, updated.TransactionID)
	assert.Equal(t, "TX-99", *updated.TransactionID)
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionUpdateDonationPayment))

	// Moving away from success does not give the money back to the campaign total.
	got, err := e.campaigns.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.NewFromInt(75000)))
}
