package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/catalog"
	"staging-pro-backend/internal/checkout"
	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/services"
	"staging-pro-backend/internal/store"
)

var (
	admin  = models.User{ID: "admin-1", Email: "boss@studio.com", Role: models.RoleAdmin}
	editor = models.User{ID: "editor-user", Email: "ed@studio.com", Role: models.RoleEditor, EditorRecordID: "ed_1"}
	other  = models.User{ID: "editor-user-2", Email: "ed2@studio.com", Role: models.RoleEditor, EditorRecordID: "ed_2"}
	client = models.User{ID: "owner-1", Email: "client@example.com", Role: models.RoleUser}
)

type fakeProvider struct {
	created  []checkout.Request
	sessions map[string]checkout.Session
	err      error
}

func (f *fakeProvider) CreateSession(_ context.Context, req checkout.Request) (checkout.Session, error) {
	if f.err != nil {
		return checkout.Session{}, f.err
	}
	f.created = append(f.created, req)
	return checkout.Session{ID: "cs_" + req.OrderID, RedirectURL: "https://pay.test/" + req.OrderID, OrderID: req.OrderID}, nil
}

func (f *fakeProvider) GetSession(_ context.Context, id string) (checkout.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return checkout.Session{}, errors.New("no such session")
	}
	return s, nil
}

type fixture struct {
	svc      *services.StudioService
	engine   *lifecycle.Engine
	subs     *store.SubmissionRepository
	blobs    *store.MemoryBlobStore
	provider *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	editors := store.NewEditorRepository(mem)
	require.NoError(t, editors.Create(context.Background(), models.Editor{ID: "ed_1", Name: "Aya", Email: "ed@studio.com"}))
	require.NoError(t, editors.Create(context.Background(), models.Editor{ID: "ed_2", Name: "Ben", Email: "ed2@studio.com"}))

	defaults, err := catalog.Defaults()
	require.NoError(t, err)
	plans := catalog.New(nil, defaults)

	subs := store.NewSubmissionRepository(mem)
	engine := lifecycle.NewEngine(subs, editors, plans, nil, lifecycle.Policy{})
	blobs := store.NewMemoryBlobStore("https://cdn.test")
	provider := &fakeProvider{sessions: map[string]checkout.Session{}}

	return &fixture{
		svc:      services.NewStudioService(engine, subs, plans, blobs, checkout.NewService(provider)),
		engine:   engine,
		subs:     subs,
		blobs:    blobs,
		provider: provider,
	}
}

func image(name string) services.Upload {
	return services.Upload{FileName: name, ContentType: "image/jpeg", Content: []byte("jpeg:" + name)}
}

func TestIntake_FixedPricePlanOpensCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.Intake(ctx, client, services.IntakeRequest{
		ID:     "ORDER1",
		Plan:   models.PlanFurnitureRemove,
		Source: image("living.jpg"),
		References: []services.ReferenceUpload{
			{Upload: image("sofa.jpg"), Description: "this sofa"},
		},
		Instructions: "  keep the rug  ",
	})
	require.NoError(t, err)

	sub := result.Submission
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Equal(t, models.PaymentUnpaid, sub.PaymentStatus)
	assert.Equal(t, "https://cdn.test/owner-1/ORDER1_source.jpg", sub.DataURL)
	require.Len(t, sub.ReferenceImages, 1)
	assert.Equal(t, "https://cdn.test/owner-1/ORDER1_ref_0.jpg", sub.ReferenceImages[0].URL)
	assert.Equal(t, "this sofa", sub.ReferenceImages[0].Description)

	_, ok := f.blobs.Get("owner-1/ORDER1_source.jpg")
	assert.True(t, ok)

	require.NotNil(t, result.Checkout)
	assert.Equal(t, "https://pay.test/ORDER1", result.Checkout.RedirectURL)
	require.Len(t, f.provider.created, 1)
	assert.Equal(t, int64(3500), f.provider.created[0].AmountMinorUnits)
	assert.Equal(t, "client@example.com", f.provider.created[0].PayerEmail)

	stored, err := f.subs.Get(ctx, "ORDER1")
	require.NoError(t, err)
	assert.Equal(t, "cs_ORDER1", stored.StripeSessionID)
}

func TestIntake_CheckoutFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("provider offline")

	result, err := f.svc.Intake(context.Background(), client, services.IntakeRequest{
		ID:     "ORDER2",
		Plan:   models.PlanFurnitureBoth,
		Source: image("room.jpg"),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Checkout)
	assert.Contains(t, result.CheckoutError, "provider offline")

	_, err = f.subs.Get(context.Background(), "ORDER2")
	assert.NoError(t, err)
}

func TestIntake_QuotePlanSkipsCheckout(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Intake(context.Background(), client, services.IntakeRequest{
		ID:     "QUOTE1",
		Plan:   models.PlanFloorPlanCG,
		Source: image("plan.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoteRequest, result.Submission.Status)
	assert.Equal(t, models.PaymentQuotePending, result.Submission.PaymentStatus)
	assert.Nil(t, result.Checkout)
	assert.Empty(t, f.provider.created)
}

func TestIntake_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Intake(ctx, editor, services.IntakeRequest{Plan: models.PlanFurnitureAdd, Source: image("a.jpg")})
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	_, err = f.svc.Intake(ctx, client, services.IntakeRequest{Plan: "SKY_SWAP", Source: image("a.jpg")})
	assert.ErrorIs(t, err, lifecycle.ErrValidation)

	_, err = f.svc.Intake(ctx, client, services.IntakeRequest{Plan: models.PlanFurnitureAdd})
	assert.ErrorIs(t, err, lifecycle.ErrValidation)
}

func TestQuoteFlow_CheckoutThenWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Intake(ctx, client, services.IntakeRequest{ID: "QUOTE2", Plan: models.PlanFloorPlanCG, Source: image("plan.jpg")})
	require.NoError(t, err)

	_, err = f.svc.StartCheckout(ctx, client, "QUOTE2")
	assert.ErrorIs(t, err, lifecycle.ErrQuoteNotSet)
	assert.Empty(t, f.provider.created)

	_, err = f.engine.SetQuote(ctx, admin, "QUOTE2", 5000)
	require.NoError(t, err)

	session, err := f.svc.StartCheckout(ctx, client, "QUOTE2")
	require.NoError(t, err)
	assert.Equal(t, "cs_QUOTE2", session.ID)
	require.Len(t, f.provider.created, 1)
	assert.Equal(t, int64(5000), f.provider.created[0].AmountMinorUnits)

	require.NoError(t, f.svc.CompleteCheckout(ctx, checkout.Session{ID: "cs_QUOTE2", OrderID: "QUOTE2", Paid: true}))

	sub, err := f.subs.Get(ctx, "QUOTE2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Equal(t, models.PaymentPaid, sub.PaymentStatus)
}

func TestStartCheckout_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.subs.Create(ctx, models.Submission{
		ID: "PAID1", OwnerID: client.ID, Plan: models.PlanFurnitureAdd,
		Status: models.StatusPending, PaymentStatus: models.PaymentPaid,
	}))

	stranger := models.User{ID: "owner-2", Email: "x@example.com", Role: models.RoleUser}
	_, err := f.svc.StartCheckout(ctx, stranger, "PAID1")
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	_, err = f.svc.StartCheckout(ctx, client, "PAID1")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	_, err = f.svc.StartCheckout(ctx, client, "MISSING")
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestConfirmPayment_VerifiesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Intake(ctx, client, services.IntakeRequest{ID: "ORDER3", Plan: models.PlanFurnitureAdd, Source: image("a.jpg")})
	require.NoError(t, err)

	f.provider.sessions["cs_ORDER3"] = checkout.Session{ID: "cs_ORDER3", OrderID: "ORDER3", Paid: false}
	_, err = f.svc.ConfirmPayment(ctx, client, "ORDER3", "cs_ORDER3")
	assert.ErrorIs(t, err, lifecycle.ErrValidation)

	_, err = f.svc.ConfirmPayment(ctx, client, "ORDER3", "")
	assert.ErrorIs(t, err, lifecycle.ErrValidation)

	f.provider.sessions["cs_ORDER3"] = checkout.Session{ID: "cs_ORDER3", OrderID: "ORDER3", Paid: true}
	sub, err := f.svc.ConfirmPayment(ctx, client, "ORDER3", "cs_ORDER3")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, sub.PaymentStatus)
	assert.Equal(t, models.StatusPending, sub.Status)
}

func TestConfirmPayment_WithoutProvider(t *testing.T) {
	mem := store.NewMemoryStore()
	defaults, err := catalog.Defaults()
	require.NoError(t, err)
	plans := catalog.New(nil, defaults)
	subs := store.NewSubmissionRepository(mem)
	engine := lifecycle.NewEngine(subs, store.NewEditorRepository(mem), plans, nil, lifecycle.Policy{})
	svc := services.NewStudioService(engine, subs, plans, store.NewMemoryBlobStore("https://cdn.test"), checkout.NewService(nil))

	ctx := context.Background()
	result, err := svc.Intake(ctx, client, services.IntakeRequest{ID: "ORDER4", Plan: models.PlanFurnitureAdd, Source: image("a.jpg")})
	require.NoError(t, err)
	assert.Nil(t, result.Checkout)

	_, err = svc.ConfirmPayment(ctx, client, "ORDER4", "")
	assert.ErrorIs(t, err, checkout.ErrUnavailable)
	_, err = svc.ConfirmPayment(ctx, client, "ORDER4", "cs_made_up")
	assert.ErrorIs(t, err, checkout.ErrUnavailable)

	stored, err := subs.Get(ctx, "ORDER4")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)

	svc.SetTrustUnverifiedPayments(true)
	sub, err := svc.ConfirmPayment(ctx, client, "ORDER4", "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, sub.PaymentStatus)
}

func TestCompleteCheckout_IgnoresUnpaid(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.CompleteCheckout(context.Background(), checkout.Session{ID: "cs_1", OrderID: "NOPE"}))
}

func TestDeliver_UploadsThenTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.subs.Create(ctx, models.Submission{
		ID: "WORK1", OwnerID: client.ID, OwnerEmail: client.Email, Plan: models.PlanFurnitureAdd,
		DataURL: "https://cdn.test/src.jpg", Status: models.StatusProcessing,
		PaymentStatus: models.PaymentPaid, AssignedEditorID: "ed_1",
	}))

	sub, err := f.svc.Deliver(ctx, editor, "WORK1", lifecycle.SlotSingle, image("final.jpg"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewing, sub.Status)
	assert.True(t, strings.HasPrefix(sub.ResultURL, "https://cdn.test/results/WORK1_result_"), sub.ResultURL)

	data, ok := f.blobs.Get(strings.TrimPrefix(sub.ResultURL, "https://cdn.test/"))
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg:final.jpg"), data)
}

func TestDeliver_RejectsBeforeUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Deliver(ctx, client, "WORK2", lifecycle.SlotSingle, image("x.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	_, err = f.svc.Deliver(ctx, editor, "WORK2", lifecycle.Slot("both"), image("x.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrValidation)

	_, err = f.svc.Deliver(ctx, editor, "WORK2", lifecycle.SlotSingle, image("x.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)

	assert.Empty(t, f.blobs.Paths("results/"))
}

func TestDeliver_RefusedDeliveryStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.subs.Create(ctx, models.Submission{
		ID: "WORK3", OwnerID: client.ID, OwnerEmail: client.Email, Plan: models.PlanFurnitureAdd,
		DataURL: "https://cdn.test/src.jpg", Status: models.StatusProcessing,
		PaymentStatus: models.PaymentPaid, AssignedEditorID: "ed_1",
	}))

	delivered, err := f.svc.Deliver(ctx, editor, "WORK3", lifecycle.SlotSingle, image("good.jpg"))
	require.NoError(t, err)
	_, err = f.engine.Approve(ctx, admin, "WORK3")
	require.NoError(t, err)
	kept := f.blobs.Paths("results/")
	require.Len(t, kept, 1)

	_, err = f.svc.Deliver(ctx, other, "WORK3", lifecycle.SlotSingle, image("evil.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	_, err = f.svc.Deliver(ctx, editor, "WORK3", lifecycle.SlotSingle, image("late.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	_, err = f.svc.Deliver(ctx, editor, "WORK3", lifecycle.SlotRemove, image("wrong-slot.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	assert.Equal(t, kept, f.blobs.Paths("results/"))
	data, ok := f.blobs.Get(strings.TrimPrefix(delivered.ResultURL, "https://cdn.test/"))
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg:good.jpg"), data)

	stored, err := f.subs.Get(ctx, "WORK3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, delivered.ResultURL, stored.ResultURL)
}

func TestDeliver_UnassignedEditorStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.subs.Create(ctx, models.Submission{
		ID: "WORK4", OwnerID: client.ID, OwnerEmail: client.Email, Plan: models.PlanFurnitureAdd,
		DataURL: "https://cdn.test/src.jpg", Status: models.StatusProcessing,
		PaymentStatus: models.PaymentPaid, AssignedEditorID: "ed_1",
	}))

	_, err := f.svc.Deliver(ctx, other, "WORK4", lifecycle.SlotSingle, image("evil.jpg"))
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)
	assert.Empty(t, f.blobs.Paths("results/"))

	stored, err := f.subs.Get(ctx, "WORK4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, stored.Status)
	assert.Empty(t, stored.ResultURL)
}
