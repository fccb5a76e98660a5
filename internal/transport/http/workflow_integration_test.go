package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/app"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/clock"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/storage/postgres"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHoldingWorkflow drives the whole lifecycle through the HTTP surface
// against a real database: intake, hold setup, the payment page lookup, and
// the processor webhook, including duplicate deliveries.
func TestHoldingWorkflow(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	log := zerolog.Nop()
	clk := clock.NewSystem()
	appRepo := postgres.NewApplicationRepository(pool)
	holdingRepo := postgres.NewHoldingRepository(pool)
	directory := postgres.NewDirectoryRepository(pool)
	intakeRepo := postgres.NewIntakeRepository(pool)

	stateMachine := app.NewApplicationStateMachine(appRepo, clk, log)
	holdings := app.NewHoldingRequestManager(holdingRepo, clk, log)
	setup := app.NewHoldSetupService(directory, directory, holdings, stateMachine, domain.DefaultCapTable(), log)
	reconciler := app.NewPaymentEventReconciler(holdings, stateMachine, log)
	intake := app.NewIntakeService(intakeRepo, clk)

	router := NewRouter(RouterDeps{
		Setup:    setup,
		Holdings: holdings,
		Payments: reconciler,
		Intake:   intake,
		Logger:   log,
	})

	do := func(method, path, actor, body string) (*httptest.ResponseRecorder, map[string]any) {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if actor != "" {
			req.Header.Set(actorHeader, actor)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var decoded map[string]any
		if rec.Body.Len() > 0 {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
		}
		return rec, decoded
	}

	// Intake: firm, agent, form, submitted application.
	rec, firm := do(http.MethodPost, "/firms", "", `{"name":"Beacon Realty"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	firmID := firm["id"].(string)

	rec, _ = do(http.MethodPost, "/firms/"+firmID+"/members", "", `{"user_id":"8b7f5f3e-8a3e-4a8e-9d5a-111111111111","role":"agent"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	const agent = "8b7f5f3e-8a3e-4a8e-9d5a-111111111111"

	rec, form := do(http.MethodPost, "/firms/"+firmID+"/forms", "", `{"name":"Standard Application"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	formID := form["id"].(string)

	rec, application := do(http.MethodPost, "/applications", "",
		fmt.Sprintf(`{"form_id":%q,"household_id":"8b7f5f3e-8a3e-4a8e-9d5a-222222222222"}`, formID))
	require.Equal(t, http.StatusCreated, rec.Code)
	appID := application["id"].(string)
	assert.Equal(t, "submitted", application["status"])

	// Configure a holding deposit: three months at rent, half the first
	// month due up front.
	const setupBody = `{"monthly_rent":2000,"amounts":{"first":2000,"last":2000,"security":2000,"key":0},"minimum_due":1000}`
	rec, setupResp := do(http.MethodPost, "/applications/"+appID+"/holding-setup", agent, setupBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved_pending_payment", setupResp["status"])
	assert.Equal(t, float64(6000), setupResp["total"])
	token := setupResp["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "/hold/"+token, setupResp["pay_url"])

	// Reconfiguring keeps the issued link valid.
	rec, setupResp = do(http.MethodPost, "/applications/"+appID+"/holding-setup", agent,
		`{"monthly_rent":2000,"amounts":{"first":2000,"last":0,"security":2000,"key":0},"minimum_due":4000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, token, setupResp["token"])
	assert.Equal(t, float64(4000), setupResp["total"])

	// The payment page sees the hold without internal identifiers.
	rec, holdResp := do(http.MethodGet, "/hold/"+token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", holdResp["status"])
	assert.NotContains(t, rec.Body.String(), appID)

	// Processor confirms payment, twice.
	eventBody := fmt.Sprintf(`{"kind":"payment_succeeded","holding_id":%q,"amount_confirmed":4000}`, token)
	rec, _ = do(http.MethodPost, "/payments/events", "", eventBody)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(http.MethodPost, "/payments/events", "", eventBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, holdResp = do(http.MethodGet, "/hold/"+token, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", holdResp["status"])

	got, err := appRepo.Get(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApprovedPendingLease, got.Status)

	// One paid advance on the timeline despite the duplicate delivery:
	// submitted, status change via setup (twice), status change via payment.
	timeline, err := appRepo.Timeline(ctx, appID)
	require.NoError(t, err)
	require.Len(t, timeline, 4)
	assert.Equal(t, domain.TimelineEventSubmitted, timeline[0].Event)
	assert.Equal(t, domain.TimelineEventStatusChange, timeline[3].Event)
	assert.Equal(t, "payment-processor", timeline[3].By)

	// A paid hold can no longer be reconfigured.
	rec, _ = do(http.MethodPost, "/applications/"+appID+"/holding-setup", agent, setupBody)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), codeHoldingAlreadyPaid)
}
