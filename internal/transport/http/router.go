package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RouterDeps collects the services the router exposes.
type RouterDeps struct {
	Setup       HoldSetup
	Holdings    HoldingReader
	Payments    PaymentEventConsumer
	Intake      Intake
	CORSOrigins []string
	Logger      zerolog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(deps.Logger))
	r.Use(CORS(deps.CORSOrigins))

	r.Get("/health", HealthHandler)

	r.Post("/firms", HandleCreateFirm(deps.Intake))
	r.Post("/firms/{firmID}/members", HandleAddFirmMember(deps.Intake))
	r.Post("/firms/{firmID}/forms", HandleCreateForm(deps.Intake))
	r.Post("/applications", HandleSubmitApplication(deps.Intake))

	r.Post("/applications/{applicationID}/holding-setup", HandleHoldingSetup(deps.Setup))
	r.Get("/hold/{token}", HandleGetHolding(deps.Holdings))
	r.Post("/payments/events", HandlePaymentEvent(deps.Payments))

	r.NotFound(NotFoundHandler)
	return r
}
