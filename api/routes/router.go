package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/rxcart-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/rxcart-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/rxcart-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/rxcart-backend/api/controllers/webhooks"
	"github.com/angelmondragon/rxcart-backend/api/middleware"
	"github.com/angelmondragon/rxcart-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/rxcart-backend/internal/checkout"
	"github.com/angelmondragon/rxcart-backend/internal/medicines"
	"github.com/angelmondragon/rxcart-backend/internal/notifications"
	"github.com/angelmondragon/rxcart-backend/internal/orders"
	"github.com/angelmondragon/rxcart-backend/internal/prescriptions"
	"github.com/angelmondragon/rxcart-backend/pkg/config"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/rxcart-backend/pkg/redis"
)

// Services bundles what the HTTP surface calls into. RazorpayCallback may be
// nil when online payments are not configured.
type Services struct {
	Medicines        medicines.Service
	Prescriptions    prescriptions.Service
	Cart             cart.Service
	Checkout         checkoutsvc.Service
	Orders           orders.Service
	Notifications    notifications.Service
	Reminders        controllers.ReminderLister
	RazorpayCallback webhookcontrollers.RazorpayCallbackService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(append([]string{cfg.App.PublicBaseURL}, cfg.App.CORSOrigins...)...),
	)

	idem := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	r.Handle("/metrics", promhttp.Handler())

	// gateway callbacks carry a signature instead of a bearer token
	r.Post("/api/v1/payments/razorpay/callback", webhookcontrollers.RazorpayCallback(svc.RazorpayCallback, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", controllers.ListMedicines(svc.Medicines, logg))
			r.Get("/{medicineId}", controllers.GetMedicine(svc.Medicines, logg))
		})

		r.Route("/prescriptions", func(r chi.Router) {
			r.With(middleware.RequireRoles(logg, enums.UserRoleCustomer), idem).
				Post("/", controllers.UploadPrescription(svc.Prescriptions, cfg.Uploads.MaxBytes, logg))
			r.Get("/", controllers.ListPrescriptions(svc.Prescriptions, logg))
			r.Get("/{prescriptionId}", controllers.GetPrescription(svc.Prescriptions, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(svc.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(svc.Cart, logg))
			r.With(idem).Post("/items", cartcontrollers.CartAddItem(svc.Cart, logg))
			r.Patch("/items/{medicineId}", cartcontrollers.CartUpdateItem(svc.Cart, logg))
			r.Delete("/items/{medicineId}", cartcontrollers.CartRemoveItem(svc.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.With(idem).Post("/", controllers.Checkout(svc.Checkout, logg))
			r.With(idem).Post("/payment-intent", controllers.CheckoutPaymentIntent(svc.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(svc.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(svc.Orders, logg))
		})

		r.Get("/notifications", controllers.ListNotifications(svc.Notifications, logg))
		r.Get("/reminders", controllers.ListReminders(svc.Reminders, logg))

		r.Route("/pharmacy", func(r chi.Router) {
			r.Use(middleware.RequirePharmacyMember(logg))

			r.Put("/medicines/{medicineId}/stock", controllers.UpdateMedicineStock(svc.Medicines, logg))

			r.Route("/prescriptions/{prescriptionId}", func(r chi.Router) {
				r.With(idem).Post("/verification-code", controllers.IssuePrescriptionCode(svc.Prescriptions, logg))
				r.Post("/verify", controllers.VerifyPrescription(svc.Prescriptions, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.PharmacyList(svc.Orders, logg))
				r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(svc.Orders, logg))
				r.With(idem).Post("/{orderId}/verify", ordercontrollers.VerifyPickup(svc.Orders, logg))
				r.Patch("/{orderId}/items/{itemId}", ordercontrollers.UpdateItemQuantity(svc.Orders, logg))
				r.Delete("/{orderId}/items/{itemId}", ordercontrollers.RemoveItem(svc.Orders, logg))
			})

			r.Patch("/advance-orders/{advanceOrderId}/status", ordercontrollers.UpdateAdvanceStatus(svc.Orders, logg))
		})
	})

	return r
}
