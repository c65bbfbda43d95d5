package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mangohub/mangostore-backend/api/responses"
	"github.com/mangohub/mangostore-backend/api/validators"
	paymentsvc "github.com/mangohub/mangostore-backend/internal/payments"
	"github.com/mangohub/mangostore-backend/pkg/logger"
)

// ListPaymentMethods lists the payment options the storefront can offer.
func ListPaymentMethods(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ListMethods())
	}
}

// ConfirmCODPayment settles a cash-on-delivery order once the courier
// collects.
func ConfirmCODPayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmCOD(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
