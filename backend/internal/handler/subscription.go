package handler

import (
	"net/http"

	"github.com/newsletter-dev/newsletter/shared/api"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/utils"
)

const maxFormSize = 64 << 10

// Subscribe handles POST /subscriptions with a urlencoded name and email.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{Message: "Body is not a valid form", StatusCode: http.StatusBadRequest})
		return
	}

	err := h.subscription.Subscribe(r.Context(), r.PostForm.Get(api.FormName), r.PostForm.Get(api.FormEmail))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Confirm handles GET /subscriptions/confirm?subscription_token=...
// A missing parameter is a bad request; an empty one is an unknown token.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has(api.QuerySubscriptionToken) {
		utils.WriteErrorAndStatusCode(w, errors.Validation(api.QuerySubscriptionToken+" is required"))
		return
	}
	token := query.Get(api.QuerySubscriptionToken)

	if err := h.subscription.Confirm(r.Context(), token); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
