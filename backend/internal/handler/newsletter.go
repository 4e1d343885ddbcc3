package handler

import (
	"net/http"

	"github.com/newsletter-dev/newsletter/shared/api"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/utils"
)

const publishRealm = `Basic realm="publish"`

// PublishNewsletter handles POST /newsletters. The body is validated before
// the credentials are checked.
func (h *Handler) PublishNewsletter(w http.ResponseWriter, r *http.Request) {
	var body api.PublishNewsletterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err := h.newsletter.Publish(r.Context(), body.Issue(), r.Header.Get("Authorization"))
	if err != nil {
		if errors.IsAuth(err) {
			w.Header().Set("WWW-Authenticate", publishRealm)
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
