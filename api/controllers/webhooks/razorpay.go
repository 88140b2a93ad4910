package webhooks

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/angelmondragon/rxcart-backend/api/responses"
	"github.com/angelmondragon/rxcart-backend/api/validators"
	razorpaywebhook "github.com/angelmondragon/rxcart-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

type RazorpayCallbackService interface {
	HandleCallback(ctx context.Context, cb razorpaywebhook.Callback) (*razorpaywebhook.Result, error)
}

const maxCallbackBytes = 16 << 10

// RazorpayCallback completes an online checkout. The hosted widget posts a
// form and expects a redirect; API clients post JSON and get the result back.
func RazorpayCallback(svc RazorpayCallbackService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments are not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBytes)
		form := isFormPost(r)

		var cb razorpaywebhook.Callback
		if form {
			if err := parseForm(r); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid callback form"))
				return
			}
			cb = razorpaywebhook.Callback{
				PaymentID: strings.TrimSpace(r.PostForm.Get("razorpay_payment_id")),
				OrderID:   strings.TrimSpace(r.PostForm.Get("razorpay_order_id")),
				Signature: strings.TrimSpace(r.PostForm.Get("razorpay_signature")),
			}
		} else if err := validators.DecodeJSONBody(r, &cb); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithField(ctx, "razorpay_order_id", cb.OrderID)
		}
		result, err := svc.HandleCallback(ctx, cb)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if form && result.RedirectURL != "" {
			http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func isFormPost(r *http.Request) bool {
	mediaType := callbackMediaType(r)
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// parseForm fills r.PostForm for both form encodings.
func parseForm(r *http.Request) error {
	if callbackMediaType(r) == "multipart/form-data" {
		return r.ParseMultipartForm(maxCallbackBytes)
	}
	return r.ParseForm()
}

func callbackMediaType(r *http.Request) string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mediaType
}
