package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

type sessionIssue struct {
	issue          func(context.Context, json.RawMessage) (service.SessionToken, error)
	cookies        SessionCookies
	successStatus  int
	successMessage string
	landing        string
	form           func(errorMessage string) string
}

// handle sets the session cookie before anything is written. Browsers are redirected,
// other callers get a JSON message.
func (s sessionIssue) handle(w pkghttp.ResponseWriter, r *http.Request) error {
	browser := isBrowser(r)

	in, err := requestPayload(r)
	if err != nil {
		if browser {
			w.Redirect(s.form(http.StatusText(http.StatusBadRequest)))
		}
		return err
	}

	token, err := s.issue(r.Context(), in)
	var cookie *http.Cookie
	if err == nil {
		cookie, err = s.cookies.Issue(token)
	}
	if err != nil {
		if browser {
			_, message := translateFailure(service.DestinationAuth, err)
			w.Redirect(s.form(message))
			return err
		}
		return writeFailure(w, service.DestinationAuth, err)
	}

	w.SetCookie(cookie)
	if browser {
		w.Redirect(s.landing)
		return nil
	}

	w.SetStatusCode(s.successStatus).SetJSONBody(pkghttp.MessageOut{Message: s.successMessage})
	return nil
}
