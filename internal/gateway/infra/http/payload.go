package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/pkg/auth"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

// requestPayload accepts JSON bodies and submitted HTML forms.
func requestPayload(r *http.Request) (json.RawMessage, error) {
	if !pkghttp.IsForm(r) {
		return pkghttp.ParseRequest(r, pkghttp.JSONBody[json.RawMessage](), nil)
	}

	values, err := pkghttp.ParseRequest(r, pkghttp.FormValues(pkghttp.DefaultMultipartMemory), nil)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode form values: %w", err)
	}

	return encoded, nil
}

func sessionToken(r *http.Request) string {
	token, _ := pkghttp.ParseRequest(r, pkghttp.CookieValue[string](auth.SessionCookieName), nil)
	return token
}
