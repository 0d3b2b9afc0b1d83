package http

import (
	"encoding/json"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/internal/gateway/app/service"
	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
)

const profileImageField = "image"

type UpdateProfileHandler struct {
	authService service.Auth
}

func NewUpdateProfileHandler(authService service.Auth) UpdateProfileHandler {
	return UpdateProfileHandler{authService: authService}
}

func (h UpdateProfileHandler) Method() string {
	return http.MethodPut
}

func (h UpdateProfileHandler) Path() string {
	return "/auth/update-profile"
}

func (h UpdateProfileHandler) Handle(w pkghttp.ResponseWriter, r *http.Request) error {
	cookies, err := pkghttp.ParseRequest(r, pkghttp.Cookies(), nil)
	if err != nil {
		return err
	}

	in := service.UpdateProfileIn{Cookies: cookies}
	if pkghttp.IsMultipart(r) {
		in.Body, err = pkghttp.ParseRequest(r, pkghttp.FormValues(pkghttp.DefaultMultipartMemory), nil)
		if err != nil {
			return err
		}

		file := pkghttp.ParseRequestOptional(r, pkghttp.FormFile(profileImageField, pkghttp.DefaultMultipartMemory), nil)
		if file != nil {
			in.File = &service.ProfileImage{
				FieldName:    file.FieldName,
				OriginalName: file.FileName,
				MimeType:     file.ContentType,
				Size:         file.Size,
				Buffer:       file.Content,
			}
		}
	} else {
		in.Body, err = pkghttp.ParseRequest(r, pkghttp.JSONBody[json.RawMessage](), nil)
		if err != nil {
			return err
		}
	}

	profile, err := h.authService.UpdateProfile(r.Context(), in)
	if err != nil {
		return writeFailure(w, service.DestinationAuth, err)
	}

	w.SetJSONBody(profile)
	return nil
}
