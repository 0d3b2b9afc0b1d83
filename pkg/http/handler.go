package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

const (
	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
	contentTypeText   = "text/plain; charset=utf-8"
)

type HandlerFunc func(w ResponseWriter, r *http.Request) error

type Handler interface {
	Method() string
	Path() string
	Handle(w ResponseWriter, r *http.Request) error
}

type ResponseWriter interface {
	SetHeader(key, value string) ResponseWriter
	SetStatusCode(httpCode int) ResponseWriter
	SetCookie(cookie *http.Cookie) ResponseWriter
	SetJSONBody(data any) ResponseWriter
	SetTextBody(text string) ResponseWriter
	Redirect(location string) ResponseWriter
}

// MessageOut is the body written for failures without an explicit body.
type MessageOut struct {
	Message string `json:"message"`
}

type responseWriter struct {
	impl http.ResponseWriter

	body        func() ([]byte, error)
	contentType string
	httpCode    int
}

func (w *responseWriter) SetHeader(key, value string) ResponseWriter {
	w.impl.Header().Set(key, value)
	return w
}

func (w *responseWriter) SetStatusCode(httpCode int) ResponseWriter {
	w.httpCode = httpCode
	return w
}

func (w *responseWriter) SetCookie(cookie *http.Cookie) ResponseWriter {
	http.SetCookie(w.impl, cookie)
	return w
}

func (w *responseWriter) SetJSONBody(data any) ResponseWriter {
	w.contentType = contentTypeJSON
	w.body = func() ([]byte, error) {
		bodyEncoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		return bodyEncoded, nil
	}
	return w
}

func (w *responseWriter) SetTextBody(text string) ResponseWriter {
	w.contentType = contentTypeText
	w.body = func() ([]byte, error) {
		return []byte(text), nil
	}
	return w
}

func (w *responseWriter) Redirect(location string) ResponseWriter {
	w.impl.Header().Set("Location", location)
	w.httpCode = http.StatusFound
	w.body = nil
	return w
}

func (w *responseWriter) Write(ctx context.Context, err error) {
	httpCode := w.httpCode
	switch {
	case errors.Is(err, ErrParsingError) && httpCode < http.StatusMultipleChoices:
		httpCode = http.StatusBadRequest
	case err != nil && httpCode < http.StatusMultipleChoices:
		httpCode = http.StatusInternalServerError
	}

	var body []byte
	if w.body != nil {
		var bodyErr error
		body, bodyErr = w.body()
		if bodyErr != nil {
			err = errors.Join(err, bodyErr)
			httpCode = http.StatusInternalServerError
			body = nil
		}
	}

	meta := getHandlerMetadata(ctx)
	meta.Code = httpCode
	meta.Error = err

	if body == nil && httpCode >= http.StatusBadRequest {
		writeMessage(w.impl, httpCode, StatusMessage(httpCode))
		return
	}

	if body != nil {
		w.impl.Header().Set(contentTypeHeader, w.contentType)
	}
	w.impl.WriteHeader(httpCode)
	if body != nil {
		_, _ = w.impl.Write(body)
	}
}

func (w *responseWriter) WritePanic(ctx context.Context, panic Panic) {
	meta := getHandlerMetadata(ctx)
	meta.Code = http.StatusInternalServerError
	meta.Panic = &panic

	writeMessage(w.impl, http.StatusInternalServerError, StatusMessage(http.StatusInternalServerError))
}

// StatusMessage is the default failure message, server faults never expose details.
func StatusMessage(httpCode int) string {
	if httpCode == http.StatusInternalServerError {
		return "Internal server error"
	}

	return http.StatusText(httpCode)
}

func writeMessage(w http.ResponseWriter, httpCode int, message string) {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(MessageOut{Message: message})
}

func httpHandlerWrapper(handler HandlerFunc) http.HandlerFunc {
	recoverPanic := func(r *http.Request, respWriter *responseWriter) {
		msg := recover()
		if msg == nil {
			return
		}

		respWriter.WritePanic(r.Context(), Panic{
			Message:    fmt.Sprintf("%v", msg),
			Stacktrace: debug.Stack(),
		})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		respWriter := &responseWriter{
			impl:     w,
			httpCode: http.StatusOK,
		}

		defer recoverPanic(r, respWriter)
		err := handler(respWriter, r)
		respWriter.Write(r.Context(), err)
	}
}
