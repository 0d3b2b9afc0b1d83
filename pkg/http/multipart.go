package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultMultipartMemory = 10 << 20

type File struct {
	FieldName   string
	FileName    string
	ContentType string
	Size        int64
	Content     []byte
}

// FormValues accepts both multipart and urlencoded bodies and keeps the first value of each field.
func FormValues(maxMemory int64) DataExtractor[map[string]string] {
	return func(r *http.Request) (map[string]string, error) {
		if err := parseForm(r, maxMemory); err != nil {
			return nil, err
		}

		result := make(map[string]string, len(r.Form))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				result[key] = values[0]
			}
		}
		if r.MultipartForm != nil {
			for key, values := range r.MultipartForm.Value {
				if len(values) > 0 {
					result[key] = values[0]
				}
			}
		}

		return result, nil
	}
}

func FormFile(field string, maxMemory int64) DataExtractor[File] {
	return func(r *http.Request) (File, error) {
		if err := parseForm(r, maxMemory); err != nil {
			return File{}, err
		}

		file, header, err := r.FormFile(field)
		if err != nil {
			return File{}, fmt.Errorf("%w: form file %s: %w", ErrParsingError, field, err)
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return File{}, fmt.Errorf("%w: read form file %s: %w", ErrParsingError, field, err)
		}

		return File{
			FieldName:   field,
			FileName:    header.Filename,
			ContentType: header.Header.Get(contentTypeHeader),
			Size:        header.Size,
			Content:     content,
		}, nil
	}
}

func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get(contentTypeHeader), "multipart/form-data")
}

func IsForm(r *http.Request) bool {
	return IsMultipart(r) || strings.HasPrefix(r.Header.Get(contentTypeHeader), "application/x-www-form-urlencoded")
}

func parseForm(r *http.Request, maxMemory int64) error {
	if r.MultipartForm != nil || r.PostForm != nil {
		return nil
	}

	var err error
	if IsMultipart(r) {
		err = r.ParseMultipartForm(maxMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fmt.Errorf("%w: parse form: %w", ErrParsingError, err)
	}

	return nil
}
