package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	apperrors "doc-intel-pipeline/pkg/errors"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report json names so messages match the parameter the caller sent
		v.RegisterTagNameFunc(jsonName)
		validate = v
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if tag == "-" || tag == "" {
		return fld.Name
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	return tag
}

// bindParams fills dst from the JSON body and then from the query string,
// so query parameters win, and validates the result.
func bindParams(r *http.Request, dst interface{}) error {
	if r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body must be a JSON object", err.Error())
		}
	}

	overlayQuery(r, dst)

	if err := getValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.NewValidationError("Missing or invalid parameters", describe(verrs))
		}
		return apperrors.NewValidationError("Missing or invalid parameters", err.Error())
	}
	return nil
}

// overlayQuery copies non-empty query values onto the string fields of dst
// whose json name matches.
func overlayQuery(r *http.Request, dst interface{}) {
	query := r.URL.Query()
	if len(query) == 0 {
		return
	}

	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.String {
			continue
		}
		if value := query.Get(jsonName(field)); value != "" {
			v.Field(i).SetString(value)
		}
	}
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
