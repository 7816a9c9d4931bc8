package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-share/internal/domain"
)

const adminSecretHeader = "X-Admin-Secret"

var errMalformedBody = errors.New("malformed request body")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so field errors line up with the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads the body into dst and runs struct validation.
// Validation failures are returned as *domain.ValidationError.
func decodeJSON(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// invalidSubmission reports body validation failures of a result submission.
func invalidSubmission(verr *domain.ValidationError) error {
	fields := make([]string, 0, len(verr.Fields))
	for field, tag := range verr.Fields {
		fields = append(fields, field+": "+tag)
	}
	sort.Strings(fields)
	return fmt.Errorf("%w: %s", domain.ErrInvalidSubmission, strings.Join(fields, "; "))
}

func parsePage(r *http.Request) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get("page"))
	if value == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("page must be an integer")
	}
	// Out-of-range pages are clamped by the service.
	return page, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody), errors.Is(err, domain.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidQuiz):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateNickname), errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWrongPassword):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps backend details out of responses.
func errorMessage(err error) string {
	switch statusFor(err) {
	case http.StatusServiceUnavailable:
		return domain.ErrStoreUnavailable.Error()
	case http.StatusInternalServerError:
		return "request failed"
	case http.StatusNotFound:
		return domain.ErrQuizNotFound.Error()
	case http.StatusForbidden:
		return domain.ErrWrongPassword.Error()
	default:
		return err.Error()
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: errorMessage(err)}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, statusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
