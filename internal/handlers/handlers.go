// Package handlers contains the HTTP handlers behind the route table.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yashkurhe5314/lms/internal/apperr"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeStrict decodes a JSON body into v, rejecting unknown fields so a
// client cannot smuggle privilege-bearing fields into an update.
func decodeStrict(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.E(apperr.ErrValidation, "invalid request payload")
	}
	return nil
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.E(apperr.ErrValidation, "invalid request payload")
	}
	return nil
}

// checkPayload runs struct validation and converts the first failure into a
// client-facing validation error.
func checkPayload(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		return apperr.E(apperr.ErrValidation, fmt.Sprintf("invalid or missing field: %s", field))
	}
	return apperr.E(apperr.ErrValidation, "invalid request payload")
}
