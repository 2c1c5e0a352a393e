package http

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "hotelops/pkg/errors"
)

// IdentityHeader names the acting guest or staff member. Authentication sits in
// front of this service and forwards the verified email here.
const IdentityHeader = "X-Guest-Email"

// Identity returns the normalized acting email or an Unauthorized error.
func Identity(r *http.Request) (string, error) {
	email := strings.ToLower(strings.TrimSpace(r.Header.Get(IdentityHeader)))
	if email == "" {
		return "", apperrors.Unauthorized("missing " + IdentityHeader + " header")
	}
	return email, nil
}

func DecodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
