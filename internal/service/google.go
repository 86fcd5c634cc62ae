package service

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// googleVerifier validates Google ID tokens against Google's public
// certificates and the configured audience.
type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a GoogleVerifier for the given web client id.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleTokenPayload, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate google id token: %w", err)
	}

	result := &GoogleTokenPayload{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		result.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		result.Name = name
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		result.EmailVerified = verified
	}

	return result, nil
}
