package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
)

// ============================================================
// Remote session verification via GoTrue (GET /auth/v1/user)
// ============================================================

// RemoteVerifier resolves session tokens by asking the auth provider for the
// user behind the token. Rejected tokens are reported as "no session", not as
// errors; only transport failures surface as errors.
type RemoteVerifier struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewRemoteVerifier creates a verifier backed by the GoTrue user endpoint.
func NewRemoteVerifier(httpClient *http.Client, baseURL, apiKey string, logger *zap.Logger) *RemoteVerifier {
	return &RemoteVerifier{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// gotrueUser is the subset of the GoTrue user payload we need.
type gotrueUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

// Verify resolves a session token to an Identity. Returns (nil, nil) for
// absent, malformed or provider-rejected tokens.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.VerifySession")
	defer span.End()

	if token == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/auth/v1/user", v.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", v.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Error("auth: user lookup failed", zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Invalid or expired token. Not an outage.
		v.logger.Debug("auth: token rejected", zap.Int("status", resp.StatusCode))
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		v.logger.Warn("auth: non-2xx from user endpoint",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, &domain.ErrExternalService{
			Service: "supabase/auth",
			Err:     fmt.Errorf("auth returned status %d", resp.StatusCode),
		}
	}

	var user gotrueUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &domain.ErrExternalService{
			Service: "supabase/auth",
			Err:     fmt.Errorf("decode user: %w", err),
		}
	}
	if user.ID == "" {
		return nil, nil
	}

	return &domain.Identity{
		ID:               user.ID,
		Email:            user.Email,
		EmailConfirmedAt: user.EmailConfirmedAt,
	}, nil
}
