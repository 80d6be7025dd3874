// Package zepp is the client for the unofficial Huami/Zepp cloud API: the
// two-step email login handshake and the band-data summary endpoint.
package zepp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultRegistrationBaseURL = "https://api-user.huami.com"
	defaultAccountBaseURL      = "https://account.huami.com"

	// The API rejects requests that don't look like the official app.
	userAgent = "Mi Fit/4.0.9 (iPhone; iOS 14.0; Scale/2.0)"
)

var ErrLoginFailed = errors.New("zepp login failed")

// RateLimitError is returned when the vendor API answers 429. Huami applies
// daily quotas to the login endpoints, so the caller should not retry soon.
type RateLimitError struct {
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("zepp API rate limit reached (retry-after: %s)", e.RetryAfter)
}

// Credentials is the resolved per-session credential pair the band-data
// endpoint needs.
type Credentials struct {
	AppToken string
	UserID   string
}

type tokenInfo struct {
	AppToken string `json:"app_token"`
	UserID   string `json:"user_id"`
}

type loginResult struct {
	TokenInfo *tokenInfo `json:"token_info"`
}

// Authenticator performs the email/password login handshake.
type Authenticator struct {
	client              *resty.Client
	logger              *zap.Logger
	registrationBaseURL string
	accountBaseURL      string
}

// NewAuthenticator creates an Authenticator. Redirects are not followed: the
// first login step delivers its result in the Location header of a redirect
// response.
func NewAuthenticator(logger *zap.Logger) *Authenticator {
	client := resty.New().
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Authenticator{
		client:              client,
		logger:              logger,
		registrationBaseURL: defaultRegistrationBaseURL,
		accountBaseURL:      defaultAccountBaseURL,
	}
}

// Login exchanges email/password for an app token and user id.
//
// Step one posts the password to the registration endpoint and reads the
// access token and country code out of the redirect Location. Step two
// exchanges the access token at the client-login endpoint for the full
// token_info.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Credentials, error) {
	a.logger.Info("logging in to zepp API", zap.String("email", email))

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"state":        "REDIRECTION",
			"client_id":    "HuaMi",
			"redirect_uri": "https://s3-us-west-2.amazonaws.com/hm-registration/successsignin.html",
			"token":        "access",
			"password":     password,
		}).
		Post(a.registrationBaseURL + "/registrations/" + url.PathEscape(email) + "/tokens")
	if err != nil {
		return nil, fmt.Errorf("registration request: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: resp.Header().Get("Retry-After")}
	}

	location, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect location: %v", ErrLoginFailed, err)
	}
	query := location.Query()
	access := query.Get("access")
	countryCode := query.Get("country_code")
	if access == "" {
		return nil, fmt.Errorf("%w: no access token in redirect", ErrLoginFailed)
	}
	if countryCode == "" {
		return nil, fmt.Errorf("%w: no country_code in redirect", ErrLoginFailed)
	}

	a.logger.Debug("access token obtained, exchanging for app token")
	return a.loginWithToken(ctx, access, countryCode)
}

func (a *Authenticator) loginWithToken(ctx context.Context, access, countryCode string) (*Credentials, error) {
	var result loginResult
	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"app_name":           "com.xiaomi.hm.health",
			"dn":                 "account.huami.com,api-user.huami.com,api-mifit.huami.com",
			"device_id":          "02:00:00:00:00:00",
			"device_model":       "android_phone",
			"app_version":        "4.0.9",
			"allow_registration": "false",
			"third_name":         "huami",
			"grant_type":         "access_token",
			"country_code":       countryCode,
			"code":               access,
		}).
		SetResult(&result).
		Post(a.accountBaseURL + "/v2/client/login")
	if err != nil {
		return nil, fmt.Errorf("client login request: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: resp.Header().Get("Retry-After")}
	}

	if result.TokenInfo == nil || result.TokenInfo.AppToken == "" {
		return nil, fmt.Errorf("%w: login did not return token_info/app_token", ErrLoginFailed)
	}

	a.logger.Info("zepp app token obtained", zap.String("user_id", result.TokenInfo.UserID))
	return &Credentials{
		AppToken: result.TokenInfo.AppToken,
		UserID:   result.TokenInfo.UserID,
	}, nil
}
