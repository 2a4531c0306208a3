package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
)

// httpClient is shared by every adapter. Providers get one bounded attempt per
// call; retry policy lives above the adapter layer.
var httpClient = &http.Client{Timeout: 15 * time.Second}

// classifyStatus maps a provider HTTP status onto the error taxonomy. 4xx auth
// failures mean the user must reconnect, 400 means the content itself is bad,
// everything else is worth retrying.
func classifyStatus(platform model.Platform, status int, body string) error {
	switch {
	case status == http.StatusBadRequest:
		return &apperror.Error{Kind: apperror.KindValidation, Platform: platform, Msg: fmt.Sprintf("rejected request: %s", body)}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperror.ReconnectRequired(platform, fmt.Sprintf("authorization rejected (%d)", status))
	default:
		return apperror.Transient(platform, fmt.Sprintf("provider returned %d: %s", status, body), nil)
	}
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return string(b)
}

func decodeJSON(resp *http.Response, out interface{}) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

// oauthRefresh runs a standard refresh-grant against the platform token
// endpoint and classifies the outcome. A definitive rejection of the refresh
// token (invalid_grant and friends) means reconnect; anything else may pass on
// a retry.
func oauthRefresh(ctx context.Context, platform model.Platform, conf *oauth2.Config, refreshToken string) (*repository.RefreshedToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil &&
			(rerr.Response.StatusCode == http.StatusBadRequest || rerr.Response.StatusCode == http.StatusUnauthorized) {
			return nil, apperror.ReconnectRequired(platform, "refresh token rejected")
		}
		return nil, apperror.Transient(platform, "token refresh failed", err)
	}
	refreshed := &repository.RefreshedToken{AccessToken: tok.AccessToken}
	if tok.RefreshToken != refreshToken {
		refreshed.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		refreshed.ExpiresInSeconds = int64(time.Until(tok.Expiry).Seconds())
	}
	return refreshed, nil
}

func bearerGet(ctx context.Context, url, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return httpClient.Do(req)
}
