package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

const facebookGraphURL = "https://graph.facebook.com/v19.0"

// facebookExchangeParams is the long-lived token exchange request. Facebook has
// no refresh token; the current access token is traded for a fresh long-lived
// one before it expires.
type facebookExchangeParams struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

// FacebookAdapter posts to the connected account's feed through the Graph API.
type FacebookAdapter struct {
	clientID     string
	clientSecret string
}

func NewFacebookAdapter(cfg configuration.OAuthClient) *FacebookAdapter {
	return &FacebookAdapter{clientID: cfg.ClientID, clientSecret: cfg.ClientSecret}
}

func (a *FacebookAdapter) Platform() model.Platform     { return model.PlatformFacebook }
func (a *FacebookAdapter) RefreshUsesAccessToken() bool { return true }

func (a *FacebookAdapter) ValidateToken(ctx context.Context, accessToken string) error {
	resp, err := httpGet(ctx, fmt.Sprintf("%s/me?fields=id&access_token=%s", facebookGraphURL, url.QueryEscape(accessToken)))
	if err != nil {
		return apperror.Transient(model.PlatformFacebook, "validation request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return classifyGraphStatus(model.PlatformFacebook, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (a *FacebookAdapter) RefreshToken(ctx context.Context, exchangeToken string) (*repository.RefreshedToken, error) {
	params := facebookExchangeParams{
		GrantType:       "fb_exchange_token",
		ClientID:        a.clientID,
		ClientSecret:    a.clientSecret,
		FBExchangeToken: exchangeToken,
	}
	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}
	resp, err := httpGet(ctx, fmt.Sprintf("%s/oauth/access_token?%s", facebookGraphURL, v.Encode()))
	if err != nil {
		return nil, apperror.Transient(model.PlatformFacebook, "token exchange failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyGraphRefresh(model.PlatformFacebook, resp.StatusCode, readBody(resp))
	}
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformFacebook, "decoding exchange response", err)
	}
	return &repository.RefreshedToken{
		AccessToken:      body.AccessToken,
		ExpiresInSeconds: body.ExpiresIn,
	}, nil
}

func (a *FacebookAdapter) GetUserProfile(ctx context.Context, accessToken string) (*repository.PlatformProfile, error) {
	resp, err := httpGet(ctx, fmt.Sprintf("%s/me?fields=id,name&access_token=%s", facebookGraphURL, url.QueryEscape(accessToken)))
	if err != nil {
		return nil, apperror.Transient(model.PlatformFacebook, "profile request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyGraphStatus(model.PlatformFacebook, resp.StatusCode, readBody(resp))
	}
	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformFacebook, "decoding profile", err)
	}
	return &repository.PlatformProfile{
		PlatformUserID: body.ID,
		Username:       body.Name,
		DisplayName:    body.Name,
	}, nil
}

func (a *FacebookAdapter) PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*repository.PublishResult, error) {
	profile, err := a.GetUserProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("message", post.Content)
	form.Set("access_token", accessToken)
	if len(post.MediaURLs) > 0 {
		form.Set("link", post.MediaURLs[0])
	}
	target := fmt.Sprintf("%s/%s/feed", facebookGraphURL, profile.PlatformUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Transient(model.PlatformFacebook, "publish request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyGraphStatus(model.PlatformFacebook, resp.StatusCode, readBody(resp))
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformFacebook, "decoding publish response", err)
	}
	return &repository.PublishResult{
		PostID: body.ID,
		URL:    fmt.Sprintf("https://www.facebook.com/%s", body.ID),
	}, nil
}

func httpGet(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return httpClient.Do(req)
}

// classifyGraphStatus handles the Graph API quirk of reporting expired or
// revoked tokens as 400 with an OAuthException body rather than 401.
func classifyGraphStatus(platform model.Platform, status int, body string) error {
	if status == http.StatusBadRequest && strings.Contains(body, "OAuthException") {
		return apperror.ReconnectRequired(platform, "access token rejected")
	}
	return classifyStatus(platform, status, body)
}

// classifyGraphRefresh is stricter than classifyGraphStatus. The only input to
// a token exchange is the token itself, so any 400 or 401 from the exchange
// endpoint means the stored token is no good and the user must reconnect.
func classifyGraphRefresh(platform model.Platform, status int, body string) error {
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return apperror.ReconnectRequired(platform, fmt.Sprintf("token exchange rejected (%d)", status))
	}
	return classifyStatus(platform, status, body)
}

var _ repository.IPlatformAdapter = (*FacebookAdapter)(nil)
