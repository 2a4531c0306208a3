package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

const (
	twitterTokenURL = "https://api.twitter.com/2/oauth2/token"
	twitterMeURL    = "https://api.twitter.com/2/users/me"
	twitterTweetURL = "https://api.twitter.com/2/tweets"
)

// TwitterAdapter talks to the X API v2.
type TwitterAdapter struct {
	conf *oauth2.Config
}

func NewTwitterAdapter(cfg configuration.OAuthClient) *TwitterAdapter {
	return &TwitterAdapter{conf: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     oauth2.Endpoint{TokenURL: twitterTokenURL},
	}}
}

func (a *TwitterAdapter) Platform() model.Platform     { return model.PlatformTwitter }
func (a *TwitterAdapter) RefreshUsesAccessToken() bool { return false }

func (a *TwitterAdapter) ValidateToken(ctx context.Context, accessToken string) error {
	resp, err := bearerGet(ctx, twitterMeURL, accessToken)
	if err != nil {
		return apperror.Transient(model.PlatformTwitter, "validation request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return classifyStatus(model.PlatformTwitter, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (a *TwitterAdapter) RefreshToken(ctx context.Context, refreshToken string) (*repository.RefreshedToken, error) {
	return oauthRefresh(ctx, model.PlatformTwitter, a.conf, refreshToken)
}

func (a *TwitterAdapter) GetUserProfile(ctx context.Context, accessToken string) (*repository.PlatformProfile, error) {
	resp, err := bearerGet(ctx, twitterMeURL, accessToken)
	if err != nil {
		return nil, apperror.Transient(model.PlatformTwitter, "profile request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(model.PlatformTwitter, resp.StatusCode, readBody(resp))
	}
	var body struct {
		Data struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformTwitter, "decoding profile", err)
	}
	return &repository.PlatformProfile{
		PlatformUserID: body.Data.ID,
		Username:       body.Data.Username,
		DisplayName:    body.Data.Name,
	}, nil
}

func (a *TwitterAdapter) PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*repository.PublishResult, error) {
	payload, err := json.Marshal(map[string]string{"text": post.Content})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterTweetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Transient(model.PlatformTwitter, "publish request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(model.PlatformTwitter, resp.StatusCode, readBody(resp))
	}
	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformTwitter, "decoding publish response", err)
	}
	return &repository.PublishResult{
		PostID: body.Data.ID,
		URL:    fmt.Sprintf("https://twitter.com/i/web/status/%s", body.Data.ID),
	}, nil
}

var _ repository.IPlatformAdapter = (*TwitterAdapter)(nil)
