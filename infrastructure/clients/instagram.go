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

const instagramGraphURL = "https://graph.instagram.com"

type instagramRefreshParams struct {
	GrantType   string `url:"grant_type"`
	AccessToken string `url:"access_token"`
}

// InstagramAdapter publishes media through the container flow of the Instagram
// Graph API. Instagram is exchange-style: the long-lived access token refreshes
// itself, there is no separate refresh token.
type InstagramAdapter struct{}

func NewInstagramAdapter(_ configuration.OAuthClient) *InstagramAdapter {
	return &InstagramAdapter{}
}

func (a *InstagramAdapter) Platform() model.Platform     { return model.PlatformInstagram }
func (a *InstagramAdapter) RefreshUsesAccessToken() bool { return true }

func (a *InstagramAdapter) ValidateToken(ctx context.Context, accessToken string) error {
	resp, err := httpGet(ctx, fmt.Sprintf("%s/me?fields=id&access_token=%s", instagramGraphURL, url.QueryEscape(accessToken)))
	if err != nil {
		return apperror.Transient(model.PlatformInstagram, "validation request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return classifyGraphStatus(model.PlatformInstagram, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (a *InstagramAdapter) RefreshToken(ctx context.Context, accessToken string) (*repository.RefreshedToken, error) {
	params := instagramRefreshParams{GrantType: "ig_refresh_token", AccessToken: accessToken}
	v, err := query.Values(params)
	if err != nil {
		return nil, err
	}
	resp, err := httpGet(ctx, fmt.Sprintf("%s/refresh_access_token?%s", instagramGraphURL, v.Encode()))
	if err != nil {
		return nil, apperror.Transient(model.PlatformInstagram, "token refresh failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyGraphRefresh(model.PlatformInstagram, resp.StatusCode, readBody(resp))
	}
	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformInstagram, "decoding refresh response", err)
	}
	return &repository.RefreshedToken{
		AccessToken:      body.AccessToken,
		ExpiresInSeconds: body.ExpiresIn,
	}, nil
}

func (a *InstagramAdapter) GetUserProfile(ctx context.Context, accessToken string) (*repository.PlatformProfile, error) {
	resp, err := httpGet(ctx, fmt.Sprintf("%s/me?fields=id,username&access_token=%s", instagramGraphURL, url.QueryEscape(accessToken)))
	if err != nil {
		return nil, apperror.Transient(model.PlatformInstagram, "profile request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyGraphStatus(model.PlatformInstagram, resp.StatusCode, readBody(resp))
	}
	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformInstagram, "decoding profile", err)
	}
	return &repository.PlatformProfile{
		PlatformUserID: body.ID,
		Username:       body.Username,
		DisplayName:    body.Username,
	}, nil
}

func (a *InstagramAdapter) PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*repository.PublishResult, error) {
	if len(post.MediaURLs) == 0 {
		return nil, &apperror.Error{Kind: apperror.KindValidation, Platform: model.PlatformInstagram,
			Msg: "instagram posts require at least one media url"}
	}
	profile, err := a.GetUserProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	containerID, err := a.createContainer(ctx, accessToken, profile.PlatformUserID, post)
	if err != nil {
		return nil, err
	}
	mediaID, err := a.publishContainer(ctx, accessToken, profile.PlatformUserID, containerID)
	if err != nil {
		return nil, err
	}
	return &repository.PublishResult{
		PostID: mediaID,
		URL:    a.permalink(ctx, accessToken, mediaID),
	}, nil
}

func (a *InstagramAdapter) createContainer(ctx context.Context, accessToken, igUserID string, post *model.ScheduledPost) (string, error) {
	form := url.Values{}
	form.Set("image_url", post.MediaURLs[0])
	form.Set("caption", post.Content)
	form.Set("access_token", accessToken)
	return a.postForm(ctx, fmt.Sprintf("%s/%s/media", instagramGraphURL, igUserID), form)
}

func (a *InstagramAdapter) publishContainer(ctx context.Context, accessToken, igUserID, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", accessToken)
	return a.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", instagramGraphURL, igUserID), form)
}

func (a *InstagramAdapter) postForm(ctx context.Context, target string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", apperror.Transient(model.PlatformInstagram, "publish request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", classifyGraphStatus(model.PlatformInstagram, resp.StatusCode, readBody(resp))
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return "", apperror.Transient(model.PlatformInstagram, "decoding publish response", err)
	}
	return body.ID, nil
}

// permalink is best effort; a missing permalink never fails the publish.
func (a *InstagramAdapter) permalink(ctx context.Context, accessToken, mediaID string) string {
	resp, err := httpGet(ctx, fmt.Sprintf("%s/%s?fields=permalink&access_token=%s", instagramGraphURL, mediaID, url.QueryEscape(accessToken)))
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var body struct {
		Permalink string `json:"permalink"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return ""
	}
	return body.Permalink
}

var _ repository.IPlatformAdapter = (*InstagramAdapter)(nil)
