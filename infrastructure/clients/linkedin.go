package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

const (
	linkedinUserinfoURL = "https://api.linkedin.com/v2/userinfo"
	linkedinUGCPostsURL = "https://api.linkedin.com/v2/ugcPosts"
)

// LinkedInAdapter publishes member UGC posts through the v2 API.
type LinkedInAdapter struct {
	conf *oauth2.Config
}

func NewLinkedInAdapter(cfg configuration.OAuthClient) *LinkedInAdapter {
	return &LinkedInAdapter{conf: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     linkedin.Endpoint,
	}}
}

func (a *LinkedInAdapter) Platform() model.Platform     { return model.PlatformLinkedIn }
func (a *LinkedInAdapter) RefreshUsesAccessToken() bool { return false }

func (a *LinkedInAdapter) ValidateToken(ctx context.Context, accessToken string) error {
	resp, err := bearerGet(ctx, linkedinUserinfoURL, accessToken)
	if err != nil {
		return apperror.Transient(model.PlatformLinkedIn, "validation request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return classifyStatus(model.PlatformLinkedIn, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (a *LinkedInAdapter) RefreshToken(ctx context.Context, refreshToken string) (*repository.RefreshedToken, error) {
	return oauthRefresh(ctx, model.PlatformLinkedIn, a.conf, refreshToken)
}

func (a *LinkedInAdapter) GetUserProfile(ctx context.Context, accessToken string) (*repository.PlatformProfile, error) {
	resp, err := bearerGet(ctx, linkedinUserinfoURL, accessToken)
	if err != nil {
		return nil, apperror.Transient(model.PlatformLinkedIn, "profile request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(model.PlatformLinkedIn, resp.StatusCode, readBody(resp))
	}
	var body struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformLinkedIn, "decoding profile", err)
	}
	return &repository.PlatformProfile{
		PlatformUserID: body.Sub,
		Username:       body.Email,
		DisplayName:    body.Name,
	}, nil
}

func (a *LinkedInAdapter) PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*repository.PublishResult, error) {
	profile, err := a.GetUserProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	share := map[string]interface{}{
		"author":         fmt.Sprintf("urn:li:person:%s", profile.PlatformUserID),
		"lifecycleState": "PUBLISHED",
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	content := map[string]interface{}{
		"shareCommentary":    map[string]string{"text": post.Content},
		"shareMediaCategory": "NONE",
	}
	if len(post.MediaURLs) > 0 {
		content["shareMediaCategory"] = "ARTICLE"
		content["media"] = []map[string]interface{}{
			{"status": "READY", "originalUrl": post.MediaURLs[0]},
		}
	}
	share["specificContent"] = map[string]interface{}{
		"com.linkedin.ugc.ShareContent": content,
	}

	payload, err := json.Marshal(share)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinUGCPostsURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Transient(model.PlatformLinkedIn, "publish request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(model.PlatformLinkedIn, resp.StatusCode, readBody(resp))
	}
	postID := resp.Header.Get("X-RestLi-Id")
	if postID == "" {
		var body struct {
			ID string `json:"id"`
		}
		if err := decodeJSON(resp, &body); err == nil {
			postID = body.ID
		}
	}
	return &repository.PublishResult{
		PostID: postID,
		URL:    fmt.Sprintf("https://www.linkedin.com/feed/update/%s", postID),
	}, nil
}

var _ repository.IPlatformAdapter = (*LinkedInAdapter)(nil)
