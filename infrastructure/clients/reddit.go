package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

const (
	redditTokenURL  = "https://www.reddit.com/api/v1/access_token"
	redditMeURL     = "https://oauth.reddit.com/api/v1/me"
	redditSubmitURL = "https://oauth.reddit.com/api/submit"

	redditUserAgent = "social-scheduler/1.0"
)

// RedditAdapter submits self posts to the authenticated user's profile feed.
type RedditAdapter struct {
	conf *oauth2.Config
}

func NewRedditAdapter(cfg configuration.OAuthClient) *RedditAdapter {
	return &RedditAdapter{conf: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     oauth2.Endpoint{TokenURL: redditTokenURL, AuthStyle: oauth2.AuthStyleInHeader},
	}}
}

func (a *RedditAdapter) Platform() model.Platform     { return model.PlatformReddit }
func (a *RedditAdapter) RefreshUsesAccessToken() bool { return false }

func (a *RedditAdapter) ValidateToken(ctx context.Context, accessToken string) error {
	resp, err := a.get(ctx, redditMeURL, accessToken)
	if err != nil {
		return apperror.Transient(model.PlatformReddit, "validation request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return classifyStatus(model.PlatformReddit, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (a *RedditAdapter) RefreshToken(ctx context.Context, refreshToken string) (*repository.RefreshedToken, error) {
	return oauthRefresh(ctx, model.PlatformReddit, a.conf, refreshToken)
}

func (a *RedditAdapter) GetUserProfile(ctx context.Context, accessToken string) (*repository.PlatformProfile, error) {
	resp, err := a.get(ctx, redditMeURL, accessToken)
	if err != nil {
		return nil, apperror.Transient(model.PlatformReddit, "profile request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(model.PlatformReddit, resp.StatusCode, readBody(resp))
	}
	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformReddit, "decoding profile", err)
	}
	return &repository.PlatformProfile{
		PlatformUserID: body.ID,
		Username:       body.Name,
		DisplayName:    body.Name,
	}, nil
}

func (a *RedditAdapter) PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*repository.PublishResult, error) {
	profile, err := a.GetUserProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("sr", "u_"+profile.Username)
	form.Set("title", postTitle(post.Content))
	form.Set("api_type", "json")
	if len(post.MediaURLs) > 0 {
		form.Set("kind", "link")
		form.Set("url", post.MediaURLs[0])
	} else {
		form.Set("kind", "self")
		form.Set("text", post.Content)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, redditSubmitURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", redditUserAgent)
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperror.Transient(model.PlatformReddit, "publish request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(model.PlatformReddit, resp.StatusCode, readBody(resp))
	}
	var body struct {
		JSON struct {
			Errors [][]string `json:"errors"`
			Data   struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, apperror.Transient(model.PlatformReddit, "decoding publish response", err)
	}
	if len(body.JSON.Errors) > 0 {
		return nil, &apperror.Error{Kind: apperror.KindValidation, Platform: model.PlatformReddit,
			Msg: fmt.Sprintf("submit rejected: %v", body.JSON.Errors[0])}
	}
	return &repository.PublishResult{
		PostID: body.JSON.Data.Name,
		URL:    body.JSON.Data.URL,
	}, nil
}

func (a *RedditAdapter) get(ctx context.Context, target, accessToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", redditUserAgent)
	return httpClient.Do(req)
}

// postTitle derives a submission title from the post body, capped the way the
// reddit UI caps titles. The cap counts runes so a multi-byte character is
// never split at the boundary.
func postTitle(content string) string {
	const max = 300
	title := strings.SplitN(strings.TrimSpace(content), "\n", 2)[0]
	if utf8.RuneCountInString(title) > max {
		title = string([]rune(title)[:max])
	}
	return title
}

var _ repository.IPlatformAdapter = (*RedditAdapter)(nil)
