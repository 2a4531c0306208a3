package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/configuration"
)

// YouTubeAdapter uploads videos through the Data API v3. The first media url
// of a post is fetched and streamed into the upload.
type YouTubeAdapter struct {
	conf *oauth2.Config
}

func NewYouTubeAdapter(cfg configuration.OAuthClient) *YouTubeAdapter {
	return &YouTubeAdapter{conf: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope},
	}}
}

func (a *YouTubeAdapter) Platform() model.Platform     { return model.PlatformYouTube }
func (a *YouTubeAdapter) RefreshUsesAccessToken() bool { return false }

func (a *YouTubeAdapter) service(ctx context.Context, accessToken string) (*youtube.Service, error) {
	tok := &oauth2.Token{AccessToken: accessToken}
	return youtube.NewService(ctx,
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))))
}

func (a *YouTubeAdapter) ValidateToken(ctx context.Context, accessToken string) error {
	_, err := a.GetUserProfile(ctx, accessToken)
	return err
}

func (a *YouTubeAdapter) RefreshToken(ctx context.Context, refreshToken string) (*repository.RefreshedToken, error) {
	return oauthRefresh(ctx, model.PlatformYouTube, a.conf, refreshToken)
}

func (a *YouTubeAdapter) GetUserProfile(ctx context.Context, accessToken string) (*repository.PlatformProfile, error) {
	svc, err := a.service(ctx, accessToken)
	if err != nil {
		return nil, apperror.Transient(model.PlatformYouTube, "creating service", err)
	}
	res, err := svc.Channels.List([]string{"id", "snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	if len(res.Items) == 0 {
		return nil, apperror.ReconnectRequired(model.PlatformYouTube, "no channel for this account")
	}
	ch := res.Items[0]
	return &repository.PlatformProfile{
		PlatformUserID: ch.Id,
		Username:       ch.Snippet.CustomUrl,
		DisplayName:    ch.Snippet.Title,
	}, nil
}

func (a *YouTubeAdapter) PublishPost(ctx context.Context, accessToken string, post *model.ScheduledPost) (*repository.PublishResult, error) {
	if len(post.MediaURLs) == 0 {
		return nil, &apperror.Error{Kind: apperror.KindValidation, Platform: model.PlatformYouTube,
			Msg: "youtube posts require a video media url"}
	}
	svc, err := a.service(ctx, accessToken)
	if err != nil {
		return nil, apperror.Transient(model.PlatformYouTube, "creating service", err)
	}

	media, err := httpGet(ctx, post.MediaURLs[0])
	if err != nil {
		return nil, apperror.Transient(model.PlatformYouTube, "fetching media", err)
	}
	defer media.Body.Close()
	if media.StatusCode != http.StatusOK {
		return nil, &apperror.Error{Kind: apperror.KindValidation, Platform: model.PlatformYouTube,
			Msg: fmt.Sprintf("media url returned %d", media.StatusCode)}
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       postTitle(post.Content),
			Description: post.Content,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "public"},
	}
	inserted, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media.Body).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err)
	}
	return &repository.PublishResult{
		PostID: inserted.Id,
		URL:    fmt.Sprintf("https://www.youtube.com/watch?v=%s", inserted.Id),
	}, nil
}

func classifyGoogleError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return classifyStatus(model.PlatformYouTube, gerr.Code, gerr.Message)
	}
	return apperror.Transient(model.PlatformYouTube, "youtube api call failed", err)
}

var _ repository.IPlatformAdapter = (*YouTubeAdapter)(nil)
