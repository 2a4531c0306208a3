package model

import (
	"fmt"
	"strings"
)

// Platform identifies a third-party social network a user can connect.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformReddit    Platform = "reddit"
	PlatformPinterest Platform = "pinterest"
	PlatformSnapchat  Platform = "snapchat"
	PlatformDiscord   Platform = "discord"
)

var allPlatforms = map[Platform]struct{}{
	PlatformTwitter:   {},
	PlatformLinkedIn:  {},
	PlatformFacebook:  {},
	PlatformInstagram: {},
	PlatformYouTube:   {},
	PlatformTikTok:    {},
	PlatformReddit:    {},
	PlatformPinterest: {},
	PlatformSnapchat:  {},
	PlatformDiscord:   {},
}

// ParsePlatform normalizes and validates a platform name coming from the API.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allPlatforms[p]; !ok {
		return "", fmt.Errorf("unknown platform: %q", s)
	}
	return p, nil
}

func (p Platform) String() string { return string(p) }

func (p Platform) Valid() bool {
	_, ok := allPlatforms[p]
	return ok
}
