package domain

// Platform identifies the advertising platform an export came from.
type Platform string

const (
	PlatformGoogleAds Platform = "GOOGLE_ADS"
	PlatformMetaAds   Platform = "META_ADS"
	PlatformTikTokAds Platform = "TIKTOK_ADS"
)

// Platforms lists every supported platform.
func Platforms() []Platform {
	return []Platform{PlatformGoogleAds, PlatformMetaAds, PlatformTikTokAds}
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformGoogleAds, PlatformMetaAds, PlatformTikTokAds:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}
