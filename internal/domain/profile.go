package domain

// ClientProfile represents a source-access persona passed to yt-dlp
type ClientProfile string

const (
	ProfileAndroid    ClientProfile = "android"     // mobile
	ProfileTVEmbedded ClientProfile = "tv_embedded" // set-top
	ProfileIOS        ClientProfile = "ios"         // tablet
)

// ClientProfiles returns the fixed order in which profiles are tried.
// A fresh slice is returned on every call.
func ClientProfiles() []ClientProfile {
	return []ClientProfile{ProfileAndroid, ProfileTVEmbedded, ProfileIOS}
}

// ExtractorArgs returns the value for yt-dlp's --extractor-args flag
func (p ClientProfile) ExtractorArgs() string {
	return "youtube:player_client=" + string(p)
}

// ValidateProfile checks if a profile is one of the known profiles
func ValidateProfile(p ClientProfile) bool {
	for _, known := range ClientProfiles() {
		if p == known {
			return true
		}
	}
	return false
}
