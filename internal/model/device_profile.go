package model

// DeviceProfile is a named viewport/emulation configuration applied uniformly
// to one capture batch. Profiles are static and never mutated.
type DeviceProfile struct {
	Name       string  `json:"name"`
	Width      int64   `json:"width"`
	Height     int64   `json:"height"`
	PixelRatio float64 `json:"pixel_ratio"`
	UserAgent  string  `json:"user_agent,omitempty"`
	Mobile     bool    `json:"mobile"`
}

const iphoneUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"

var (
	DesktopProfile = DeviceProfile{
		Name:       "desktop",
		Width:      1920,
		Height:     1080,
		PixelRatio: 1.0,
	}

	// iPhone X dimensions
	MobileProfile = DeviceProfile{
		Name:       "mobile",
		Width:      375,
		Height:     812,
		PixelRatio: 3.0,
		UserAgent:  iphoneUserAgent,
		Mobile:     true,
	}
)

// DefaultProfiles is the batch order used by the capture endpoints.
func DefaultProfiles() []DeviceProfile {
	return []DeviceProfile{DesktopProfile, MobileProfile}
}
