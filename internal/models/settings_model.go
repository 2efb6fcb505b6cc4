package models

// CatBorder is the frame drawn around the daily cat.
type CatBorder string

const (
	BorderRainbow CatBorder = "rainbow"
	BorderDark    CatBorder = "dark"
)

// CatBackground is the pattern drawn behind the daily cat.
type CatBackground string

const (
	BackgroundBows  CatBackground = "bows"
	BackgroundFancy CatBackground = "fancy"
	BackgroundPaws  CatBackground = "paws"
)

// AppTheme is the overall color scheme.
type AppTheme string

const (
	ThemePink        AppTheme = "pink"
	ThemeGreenPurple AppTheme = "green-purple"
	ThemeDark        AppTheme = "dark"
)

// Defaults applied to any missing or unrecognized value.
const (
	DefaultCatBorder     = BorderDark
	DefaultCatBackground = BackgroundBows
	DefaultAppTheme      = ThemePink
)

var (
	AllCatBorders     = []CatBorder{BorderRainbow, BorderDark}
	AllCatBackgrounds = []CatBackground{BackgroundBows, BackgroundFancy, BackgroundPaws}
	AllAppThemes      = []AppTheme{ThemePink, ThemeGreenPurple, ThemeDark}
)

func (b CatBorder) Valid() bool {
	for _, v := range AllCatBorders {
		if v == b {
			return true
		}
	}
	return false
}

func (b CatBackground) Valid() bool {
	for _, v := range AllCatBackgrounds {
		if v == b {
			return true
		}
	}
	return false
}

func (t AppTheme) Valid() bool {
	for _, v := range AllAppThemes {
		if v == t {
			return true
		}
	}
	return false
}

// Settings is the stored document at users/{id}/settings/preferences.
type Settings struct {
	CatBorder     CatBorder     `json:"catBorder" xml:"catBorder" firestore:"catBorder"`
	CatBackground CatBackground `json:"catBackground" xml:"catBackground" firestore:"catBackground"`
	AppTheme      AppTheme      `json:"appTheme" xml:"appTheme" firestore:"appTheme"`
	UpdatedAt     int64         `json:"updatedAt" xml:"updatedAt" firestore:"updatedAt"` // ms since epoch
}

// DefaultSettings returns the default table with a zero timestamp.
func DefaultSettings() Settings {
	return Settings{
		CatBorder:     DefaultCatBorder,
		CatBackground: DefaultCatBackground,
		AppTheme:      DefaultAppTheme,
	}
}

// WithDefaults replaces missing or unknown values with their defaults.
func (s Settings) WithDefaults() Settings {
	if !s.CatBorder.Valid() {
		s.CatBorder = DefaultCatBorder
	}
	if !s.CatBackground.Valid() {
		s.CatBackground = DefaultCatBackground
	}
	if !s.AppTheme.Valid() {
		s.AppTheme = DefaultAppTheme
	}
	return s
}

// SettingsPatch carries the fields a caller wants to change. Nil fields are left as stored.
type SettingsPatch struct {
	CatBorder     *CatBorder     `json:"catBorder,omitempty"`
	CatBackground *CatBackground `json:"catBackground,omitempty"`
	AppTheme      *AppTheme      `json:"appTheme,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.CatBorder == nil && p.CatBackground == nil && p.AppTheme == nil
}
