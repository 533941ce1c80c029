package models

// ThemeMode selects the dashboard color scheme.
type ThemeMode string

const (
	ThemeModeSystem ThemeMode = "system"
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
)

// SearchConfig holds the search-box configuration partition.
type SearchConfig struct {
	// DefaultEngine is the identifier of the search engine used when the
	// user submits a query without selecting one explicitly.
	DefaultEngine string `json:"default_engine"`

	// Engines is the ordered list of configured search engines.
	Engines []SearchEngine `json:"engines,omitempty"`

	// OpenInNewTab controls whether search results open in a new tab.
	OpenInNewTab bool `json:"open_in_new_tab"`
}

// SearchEngine describes one configurable search provider.
type SearchEngine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	QueryURL    string `json:"query_url"`
	Placeholder string `json:"placeholder,omitempty"`
}

// AIConfig holds the AI-assistant configuration partition.
// The APIKey travels inside the snapshot like every other setting; callers
// that consider it sensitive should move it into the private vault instead.
type AIConfig struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
}

// SiteSettings holds the general presentation partition of the dashboard.
type SiteSettings struct {
	Title       string `json:"title,omitempty"`
	Subtitle    string `json:"subtitle,omitempty"`
	FaviconURL  string `json:"favicon_url,omitempty"`
	FooterText  string `json:"footer_text,omitempty"`
	Language    string `json:"language,omitempty"`
	ShowClock   bool   `json:"show_clock"`
	ShowWeather bool   `json:"show_weather"`
}
