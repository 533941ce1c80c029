package models

// LinkItem is a single bookmarked site on the dashboard.
type LinkItem struct {
	// ID is the client-assigned unique identifier of the link.
	ID string `json:"id"`

	// Title is the display name shown on the dashboard card.
	Title string `json:"title"`

	// URL is the destination address the card points to.
	URL string `json:"url"`

	// Icon is an optional icon reference (URL or built-in icon name).
	Icon string `json:"icon,omitempty"`

	// Description is an optional free-form note shown under the title.
	Description string `json:"description,omitempty"`

	// CategoryID links the item to a Category. Empty means uncategorized.
	CategoryID string `json:"category_id,omitempty"`

	// Order is the position of the item within its category. Lower first.
	Order int `json:"order"`

	// CreatedAt is the creation time in Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// Category groups dashboard links into a named section.
type Category struct {
	// ID is the client-assigned unique identifier of the category.
	ID string `json:"id"`

	// Name is the section title shown on the dashboard.
	Name string `json:"name"`

	// Icon is an optional icon reference for the section header.
	Icon string `json:"icon,omitempty"`

	// Order is the position of the section on the dashboard. Lower first.
	Order int `json:"order"`
}
