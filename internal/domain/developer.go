package domain

// Developer is one search result: a registered developer near the viewport center.
type Developer struct {
	ID        string      `json:"id" yaml:"id"`
	Handle    string      `json:"github_username" yaml:"github_username"`
	Name      string      `json:"name" yaml:"name"`
	Bio       string      `json:"bio" yaml:"bio"`
	AvatarURL string      `json:"avatar_url" yaml:"avatar_url"`
	Stacks    []string    `json:"stacks" yaml:"stacks"`
	Position  *Coordinate `json:"position,omitempty" yaml:"position,omitempty"`
}

// NavigationEvent asks the detail screen to open a developer profile.
type NavigationEvent struct {
	Screen string `json:"screen" yaml:"screen"`
	Handle string `json:"github_username" yaml:"github_username"`
}

// ProfileScreen is the detail screen name carried by navigation events.
const ProfileScreen = "Profile"
