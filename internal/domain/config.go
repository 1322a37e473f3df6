package domain

// Profile stores local lookup defaults.
type Profile struct {
	Name          string      `json:"name"`
	IsDefault     bool        `json:"is_default"`
	Location      *Coordinate `json:"location,omitempty"`
	AllowLocation bool        `json:"allow_location,omitempty"`
	Span          float64     `json:"span,omitempty"`
}

// ResolvedSpan returns the profile span or DefaultSpan when unset.
func (p Profile) ResolvedSpan() float64 {
	if p.Span > 0 {
		return p.Span
	}
	return DefaultSpan
}

// Config stores all local profiles.
type Config struct {
	Profiles []Profile `json:"profiles"`
}
