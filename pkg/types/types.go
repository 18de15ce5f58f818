package types

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the normalized centre of the box
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Candidate is one region a vision model proposes as a field of view
type Candidate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	// Ki67 is the estimated percent-positive level, 0 (negligible) to 4 (hot spot)
	Ki67 int `json:"ki67"`
}

// SuggestionResult contains the candidate fields returned by the vision model
type SuggestionResult struct {
	Candidates  []Candidate `json:"candidates"`
	Description string      `json:"description"`
}

// SaveOptions controls how rendered images are written
type SaveOptions struct {
	Format   string
	Quality  int
	Lossless bool
}
