package model

// ImageRef points at one captured screenshot. Exactly one field is set,
// according to the output mode chosen for the run: Base64 for programmatic
// callers, Path for runs that stage temporary PNG files. Modes are never
// mixed within a run.
type ImageRef struct {
	Base64 string `json:"image_base64,omitempty"`
	Path   string `json:"image_path,omitempty"`
}

// Capture is one successful (URL, profile) screenshot with its gallery label.
type Capture struct {
	URL   string   `json:"url"`
	Label string   `json:"label"`
	Image ImageRef `json:"image"`
}
