package manifest

// Repository describes where the package sources live.
type Repository struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// PlatformManifest is the generated package.json of a platform package.
// Field order is the order npm users expect to read.
type PlatformManifest struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Description string     `json:"description"`
	Main        string     `json:"main"`
	OS          []string   `json:"os"`
	CPU         []string   `json:"cpu"`
	Repository  Repository `json:"repository"`
	License     string     `json:"license"`
}
