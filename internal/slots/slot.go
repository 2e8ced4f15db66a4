package slots

// Slot is one pre-provisioned deployment target. ID is stable and equals the
// slot's 1-based position in the persisted sequence.
type Slot struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Directory   string `json:"directory"`
	URL         string `json:"url"`

	PR          int    `json:"pr"`
	PRTitle     string `json:"pr_title"`
	PRAuthor    string `json:"pr_author"`
	AvatarURL   string `json:"avatar_url"`
	Branch      string `json:"branch"`
	CommitID    string `json:"commit_id"`
	BuildNumber string `json:"build_number"`
}

// NoNewBuild is the PR value an operator submits to keep the current deployment.
const NoNewBuild = 0

// Config holds the operator-editable fields of a slot.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Directory   string `json:"directory"`
	URL         string `json:"url"`
}

// Build is the build descriptor captured when a slot is deployed.
type Build struct {
	PR          int    `json:"pr"`
	PRTitle     string `json:"pr_title"`
	PRAuthor    string `json:"pr_author"`
	AvatarURL   string `json:"avatar_url"`
	Branch      string `json:"branch"`
	CommitID    string `json:"commit_id"`
	BuildNumber string `json:"build_number"`
}

// Config returns the slot's operator configuration.
func (s Slot) Config() Config {
	return Config{
		Name:        s.Name,
		Description: s.Description,
		Directory:   s.Directory,
		URL:         s.URL,
	}
}

// Build returns the build fields stored on the slot.
func (s Slot) Build() Build {
	return Build{
		PR:          s.PR,
		PRTitle:     s.PRTitle,
		PRAuthor:    s.PRAuthor,
		AvatarURL:   s.AvatarURL,
		Branch:      s.Branch,
		CommitID:    s.CommitID,
		BuildNumber: s.BuildNumber,
	}
}

// WithConfig returns a copy of s with only the configuration fields replaced.
func (s Slot) WithConfig(c Config) Slot {
	s.Name = c.Name
	s.Description = c.Description
	s.Directory = c.Directory
	s.URL = c.URL
	return s
}

// WithBuild returns a copy of s with only the build fields replaced.
func (s Slot) WithBuild(b Build) Slot {
	s.PR = b.PR
	s.PRTitle = b.PRTitle
	s.PRAuthor = b.PRAuthor
	s.AvatarURL = b.AvatarURL
	s.Branch = b.Branch
	s.CommitID = b.CommitID
	s.BuildNumber = b.BuildNumber
	return s
}
