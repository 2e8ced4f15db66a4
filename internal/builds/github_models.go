package builds

// User is the subset of a GitHub user object the dashboard reads.
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Ref is a pull request head or base reference.
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// PullRequest is a pull request as returned by the review API.
type PullRequest struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	State       string `json:"state"`
	HTMLURL     string `json:"html_url"`
	User        User   `json:"user"`
	Head        Ref    `json:"head"`
	StatusesURL string `json:"statuses_url"`
	UpdatedAt   string `json:"updated_at"`
}

// Status is one commit status posting from the PR's status feed.
type Status struct {
	State       string `json:"state"`
	Context     string `json:"context"`
	Description string `json:"description"`
	TargetURL   string `json:"target_url"`
	Creator     User   `json:"creator"`
	CreatedAt   string `json:"created_at"`
}
