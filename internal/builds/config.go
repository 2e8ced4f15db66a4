package builds

// Config points the resolver at a repository on the review API.
type Config struct {
	// APIURL is the API root, e.g. https://api.github.com.
	APIURL string

	// Repo is "owner/name".
	Repo string

	// Token is sent as "Authorization: token <Token>" when non-empty.
	Token string

	// BuildUser is the account whose status postings carry build links.
	BuildUser string
}
