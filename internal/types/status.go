package types

// Status tracks the lifecycle of a row in the database and decides
// whether it is included in queries.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)
