package store

// MissingParentPolicy decides what child listings do when no parent id is given.
type MissingParentPolicy string

const (
	// MissingParentReject fails parentless child listings with ErrParentRequired.
	MissingParentReject MissingParentPolicy = "reject"

	// MissingParentScan answers parentless child listings with a full table scan
	// filtered by sort-key tag.
	//
	// Deprecated: a scan reads the whole table and defeats the key layout. It is
	// kept only for deployments that still depend on the old listing behavior.
	MissingParentScan MissingParentPolicy = "scan"
)

// Valid reports whether p is a known policy.
func (p MissingParentPolicy) Valid() bool {
	return p == MissingParentReject || p == MissingParentScan
}

// Config holds configuration for the Store.
type Config struct {
	// TableName is the single table holding every entity.
	// Default: "api_data_nube"
	TableName string

	// IndexName is the secondary index over GSI1PK/GSI1SK.
	// Default: "GSI1"
	IndexName string

	// MissingParent selects the parentless listing behavior for the deployment.
	// Default: MissingParentReject
	MissingParent MissingParentPolicy
}

// DefaultConfig returns the production table layout.
func DefaultConfig() Config {
	return Config{
		TableName:     "api_data_nube",
		IndexName:     "GSI1",
		MissingParent: MissingParentReject,
	}
}

// validate fills unset values with defaults.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "api_data_nube"
	}
	if c.IndexName == "" {
		c.IndexName = "GSI1"
	}
	if !c.MissingParent.Valid() {
		c.MissingParent = MissingParentReject
	}
}
