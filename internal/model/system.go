package model

// VersionInfo describes the running build and its store.
type VersionInfo struct {
	AppVersion  string `json:"app_version"`
	StoreDriver string `json:"store_driver"`
	// SchemaVersion is the goose migration version of the SQLite store. It is
	// absent for MongoDB, which has no managed schema.
	SchemaVersion *int64 `json:"schema_version,omitempty"`
}
