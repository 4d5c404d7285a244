package domain

// EntryKind distinguishes shapes from connectors in the registry.
type EntryKind string

const (
	EntryShape     EntryKind = "shape"
	EntryConnector EntryKind = "connector"
)

// RegistryEntry maps a caller-visible ID to an executor-visible ID for one
// session. Caller IDs are unique within a session and never reused after
// retirement; executor IDs are opaque.
type RegistryEntry struct {
	CallerID   int            `json:"caller_id"`
	ExecutorID string         `json:"executor_id"`
	Doc        DocumentHandle `json:"doc"`
	Kind       EntryKind      `json:"kind"`
	Alive      bool           `json:"alive"`
}

// RegistrySnapshot is the serializable state of a session registry, used by
// RegistryStore implementations.
type RegistrySnapshot struct {
	SessionID string                `json:"session_id"`
	Entries   []RegistryEntry       `json:"entries"`
	NextID    map[DocumentHandle]int `json:"next_id"`
}
