package domain

// SnapshotState tells a list view what to render for a snapshot.
type SnapshotState string

const (
	StateLoading       SnapshotState = "loading"
	StateReady         SnapshotState = "ready"
	StateError         SnapshotState = "error"
	StateEmpty         SnapshotState = "empty"
	StateEmptyFiltered SnapshotState = "empty_filtered"
)

// Snapshot is one result set pushed by a live query.
type Snapshot struct {
	Query TieQuery      `json:"query"`
	State SnapshotState `json:"state"`
	Ties  []Tie         `json:"ties"`
	Error string        `json:"error,omitempty"`
}
