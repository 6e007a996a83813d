package domain

// Relation is a typed directed edge between two work items. Only follows
// relations constrain scheduling; the other kinds are informational.
type Relation struct {
	PredecessorID string
	SuccessorID   string
	Type          RelationType
}
