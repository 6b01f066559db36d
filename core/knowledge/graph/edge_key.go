package graph

// edgeKey identifies an edge for idempotent upsert: (source, target, type,
// role). Role only disambiguates USES_TYPE edges; every other edge type
// leaves it at its zero value.
type edgeKey struct {
	src  string
	dst  string
	typ  EdgeType
	role TypeRole
}

func keyOf(e Edge) edgeKey {
	k := edgeKey{src: e.SourceID, dst: e.TargetID, typ: e.Type}
	if e.Type == EdgeUsesType {
		k.role = e.Role
	}
	return k
}
