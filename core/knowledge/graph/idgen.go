package graph

import "github.com/google/uuid"

// SymbolID builds the deterministic identifier for a path-rooted node:
// "{kind}:{relative_path}:{qualified_name}". Folder and File nodes pass an
// empty qualifiedName; every Symbol kind passes its qualified name (e.g.
// "User.save" for a method).
func SymbolID(kind NodeKind, relativePath, qualifiedName string) string {
	if qualifiedName == "" {
		return kind.String() + ":" + relativePath
	}
	return kind.String() + ":" + relativePath + ":" + qualifiedName
}

// FreshID returns a UUID-based identifier for Community and Process nodes,
// which are not tied to a path.
func FreshID(kind NodeKind) string {
	return kind.String() + ":" + uuid.NewString()
}
