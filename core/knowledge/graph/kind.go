package graph

// NodeKind discriminates the fixed property set carried by a Node. Every
// node in the graph is one flat struct; the kind tells consumers which
// subset of fields is meaningful — the tagged-variant dispatch the storage
// layer and every resolver phase key off of.
type NodeKind uint8

const (
	KindFolder NodeKind = iota
	KindFile
	KindFunction
	KindClass
	KindMethod
	KindInterface
	KindTypeAlias
	KindEnum
	KindCommunity
	KindProcess
)

var nodeKindNames = [...]string{
	KindFolder:    "Folder",
	KindFile:      "File",
	KindFunction:  "Function",
	KindClass:     "Class",
	KindMethod:    "Method",
	KindInterface: "Interface",
	KindTypeAlias: "TypeAlias",
	KindEnum:      "Enum",
	KindCommunity: "Community",
	KindProcess:   "Process",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// IsSymbol reports whether this kind participates in the symbol subgraph
// (CALLS/USES_TYPE/EXTENDS/IMPLEMENTS) that community detection and flow
// tracing operate over.
func (k NodeKind) IsSymbol() bool {
	switch k {
	case KindFunction, KindClass, KindMethod, KindInterface, KindTypeAlias, KindEnum:
		return true
	default:
		return false
	}
}

// EdgeType discriminates the directed, typed, labelled edges in the graph.
type EdgeType uint8

const (
	EdgeContains EdgeType = iota
	EdgeDefines
	EdgeCalls
	EdgeImports
	EdgeExtends
	EdgeImplements
	EdgeUsesType
	EdgeExports
	EdgeMemberOf
	EdgeStepInProcess
	EdgeCoupledWith
)

var edgeTypeNames = [...]string{
	EdgeContains:      "CONTAINS",
	EdgeDefines:       "DEFINES",
	EdgeCalls:         "CALLS",
	EdgeImports:       "IMPORTS",
	EdgeExtends:       "EXTENDS",
	EdgeImplements:    "IMPLEMENTS",
	EdgeUsesType:      "USES_TYPE",
	EdgeExports:       "EXPORTS",
	EdgeMemberOf:      "MEMBER_OF",
	EdgeStepInProcess: "STEP_IN_PROCESS",
	EdgeCoupledWith:   "COUPLED_WITH",
}

func (t EdgeType) String() string {
	if int(t) < len(edgeTypeNames) {
		return edgeTypeNames[t]
	}
	return "UNKNOWN"
}

// TypeRole is the closed set of roles a USES_TYPE edge can carry.
type TypeRole uint8

const (
	RoleParam TypeRole = iota
	RoleReturn
	RoleVariable
)

func (r TypeRole) String() string {
	switch r {
	case RoleParam:
		return "param"
	case RoleReturn:
		return "return"
	case RoleVariable:
		return "variable"
	default:
		return "unknown"
	}
}
