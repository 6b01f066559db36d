package pipeline

// blocklist holds callee names excluded from the call graph: language
// builtins, web/runtime globals, framework hook names, and base-class-
// library noise. Immutable after init, per spec.md §9's "global state" note.
var blocklist = map[string]bool{
	// Python builtins
	"print": true, "len": true, "range": true, "map": true, "filter": true,
	"sorted": true, "list": true, "dict": true, "set": true, "str": true,
	"int": true, "float": true, "bool": true, "type": true, "super": true,
	"isinstance": true, "issubclass": true, "hasattr": true, "getattr": true,
	"setattr": true, "open": true, "iter": true, "next": true, "zip": true,
	"enumerate": true, "any": true, "all": true, "min": true, "max": true,
	"sum": true, "abs": true, "round": true, "repr": true, "id": true,
	"hash": true, "dir": true, "vars": true, "input": true, "format": true,
	"tuple": true, "frozenset": true, "bytes": true, "bytearray": true,
	"memoryview": true, "object": true, "property": true, "classmethod": true,
	"staticmethod": true, "delattr": true, "callable": true, "compile": true,
	"eval": true, "exec": true, "globals": true, "locals": true,
	"breakpoint": true, "exit": true, "quit": true,

	// Python stdlib method names that collide with user-defined symbols
	"append": true, "extend": true, "update": true, "pop": true, "get": true,
	"items": true, "keys": true, "values": true, "split": true, "join": true,
	"strip": true, "replace": true, "startswith": true, "endswith": true, "lower": true,
	"upper": true, "encode": true, "decode": true, "read": true,
	"write": true, "close": true,

	// JS/TS built-in globals
	"console": true, "setTimeout": true, "setInterval": true,
	"clearTimeout": true, "clearInterval": true, "JSON": true, "Array": true,
	"Object": true, "Promise": true, "Math": true, "Date": true,
	"Error": true, "Symbol": true, "parseInt": true, "parseFloat": true,
	"isNaN": true, "isFinite": true, "encodeURIComponent": true,
	"decodeURIComponent": true, "fetch": true, "require": true,
	"exports": true, "module": true, "document": true, "window": true,
	"process": true, "Buffer": true, "URL": true,

	// JS/TS dotted method names extracted as bare call names
	"log": true, "error": true, "warn": true, "info": true, "debug": true,
	"parse": true, "stringify": true, "assign": true, "freeze": true,
	"isArray": true, "from": true, "of": true, "resolve": true,
	"reject": true, "race": true, "floor": true, "ceil": true,
	"random": true,

	// React hooks
	"useState": true, "useEffect": true, "useRef": true, "useCallback": true,
	"useMemo": true, "useContext": true, "useReducer": true,
	"useLayoutEffect": true, "useImperativeHandle": true,
	"useDebugValue": true, "useId": true, "useTransition": true,
	"useDeferredValue": true,

	// C# / .NET builtins and common BCL methods
	"Console": true, "WriteLine": true, "ReadLine": true, "Write": true,
	"ToString": true, "GetType": true, "Equals": true, "GetHashCode": true,
	"ReferenceEquals": true, "Convert": true, "String": true, "Int32": true,
	"Int64": true, "Double": true, "Boolean": true, "Decimal": true,
	"Guid": true, "DateTime": true, "TimeSpan": true, "Task": true,
	"Thread": true, "Dispose": true, "GC": true, "Environment": true,
	"Add": true, "Remove": true, "Contains": true, "Clear": true,
	"Count": true, "Select": true, "Where": true, "OrderBy": true,
	"GroupBy": true, "First": true, "FirstOrDefault": true, "ToList": true,
	"ToArray": true, "ToDictionary": true, "Any": true, "All": true, "Concat": true,
	"Skip": true, "Take": true, "Distinct": true, "ConfigureAwait": true,
	"GetAwaiter": true, "GetResult": true, "AddSingleton": true,
	"AddScoped": true, "AddTransient": true, "AddControllers": true,
	"AddSwaggerGen": true, "UseSwagger": true,
}

// isBlocked reports whether callee should be excluded from the call graph.
// A blocked name on a self/this receiver still resolves, since that almost
// always means a user override of a builtin-shaped method name.
func isBlocked(callee, receiver string) bool {
	if receiver == "self" || receiver == "this" {
		return false
	}
	return blocklist[callee]
}
