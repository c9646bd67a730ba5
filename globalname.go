package stash

import (
	"reflect"
	"runtime"
	"strings"
)

// typeGlobalName derives a GLOBAL name from a reflect.Type in
// "pkgpath.Name" form, mirroring Python's module:qualname for a class.
// Unnamed types (struct literals, slices, maps) have no such name and
// are rejected. Types declared inside a function do have one and are not
// told apart from a same-named type elsewhere in the package.
func typeGlobalName(t reflect.Type) (string, bool) {
	if t.PkgPath() == "" || t.Name() == "" {
		return "", false
	}
	return t.PkgPath() + "." + t.Name(), true
}

// funcGlobalName derives a GLOBAL name from a named function value using
// runtime.FuncForPC. Closures get compiler-generated names of their own
// and resolve just as deterministically, but won't survive a rebuild —
// callers that need portable references should register a GlobalRef
// under a stable name instead of relying on funcGlobalName.
func funcGlobalName(rv reflect.Value) (string, bool) {
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return "", false
	}
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil || fn.Name() == "" {
		return "", false
	}
	return fn.Name(), true
}

// splitGlobalName turns a Go-runtime-derived "pkg/path.Name" into the
// wire format's "module:qualname" pair.
func splitGlobalName(full string) (module, qualname string, ok bool) {
	prefix := ""
	tail := full
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		prefix = full[:idx+1]
		tail = full[idx+1:]
	}
	dot := strings.Index(tail, ".")
	if dot < 0 {
		return "", "", false
	}
	return prefix + tail[:dot], tail[dot+1:], true
}
