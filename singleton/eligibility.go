package singleton

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Initializer is the construction contract for provider-managed types.
//
// A type opts in by making its pointer type implement Initializer. The
// provider allocates the zero value and calls InitSingleton exactly once per
// successful construction; the method fills in fields, opens connections, and
// so on. Returning an error aborts publication and the error is reported to
// the caller wrapped in a ConstructionError.
//
// Example:
//
//	type connPool struct {
//	  dsn  string
//	  conn *sql.DB
//	}
//
//	func (p *connPool) InitSingleton() error {
//	  p.dsn = os.Getenv("APP_DSN")
//	  db, err := sql.Open("postgres", p.dsn)
//	  if err != nil {
//	    return err
//	  }
//	  p.conn = db
//	  return nil
//	}
type Initializer interface {
	InitSingleton() error
}

var initializerType = reflect.TypeOf((*Initializer)(nil)).Elem()

// Ineligibility reasons, used as ConfigurationError.Reason.
const (
	reasonPointer   = "pointer type; request the element type instead"
	reasonNotNamed  = "not a named type"
	reasonNotStruct = "not a struct type"
	reasonOpen      = "exported type is constructible anywhere via composite literal"
	reasonConfined  = "exported type confines construction to its package, not to the provider"
	reasonNoHook    = "no InitSingleton() error method on the pointer type"
)

// ineligible checks the provider contract for tt and returns the first failed
// check as a reason string, or "" when tt is eligible.
//
// Eligible means: a named, unexported struct type whose pointer type
// implements Initializer. Unexported is the gate: an exported type can be
// named, zero-valued, or literal-constructed by any importer, so the provider
// could never be its sole producer.
func ineligible(tt reflect.Type) string {
	if tt.Kind() == reflect.Pointer {
		return reasonPointer
	}
	if tt.Name() == "" {
		return reasonNotNamed
	}
	if tt.Kind() != reflect.Struct {
		return reasonNotStruct
	}
	if exportedName(tt.Name()) {
		if openStruct(tt) {
			return reasonOpen
		}
		return reasonConfined
	}
	if !reflect.PointerTo(tt).Implements(initializerType) {
		return reasonNoHook
	}
	return ""
}

// openStruct reports whether every field of tt is exported.
func openStruct(tt reflect.Type) bool {
	for i := 0; i < tt.NumField(); i++ {
		if tt.Field(i).PkgPath != "" {
			return false
		}
	}
	return true
}

// exportedName reports whether name starts with an upper-case letter.
func exportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
