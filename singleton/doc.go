// Package singleton provides a small, generic lazy instance provider for Go.
//
// It hands out at most one instance per type, constructed on first request
// and shared by every later caller. Construction is guarded per type: a
// lock-free check serves the common already-constructed case, and a mutex
// protects the single construction attempt, so under any interleaving of
// goroutines a type's InitSingleton runs at most once successfully.
//
// A type opts in by being a named, unexported struct whose pointer type
// implements Initializer:
//
//	type appConfig struct {
//	  listenAddr string
//	}
//
//	func (c *appConfig) InitSingleton() error {
//	  c.listenAddr = os.Getenv("APP_LISTEN_ADDR")
//	  return nil
//	}
//
//	cfg, err := singleton.Instance[appConfig]()
//
// Unexported is the point, not a restriction: since importers cannot even
// name the type, Instance is its only producer, which is what makes the
// "exactly one instance" claim enforceable. Exported types are rejected with
// a ConfigurationError explaining why.
//
// This package intentionally supports two tiers:
//
//   - Instance[T] and friends: the package-wide provider with eligibility
//     checks, typed errors, lifecycle events (SetObserver), and eager
//     startup construction (Prime). Best for process-wide resources such as
//     config, pools, and clients.
//
//   - Cell[T]: a standalone lazy container with none of the above. The
//     caller supplies the init function and owns the scope. Best when the
//     provider contract does not fit: exported types, several instances of
//     one type, or constructors that need arguments.
//
// Design goals:
//   - Lightweight: small API surface, no container graph, reflection only
//     for type identity and eligibility checks, never for injection.
//   - Safe under concurrency: losers of a construction race block and then
//     share the winner's instance; nobody observes a half-built value.
//   - Honest failures: errors are typed, carry the type name, and are never
//     cached, so a fixed environment heals on the next request.
//   - Test-friendly: distinct types get distinct slots, and events expose
//     slow-path activity for assertions.
//
// Notes on performance:
//   - The constructed path is one sync.Map load plus one atomic load.
//   - Error paths avoid fmt.Errorf; messages are built by concatenation so
//     rejection checks stay cheap when probed in loops or benchmarks.
//
// Accessor functions for managed types can be generated with cmd/singen; see
// examples/ for end-to-end wiring style.
//
// Import
//
//	"github.com/sghaida/osi/singleton"
package singleton
