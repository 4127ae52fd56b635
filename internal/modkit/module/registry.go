package module

import "sync"

// ports holds each module's exported ports by module name. Binaries fill it while
// composing modules in main so later modules can look up earlier ones
var ports = struct {
	sync.RWMutex
	m map[string]any
}{m: map[string]any{}}

// Register publishes p under name, replacing anything already there
func Register(name string, p any) {
	ports.Lock()
	defer ports.Unlock()
	ports.m[name] = p
}

// PortsAs looks up name and asserts its ports to T. ok is false when name was never
// registered or holds some other type
func PortsAs[T any](name string) (T, bool) {
	ports.RLock()
	defer ports.RUnlock()
	p, ok := ports.m[name].(T)
	return p, ok
}

// Reset empties the registry
func Reset() {
	ports.Lock()
	defer ports.Unlock()
	clear(ports.m)
}
