package module

import "sync"

// process-wide registry that lets modules exchange port sets at
// bootstrap, single-process composition only
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register publishes ports under the module name, later writes win
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// PortsAs looks up name and asserts the stored ports to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, found := reg[name]
	mu.RUnlock()

	var zero T
	if !found {
		return zero, false
	}
	out, ok := v.(T)
	if !ok {
		return zero, false
	}
	return out, true
}

// Reset empties the registry between tests
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
