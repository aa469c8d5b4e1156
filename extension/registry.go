// registry.go holds the process-wide extension list and the lifecycle
// passes run over it: ledger init, storeless command collection and vacuum.
//
// Extensions register from init(), so a duplicate name is a build mistake
// and panics, as database/sql.Register does for drivers. Order follows
// registration so commands and MCP tools come out the same every run.

package extension

import (
	"fmt"
	"sync"
	"time"
)

var (
	mu     sync.RWMutex
	byName = map[string]Extension{}
	order  []Extension
)

// Register adds an extension. Called from init() functions.
func Register(e Extension) {
	name := e.Name()
	if name == "" {
		panic("extension registered without a name")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, dup := byName[name]; dup {
		panic("extension already registered: " + name)
	}
	byName[name] = e
	order = append(order, e)
}

// All returns registered extensions in registration order.
func All() []Extension {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Extension(nil), order...)
}

// Lookup returns the extension registered under name.
func Lookup(name string) (Extension, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := byName[name]
	return e, ok
}

// InitAll runs Init on every Initializable extension against an open
// ledger, stopping at the first failure.
func InitAll(ctx Context) error {
	for _, e := range All() {
		i, ok := e.(Initializable)
		if !ok {
			continue
		}
		if err := i.Init(ctx); err != nil {
			return fmt.Errorf("init extension %s: %w", e.Name(), err)
		}
	}
	return nil
}

// NoStoreCommands collects the top-level command names extensions run
// without a ledger.
func NoStoreCommands() []string {
	var names []string
	for _, e := range All() {
		if s, ok := e.(Storeless); ok {
			names = append(names, s.NoStoreCommands()...)
		}
	}
	return names
}

// Vacuumed is the row count one extension removed during vacuum.
type Vacuumed struct {
	Extension string `json:"extension"`
	Rows      int64  `json:"rows"`
}

// VacuumAll asks every Vacuumable extension to drop rows belonging to
// vacuumed stories. Extensions that removed nothing are left out.
func VacuumAll(ctx Context, olderThan *time.Duration) ([]Vacuumed, error) {
	var out []Vacuumed
	for _, e := range All() {
		v, ok := e.(Vacuumable)
		if !ok {
			continue
		}
		n, err := v.Vacuum(ctx, olderThan)
		if err != nil {
			return out, fmt.Errorf("vacuum extension %s: %w", e.Name(), err)
		}
		if n > 0 {
			out = append(out, Vacuumed{Extension: e.Name(), Rows: n})
		}
	}
	return out, nil
}
