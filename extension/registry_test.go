package extension

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testExtension is a minimal Extension implementation for testing.
type testExtension struct {
	name string
}

func (e testExtension) Name() string               { return e.name }
func (e testExtension) Commands() []*cobra.Command { return nil }
func (e testExtension) MCPTools() []MCPTool        { return nil }

func TestRegister_PanicOnDuplicate(t *testing.T) {
	name := "test-duplicate-panic"
	Register(testExtension{name: name})

	assert.Panics(t, func() { Register(testExtension{name: name}) })
}

func TestRegister_Order(t *testing.T) {
	Register(testExtension{name: "test-order-b"})
	Register(testExtension{name: "test-order-a"})

	ib, ia := -1, -1
	for i, e := range All() {
		switch e.Name() {
		case "test-order-b":
			ib = i
		case "test-order-a":
			ia = i
		}
	}
	assert.Less(t, ib, ia, "registration order kept")

	e, ok := Lookup("test-order-a")
	assert.True(t, ok)
	assert.Equal(t, "test-order-a", e.Name())
	_, ok = Lookup("test-order-missing")
	assert.False(t, ok)

	assert.Panics(t, func() { Register(testExtension{}) })
}

// lifecycleExtension records the lifecycle calls it receives.
type lifecycleExtension struct {
	testExtension
	inits  int
	rows   int64
	failOn string
}

func (e *lifecycleExtension) Init(Context) error {
	e.inits++
	if e.failOn == "init" {
		return errors.New("boom")
	}
	return nil
}

func (e *lifecycleExtension) NoStoreCommands() []string { return []string{e.name + "-cmd"} }

func (e *lifecycleExtension) Vacuum(Context, *time.Duration) (int64, error) {
	if e.failOn == "vacuum" {
		return 0, errors.New("boom")
	}
	return e.rows, nil
}

func TestLifecycle(t *testing.T) {
	busy := &lifecycleExtension{testExtension: testExtension{name: "test-life-busy"}, rows: 3}
	idle := &lifecycleExtension{testExtension: testExtension{name: "test-life-idle"}}
	Register(busy)
	Register(idle)

	require.NoError(t, InitAll(nil))
	assert.Equal(t, 1, busy.inits)
	assert.Equal(t, 1, idle.inits)

	assert.Contains(t, NoStoreCommands(), "test-life-busy-cmd")

	pruned, err := VacuumAll(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, pruned, Vacuumed{Extension: "test-life-busy", Rows: 3})
	assert.NotContains(t, pruned, Vacuumed{Extension: "test-life-idle"})

	idle.failOn = "vacuum"
	_, err = VacuumAll(nil, nil)
	assert.ErrorContains(t, err, "test-life-idle")

	idle.failOn = "init"
	assert.ErrorContains(t, InitAll(nil), "init extension test-life-idle")
}

func TestEvents(t *testing.T) {
	var e Event = StoryPublishEvent{Story: "SOP-1", Version: 2}
	assert.Equal(t, EventStoryPublish, e.EventType())
	assert.Equal(t, "SOP-1", e.EventStory())
	assert.Equal(t, EventStoryRetire, StoryRetireEvent{Story: "x"}.EventType())
	assert.Equal(t, EventStoryRestore, StoryRestoreEvent{Story: "x"}.EventType())
}
