package glowmask

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	// Test changing state
	app.changeState(2)
	if app.nextState != State(2) {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	// Test executing state change
	app.executeChangeState(2)
	if app.state != State(2) {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Same type twice panics
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	got, ok := resourceOf[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	_, ok = resourceOf[Input](app)
	assert.False(t, ok)
}

func TestApp_callSystemInjectsResources(t *testing.T) {
	app := NewAppBuilder().Build()
	r1 := NewMockResource1("one")
	app.addResources(r1)

	var gotRes *MockResource1
	var gotCmd *Commands
	app.callSystem(func(cmd *Commands, r *MockResource1) {
		gotCmd = cmd
		gotRes = r
		r.name = "changed"
	})

	require.NotNil(t, gotCmd)
	assert.Same(t, app, gotCmd.app)
	assert.Same(t, r1, gotRes)
	assert.Equal(t, "changed", r1.name)
}

func TestApp_callSystemUnresolved(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Panics(t, func() {
		app.callSystem(func(r *MockResource2) {})
	})
	assert.Panics(t, func() {
		app.callSystem(func(n int) {})
	})
}

const (
	testBoot State = iota
	testRun
	testDone
)

func TestApp_RunStateful(t *testing.T) {
	var events []string
	ticks := 0
	executes := 0

	app := NewAppBuilder().UseStates(testBoot, testDone).Build()
	app.UseSystem(System(func(cmd *Commands) {
		events = append(events, "enter boot")
		cmd.ChangeState(testRun)
	}).InState(OnEnter(testBoot)))
	app.UseSystem(System(func(cmd *Commands) {
		events = append(events, "run")
		executes++
		if executes == 3 {
			cmd.Exit()
		}
	}).InStage(PostUpdate).InState(OnExecute(testRun)))
	app.UseSystem(System(func() {
		events = append(events, "exit run")
	}).InStage(Finale).InState(OnExit(testRun)))
	app.UseSystem(System(func() { ticks++ }).InStage(PreUpdate))

	app.Run()

	assert.Equal(t, []string{"enter boot", "run", "run", "run", "exit run"}, events)
	assert.Equal(t, 4, ticks)
	assert.Equal(t, testDone, app.State())
}

func TestApp_RunStatelessExit(t *testing.T) {
	frames := 0
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(cmd *Commands) {
		frames++
		if frames == 5 {
			cmd.Exit()
		}
	}))

	app.Run()
	assert.Equal(t, 5, frames)
}
