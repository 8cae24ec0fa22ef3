package glowmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageNames(app *App) []string {
	names := make([]string, 0, len(app.stages))
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	return names
}

func TestUseStage(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()
	app.UseStage(Stage{Name: "Feedback"}, BeforeStage(Render))
	app.UseStage(Stage{Name: "Hud"}, AfterStage(Render))

	assert.Equal(t, []string{
		"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender",
		"Feedback", "Render", "Hud", "PostRender", "Finale",
	}, stageNames(app))

	// New stages accept both kinds of systems.
	app.UseSystem(System(func() {}).InStage(Stage{Name: "Hud"}))
	app.UseSystem(System(func() {}).InStage(Stage{Name: "Hud"}).InState(OnEnter(1)))
	assert.Len(t, app.systemsStateless["Hud"], 1)
	assert.Len(t, app.systems["Hud"][1][enter], 1)

	require.PanicsWithValue(t, "Stage Missing not found", func() {
		app.UseStage(Stage{Name: "X"}, AfterStage(Stage{Name: "Missing"}))
	})
}

func TestUseSystemErrors(t *testing.T) {
	stateless := NewAppBuilder().Build()
	require.PanicsWithValue(t, "Trying to use a stateful system in a stateless app.", func() {
		stateless.UseSystem(System(func() {}).InState(OnExecute(0)))
	})
	require.PanicsWithValue(t, "Stage Nowhere doesn't exist", func() {
		stateless.UseSystem(System(func() {}).InStage(Stage{Name: "Nowhere"}))
	})

	stateful := NewAppBuilder().UseStates(0, 2).Build()
	require.PanicsWithValue(t, "State 7 doesn't exist", func() {
		stateful.UseSystem(System(func() {}).InState(OnEnter(7)))
	})
}

func TestSystemBuilderIsValue(t *testing.T) {
	base := System(func() {})
	narrowed := base.InStage(Render).InState(OnExit(3))

	assert.Equal(t, Update, base.inStage)
	assert.False(t, base.stateProvided)
	assert.Equal(t, Render, narrowed.inStage)
	assert.Equal(t, State(3), narrowed.inState)
	assert.Equal(t, exit, narrowed.inStatePhase)

	always := narrowed.InState(Always())
	assert.True(t, always.runAlways)
}
