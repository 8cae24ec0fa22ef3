package glowmask

// Commands is handed to modules and systems to change the app from inside a
// frame.
type Commands struct {
	app *App
}

// ChangeState takes effect at the end of the current frame.
func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Exit moves a stateful app to its final state, or stops a stateless app
// after the current frame.
func (cmd *Commands) Exit() *Commands {
	cmd.app.requestExit()
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
