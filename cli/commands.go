package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Load a rate table and validate its replacement chains."`
	At      AtCmd      `cmd:"" help:"List the records valid at an instant or usable during a window."`
	Resolve ResolveCmd `cmd:"" help:"Resolve the record applying at an instant, following its replacement chain."`
	Changes ChangesCmd `cmd:"" help:"List a record's future transitions up to a horizon."`
	Init    InitCmd    `cmd:"" help:"Write an example rate table."`
	Serve   ServeCmd   `cmd:"" help:"Serve the rate table over a local JSON API."`
}
