// Package cli wires the export engine into cobra commands.
package cli

import (
	"github.com/inkport/inkport/internal/export"
	"github.com/inkport/inkport/internal/gitcmd"
	"github.com/inkport/inkport/internal/publish"
	"github.com/inkport/inkport/internal/vault"
)

// App is the composition root shared by the CLI commands. It owns the job
// registry, the credential vault and the event sink.
type App struct {
	Vault    *vault.Vault
	Sink     *ConsoleSink
	Exports  *export.Manager
	Deployer *publish.Deployer
}

// NewApp builds the default production wiring.
func NewApp() *App {
	v := vault.New()
	sink := NewConsoleSink()
	return &App{
		Vault:    v,
		Sink:     sink,
		Exports:  export.NewManager(v, sink),
		Deployer: publish.NewDeployer(gitcmd.New()),
	}
}
