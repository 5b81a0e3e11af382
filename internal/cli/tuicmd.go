package cli

import (
	"github.com/rs/zerolog"

	"github.com/coremaven/llama.cpp-GUI/internal/config"
	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/internal/tui"
)

// fnTUI opens the interactive terminal UI with an in-process manager.
// Structured logging stays off; it would fight the alternate screen.
func fnTUI(cfg *Config) error {
	dcfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	store, err := openStore(cfg, zerolog.Nop())
	if err != nil {
		return err
	}

	broker := supervisor.NewBroker()
	sup := supervisor.New(supervisor.Options{
		LogPath:     dcfg.ServerLogPath,
		StopTimeout: dcfg.StopTimeout(),
		BufferLines: dcfg.LogBufferLines,
		Publisher:   broker,
	})
	mgr := manager.New(manager.Options{Store: store, Supervisor: sup, Publisher: broker})

	return tui.Run(mgr, broker)
}
