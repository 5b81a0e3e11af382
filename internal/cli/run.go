package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coremaven/llama.cpp-GUI/internal/config"
	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// fnRun launches llama-server in the foreground without the daemon:
// output lines go to stdout, Ctrl+C stops the server (or leaves it
// running with --leave-running) and returns.
func fnRun(cfg *Config, leaveRunning bool) error {
	log := setupLogging(cfg.logLevel(), cfg.logFormat())
	installLoggers(log)

	dcfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
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

	sub, cancel := broker.Subscribe(256)
	defer cancel()

	exited := make(chan types.Event, 1)
	go func() {
		for ev := range sub {
			switch ev.Type {
			case types.EventLog:
				fmt.Println(ev.Line)
			case types.EventWarning:
				log.Warn().Msg(ev.Message)
			case types.EventError:
				log.Error().Msg(ev.Message)
			case types.EventState:
				if ev.State == types.StateStopped || ev.State == types.StateCrashed {
					select {
					case exited <- ev:
					default:
					}
				}
			}
		}
	}()

	st, err := mgr.StartServer()
	if err != nil {
		return err
	}
	log.Info().Int("pid", st.PID).Msg("llama-server running, Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		if leaveRunning {
			pid, err := mgr.DetachServer()
			if err != nil {
				return err
			}
			log.Info().Int("pid", pid).Msg("llama-server left running")
			return nil
		}
		if _, err := mgr.StopServer(); err != nil {
			return err
		}
		return nil
	case ev := <-exited:
		if ev.State == types.StateCrashed {
			return fmt.Errorf("llama-server exited unexpectedly with code %d", ev.ExitCode)
		}
		return nil
	}
}
