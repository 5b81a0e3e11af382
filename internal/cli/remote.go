package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coremaven/llama.cpp-GUI/pkg/client"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Remote actions talk to a running `llamagui serve` daemon over HTTP.

func newClient(cfg *Config) *client.Client { return client.New(cfg.Addr) }

func daemonURL(cfg *Config) string {
	if cfg.Addr != "" {
		return cfg.Addr
	}
	return client.DefaultBaseURL
}

// wrapUnreachable turns a transport-level failure into a hint that the
// daemon is probably not running. API errors pass through untouched.
func wrapUnreachable(cfg *Config, err error) error {
	if err == nil {
		return nil
	}
	var ae *client.APIError
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("cannot reach the control daemon at %s (start it with 'llamagui serve'): %w", daemonURL(cfg), err)
}

func fnStatus(cfg *Config) error {
	ctx := context.Background()
	st, err := newClient(cfg).Status(ctx)
	if err != nil {
		return wrapUnreachable(cfg, err)
	}
	fmt.Printf("state:    %s\n", st.State)
	if st.PID != 0 {
		fmt.Printf("pid:      %d\n", st.PID)
	}
	if st.State == types.StateRunning || st.State == types.StateStopping {
		fmt.Printf("uptime:   %s\n", (time.Duration(st.UptimeSeconds) * time.Second).String())
	}
	if st.Profile != "" {
		fmt.Printf("profile:  %s\n", st.Profile)
	}
	if st.State == types.StateCrashed {
		fmt.Printf("exit:     %d\n", st.ExitCode)
	}
	if st.LastError != "" {
		fmt.Printf("error:    %s\n", st.LastError)
	}
	return nil
}

func fnStart(cfg *Config) error {
	st, err := newClient(cfg).Start(context.Background())
	if err != nil {
		return wrapUnreachable(cfg, err)
	}
	fmt.Printf("llama-server started (pid %d)\n", st.PID)
	return nil
}

func fnStop(cfg *Config) error {
	st, err := newClient(cfg).Stop(context.Background())
	if err != nil {
		return wrapUnreachable(cfg, err)
	}
	if st.State == types.StateCrashed {
		fmt.Printf("llama-server exited with code %d\n", st.ExitCode)
		return nil
	}
	fmt.Println("llama-server stopped")
	return nil
}

func fnDetach(cfg *Config) error {
	pid, err := newClient(cfg).Detach(context.Background())
	if err != nil {
		return wrapUnreachable(cfg, err)
	}
	fmt.Printf("llama-server left running (pid %d)\n", pid)
	return nil
}

func fnHealth(cfg *Config) error {
	h, err := newClient(cfg).ServerHealth(context.Background())
	if err != nil {
		return wrapUnreachable(cfg, err)
	}
	if h.URL != "" {
		fmt.Printf("%s (%s)\n", h.Status, h.URL)
		return nil
	}
	fmt.Println(h.Status)
	return nil
}

func fnLogs(cfg *Config, tail int) error {
	logs, err := newClient(cfg).Logs(context.Background(), tail)
	if err != nil {
		return wrapUnreachable(cfg, err)
	}
	for _, line := range logs.Lines {
		fmt.Println(line)
	}
	return nil
}
