package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/pkg/client"
)

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(defaultCLIConfig()) }

// buildRootCmdWith constructs the Cobra command tree wired to the fn*
// actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "llamagui",
		Short:         "Configure, launch and supervise a local llama-server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().String("addr", cfg.Addr, "Daemon base URL (defaults LLAMAGUI_ADDR or "+client.DefaultBaseURL+")")
	root.PersistentFlags().String("settings", cfg.SettingsPath, "Settings file (defaults LLAMAGUI_SETTINGS_PATH or "+settings.DefaultPath+")")
	root.PersistentFlags().String("log-level", cfg.LogLevel, "Log level: debug|info|warn|error (defaults LLAMAGUI_LOG_LEVEL or info)")
	root.PersistentFlags().String("log-format", cfg.LogFormat, "Log format: console|json (defaults LLAMAGUI_LOG_FORMAT or console)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("addr"); f != nil {
			if v := f.Value.String(); v != "" { cfg.Addr = v }
		}
		if f := cmd.InheritedFlags().Lookup("settings"); f != nil {
			if v := f.Value.String(); v != "" { cfg.SettingsPath = v }
		}
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil {
			if v := f.Value.String(); v != "" { cfg.LogLevel = v }
		}
		if f := cmd.InheritedFlags().Lookup("log-format"); f != nil {
			if v := f.Value.String(); v != "" { cfg.LogFormat = v }
		}
	}

	// serve
	serveCmd := &cobra.Command{Use: "serve", Short: "Run the control daemon with the HTTP API", Example: "  llamagui serve\n  llamagui serve --config daemon.yaml", RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetString("config"); v != "" {
			cfg.ConfigPath = v
		}
		return fnServe(cfg)
	}}
	serveCmd.Flags().String("config", cfg.ConfigPath, "Daemon configuration file: .yaml/.yml, .json or .toml (defaults LLAMAGUI_CONFIG)")
	root.AddCommand(serveCmd)

	// run
	runCmd := &cobra.Command{Use: "run", Short: "Launch llama-server in the foreground and stream its output", Example: "  llamagui run\n  llamagui run --leave-running", RunE: func(cmd *cobra.Command, args []string) error {
		leave, _ := cmd.Flags().GetBool("leave-running")
		return fnRun(cfg, leave)
	}}
	runCmd.Flags().Bool("leave-running", false, "On interrupt, leave llama-server running instead of stopping it")
	root.AddCommand(runCmd)

	// tui
	root.AddCommand(&cobra.Command{Use: "tui", Short: "Interactive terminal UI for the managed server", RunE: func(cmd *cobra.Command, args []string) error { return fnTUI(cfg) }})

	// config group
	configCmd := &cobra.Command{Use: "config", Short: "Inspect and edit the launch configuration", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("config requires a subcommand: show|set|path|args")
	}}
	configShow := &cobra.Command{Use: "show", Short: "Print the launch configuration as JSON", RunE: func(cmd *cobra.Command, args []string) error { return fnConfigShow(cfg) }}
	configSet := &cobra.Command{Use: "set <key> <value>", Short: "Set one launch configuration field", Example: "  llamagui config set port 8080\n  llamagui config set model_path ~/models/llama3.gguf\n  llamagui config set additional_args \"--mlock --flash-attn\"", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error { return fnConfigSet(cfg, args[0], args[1]) }}
	configPath := &cobra.Command{Use: "path", Short: "Print the settings file location", RunE: func(cmd *cobra.Command, args []string) error { return fnConfigPath(cfg) }}
	configArgs := &cobra.Command{Use: "args", Short: "Print the llama-server command line for the current configuration", RunE: func(cmd *cobra.Command, args []string) error { return fnConfigArgs(cfg) }}
	configCmd.AddCommand(configShow, configSet, configPath, configArgs)
	root.AddCommand(configCmd)

	// models
	modelsCmd := &cobra.Command{Use: "models [dir]", Short: "List GGUF model files in a directory", Example: "  llamagui models\n  llamagui models ~/models/llm", Args: cobra.MaximumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		return fnModels(cfg, dir)
	}}
	root.AddCommand(modelsCmd)

	// profile group
	profileCmd := &cobra.Command{Use: "profile", Short: "Manage named configuration profiles", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("profile requires a subcommand: list|show|save|load|delete")
	}}
	profileList := &cobra.Command{Use: "list", Short: "List saved profiles", RunE: func(cmd *cobra.Command, args []string) error { return fnProfileList(cfg) }}
	profileShow := &cobra.Command{Use: "show <name>", Short: "Print a profile as JSON", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error { return fnProfileShow(cfg, args[0]) }}
	profileSave := &cobra.Command{Use: "save <name>", Short: "Save the current configuration under a profile name", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error { return fnProfileSave(cfg, args[0]) }}
	profileLoad := &cobra.Command{Use: "load <name>", Short: "Make a profile the current configuration", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error { return fnProfileLoad(cfg, args[0]) }}
	profileDelete := &cobra.Command{Use: "delete <name>", Aliases: []string{"rm"}, Short: "Delete a profile", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error { return fnProfileDelete(cfg, args[0]) }}
	profileCmd.AddCommand(profileList, profileShow, profileSave, profileLoad, profileDelete)
	root.AddCommand(profileCmd)

	// remote commands against a running daemon
	root.AddCommand(&cobra.Command{Use: "status", Short: "Show the managed server status (via the daemon)", RunE: func(cmd *cobra.Command, args []string) error { return fnStatus(cfg) }})
	root.AddCommand(&cobra.Command{Use: "start", Short: "Start llama-server (via the daemon)", RunE: func(cmd *cobra.Command, args []string) error { return fnStart(cfg) }})
	root.AddCommand(&cobra.Command{Use: "stop", Short: "Stop llama-server (via the daemon)", RunE: func(cmd *cobra.Command, args []string) error { return fnStop(cfg) }})
	root.AddCommand(&cobra.Command{Use: "detach", Short: "Leave llama-server running and release it (via the daemon)", RunE: func(cmd *cobra.Command, args []string) error { return fnDetach(cfg) }})
	root.AddCommand(&cobra.Command{Use: "health", Short: "Probe the managed server's own health endpoint (via the daemon)", RunE: func(cmd *cobra.Command, args []string) error { return fnHealth(cfg) }})
	logsCmd := &cobra.Command{Use: "logs", Short: "Print captured llama-server output (via the daemon)", RunE: func(cmd *cobra.Command, args []string) error {
		tail, _ := cmd.Flags().GetInt("tail")
		return fnLogs(cfg, tail)
	}}
	logsCmd.Flags().Int("tail", 0, "Only the last N lines (0 = all buffered)")
	root.AddCommand(logsCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}
