package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/coremaven/llama.cpp-GUI/internal/launch"
	"github.com/coremaven/llama.cpp-GUI/internal/models"
	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Local config and profile actions. These edit the settings document
// directly; a running daemon picks the change up through its file
// watcher.

func localStore(cfg *Config) (*settings.Store, error) {
	return openStore(cfg, setupLogging(cfg.logLevel(), cfg.logFormat()))
}

func fnConfigShow(cfg *Config) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(store.Config(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func fnConfigPath(cfg *Config) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	fmt.Println(store.Path())
	return nil
}

func fnConfigArgs(cfg *Config) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	cmd, err := launch.CommandString(store.Config())
	if err != nil {
		return err
	}
	fmt.Println(cmd)
	return nil
}

func fnConfigSet(cfg *Config, key, value string) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	sc := store.Config()
	if err := applyConfigKey(&sc, key, value); err != nil {
		return err
	}
	store.SetConfig(sc)
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

// applyConfigKey sets one field addressed by its settings-document key.
func applyConfigKey(sc *types.ServerConfig, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s: not a number: %q", key, value)
		}
		return n, nil
	}
	switch key {
	case "binary_path":
		sc.BinaryPath = value
	case "model_path":
		sc.ModelPath = value
	case "host":
		sc.Host = value
	case "port":
		n, err := atoi()
		if err != nil {
			return err
		}
		if n < 0 || n > 65535 {
			return fmt.Errorf("port: out of range: %d", n)
		}
		sc.Port = n
	case "context":
		n, err := atoi()
		if err != nil {
			return err
		}
		sc.CtxSize = n
	case "ngl":
		n, err := atoi()
		if err != nil {
			return err
		}
		sc.GPULayers = n
	case "threads":
		n, err := atoi()
		if err != nil {
			return err
		}
		sc.Threads = n
	case "batch":
		n, err := atoi()
		if err != nil {
			return err
		}
		sc.BatchSize = n
	case "additional_args":
		if _, err := launch.SplitExtraArgs(value); err != nil {
			return fmt.Errorf("additional_args: %v", err)
		}
		sc.ExtraArgs = value
	case "auto_start":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_start: not a boolean: %q", value)
		}
		sc.AutoStart = b
	default:
		return fmt.Errorf("unknown key %q (valid: binary_path model_path host port context ngl threads batch additional_args auto_start)", key)
	}
	return nil
}

// fnModels lists GGUF files so the user can pick a model_path. With no
// directory argument it scans where the configured model lives.
func fnModels(cfg *Config, dir string) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = models.DefaultDir(store.Config())
	}
	if dir == "" {
		return fmt.Errorf("no directory given and no model_path configured (try: llamagui models ~/models)")
	}
	files, err := models.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("no .gguf files found")
		return nil
	}
	active := store.Config().ModelPath
	for _, f := range files {
		marker := "  "
		if f.Path == active {
			marker = "* "
		}
		fmt.Printf("%s%-40s %6d MiB  %s\n", marker, f.Name, f.SizeBytes/(1<<20), f.Path)
	}
	return nil
}

func fnProfileList(cfg *Config) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	last := store.LastProfile()
	for _, name := range store.Profiles() {
		if name == last {
			fmt.Println("* " + name)
			continue
		}
		fmt.Println("  " + name)
	}
	return nil
}

func fnProfileShow(cfg *Config, name string) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	pc, err := store.Profile(name)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func fnProfileSave(cfg *Config, name string) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	if err := store.SaveProfile(name, store.Config()); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("profile %q saved\n", name)
	return nil
}

func fnProfileLoad(cfg *Config, name string) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	if _, err := store.LoadProfile(name); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("profile %q loaded\n", name)
	return nil
}

func fnProfileDelete(cfg *Config, name string) error {
	store, err := localStore(cfg)
	if err != nil {
		return err
	}
	if err := store.DeleteProfile(name); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("profile %q deleted\n", name)
	return nil
}
