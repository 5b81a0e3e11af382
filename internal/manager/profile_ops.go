package manager

import (
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/launch"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Profiles lists saved profile names (sorted) plus the last-active one.
func (m *Manager) Profiles() types.ProfilesResponse {
	return types.ProfilesResponse{
		Profiles: m.store.Profiles(),
		Last:     m.store.LastProfile(),
	}
}

// Profile returns the named snapshot without touching the active
// configuration.
func (m *Manager) Profile(name string) (types.ServerConfig, error) {
	return m.store.Profile(name)
}

// SaveProfile stores a snapshot under name and persists the document.
// A nil cfg snapshots the active configuration; a non-nil cfg is
// checked structurally the same way UpdateConfig checks updates.
func (m *Manager) SaveProfile(name string, cfg *types.ServerConfig) error {
	snap := m.store.Config()
	if cfg != nil {
		if cfg.Port < 0 || cfg.Port > 65535 {
			return launch.NewValidationError("port", "out of range: %d", cfg.Port)
		}
		if _, err := launch.SplitExtraArgs(cfg.ExtraArgs); err != nil {
			return launch.NewValidationError("additional_args", "%v", err)
		}
		snap = *cfg
	}
	if err := m.store.SaveProfile(name, snap); err != nil {
		return err
	}
	if err := m.store.Save(); err != nil {
		return err
	}
	zlog.Info().Str("profile", name).Msg("profile saved")
	_ = m.pub.Publish(types.Event{
		Type:   types.EventProfile,
		Name:   name,
		Action: types.ProfileSaved,
		Time:   time.Now(),
	})
	return nil
}

// LoadProfile copies the named snapshot into the active configuration,
// persists the document, and announces both the profile load and the
// resulting config change.
func (m *Manager) LoadProfile(name string) (types.ServerConfig, error) {
	cfg, err := m.store.LoadProfile(name)
	if err != nil {
		return types.ServerConfig{}, err
	}
	if err := m.store.Save(); err != nil {
		return cfg, err
	}
	zlog.Info().Str("profile", name).Msg("profile loaded")
	_ = m.pub.Publish(types.Event{
		Type:   types.EventProfile,
		Name:   name,
		Action: types.ProfileLoaded,
		Time:   time.Now(),
	})
	_ = m.pub.Publish(types.Event{Type: types.EventConfig, Time: time.Now()})
	return cfg, nil
}

// DeleteProfile removes the named snapshot and persists the document.
// Deleting an absent name reports profile-not-found.
func (m *Manager) DeleteProfile(name string) error {
	if err := m.store.DeleteProfile(name); err != nil {
		return err
	}
	if err := m.store.Save(); err != nil {
		return err
	}
	zlog.Info().Str("profile", name).Msg("profile deleted")
	_ = m.pub.Publish(types.Event{
		Type:   types.EventProfile,
		Name:   name,
		Action: types.ProfileDeleted,
		Time:   time.Now(),
	})
	return nil
}
