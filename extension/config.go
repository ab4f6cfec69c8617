package extension

// Config holds the mint extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.mint" or "mint" keys).
type Config struct {
	// Deployer is the address that receives the genesis supply and the
	// admin role when the journal is empty. Required for a fresh
	// journal; an already-seeded journal replays regardless.
	Deployer string `json:"deployer" mapstructure:"deployer" yaml:"deployer"`

	// DisableMigrate prevents auto-start (migration, replay, and
	// genesis seeding) on forge start. The caller then owns calling
	// Engine().Start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}
