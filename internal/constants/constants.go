// Package constants defines shared constant values.
package constants

// AppName is the project identifier used in logs and metadata.
const AppName = "koikatsu-mod-manager"

// CommandName is the primary CLI command name.
const CommandName = "kmm"

// DefaultConfigFile is the settings file looked up when --config is not given.
const DefaultConfigFile = "kmm.json"

// ModsFolder is the folder, relative to the game root, that Sideloader reads zipmods from.
const ModsFolder = "mods"
