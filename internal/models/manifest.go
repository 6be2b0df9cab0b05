package models

import "strings"

// Manifest is the descriptor a Sideloader zipmod carries in manifest.xml.
type Manifest struct {
	SchemaVersion string   `json:"schemaVersion,omitempty"`
	GUID          string   `json:"guid"`
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	Website       string   `json:"website,omitempty"`
	Games         []string `json:"games,omitempty"`
}

// DisplayName prefers the human name and falls back to the GUID.
func (m Manifest) DisplayName() string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	return m.GUID
}
