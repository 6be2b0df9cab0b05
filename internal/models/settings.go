package models

// Settings is the persisted kmm.json content.
type Settings struct {
	GamePath   string `json:"gamePath"`
	ModsFolder string `json:"modsFolder,omitempty"`
}
