package synthesis

import (
	"encoding/json"
	"fmt"
	"os"
)

// Provider identifies which speech service renders a catalog voice.
type Provider string

const (
	ProviderAzure      Provider = "azure"
	ProviderElevenLabs Provider = "eleven_labs"
)

// Voice is one entry in the voice catalog. OriginalID is the identifier the
// provider's own API expects; VoiceID is the stable catalog key projects
// reference.
type Voice struct {
	VoiceID    int      `json:"voice_id"`
	VoiceName  string   `json:"voice_name"`
	Provider   Provider `json:"provider"`
	OriginalID string   `json:"original_id"`
	Sample     string   `json:"sample"`
	Languages  []string `json:"languages"`
}

// Catalog is an immutable set of voices loaded from the voices file.
type Catalog struct {
	voices []Voice
	byID   map[int]Voice
}

// LoadCatalog reads and parses the voice catalog JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voices file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from raw JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var voices []Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		return nil, fmt.Errorf("parse voices file: %w", err)
	}
	byID := make(map[int]Voice, len(voices))
	for _, voice := range voices {
		if _, exists := byID[voice.VoiceID]; exists {
			return nil, fmt.Errorf("duplicate voice id %d in catalog", voice.VoiceID)
		}
		byID[voice.VoiceID] = voice
	}
	return &Catalog{voices: voices, byID: byID}, nil
}

// Lookup returns the voice with the given catalog id.
func (c *Catalog) Lookup(voiceID int) (Voice, error) {
	voice, ok := c.byID[voiceID]
	if !ok {
		return Voice{}, fmt.Errorf("voice with id %d is not in the catalog", voiceID)
	}
	return voice, nil
}

// Voices returns the catalog entries in file order.
func (c *Catalog) Voices() []Voice {
	cp := make([]Voice, len(c.voices))
	copy(cp, c.voices)
	return cp
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.voices)
}
