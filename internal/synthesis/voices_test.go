package synthesis

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalog = `[
  {
    "voice_id": 165,
    "voice_name": "Dmitry",
    "provider": "azure",
    "original_id": "ru-RU-DmitryNeural",
    "sample": "https://example.com/dmitry.mp3",
    "languages": ["ru-RU"]
  },
  {
    "voice_id": 559,
    "voice_name": "Natasha",
    "provider": "eleven_labs",
    "original_id": "N2lVS1w4EtoT3dr4eOWO",
    "sample": "https://example.com/natasha.mp3",
    "languages": ["ru", "uk"]
  }
]`

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write voices: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 voices, got %d", catalog.Len())
	}

	voice, err := catalog.Lookup(165)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if voice.Provider != ProviderAzure || voice.OriginalID != "ru-RU-DmitryNeural" {
		t.Fatalf("unexpected voice %+v", voice)
	}
}

func TestLookupUnknownVoice(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if _, err := catalog.Lookup(999); err == nil {
		t.Fatal("expected error for unknown voice")
	}
}

func TestParseCatalogRejectsDuplicateIDs(t *testing.T) {
	payload := `[
      {"voice_id": 1, "voice_name": "a", "provider": "azure", "original_id": "x", "sample": "", "languages": []},
      {"voice_id": 1, "voice_name": "b", "provider": "azure", "original_id": "y", "sample": "", "languages": []}
    ]`
	if _, err := ParseCatalog([]byte(payload)); err == nil {
		t.Fatal("expected error for duplicate voice ids")
	}
}

func TestVoicesReturnsCopy(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	voices := catalog.Voices()
	voices[0].VoiceName = "mutated"

	fresh, _ := catalog.Lookup(165)
	if fresh.VoiceName != "Dmitry" {
		t.Fatal("catalog must be immutable")
	}
}
