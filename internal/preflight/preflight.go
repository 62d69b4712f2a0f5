package preflight

import (
	"context"
	"fmt"

	"redub/internal/config"
	"redub/internal/deps"
	"redub/internal/synthesis"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	for _, status := range deps.CheckBinaries(deps.Requirements()) {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   statusDetail(status),
		})
	}

	results = append(results, CheckVoiceCatalog(cfg.Paths.VoicesFile))
	results = append(results, checkProviderConfig(cfg)...)

	return results
}

// Failed returns the hard failures from a result set.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed && !result.Optional {
			failed = append(failed, result)
		}
	}
	return failed
}

// CheckVoiceCatalog verifies the voices file parses and is non-empty.
func CheckVoiceCatalog(path string) Result {
	const name = "Voice catalog"
	catalog, err := synthesis.LoadCatalog(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if catalog.Len() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s contains no voices", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d voice(s)", catalog.Len())}
}

// checkProviderConfig flags missing credentials. These are soft failures:
// a queue holding only, say, ElevenLabs projects never needs the Azure key.
func checkProviderConfig(cfg *config.Config) []Result {
	results := make([]Result, 0, 4)
	present := func(name, value, hint string) Result {
		if value == "" {
			return Result{Name: name, Optional: true, Detail: hint}
		}
		return Result{Name: name, Passed: true, Optional: true, Detail: "configured"}
	}
	results = append(results,
		present("Transcription endpoint", cfg.Transcription.EndpointURL, "transcription.endpoint_url not set"),
		present("Translation API key", cfg.Translation.APIKey, "translation.api_key not set"),
		present("ElevenLabs API key", cfg.Synthesis.ElevenLabsAPIKey, "synthesis.elevenlabs_api_key not set"),
		present("Azure region", cfg.Synthesis.AzureRegion, "synthesis.azure_region not set"),
	)
	return results
}

func statusDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	return status.Detail
}
