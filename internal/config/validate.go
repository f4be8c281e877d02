package config

import (
	"fmt"
	"sort"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a trimmed copy of cfg plus soft findings.
// Hard errors are reported again by Validate.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.BaseDir = strings.TrimSpace(out.BaseDir)
	out.Source.URL = strings.TrimSpace(out.Source.URL)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))

	if out.Source.TimeoutSeconds <= 0 {
		res.addErr("source.timeout_seconds must be > 0")
	} else if out.Source.TimeoutSeconds > 300 {
		res.addWarn("source.timeout_seconds is very high (%d); a stuck request will block the run that long.", out.Source.TimeoutSeconds)
	}
	if out.Ingest.SampleSize > 1000 {
		res.addWarn("ingest.sample_size is %d; the sample spreadsheet is meant for manual inspection.", out.Ingest.SampleSize)
	}
	if strings.HasPrefix(out.Source.URL, "http://") {
		res.addWarn("source.url uses plain http: %q", out.Source.URL)
	}

	// outputs must not overwrite each other
	seen := map[string]string{}
	outputs := map[string]string{
		"paths.db":               out.Paths.DB,
		"paths.ingestion_sample": out.Paths.IngestionSample,
		"paths.ingestion_audit":  out.Paths.IngestionAudit,
		"paths.cleaned_data":     out.Paths.CleanedData,
		"paths.cleaning_audit":   out.Paths.CleaningAudit,
		"paths.enriched_data":    out.Paths.EnrichedData,
		"paths.enrichment_audit": out.Paths.EnrichmentAudit,
	}
	for _, key := range sortedKeys(outputs) {
		p := outputs[key]
		if p == "" {
			continue
		}
		if other, ok := seen[p]; ok {
			res.addWarn("%s and %s point at the same file %q", other, key, p)
		}
		seen[p] = key
	}

	return out, res
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
