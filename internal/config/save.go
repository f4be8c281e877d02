package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.BaseDir) == "" {
		errs = append(errs, "base_dir is required")
	}
	if !strings.HasPrefix(cfg.Source.URL, "http://") && !strings.HasPrefix(cfg.Source.URL, "https://") {
		errs = append(errs, "source.url must be an http(s) URL")
	}
	if cfg.Source.TimeoutSeconds <= 0 {
		errs = append(errs, "source.timeout_seconds must be > 0")
	}
	if cfg.Ingest.SampleSize <= 0 {
		errs = append(errs, "ingest.sample_size must be > 0")
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, "log.level must be one of trace, debug, info, warn, error")
	}

	required := map[string]string{
		"paths.db":                cfg.Paths.DB,
		"paths.ingestion_sample":  cfg.Paths.IngestionSample,
		"paths.ingestion_audit":   cfg.Paths.IngestionAudit,
		"paths.cleaned_data":      cfg.Paths.CleanedData,
		"paths.cleaning_audit":    cfg.Paths.CleaningAudit,
		"paths.enriched_data":     cfg.Paths.EnrichedData,
		"paths.enrichment_audit":  cfg.Paths.EnrichmentAudit,
		"data_sources.companies":  cfg.DataSources.Companies,
		"data_sources.salaries":   cfg.DataSources.Salaries,
		"data_sources.locations":  cfg.DataSources.Locations,
		"data_sources.industries": cfg.DataSources.Industries,
	}
	for _, key := range sortedKeys(required) {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, key+" is required")
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

// SaveAtomic validates cfg and writes it as YAML, keeping the previous file
// as path.bak.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}
