package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "JOBPIPE"

type Source struct {
	URL            string `yaml:"url" mapstructure:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
}

// Paths are relative to BaseDir unless absolute.
type Paths struct {
	DB              string `yaml:"db" mapstructure:"db"`
	IngestionSample string `yaml:"ingestion_sample" mapstructure:"ingestion_sample"`
	IngestionAudit  string `yaml:"ingestion_audit" mapstructure:"ingestion_audit"`
	CleanedData     string `yaml:"cleaned_data" mapstructure:"cleaned_data"`
	CleaningAudit   string `yaml:"cleaning_audit" mapstructure:"cleaning_audit"`
	EnrichedData    string `yaml:"enriched_data" mapstructure:"enriched_data"`
	EnrichmentAudit string `yaml:"enrichment_audit" mapstructure:"enrichment_audit"`
	MetricsDir      string `yaml:"metrics_dir" mapstructure:"metrics_dir"`
}

type DataSources struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	Companies  string `yaml:"companies" mapstructure:"companies"`
	Salaries   string `yaml:"salaries" mapstructure:"salaries"`
	Locations  string `yaml:"locations" mapstructure:"locations"`
	Industries string `yaml:"industries" mapstructure:"industries"`
}

type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

type Config struct {
	BaseDir     string      `yaml:"base_dir" mapstructure:"base_dir"`
	Source      Source      `yaml:"source" mapstructure:"source"`
	Paths       Paths       `yaml:"paths" mapstructure:"paths"`
	DataSources DataSources `yaml:"data_sources" mapstructure:"data_sources"`
	Ingest      struct {
		SampleSize int `yaml:"sample_size" mapstructure:"sample_size"`
	} `yaml:"ingest" mapstructure:"ingest"`
	Log Log `yaml:"log" mapstructure:"log"`
}

func Default() Config {
	var cfg Config
	cfg.BaseDir = "data"
	cfg.Source = Source{
		URL:            "https://www.arbeitnow.com/api/job-board-api",
		TimeoutSeconds: 30,
		UserAgent:      "jobpipe/1.0 (+local)",
	}
	cfg.Paths = Paths{
		DB:              "db/ingestion.db",
		IngestionSample: "xlsx/ingestion.xlsx",
		IngestionAudit:  "audit/ingestion.txt",
		CleanedData:     "cleaned_data/cleaned_data.xlsx",
		CleaningAudit:   "audit/cleaning_report.txt",
		EnrichedData:    "enriched_data/enriched_data.xlsx",
		EnrichmentAudit: "audit/enriched_report.txt",
		MetricsDir:      "metrics",
	}
	cfg.DataSources = DataSources{
		Dir:        "data_sources",
		Companies:  "companies_info.json",
		Salaries:   "salary_ranges.csv",
		Locations:  "locations.xlsx",
		Industries: "industry_data.xml",
	}
	cfg.Ingest.SampleSize = 10
	cfg.Log = Log{Level: "info", File: "pipeline.log"}
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("base_dir", d.BaseDir)
	v.SetDefault("source.url", d.Source.URL)
	v.SetDefault("source.timeout_seconds", d.Source.TimeoutSeconds)
	v.SetDefault("source.user_agent", d.Source.UserAgent)
	v.SetDefault("paths.db", d.Paths.DB)
	v.SetDefault("paths.ingestion_sample", d.Paths.IngestionSample)
	v.SetDefault("paths.ingestion_audit", d.Paths.IngestionAudit)
	v.SetDefault("paths.cleaned_data", d.Paths.CleanedData)
	v.SetDefault("paths.cleaning_audit", d.Paths.CleaningAudit)
	v.SetDefault("paths.enriched_data", d.Paths.EnrichedData)
	v.SetDefault("paths.enrichment_audit", d.Paths.EnrichmentAudit)
	v.SetDefault("paths.metrics_dir", d.Paths.MetricsDir)
	v.SetDefault("data_sources.dir", d.DataSources.Dir)
	v.SetDefault("data_sources.companies", d.DataSources.Companies)
	v.SetDefault("data_sources.salaries", d.DataSources.Salaries)
	v.SetDefault("data_sources.locations", d.DataSources.Locations)
	v.SetDefault("data_sources.industries", d.DataSources.Industries)
	v.SetDefault("ingest.sample_size", d.Ingest.SampleSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Load reads the YAML file at path (a missing file is fine), applies
// JOBPIPE_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg, _ = NormalizeAndValidate(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve joins a configured path onto BaseDir unless it is absolute.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// DataSource resolves a file name inside the data sources directory.
func (c Config) DataSource(name string) string {
	return filepath.Join(c.Resolve(c.DataSources.Dir), name)
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}
