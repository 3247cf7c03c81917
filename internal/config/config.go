// Package config defines the data structures of a run file and includes
// functions for loading it and converting it to domain values.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/iwvelando/admin-cost/pkg/mathutil"
	"github.com/iwvelando/admin-cost/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds a complete run: project parameters, sites and the
// logging and output preferences.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty" json:"output,omitempty"`
	Project ProjectConfig `yaml:"project" json:"project"`
	Sites   []SiteConfig  `yaml:"sites" json:"sites"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format         string `yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv, json, yaml
	Locale         string `yaml:"locale,omitempty" json:"locale,omitempty"`
	CurrencySymbol string `yaml:"currencySymbol,omitempty" json:"currencySymbol,omitempty"`
}

// Number is a plain amount or percentage. It is written to YAML in fixed
// notation so exported run files stay readable.
type Number float64

// MarshalYAML implements yaml.Marshaler.
func (n Number) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Value: strconv.FormatFloat(float64(n), 'f', -1, 64),
	}, nil
}

// ProjectConfig holds the parameters entered once per run.
type ProjectConfig struct {
	BaseEstimate Number `yaml:"baseEstimate" json:"baseEstimate"`
	Margin       Number `yaml:"margin" json:"margin"` // percent
	Category     string `yaml:"category" json:"category"`
}

// SiteConfig holds the input of one site.
type SiteConfig struct {
	Name             string           `yaml:"name" json:"name"`
	HasExistingStudy bool             `yaml:"hasExistingStudy" json:"hasExistingStudy"`
	Reductions       ReductionsConfig `yaml:"reductions,omitempty" json:"reductions,omitempty"`
}

// ReductionsConfig holds the reduction percentages of a site with a
// previous study.
type ReductionsConfig struct {
	Preliminaries Number `yaml:"preliminaries" json:"preliminaries"`
	Preliminary   Number `yaml:"preliminary" json:"preliminary"`
	Execution     Number `yaml:"execution" json:"execution"`
}

// LoadDotEnv loads environment variables from an env file. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = constants.DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.locale", constants.DefaultLocale)
	v.SetDefault("output.currencySymbol", constants.DefaultCurrencySymbol)
	v.SetDefault("project.margin", 0)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// run file there. ADMINCOST_* environment variables override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted run file from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.RunValidator{Margin: float64(c.Project.Margin)}
	for _, site := range c.Sites {
		validator.Sites = append(validator.Sites, validation.SiteConfig{
			Name:             site.Name,
			HasExistingStudy: site.HasExistingStudy,
			Reductions: []float64{
				float64(site.Reductions.Preliminaries),
				float64(site.Reductions.Preliminary),
				float64(site.Reductions.Execution),
			},
		})
	}
	return validator.ValidateAll()
}

// ToProject converts the project section to domain values. The margin is
// clamped to [0, 100].
func (p ProjectConfig) ToProject() (estimate.Project, error) {
	if err := validation.ValidateNonNegative("base estimate", float64(p.BaseEstimate)); err != nil {
		return estimate.Project{}, err
	}
	if err := validation.ValidateFinite("margin", float64(p.Margin)); err != nil {
		return estimate.Project{}, err
	}
	category, err := rates.ParseCategory(p.Category)
	if err != nil {
		return estimate.Project{}, err
	}
	return estimate.Project{
		BaseEstimate: decimal.NewFromFloat(float64(p.BaseEstimate)),
		Margin:       mathutil.ClampPercent(decimal.NewFromFloat(float64(p.Margin))),
		Category:     category,
	}, nil
}

// ToSiteInput converts a site entry, rejecting reductions outside [0, 100].
// Without an existing study the reductions are ignored and not checked.
func (s SiteConfig) ToSiteInput() (session.SiteInput, error) {
	if !s.HasExistingStudy {
		return session.SiteInput{}, nil
	}
	checks := []struct {
		name  string
		value Number
	}{
		{"preliminaries reduction", s.Reductions.Preliminaries},
		{"preliminary reduction", s.Reductions.Preliminary},
		{"execution reduction", s.Reductions.Execution},
	}
	for _, check := range checks {
		if err := validation.ValidatePercent(check.name, float64(check.value)); err != nil {
			return session.SiteInput{}, fmt.Errorf("site %s: %w", s.Name, err)
		}
	}
	return session.SiteInput{
		HasExistingStudy: s.HasExistingStudy,
		Reductions: session.Reductions{
			Preliminaries: decimal.NewFromFloat(float64(s.Reductions.Preliminaries)),
			Preliminary:   decimal.NewFromFloat(float64(s.Reductions.Preliminary)),
			Execution:     decimal.NewFromFloat(float64(s.Reductions.Execution)),
		},
	}, nil
}

// SiteNames returns the configured site names in order.
func (c *Configuration) SiteNames() []string {
	names := make([]string, len(c.Sites))
	for i, site := range c.Sites {
		names[i] = site.Name
	}
	return names
}

// SiteInputs returns the input of every named site, keyed by trimmed name.
// When a name repeats, the first entry wins.
func (c *Configuration) SiteInputs() (map[string]session.SiteInput, error) {
	inputs := make(map[string]session.SiteInput, len(c.Sites))
	for _, site := range c.Sites {
		name := strings.TrimSpace(site.Name)
		if name == "" {
			continue
		}
		if _, seen := inputs[name]; seen {
			continue
		}
		in, err := site.ToSiteInput()
		if err != nil {
			return nil, err
		}
		inputs[name] = in
	}
	return inputs, nil
}

// FromRun builds a run file from domain values, e.g. for exporting a run
// entered through the wizard.
func FromRun(p estimate.Project, sites []string, inputs map[string]session.SiteInput) *Configuration {
	base, _ := p.BaseEstimate.Float64()
	margin, _ := p.Margin.Float64()
	conf := &Configuration{
		Project: ProjectConfig{BaseEstimate: Number(base), Margin: Number(margin), Category: string(p.Category)},
	}
	for _, name := range sites {
		in := inputs[name]
		pre, _ := in.Reductions.Preliminaries.Float64()
		prelim, _ := in.Reductions.Preliminary.Float64()
		exec, _ := in.Reductions.Execution.Float64()
		conf.Sites = append(conf.Sites, SiteConfig{
			Name:             name,
			HasExistingStudy: in.HasExistingStudy,
			Reductions: ReductionsConfig{
				Preliminaries: Number(pre),
				Preliminary:   Number(prelim),
				Execution:     Number(exec),
			},
		})
	}
	return conf
}
