package fwdcfg

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdexport"
	"gopkg.in/yaml.v2"
)

const (
	DefaultListener = "udp://0.0.0.0:7071"
	DefaultAPIAddr  = "127.0.0.1:7070"
)

// TabConfiguration overrides the display limit of one application's channels
type TabConfiguration struct {
	App      string `yaml:"app"`
	MaxCount int    `yaml:"maxCount"`
}

// APIConfiguration is the REST API section
type APIConfiguration struct {
	Addr string `yaml:"addr"`
}

// ExportConfiguration controls channel exports
type ExportConfiguration struct {
	Region  string        `yaml:"region"`
	Retries int           `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
}

// Configuration is the logfwd config file
type Configuration struct {
	Listeners       []string            `yaml:"listeners"`
	DefaultCapacity int                 `yaml:"defaultCapacity"`
	MaxCount        int                 `yaml:"maxCount"`
	Tabs            []*TabConfiguration `yaml:"tabs"`
	Window          time.Duration       `yaml:"window"`
	AppProperty     string              `yaml:"appProperty"`
	MachineProperty string              `yaml:"machineProperty"`
	DefaultApp      string              `yaml:"defaultApp"`
	TimestampFormat string              `yaml:"timestampFormat"`
	LoggerFormat    string              `yaml:"loggerFormat"`
	MessageFormat   string              `yaml:"messageFormat"`
	API             APIConfiguration    `yaml:"api"`
	Export          ExportConfiguration `yaml:"export"`
}

// Default returns the built-in configuration
func Default() *Configuration {
	return &Configuration{
		Listeners:       []string{DefaultListener},
		DefaultCapacity: 500,
		MaxCount:        1000,
		Window:          250 * time.Millisecond,
		AppProperty:     fwdevent.DefaultAppProperty,
		MachineProperty: fwdevent.DefaultMachineProperty,
		DefaultApp:      fwdevent.ProcessName(),
		TimestampFormat: "local",
		LoggerFormat:    "full",
		MessageFormat:   "message",
		API:             APIConfiguration{Addr: DefaultAPIAddr},
		Export: ExportConfiguration{
			Retries: fwdexport.DefaultRetries,
			Timeout: fwdexport.DefaultTimeout,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Configuration, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(dat, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with
func (c *Configuration) Validate() error {
	if c.Window <= 0 {
		return errors.Errorf("window must be positive, got %s", c.Window)
	}
	if c.DefaultCapacity < 0 {
		return errors.Errorf("defaultCapacity must not be negative, got %d", c.DefaultCapacity)
	}
	if _, err := c.Resolver(); err != nil {
		return err
	}
	if c.Export.Retries < 1 {
		return errors.Errorf("export.retries must be at least 1, got %d", c.Export.Retries)
	}
	for _, tab := range c.Tabs {
		if tab == nil || tab.App == "" {
			return errors.New("tab entry without app name")
		}
	}
	return nil
}

// TabFromOverride parses an "App=maxCount" flag value
func TabFromOverride(s string) *TabConfiguration {
	app, count, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(app) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return nil
	}
	return &TabConfiguration{App: strings.TrimSpace(app), MaxCount: n}
}

// ApplyTabOverrides merges "App=maxCount" values into the tab list,
// replacing entries for the same app.
func (c *Configuration) ApplyTabOverrides(overrides []string) {
	for _, s := range overrides {
		tab := TabFromOverride(s)
		if tab == nil {
			log.Warnf("Invalid tab override: %s (expected 'App=maxCount')", s)
			continue
		}

		overridden := false
		for _, existing := range c.Tabs {
			if strings.EqualFold(existing.App, tab.App) {
				existing.MaxCount = tab.MaxCount
				overridden = true
				log.Debugf("Tab override for %s now %d", existing.App, existing.MaxCount)
			}
		}
		if !overridden {
			c.Tabs = append(c.Tabs, tab)
		}
	}
}

// MaxCountFor returns the display limit for app's channels
func (c *Configuration) MaxCountFor(app string) int {
	for _, tab := range c.Tabs {
		if tab != nil && strings.EqualFold(tab.App, app) {
			return tab.MaxCount
		}
	}
	return c.MaxCount
}

// Resolver builds the display resolver from the format settings
func (c *Configuration) Resolver() (fwdevent.Resolver, error) {
	ts, err := fwdevent.ParseTimestampFormat(c.TimestampFormat)
	if err != nil {
		return fwdevent.Resolver{}, err
	}
	lf, err := fwdevent.ParseLoggerFormat(c.LoggerFormat)
	if err != nil {
		return fwdevent.Resolver{}, err
	}
	mf, err := fwdevent.ParseMessageFormat(c.MessageFormat)
	if err != nil {
		return fwdevent.Resolver{}, err
	}
	return fwdevent.Resolver{Timestamp: ts, Logger: lf, Message: mf}, nil
}

// Decoder builds an event decoder from the property settings
func (c *Configuration) Decoder() *fwdevent.Decoder {
	d := fwdevent.NewDecoder()
	if c.AppProperty != "" {
		d.AppProperty = c.AppProperty
	}
	if c.MachineProperty != "" {
		d.MachineProperty = c.MachineProperty
	}
	if c.DefaultApp != "" {
		d.DefaultApp = c.DefaultApp
	}
	return d
}

// Exporter builds the channel exporter from the export settings
func (c *Configuration) Exporter() *fwdexport.Exporter {
	return fwdexport.New(fwdexport.Options{
		Region:  c.Export.Region,
		Retries: c.Export.Retries,
		Timeout: c.Export.Timeout,
	})
}
