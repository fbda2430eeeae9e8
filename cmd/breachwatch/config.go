package main

import (
	"time"

	"github.com/breachwatch/breachwatch/internal/model"
)

const (
	defaultBindHost     = "0.0.0.0"
	defaultPort         = 3000
	defaultCacheTTL     = model.DefaultCacheTTL
	defaultFetchTimeout = model.DefaultFetchTimeout
	defaultSettleDelay  = model.DefaultSettleDelay
	defaultMaineSettle  = 2 * time.Second

	defaultHHSURL   = "https://ocrportal.hhs.gov/ocr/breach/breach_report.jsf"
	defaultMaineURL = "https://www.maine.gov/agviewer/content/ag/985235c7-cb95-4be2-8792-a1252b4f8318/list.html"
	defaultTexasURL = "https://oag.my.site.com/datasecuritybreachreport/apex/DataSecurityReportsPage"

	defaultTexasLastPageSelector = ".pagination li:last-child a"

	defaultMaineLinkCap   = model.DefaultMaineLinkCap
	defaultMaineMinURLLen = model.DefaultMaineMinURL
	defaultTexasRowCap    = model.DefaultTexasRowCap
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Port             int           `mapstructure:"port"`
	Addr             string        `mapstructure:"addr"`
	CacheTTL         time.Duration `mapstructure:"cache-ttl"`
	FetchTimeout     time.Duration `mapstructure:"fetch-timeout"`
	SettleDelay      time.Duration `mapstructure:"settle-delay"`
	MaineSettle      time.Duration `mapstructure:"maine-settle"`
	HHSURL           string        `mapstructure:"hhs-url"`
	MaineURL         string        `mapstructure:"maine-url"`
	TexasURL         string        `mapstructure:"texas-url"`
	MaineLinkCap     int           `mapstructure:"maine-link-cap"`
	MaineMinURLLen   int           `mapstructure:"maine-min-url-length"`
	TexasRowCap      int           `mapstructure:"texas-row-cap"`
	TexasLastPageSel string        `mapstructure:"texas-last-page-selector"`
	ConfigPath       string        `mapstructure:"-"` // not from config file
}
