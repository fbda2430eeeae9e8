package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/breachwatch/config.yml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Breachwatch - Breach Disclosure Aggregator\n")
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Commit:  %s\n", commit)
		fmt.Printf("  Built:   %s\n", buildTime)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := runServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("BREACHWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// The bare PORT variable is honored alongside the prefixed form.
	_ = v.BindEnv("port", "BREACHWATCH_PORT", "PORT")

	v.SetDefault("port", defaultPort)
	v.SetDefault("cache-ttl", defaultCacheTTL)
	v.SetDefault("fetch-timeout", defaultFetchTimeout)
	v.SetDefault("settle-delay", defaultSettleDelay)
	v.SetDefault("maine-settle", defaultMaineSettle)
	v.SetDefault("hhs-url", defaultHHSURL)
	v.SetDefault("maine-url", defaultMaineURL)
	v.SetDefault("texas-url", defaultTexasURL)
	v.SetDefault("maine-link-cap", defaultMaineLinkCap)
	v.SetDefault("maine-min-url-length", defaultMaineMinURLLen)
	v.SetDefault("texas-row-cap", defaultTexasRowCap)
	v.SetDefault("texas-last-page-selector", defaultTexasLastPageSelector)

	haveConfigFile := true
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".config", "breachwatch", "config.yml"))
	} else {
		haveConfigFile = false
	}

	if haveConfigFile {
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
				return cfg, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.CacheTTL <= 0 {
		return cfg, fmt.Errorf("invalid cache-ttl: %s", cfg.CacheTTL)
	}

	if cfg.Addr == "" {
		cfg.Addr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.Port))
	}

	return cfg, nil
}
