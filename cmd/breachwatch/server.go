package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/breachwatch/breachwatch/internal/aggregate"
	"github.com/breachwatch/breachwatch/internal/browser"
	"github.com/breachwatch/breachwatch/internal/cache"
	"github.com/breachwatch/breachwatch/internal/httpserver"
	"github.com/breachwatch/breachwatch/internal/source"
	"github.com/charmbracelet/lipgloss"
)

// runServer wires the pipeline and serves the HTTP API until a signal.
func runServer(cfg appConfig) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	static := source.NewHHSAdapter(cfg.HHSURL, cfg.FetchTimeout)

	maine := source.NewMaineAdapter(cfg.MaineURL, cfg.MaineSettle)
	maine.LinkCap = cfg.MaineLinkCap
	maine.MinURLLen = cfg.MaineMinURLLen

	texas := source.NewTexasAdapter(cfg.TexasURL, cfg.TexasLastPageSel, cfg.SettleDelay)
	texas.RowCap = cfg.TexasRowCap

	orchestrator := aggregate.New(
		static,
		[]source.SessionAdapter{maine, texas},
		browser.NewSession,
	)

	resultCache := cache.New(cfg.CacheTTL, nil)

	apiServer := httpserver.NewServer(cfg.Addr, orchestrator, resultCache)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	defer apiServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now — not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg)

	// Block until the signal handler cancels the context; the HTTP
	// server runs on its own goroutine and shuts down via the defer.
	<-ctx.Done()

	signal.Stop(sigCh)
	return nil
}

func printStartupBanner(cfg appConfig) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔╗ ╦ ╦╔═╗╔╦╗╔═╗╦ ╦
    ╠╩╗║║║╠═╣ ║ ║  ╠═╣
    ╚═╝╚╩╝╩ ╩ ╩ ╚═╝╩ ╩`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.Addr)))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Sources"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  hhs            %s", check, dim.Render(cfg.HHSURL)))
	lines = append(lines, fmt.Sprintf("    %s  maine          %s", check, dim.Render(cfg.MaineURL)))
	lines = append(lines, fmt.Sprintf("    %s  texas          %s", check, dim.Render(cfg.TexasURL)))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Runtime"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Cache TTL      %s", check, dim.Render(cfg.CacheTTL.String())))

	lines = append(lines, "")
	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(cfg.ConfigPath)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}
