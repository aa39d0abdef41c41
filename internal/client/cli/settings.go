package cli

import (
	"context"
	"strconv"
	"time"
)

// Dark toggles and persists dark mode.
func (a *App) Dark(ctx context.Context) error {
	on, err := a.session.ToggleDarkMode(ctx)
	if err != nil {
		a.fail(ctx, "Dark mode", err)
		return err
	}
	if on {
		a.notifier.Success("Dark mode on")
	} else {
		a.notifier.Success("Dark mode off")
	}
	return nil
}

// Lang changes and persists the interface language.
func (a *App) Lang(ctx context.Context, code string) error {
	cfg := a.session.Config()
	cfg.Language = code
	if err := a.session.UpdateConfig(ctx, cfg); err != nil {
		a.fail(ctx, "Language", err)
		return err
	}
	a.notifier.Success("Language set to %s", a.session.Config().Language)
	return nil
}

// Logs prints the recent outbound requests, oldest first.
func (a *App) Logs(ctx context.Context) error {
	entries := a.trace.Entries()
	if len(entries) == 0 {
		a.printf("No requests yet\n")
		return nil
	}
	for _, e := range entries {
		status := "…"
		if e.Status != 0 {
			status = strconv.Itoa(e.Status)
		}
		line := e.Timestamp.Format(time.TimeOnly) + " " + e.Method + " " + e.URL + " " + status + " " + e.Duration.Round(time.Millisecond).String()
		if e.Err != "" {
			line += " error: " + e.Err
		}
		a.printf("%s\n", line)
	}
	return nil
}
