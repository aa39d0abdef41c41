package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := "guest"
	if a.isLoggedIn() {
		s = "signed in"
	}
	a.mu.Lock()
	if a.editor != nil {
		if a.editor.form.Editing() {
			s += fmt.Sprintf(", editing #%d", *a.editor.form.ID)
		} else {
			s += ", new product"
		}
	}
	a.mu.Unlock()
	if a.session != nil && a.session.Config().DarkMode {
		s += ", dark"
	}
	return "(" + s + ")"
}

// Root greets the user, offers a login and runs the REPL until exit.
func (a *App) Root(ctx context.Context) {
	a.notifier.Info("Welcome to GophStore CLI (type 'help' for commands)")
	if err := a.Login(ctx); err != nil {
		a.logger.Debug(ctx, "initial login skipped", "error", err)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
