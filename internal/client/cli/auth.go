package cli

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/common"
)

// getTextWithDefault, getYesNo and getPassword are indirections used to
// facilitate testing.
var (
	getTextWithDefault = GetTextWithDefault
	getYesNo           = GetYesNo
	getPassword        = GetPassword
)

// Login prompts for company, email and password, pre-filling the identity
// remembered by an earlier login.
func (a *App) Login(ctx context.Context) error {
	company, email, _, err := a.authService.Remembered(ctx)
	if err != nil {
		a.logger.Warn(ctx, "reading remembered login", "error", err)
	}

	if company, err = getTextWithDefault(a.reader, "Company id", company, a.out); err != nil {
		return err
	}
	if email, err = getTextWithDefault(a.reader, "Email", email, a.out); err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getYesNo(a.reader, "Remember company and email?", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Login(ctx, company, email, password, remember); err != nil {
		a.fail(ctx, "Login", err)
		return err
	}
	a.notifier.Success("Logged in as %s", email)
	return nil
}

// Logout drops the token, the open form and the product lists.
func (a *App) Logout(ctx context.Context) error {
	forget, err := getYesNo(a.reader, "Also forget the remembered company and email?", a.out)
	if err != nil {
		return err
	}
	a.mu.Lock()
	if a.editor != nil {
		a.editor.tracker.Discard()
		a.editor = nil
	}
	if a.debouncer != nil {
		a.debouncer.Stop()
		a.debouncer = nil
	}
	if a.productList != nil {
		a.productList.Close()
		a.productList = nil
	}
	if a.posList != nil {
		a.posList.Close()
		a.posList = nil
	}
	a.catalog = nil
	a.mu.Unlock()

	if err := a.authService.Logout(ctx, forget); err != nil {
		a.fail(ctx, "Logout", err)
		return err
	}
	a.notifier.Success("Logged out")
	return nil
}
