package cli

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
)

// Chars opens the character list and loads its first page.
func (a *App) Chars(ctx context.Context) error {
	a.mu.Lock()
	if a.charList == nil {
		a.charList = a.characterService.NewList()
	}
	list := a.charList
	a.mu.Unlock()

	if _, err := list.ResetAndReload(ctx); err != nil {
		a.fail(ctx, "Load characters", err)
		return err
	}
	a.printCharacters(list.Items(), list.Exhausted())
	return nil
}

// CharsMore loads the next character page.
func (a *App) CharsMore(ctx context.Context) error {
	a.mu.Lock()
	list := a.charList
	a.mu.Unlock()
	if list == nil {
		return a.Chars(ctx)
	}
	loaded, err := list.LoadNext(ctx)
	if err != nil {
		a.fail(ctx, "Load characters", err)
		return err
	}
	if !loaded {
		a.notifier.Info("Nothing more to load")
		return nil
	}
	a.printCharacters(list.Items(), list.Exhausted())
	return nil
}

func (a *App) printCharacters(items []models.Character, exhausted bool) {
	for i, c := range items {
		a.printf("%3d. %-28s %-8s %s\n", i+1, truncate(c.Name, 28), c.Status, c.Species)
	}
	if exhausted {
		a.printf("-- end of list --\n")
	}
}
