package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/form"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/filex"
)

var errNoForm = errors.New("no product form open")

// readImage is a test seam for filex.ReadImage.
var readImage = filex.ReadImage

func (a *App) openEditor(ctx context.Context, f *form.ProductForm, p *models.Product) {
	ed := &editor{form: f, tracker: a.productService.NewTracker(p)}
	if p != nil {
		ed.images = p.Images
	}
	a.mu.Lock()
	if a.editor != nil {
		a.editor.tracker.Discard()
	}
	a.editor = ed
	a.mu.Unlock()

	if _, err := a.loadCatalog(ctx); err != nil {
		a.logger.Warn(ctx, "catalog unavailable, option ids not checked", "error", err)
	}
	a.printEditor()
}

// New opens an empty product form.
func (a *App) New(ctx context.Context) error {
	a.openEditor(ctx, form.New(), nil)
	return nil
}

// Edit opens the form for the n-th (1-based) product of the current list.
func (a *App) Edit(ctx context.Context, n int) error {
	items := a.activeItems()
	if n < 1 || n > len(items) {
		a.notifier.Info("No product #%d in the current list", n)
		return fmt.Errorf("product %d out of range", n)
	}
	p := items[n-1]
	a.openEditor(ctx, form.FromProduct(p), &p)
	return nil
}

func (a *App) currentEditor() (*editor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.editor == nil {
		return nil, errNoForm
	}
	return a.editor, nil
}

// Set updates one form field.
func (a *App) Set(ctx context.Context, field, value string) error {
	ed, err := a.currentEditor()
	if err != nil {
		a.notifier.Info("Open a form with 'new' or 'edit <n>' first")
		return err
	}
	if err := ed.form.Set(field, value); err != nil {
		a.fail(ctx, "Set "+field, err)
		return err
	}
	return nil
}

// AddImage queues a local image for upload on save.
func (a *App) AddImage(ctx context.Context, path string) error {
	ed, err := a.currentEditor()
	if err != nil {
		a.notifier.Info("Open a form with 'new' or 'edit <n>' first")
		return err
	}
	if _, err := readImage(path); err != nil {
		a.fail(ctx, "Add image", err)
		return err
	}
	n := ed.tracker.AddLocalImage(path)
	a.notifier.Success("Image %d queued: %s", n+1, path)
	return nil
}

// Unadd drops the n-th (1-based) queued image.
func (a *App) Unadd(ctx context.Context, n int) error {
	ed, err := a.currentEditor()
	if err != nil {
		a.notifier.Info("Open a form with 'new' or 'edit <n>' first")
		return err
	}
	if err := ed.tracker.RemoveLocalAddition(n - 1); err != nil {
		a.fail(ctx, "Remove queued image", err)
		return err
	}
	a.notifier.Success("Queued image %d removed", n)
	return nil
}

// RmImage toggles the deletion mark of a server image.
func (a *App) RmImage(ctx context.Context, id int64) error {
	ed, err := a.currentEditor()
	if err != nil {
		a.notifier.Info("Open a form with 'new' or 'edit <n>' first")
		return err
	}
	marked, err := ed.tracker.ToggleRemoval(id)
	if err != nil {
		a.fail(ctx, "Remove image", err)
		return err
	}
	if marked {
		a.notifier.Info("Image %d will be deleted on save", id)
	} else {
		a.notifier.Info("Image %d kept", id)
	}
	return nil
}

// Save validates and stores the product, then applies its image changes.
func (a *App) Save(ctx context.Context) error {
	ed, err := a.currentEditor()
	if err != nil {
		a.notifier.Info("Nothing to save")
		return err
	}
	a.mu.Lock()
	catalog := a.catalog
	a.mu.Unlock()

	res := a.productService.Save(ctx, ed.form, catalog, ed.tracker)
	switch {
	case res.Invalid != nil:
		a.fail(ctx, "Save product", res.Invalid)
		return res.Invalid
	case res.ProductErr != nil:
		a.fail(ctx, "Save product", res.ProductErr)
		return res.ProductErr
	case res.ImagesErr != nil:
		a.notifier.Success("Product %s saved", res.Product.Reference)
		a.fail(ctx, "Save images", res.ImagesErr)
		a.notifier.Info("Run 'save' again to retry the image changes")
		return res.ImagesErr
	}

	a.notifier.Success("Product %s saved", res.Product.Reference)
	a.mu.Lock()
	a.editor = nil
	reopen := a.productList != nil
	a.mu.Unlock()
	if reopen {
		a.reload(ctx, "Reload products")
	}
	return nil
}

// Cancel closes the form without touching the server.
func (a *App) Cancel(ctx context.Context) error {
	a.mu.Lock()
	ed := a.editor
	a.editor = nil
	a.mu.Unlock()
	if ed == nil {
		a.notifier.Info("No form open")
		return nil
	}
	ed.tracker.Discard()
	a.notifier.Info("Changes discarded")
	return nil
}

func (a *App) printEditor() {
	ed, err := a.currentEditor()
	if err != nil {
		return
	}
	f := ed.form
	title := "New product"
	if f.Editing() {
		title = fmt.Sprintf("Edit product #%d", *f.ID)
	}
	a.printf("%s\n", title)
	a.printf("  %-12s %s\n", form.FieldReference, f.Reference)
	a.printf("  %-12s %s\n", form.FieldDescription, f.Description)
	a.printf("  %-12s %s\n", form.FieldCostoPrice, f.CostoPrice)
	a.printf("  %-12s %s\n", form.FieldSalePrice, f.SalePrice)
	a.printf("  %-12s %s\n", form.FieldCategoria, f.IDCategoria)
	a.printf("  %-12s %s\n", form.FieldUnidad, f.IDUnidad)
	a.printf("  %-12s %s\n", form.FieldTax, f.IDTax)
	a.printf("  %-12s %t\n", form.FieldTaxInclude, f.TaxInclude)
	a.printf("  %-12s %t\n", form.FieldStatus, f.Status)
	for _, img := range ed.images {
		if img.DeletedAt != nil {
			continue
		}
		a.printf("  image %d  %s\n", img.ID, truncate(img.Source(), 60))
	}
}
