package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/notify"
	"github.com/dmitrijs2005/gophstore/internal/client/search"
)

// openProducts lazily creates the product list and its debouncer.
func (a *App) openProducts(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = listProducts
	if a.productList != nil {
		return
	}
	list := a.productService.NewProductList(search.NewQuery())
	a.productList = list
	a.debouncer = search.NewDebouncer("", a.config.DebounceDelay, func(text string) {
		q := list.Query()
		q.Text = text
		list.SetQuery(q)
		a.reload(ctx, "Search")
	})
}

// reload resets the product list and prints the first page.
func (a *App) reload(ctx context.Context, action string) {
	a.mu.Lock()
	list := a.productList
	a.mu.Unlock()
	if list == nil {
		return
	}
	loaded, err := list.ResetAndReload(ctx)
	if err != nil {
		a.fail(ctx, action, err)
		return
	}
	if !loaded && list.Loading() {
		a.notifier.Info("%s queued behind the running load", action)
		return
	}
	a.printProducts(list.Items(), list.Exhausted())
}

// Products opens the product list and loads its first page.
func (a *App) Products(ctx context.Context) error {
	a.openProducts(ctx)
	a.reload(ctx, "Load products")
	return nil
}

// More loads the next page of the list opened last (products or pos).
func (a *App) More(ctx context.Context) error {
	a.mu.Lock()
	active, products, pos := a.active, a.productList, a.posList
	a.mu.Unlock()

	switch {
	case active == listPOS && pos != nil:
		loaded, err := pos.LoadNext(ctx)
		if err != nil {
			a.fail(ctx, "Load more", err)
			return err
		}
		if !loaded {
			a.notifier.Info("Nothing more to load")
			return nil
		}
		a.printProducts(pos.Items(), pos.Exhausted())
	case products != nil:
		loaded, err := products.LoadNext(ctx)
		if err != nil {
			a.fail(ctx, "Load more", err)
			return err
		}
		if !loaded {
			a.notifier.Info("Nothing more to load")
			return nil
		}
		a.printProducts(products.Items(), products.Exhausted())
	default:
		a.notifier.Info("Open a list first with 'products' or 'pos'")
	}
	return nil
}

// Search schedules a reload with text after the debounce delay.
func (a *App) Search(ctx context.Context, text string) error {
	a.openProducts(ctx)
	a.mu.Lock()
	d := a.debouncer
	a.mu.Unlock()
	d.Set(text)
	if d.Pending() {
		a.notifier.Info("Searching %q in %s ('enter' to search now)", text, a.config.DebounceDelay)
	}
	return nil
}

// Field changes the searched attribute; it applies from the next fetch on.
func (a *App) Field(ctx context.Context, name string) error {
	f, err := search.ParseField(name)
	if err != nil {
		a.notifier.Notify(notify.Error, "%v (one of %s)", err, fieldNames())
		return err
	}
	a.openProducts(ctx)
	a.mu.Lock()
	list := a.productList
	a.mu.Unlock()
	q := list.Query()
	q.Field = f
	list.SetQuery(q)
	a.notifier.Info("Searching by %s from the next load", f)
	return nil
}

func fieldNames() string {
	names := make([]string, len(search.Fields))
	for i, f := range search.Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Enter runs a pending search immediately.
func (a *App) Enter(ctx context.Context) error {
	a.mu.Lock()
	d := a.debouncer
	a.mu.Unlock()
	if d == nil || !d.Flush() {
		a.notifier.Info("No pending search")
	}
	return nil
}

// POS searches products the point-of-sale way, following next_page_url.
func (a *App) POS(ctx context.Context, text string) error {
	a.mu.Lock()
	if a.posList != nil {
		a.posList.Close()
	}
	list := a.productService.NewSearchList(text)
	a.posList = list
	a.active = listPOS
	a.mu.Unlock()

	if _, err := list.LoadNext(ctx); err != nil {
		a.fail(ctx, "Search", err)
		return err
	}
	a.printProducts(list.Items(), list.Exhausted())
	return nil
}

// Catalog prints the category, unit and tax options.
func (a *App) Catalog(ctx context.Context) error {
	c, err := a.loadCatalog(ctx)
	if err != nil {
		a.fail(ctx, "Load catalog", err)
		return err
	}
	a.printf("Categories:\n")
	for _, o := range c.Categories {
		a.printf("  %d  %s\n", o.ID, o.Description)
	}
	a.printf("Units:\n")
	for _, o := range c.Units {
		a.printf("  %d  %s\n", o.ID, o.Description)
	}
	a.printf("Taxes:\n")
	for _, o := range c.Taxes {
		a.printf("  %d  %s (%g%%)\n", o.ID, o.Description, o.Rate)
	}
	return nil
}

func (a *App) loadCatalog(ctx context.Context) (*models.Catalog, error) {
	a.mu.Lock()
	cached := a.catalog
	a.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	c, err := a.productService.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.catalog = &c
	a.mu.Unlock()
	return &c, nil
}

// activeItems returns the items of the list "edit <n>" refers to.
func (a *App) activeItems() []models.Product {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.active == listPOS && a.posList != nil:
		return a.posList.Items()
	case a.productList != nil:
		return a.productList.Items()
	}
	return nil
}

func (a *App) printProducts(items []models.Product, exhausted bool) {
	if len(items) == 0 {
		a.printf("No products found\n")
		return
	}
	for i, p := range items {
		a.printf("%3d. %s\n", i+1, productLine(p))
	}
	if exhausted {
		a.printf("-- end of list --\n")
	} else {
		a.printf("-- 'more' for the next page --\n")
	}
}

func productLine(p models.Product) string {
	id := "new"
	if p.ID != nil {
		id = fmt.Sprintf("#%d", *p.ID)
	}
	status := "active"
	if !p.Status {
		status = "inactive"
	}
	return fmt.Sprintf("%-6s %-12s %-30s %10.2f  %s  %d img", id, truncate(p.Reference, 12),
		truncate(p.Description, 30), p.SalePrice, status, len(p.ImageIDs()))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
