package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"koi_orders/internal/api"

	"go.uber.org/zap"
)

// draftScreen is the home screen: the catalog with draft quantities.
func (r *Runner) draftScreen(ctx context.Context) screen {
	items, err := r.client.ListItems(ctx)
	if r.redirected() {
		return screenLogin
	}
	if err != nil {
		// The screen stays usable for navigation even with an empty
		// catalog, matching the page behavior.
		fmt.Fprintln(r.out, err)
	}

	ordered := orderCatalog(items)
	r.renderCatalog(ordered)
	fmt.Fprintln(r.out, "Commands: + <n>, - <n>, set <n> <qty>, list, reset, done, orders, me, logout, quit")

	for {
		line, ok := r.prompt("> ")
		if !ok {
			return screenQuit
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "+", "-":
			item, ok := pickItem(ordered, fields[1:])
			if !ok {
				fmt.Fprintf(r.out, "Usage: %s <item number>\n", fields[0])
				continue
			}
			if fields[0] == "+" {
				r.draft.Inc(item.Key)
			} else {
				r.draft.Dec(item.Key)
			}
			r.printQty(item)

		case "set":
			if len(fields) != 3 {
				fmt.Fprintln(r.out, "Usage: set <item number> <qty>")
				continue
			}
			item, ok := pickItem(ordered, fields[1:2])
			if !ok {
				fmt.Fprintln(r.out, "Usage: set <item number> <qty>")
				continue
			}
			if !r.draft.SetFromInput(item.Key, fields[2]) {
				fmt.Fprintln(r.out, "Ignored: quantity must be a non-negative number.")
				continue
			}
			r.printQty(item)

		case "list":
			r.renderCatalog(ordered)

		case "reset":
			r.draft.Reset()
			fmt.Fprintln(r.out, "Draft cleared.")

		case "done":
			if len(ordered) == 0 {
				fmt.Fprintln(r.out, "No items loaded.")
				continue
			}
			// Every catalog line goes out, zeros included, so the order
			// can be reopened for editing later.
			orderID, err := r.client.CreateOrder(ctx, r.draft.Lines(ordered))
			if r.redirected() {
				return screenLogin
			}
			if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			r.store.SaveOrderID(orderID)
			r.logger.Info("order created", zap.Int("order_id", orderID))
			return screenReview

		case "orders":
			return screenOrders
		case "me":
			return screenProfile
		case "logout":
			r.session.Clear()
			return screenLogin
		case "quit", "exit":
			return screenQuit
		default:
			fmt.Fprintln(r.out, "Commands: + <n>, - <n>, set <n> <qty>, list, reset, done, orders, me, logout, quit")
		}
	}
}

func (r *Runner) renderCatalog(ordered []api.Item) {
	lastCategory := ""
	for n, item := range ordered {
		if item.Category != lastCategory {
			fmt.Fprintf(r.out, "%s:\n", item.Category)
			lastCategory = item.Category
		}
		fmt.Fprintf(r.out, "%3d) %-28s %8s %s\n", n+1, item.Label, formatQty(r.draft.Get(item.Key)), item.Unit)
	}
}

func (r *Runner) printQty(item api.Item) {
	fmt.Fprintf(r.out, "%s = %s %s\n", item.Label, formatQty(r.draft.Get(item.Key)), item.Unit)
}

// orderCatalog arranges items the way they are numbered on screen: the Left
// section first, then Need, keeping server order within each.
func orderCatalog(items []api.Item) []api.Item {
	ordered := make([]api.Item, 0, len(items))
	for _, category := range []string{api.CategoryLeft, api.CategoryNeed} {
		for _, item := range items {
			if item.Category == category {
				ordered = append(ordered, item)
			}
		}
	}
	// Unknown categories still belong to the order payload.
	for _, item := range items {
		if item.Category != api.CategoryLeft && item.Category != api.CategoryNeed {
			ordered = append(ordered, item)
		}
	}
	return ordered
}

// pickItem resolves a 1-based on-screen item number.
func pickItem(ordered []api.Item, args []string) (api.Item, bool) {
	if len(args) == 0 {
		return api.Item{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(ordered) {
		return api.Item{}, false
	}
	return ordered[n-1], true
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
