package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"koi_orders/internal/api"
)

// The list screen never pages; it fetches a capped window like the web
// history page did.
const maxOrderFetch = 100

func (r *Runner) ordersScreen(ctx context.Context) screen {
	var filter api.OrderStatus

	for {
		orders, err := r.client.ListOrders(ctx, api.ListOrdersParams{Limit: maxOrderFetch, Status: filter})
		if r.redirected() {
			return screenLogin
		}
		if err != nil {
			fmt.Fprintln(r.out, err)
			return screenDraft
		}

		buckets := bucketByStatus(orders)
		fmt.Fprintf(r.out, "Orders (%d): draft %d, submitted %d, sent %d\n",
			len(orders),
			buckets[api.StatusDraft],
			buckets[api.StatusSubmitted],
			buckets[api.StatusSent],
		)
		for _, o := range orders {
			fmt.Fprintf(r.out, "#%-5d %-9s %s  lines: %d  total qty: %s",
				o.ID, o.Status, o.CreatedAt, o.NonZeroLines, formatQty(o.TotalQty))
			if o.ToEmail != "" {
				fmt.Fprintf(r.out, "  to: %s", o.ToEmail)
			}
			fmt.Fprintln(r.out)
		}
		if len(orders) == 0 {
			fmt.Fprintln(r.out, "No orders yet.")
		}

		line, ok := r.prompt("orders> ")
		if !ok {
			return screenQuit
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "open":
			if len(fields) != 2 {
				fmt.Fprintln(r.out, "Usage: open <order id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintln(r.out, "Usage: open <order id>")
				continue
			}
			r.store.SaveOrderID(id)
			return screenReview

		case "filter":
			if len(fields) != 2 {
				fmt.Fprintln(r.out, "Usage: filter draft|submitted|sent|all")
				continue
			}
			switch fields[1] {
			case "all":
				filter = ""
			case string(api.StatusDraft), string(api.StatusSubmitted), string(api.StatusSent):
				filter = api.OrderStatus(fields[1])
			default:
				fmt.Fprintln(r.out, "Usage: filter draft|submitted|sent|all")
			}

		case "refresh":
			// loop refetches

		case "new", "back":
			return screenDraft
		case "quit", "exit":
			return screenQuit
		default:
			fmt.Fprintln(r.out, "Commands: open <id>, filter <status|all>, refresh, new, quit")
		}
	}
}

// bucketByStatus counts the currently visible orders per status for the
// summary line.
func bucketByStatus(orders []api.OrderSummary) map[api.OrderStatus]int {
	buckets := make(map[api.OrderStatus]int, 3)
	for _, o := range orders {
		buckets[o.Status]++
	}
	return buckets
}
