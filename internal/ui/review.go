package ui

import (
	"context"
	"fmt"

	"koi_orders/internal/store"

	"go.uber.org/zap"
)

func (r *Runner) reviewScreen(ctx context.Context) screen {
	orderID, ok := r.store.LoadOrderID()
	if !ok {
		return screenDraft
	}

	order, _, err := r.client.GetOrder(ctx, orderID)
	if r.redirected() {
		return screenLogin
	}
	if err != nil {
		// Covers a stale cached id pointing at a deleted order.
		fmt.Fprintln(r.out, err)
		return screenOrders
	}

	text, err := r.client.PreviewOrder(ctx, orderID)
	if r.redirected() {
		return screenLogin
	}
	if err != nil {
		fmt.Fprintln(r.out, err)
		text = "Failed to load preview"
	}

	fmt.Fprintf(r.out, "Review: order #%d (%s)\n", order.ID, order.Status)
	if creator := order.CreatedBy(); creator != "" {
		fmt.Fprintf(r.out, "Created by: %s\n", creator)
	}
	fmt.Fprintln(r.out, text)

	for {
		if order.Status.Editable() {
			fmt.Fprintln(r.out, "Commands: edit, submit, delete, back")
		} else {
			fmt.Fprintln(r.out, "Commands: delete, back")
		}
		line, ok := r.prompt("review> ")
		if !ok {
			return screenQuit
		}

		switch line {
		case "edit":
			// Sent orders are read-only: the command silently does nothing.
			if !order.Status.Editable() {
				continue
			}
			next, done := r.editReturn(ctx, orderID)
			if done {
				return next
			}

		case "submit":
			if !order.Status.Editable() {
				continue
			}
			if err := r.client.SubmitOrder(ctx, orderID); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			r.logger.Info("order submitted", zap.Int("order_id", orderID))
			return screenSend

		case "delete":
			if err := r.client.DeleteOrder(ctx, orderID); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			r.store.ClearOrderID()
			r.logger.Info("order deleted", zap.Int("order_id", orderID))
			return screenOrders

		case "back":
			return screenOrders
		case "quit", "exit":
			return screenQuit
		default:
		}
	}
}

// editReturn refetches the order's lines and overwrites the local draft
// with them before going back to the draft screen. done is false when the
// caller should stay on the review screen.
func (r *Runner) editReturn(ctx context.Context, orderID int) (screen, bool) {
	order, lines, err := r.client.GetOrder(ctx, orderID)
	if r.redirected() {
		return screenLogin, true
	}
	if err != nil {
		fmt.Fprintln(r.out, err)
		return 0, false
	}
	// Status may have moved since the screen loaded.
	if !order.Status.Editable() {
		return 0, false
	}

	qty := store.QtyMap{}
	for _, line := range lines {
		qty[line.ItemKey] = line.Qty
	}
	r.draft.Replace(qty)
	return screenDraft, true
}
