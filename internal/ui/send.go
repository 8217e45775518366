package ui

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

func (r *Runner) sendScreen(ctx context.Context) screen {
	orderID, ok := r.store.LoadOrderID()
	if !ok {
		return screenDraft
	}

	fmt.Fprintf(r.out, "Send order #%d. Commands: send, delete, back\n", orderID)

	for {
		line, ok := r.prompt("send> ")
		if !ok {
			return screenQuit
		}

		switch line {
		case "send":
			toEmail, ok := r.prompt("To email: ")
			if !ok {
				return screenQuit
			}
			if toEmail == "" {
				fmt.Fprintln(r.out, "A destination email is required.")
				continue
			}
			message, ok := r.prompt("Message (optional): ")
			if !ok {
				return screenQuit
			}

			fmt.Fprintln(r.out, "Sending...")
			if err := r.client.SendOrder(ctx, orderID, toEmail, message); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			r.logger.Info("order sent", zap.Int("order_id", orderID), zap.String("to", toEmail))
			fmt.Fprintln(r.out, "Sent.")

		case "delete":
			if err := r.client.DeleteOrder(ctx, orderID); r.redirected() {
				return screenLogin
			} else if err != nil {
				fmt.Fprintln(r.out, err)
				continue
			}
			r.store.ClearOrderID()
			r.draft.Reset()
			r.logger.Info("order deleted", zap.Int("order_id", orderID))
			return screenDraft

		case "back":
			return screenReview
		case "quit", "exit":
			return screenQuit
		default:
			fmt.Fprintln(r.out, "Commands: send, delete, back")
		}
	}
}
