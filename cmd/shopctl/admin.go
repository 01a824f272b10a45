package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/mangoshop/shopctl/internal/admin"
	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
)

// cmdAdmin dispatches the back-office subcommands. Every one of them
// passes the staff gate first; the backend still enforces authorization
// on its side.
func cmdAdmin(client *api.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: shopctl admin <mangoes|orders|payments|feedbacks> ...")
	}

	if _, err := admin.Gate(client); err != nil {
		return err
	}

	switch args[0] {
	case "mangoes":
		return adminMangoes(client, args[1:])
	case "orders":
		return adminOrders(client, args[1:])
	case "payments":
		return adminPayments(client, args[1:])
	case "feedbacks":
		return adminFeedbacks(client)
	}
	return fmt.Errorf("unknown admin subcommand %q", args[0])
}

func adminFeedbacks(client *api.Client) error {
	fbs, err := client.AdminListFeedbacks()
	if err != nil {
		return err
	}
	for _, fb := range fbs {
		fmt.Printf("%d★ %-16s %s\n", fb.Rating, fb.UserName, fb.Comment)
	}
	return nil
}

func adminMangoes(client *api.Client, args []string) error {
	mgr := admin.NewProductManager(client)

	if len(args) == 0 {
		if err := mgr.Refresh(); err != nil {
			return err
		}
		for _, p := range mgr.Products() {
			fmt.Printf("#%-4d %-24s ৳%-10s stock %d kg\n", p.ID, p.Name, p.Price.StringFixed(2), p.StockQuantity)
		}
		return nil
	}

	switch args[0] {
	case "create", "update":
		fs := flag.NewFlagSet("admin mangoes "+args[0], flag.ExitOnError)
		name := fs.String("name", "", "name")
		desc := fs.String("description", "", "description")
		price := fs.String("price", "0", "price per kg")
		stock := fs.Int("stock", 0, "stock quantity (kg)")
		image := fs.String("image", "", "image file (optional on update)")

		rest := args[1:]
		var id int
		if args[0] == "update" {
			var err error
			if id, err = argID(args, 1); err != nil {
				return err
			}
			rest = args[2:]
		}
		fs.Parse(rest)

		p, err := decimal.NewFromString(*price)
		if err != nil {
			return fmt.Errorf("invalid price %q", *price)
		}
		form := api.ProductForm{
			Name:          *name,
			Description:   *desc,
			Price:         p,
			StockQuantity: *stock,
		}
		if *image != "" {
			f, err := os.Open(*image)
			if err != nil {
				return err
			}
			defer f.Close()
			form.Image = f
			form.ImageName = filepath.Base(*image)
		}

		if args[0] == "create" {
			created, err := mgr.Create(form)
			if err != nil {
				return err
			}
			fmt.Printf("Mango created successfully! (#%d)\n", created.ID)
			return nil
		}
		if err := mgr.Refresh(); err != nil {
			return err
		}
		if _, err := mgr.Update(id, form); err != nil {
			return err
		}
		fmt.Println("Mango updated successfully!")
		return nil
	case "delete":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete mango #%d?", id)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := mgr.Delete(id); err != nil {
			return err
		}
		fmt.Println("Mango deleted successfully!")
		return nil
	}
	return fmt.Errorf("unknown mangoes subcommand %q", args[0])
}

func adminOrders(client *api.Client, args []string) error {
	mgr := admin.NewOrderManager(client)
	if err := mgr.Refresh(); err != nil {
		return err
	}

	if len(args) == 0 {
		for _, o := range mgr.Orders() {
			fmt.Printf("#%-5d %-12s %-16s ৳%-10s %s (%s)\n",
				o.ID, o.UserName, o.Status.Label(), o.TotalAmount.StringFixed(2),
				o.PaymentMethod.Label(), o.OrderDate.Format("Jan 2, 2006"))
		}
		return nil
	}

	switch args[0] {
	case "show":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		o, ok := mgr.Get(id)
		if !ok {
			return fmt.Errorf("order %d not found", id)
		}
		printOrder(o)
		if targets := admin.ManualStatusTargets(o.Status); len(targets) > 0 {
			fmt.Print("Transitions:")
			for _, t := range targets {
				fmt.Printf(" %s", t)
			}
			fmt.Println()
		} else {
			fmt.Println("Order is in a terminal state; no transitions available.")
		}
		return nil
	case "status":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("usage: shopctl admin orders status <id> <status>")
		}
		if err := mgr.SetStatus(id, models.OrderStatus(args[2])); err != nil {
			return err
		}
		fmt.Println("Order status updated successfully!")
		return nil
	case "cancel":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Are you sure you want to cancel order #%d?", id)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := mgr.Cancel(id); err != nil {
			return err
		}
		fmt.Println("Order cancelled.")
		return nil
	case "payment-method":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("usage: shopctl admin orders payment-method <id> <method>")
		}
		if err := mgr.SetPaymentMethod(id, models.PaymentMethod(args[2])); err != nil {
			return err
		}
		fmt.Println("Payment method updated successfully!")
		return nil
	}
	return fmt.Errorf("unknown orders subcommand %q", args[0])
}

func adminPayments(client *api.Client, args []string) error {
	mgr := admin.NewPaymentManager(client)
	if err := mgr.Refresh(); err != nil {
		return err
	}

	if len(args) == 0 {
		for _, p := range mgr.Payments() {
			fmt.Printf("#%-4d order #%-5d %-18s ৳%-10s %-9s %s\n",
				p.ID, p.OrderID, p.PaymentMethod.Label(), p.Amount.StringFixed(2),
				p.PaymentStatus, p.PaymentDate.Format("Jan 2, 2006 03:04 PM"))
		}
		return nil
	}

	switch args[0] {
	case "set-status":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("usage: shopctl admin payments set-status <id> <status>")
		}
		status := models.PaymentStatus(args[2])
		if err := mgr.SetStatus(id, status); err != nil {
			return err
		}
		fmt.Printf("Payment status updated to %s\n", status)
		return nil
	}
	return fmt.Errorf("unknown payments subcommand %q", args[0])
}
