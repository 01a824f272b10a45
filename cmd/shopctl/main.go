package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/cart"
	"github.com/mangoshop/shopctl/internal/checkout"
	"github.com/mangoshop/shopctl/internal/models"
	"github.com/mangoshop/shopctl/internal/orders"
	"github.com/mangoshop/shopctl/internal/session"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if os.Getenv("SHOPCTL_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	apiURL := getEnv("MANGO_API_URL", "http://127.0.0.1:8000")
	sess := session.NewFile(session.DefaultPath())
	client := api.New(apiURL, sess)

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(client, args)
	case "register":
		err = cmdRegister(client, args)
	case "logout":
		client.Logout()
		fmt.Println("Logged out.")
	case "catalog":
		err = cmdCatalog(client, args)
	case "cart":
		err = cmdCart(client, args)
	case "checkout":
		err = cmdCheckout(client, args)
	case "orders":
		err = cmdOrders(client, args)
	case "feedback":
		err = cmdFeedback(client, args)
	case "profile":
		err = cmdProfile(client, args)
	case "admin":
		err = cmdAdmin(client, args)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: shopctl <command> [args]

Commands:
  login -u <user> -p <password>      authenticate and store the token
  register                           create an account
  logout                             drop the stored token
  catalog [show <id>|reviews <id>]   browse the mango catalog
  cart [add|set|remove] ...          view and edit the cart
  checkout [flags]                   place an order from the cart
  orders [show <id>]                 order history
  feedback <item-id> <rating> [text] rate a delivered order item
  feedback show <item-id>            view a submitted rating
  profile [edit|password] ...        view and edit the profile
  admin <mangoes|orders|payments|feedbacks>  back-office management

Environment:
  MANGO_API_URL   backend root (default http://127.0.0.1:8000)`)
}

func cmdLogin(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	fs.Parse(args)

	if err := client.Login(*user, *pass); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func cmdRegister(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	user := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	pass := fs.String("p", "", "password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	fs.Parse(args)

	err := client.Register(api.RegisterRequest{
		Username:  *user,
		Email:     *email,
		Password:  *pass,
		FirstName: *first,
		LastName:  *last,
	})
	if err != nil {
		return err
	}
	fmt.Println("Registered and logged in.")
	return nil
}

func cmdCatalog(client *api.Client, args []string) error {
	if len(args) == 0 {
		products, err := client.ListProducts()
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("#%d  %-24s ৳%s/kg  stock %d kg  %.1f★ (%d)\n",
				p.ID, p.Name, p.Price.StringFixed(2), p.StockQuantity, p.AverageRating, p.TotalRatings)
		}
		return nil
	}

	switch args[0] {
	case "show":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		p, err := client.GetProduct(id)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\nPrice: ৳%s/kg  Stock: %d kg\nImage: %s\n",
			p.Name, p.Description, p.Price.StringFixed(2), p.StockQuantity, client.ResolveImageURL(p.Image))
		return nil
	case "reviews":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		pf, err := client.GetProductFeedbacks(id)
		if err != nil {
			return err
		}
		fmt.Printf("%s — %.1f★ (%d ratings)\n", pf.MangoName, pf.AverageRating, pf.TotalRatings)
		for _, fb := range pf.Feedbacks {
			fmt.Printf("  %d★ %s — %s\n", fb.Rating, fb.Comment, fb.UserName)
		}
		return nil
	}
	return fmt.Errorf("unknown catalog subcommand %q", args[0])
}

func cmdCart(client *api.Client, args []string) error {
	store := cart.NewStore(client)

	if len(args) == 0 {
		if err := store.Refresh(); err != nil {
			return err
		}
		if store.Empty() {
			fmt.Println("Your cart is empty. Run `shopctl catalog` to continue shopping.")
			return nil
		}
		for _, item := range store.Items() {
			fmt.Printf("#%d  %-24s %d kg × ৳%s = ৳%s (stock %d kg)\n",
				item.ID, item.Product.Name, item.Quantity,
				item.Product.Price.StringFixed(2), item.LineTotal().StringFixed(2),
				item.Product.StockQuantity)
		}
		fmt.Printf("Total: ৳%s\n", store.TotalPrice())
		return nil
	}

	switch args[0] {
	case "add":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		qty := 1
		if len(args) > 2 {
			if qty, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
		}
		if err := store.Add(id, qty); err != nil {
			return err
		}
		fmt.Println("Added to cart.")
		return nil
	case "set":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("usage: shopctl cart set <item-id> <quantity>")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		if err := store.Refresh(); err != nil {
			return err
		}
		stock := -1
		for _, item := range store.Items() {
			if item.ID == id {
				stock = item.Product.StockQuantity
				break
			}
		}
		if stock < 0 {
			return fmt.Errorf("cart item %d not found", id)
		}
		if err := store.SetQuantity(id, qty, stock); err != nil {
			return err
		}
		fmt.Println("Quantity updated.")
		return nil
	case "remove":
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		if err := store.Remove(id); err != nil {
			return err
		}
		fmt.Println("Item removed from cart.")
		return nil
	}
	return fmt.Errorf("unknown cart subcommand %q", args[0])
}

func cmdCheckout(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	phone := fs.String("phone", "", "phone number (defaults to profile)")
	additional := fs.String("additional-phone", "", "additional phone")
	billing := fs.String("billing", "", "billing address (defaults to profile)")
	shipping := fs.String("shipping", "", "shipping address (defaults to profile)")
	yes := fs.Bool("yes", false, "place the order without prompting")
	fs.Parse(args)

	store := cart.NewStore(client)
	flow := checkout.NewFlow(client, store)
	if err := flow.Load(); err != nil {
		return err
	}

	if flow.Empty() {
		fmt.Println("Your cart is empty. Run `shopctl catalog` to continue shopping.")
		return nil
	}

	form := flow.Form()
	if *phone != "" {
		form.PhoneNumber = *phone
	}
	if *additional != "" {
		form.AdditionalPhone = *additional
	}
	if *billing != "" {
		form.BillingAddress = *billing
	}
	if *shipping != "" {
		form.ShippingAddress = *shipping
	}
	if err := flow.SetForm(form); err != nil {
		return err
	}

	for _, item := range store.Items() {
		fmt.Printf("  %s × %d kg = ৳%s\n", item.Product.Name, item.Quantity, item.LineTotal().StringFixed(2))
	}
	fmt.Printf("Subtotal: ৳%s\n", flow.Subtotal().StringFixed(2))
	if flow.ShippingCost().IsZero() {
		fmt.Println("Shipping: Free (orders of ৳1000 and up ship free)")
	} else {
		fmt.Printf("Shipping: ৳%s\n", flow.ShippingCost().StringFixed(2))
	}
	fmt.Printf("Total:    ৳%s\n", flow.FinalTotal().StringFixed(2))

	if !*yes && !confirm(fmt.Sprintf("Place order as %s, cash on delivery?", form.PhoneNumber)) {
		fmt.Println("Cancelled.")
		return nil
	}

	created, err := flow.PlaceOrder()
	if err != nil {
		return err
	}
	fmt.Println("Order placed successfully!")
	if created.OrderID != 0 {
		fmt.Printf("Order #%d\n", created.OrderID)
	}
	return cmdOrders(client, nil)
}

func cmdOrders(client *api.Client, args []string) error {
	flow := orders.NewFlow(client)
	if err := flow.Refresh(); err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "show" {
		id, err := argID(args, 1)
		if err != nil {
			return err
		}
		order, ok := flow.Select(id)
		if !ok {
			return fmt.Errorf("order %d not found", id)
		}
		printOrder(order)
		return nil
	}

	for _, row := range flow.Summaries() {
		fmt.Printf("#%-5d %-28s %-16s ৳%-10s %-18s %d item(s): %s\n",
			row.ID, row.Date, row.StatusLabel, row.Total, row.PaymentMethod, row.ItemCount, row.ItemSummary)
	}
	return nil
}

func printOrder(o models.Order) {
	fmt.Printf("Order #%d — %s — %s\n", o.ID, o.Status.Label(), o.OrderDate.Format("January 2, 2006 03:04 PM"))
	fmt.Printf("Payment: %s  Total: ৳%s\n", o.PaymentMethod.Label(), o.TotalAmount.StringFixed(2))
	fmt.Printf("Ship to: %s (%s)\n", o.ShippingAddress, o.PhoneNumber)
	for _, item := range o.Items {
		line := fmt.Sprintf("  #%d %s × %d kg @ ৳%s = ৳%s",
			item.ID, item.MangoName, item.Quantity, item.Price.StringFixed(2), item.Subtotal.StringFixed(2))
		if item.Feedback != nil {
			line += fmt.Sprintf("  [%d★ %s]", item.Feedback.Rating, item.Feedback.Comment)
		}
		fmt.Println(line)
	}
	if orders.CanReview(o) {
		fmt.Println("This order is delivered; rate items with `shopctl feedback <item-id> <rating> [comment]`.")
	}
}

func cmdFeedback(client *api.Client, args []string) error {
	if len(args) > 1 && args[0] == "show" {
		itemID, err := argID(args, 1)
		if err != nil {
			return err
		}
		fb, err := client.GetItemFeedback(itemID)
		if err != nil {
			return err
		}
		fmt.Printf("%d★ %s\n", fb.Rating, fb.Comment)
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("usage: shopctl feedback <item-id> <rating 1-5> [comment]")
	}
	itemID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		rating = 0
	}
	comment := strings.Join(args[2:], " ")

	flow := orders.NewFlow(client)
	if err := flow.Refresh(); err != nil {
		return err
	}
	if err := flow.SubmitFeedback(itemID, rating, comment); err != nil {
		return err
	}
	fmt.Println("Feedback submitted successfully!")
	return nil
}

func cmdProfile(client *api.Client, args []string) error {
	if len(args) == 0 {
		pr, err := client.Profile()
		if err != nil {
			return err
		}
		fmt.Printf("%s %s (%s, %s)\n", pr.User.FirstName, pr.User.LastName, pr.User.Username, pr.User.Email)
		fmt.Printf("Phone:    %s", pr.Profile.PhoneNumber)
		if pr.Profile.AdditionalPhone != "" {
			fmt.Printf(" / %s", pr.Profile.AdditionalPhone)
		}
		fmt.Printf("\nBilling:  %s\nShipping: %s\n", pr.Profile.BillingAddress, pr.Profile.ShippingAddress)
		if pr.IsAdmin() {
			fmt.Println("Role:     staff")
		}
		return nil
	}

	switch args[0] {
	case "edit":
		fs := flag.NewFlagSet("profile edit", flag.ExitOnError)
		phone := fs.String("phone", "", "phone number")
		additional := fs.String("additional-phone", "", "additional phone")
		billing := fs.String("billing", "", "billing address")
		shipping := fs.String("shipping", "", "shipping address")
		fs.Parse(args[1:])

		pr, err := client.Profile()
		if err != nil {
			return err
		}
		p := pr.Profile
		if *phone != "" {
			p.PhoneNumber = *phone
		}
		if *additional != "" {
			p.AdditionalPhone = *additional
		}
		if *billing != "" {
			p.BillingAddress = *billing
		}
		if *shipping != "" {
			p.ShippingAddress = *shipping
		}
		if _, err := client.UpdateProfile(p); err != nil {
			return err
		}
		fmt.Println("Profile updated.")
		return nil
	case "password":
		fs := flag.NewFlagSet("profile password", flag.ExitOnError)
		old := fs.String("old", "", "current password")
		new_ := fs.String("new", "", "new password")
		fs.Parse(args[1:])
		if err := client.ChangePassword(*old, *new_); err != nil {
			return err
		}
		fmt.Println("Password changed.")
		return nil
	}
	return fmt.Errorf("unknown profile subcommand %q", args[0])
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func argID(args []string, idx int) (int, error) {
	if len(args) <= idx {
		return 0, fmt.Errorf("missing id argument")
	}
	id, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[idx])
	}
	return id, nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
