package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Chichimokers/storefront/internal/storefront/app"
	"github.com/Chichimokers/storefront/internal/storefront/cart"
	"github.com/Chichimokers/storefront/pkg/storesdk"
	"github.com/shopspring/decimal"
)

const usage = `usage: storefront <command> [args]

account:
  login <email> <password>         sign in and persist the session
  register <email> <user> <pass>   create an account
  logout                           sign out and clear the session
  profile                          show the signed-in profile

catalog:
  products [-search s] [-category id] [-ordering o] [-page n]
  product <id>
  featured
  categories

cart:
  cart show
  cart add <product-id> [qty]
  cart set <product-id> <qty>
  cart remove <product-id>
  cart clear

orders:
  checkout -name n -phone p -address a [-notes text]
  orders
  order <id>

admin (staff accounts only):
  admin stats
  admin products [-search s] [-ordering o] [-page n]
  admin orders [-status s] [-page n]
  admin users [-search s] [-page n]
  admin set-status <order-id> <status>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	application, err := app.New(app.LoadConfig())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer application.Close()

	if err := run(context.Background(), application, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, application *app.Application, command string, args []string) error {
	client := application.Client

	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("expected <email> <password>")
		}
		resp, err := client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", resp.User.Email)
		return nil

	case "register":
		if len(args) != 3 {
			return fmt.Errorf("expected <email> <username> <password>")
		}
		resp, err := client.Register(ctx, storesdk.RegisterRequest{
			Email:           args[0],
			Username:        args[1],
			Password:        args[2],
			PasswordConfirm: args[2],
		})
		if err != nil {
			return err
		}
		fmt.Printf("registered %s\n", resp.User.Email)
		return nil

	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "profile":
		user, err := client.Profile(ctx)
		if err != nil {
			return err
		}
		return printJSON(user)

	case "products":
		return runProducts(ctx, client, args)

	case "product":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		product, err := client.Product(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(product)

	case "featured":
		products, err := client.FeaturedProducts(ctx)
		if err != nil {
			return err
		}
		return printJSON(products)

	case "categories":
		categories, err := client.Categories(ctx)
		if err != nil {
			return err
		}
		return printJSON(categories)

	case "cart":
		return runCart(ctx, application, args)

	case "checkout":
		return runCheckout(ctx, application, args)

	case "orders":
		page, err := client.Orders(ctx)
		if err != nil {
			return err
		}
		return printJSON(page.Items)

	case "admin":
		return runAdmin(ctx, application, args)

	case "order":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		order, err := client.Order(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(order)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runProducts(ctx context.Context, client *storesdk.Client, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	search := fs.String("search", "", "free-text search")
	category := fs.Int64("category", 0, "category id")
	subcategory := fs.Int64("subcategory", 0, "subcategory id")
	ordering := fs.String("ordering", "", "sort order, e.g. price or -created_at")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := client.Products(ctx, storesdk.ProductQuery{
		Search:      *search,
		Category:    *category,
		Subcategory: *subcategory,
		Ordering:    *ordering,
		Page:        *page,
	})
	if err != nil {
		return err
	}

	for _, p := range result.Items {
		fmt.Printf("%d\t%s\t%s\t(stock %d)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
	}
	fmt.Printf("page %d, %d items total\n", *page, result.Count)
	return nil
}

func runCart(ctx context.Context, application *app.Application, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected a cart subcommand")
	}

	basket := application.Cart

	switch args[0] {
	case "show":
		lines := basket.Lines()
		if len(lines) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		for _, line := range lines {
			fmt.Printf("%d\t%s\tx%d\t%s\n",
				line.ProductID, line.Name, line.Quantity,
				line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).StringFixed(2))
		}
		fmt.Printf("total: %s (%d items)\n", basket.Total().StringFixed(2), basket.ItemCount())
		return nil

	case "add":
		if len(args) < 2 {
			return fmt.Errorf("expected <product-id> [qty]")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		qty := 1
		if len(args) == 3 {
			if qty, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
		}

		// Price and stock ceiling come from the live product record.
		product, err := application.Client.Product(ctx, id)
		if err != nil {
			return err
		}
		if product.Stock <= 0 {
			return fmt.Errorf("%s is out of stock", product.Name)
		}
		basket.Add(cartLine(product, qty))
		fmt.Printf("added %s\n", product.Name)
		return nil

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("expected <product-id> <qty>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		basket.SetQuantity(id, qty)
		return nil

	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("expected <product-id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		basket.Remove(id)
		return nil

	case "clear":
		basket.Clear()
		return nil

	default:
		return fmt.Errorf("unknown cart subcommand %q", args[0])
	}
}

func runCheckout(ctx context.Context, application *app.Application, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	name := fs.String("name", "", "customer name")
	phone := fs.String("phone", "", "customer phone")
	address := fs.String("address", "", "delivery address")
	notes := fs.String("notes", "", "order notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := application.Client.Checkout(ctx, storesdk.CheckoutRequest{
		Products:        application.Cart.CheckoutItems(),
		CustomerName:    *name,
		CustomerPhone:   *phone,
		CustomerAddress: *address,
		Notes:           *notes,
	})
	if err != nil {
		return err
	}

	application.Cart.Clear()
	fmt.Printf("order %d placed, total %s\n", resp.OrderID, resp.OrderTotal.StringFixed(2))
	fmt.Printf("confirm via: %s\n", resp.WhatsAppURL)
	return nil
}

// cartLine builds a cart line from a live product record: the price and
// stock ceiling are snapshotted at add time.
func cartLine(product *storesdk.Product, qty int) cart.Line {
	line := cart.Line{
		ProductID:   product.ID,
		Name:        product.Name,
		UnitPrice:   product.Price,
		Quantity:    qty,
		MaxQuantity: product.Stock,
	}
	if product.MainImage != nil {
		line.ImageRef = product.MainImage.Image
	}
	return line
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
