package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/Chichimokers/storefront/internal/storefront/adminquery"
	"github.com/Chichimokers/storefront/internal/storefront/app"
	"github.com/Chichimokers/storefront/pkg/storesdk"
)

func runAdmin(ctx context.Context, application *app.Application, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected an admin subcommand")
	}

	client := application.Client

	switch args[0] {
	case "stats":
		stats, err := client.DashboardStats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)

	case "products":
		snap, err := fetchAdminList(ctx, application, client.AdminProducts, args[1:])
		if err != nil {
			return err
		}
		for _, p := range snap.Items {
			fmt.Printf("%d\t%s\t%s\t(stock %d)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
		}
		fmt.Printf("page %d of %d, %d total\n", snap.Query.Page, snap.TotalPages, snap.TotalCount)
		return nil

	case "orders":
		snap, err := fetchAdminList(ctx, application, client.AdminOrders, args[1:])
		if err != nil {
			return err
		}
		for _, o := range snap.Items {
			fmt.Printf("%d\t%s\t%s\t%s\n", o.ID, o.Status, o.CustomerName, o.TotalAmount.StringFixed(2))
		}
		fmt.Printf("page %d of %d, %d total\n", snap.Query.Page, snap.TotalPages, snap.TotalCount)
		return nil

	case "users":
		snap, err := fetchAdminList(ctx, application, client.AdminUsers, args[1:])
		if err != nil {
			return err
		}
		for _, u := range snap.Items {
			fmt.Printf("%d\t%s\t%s\n", u.ID, u.Email, u.Username)
		}
		fmt.Printf("page %d of %d, %d total\n", snap.Query.Page, snap.TotalPages, snap.TotalCount)
		return nil

	case "set-status":
		if len(args) != 3 {
			return fmt.Errorf("expected <order-id> <status>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[1])
		}
		order, err := client.UpdateOrderStatus(ctx, id, args[2])
		if err != nil {
			return err
		}
		fmt.Printf("order %d is now %s\n", order.ID, order.Status)
		return nil

	default:
		return fmt.Errorf("unknown admin subcommand %q", args[0])
	}
}

// fetchAdminList drives one controller load to a terminal state, which also
// gives the CLI the controller's page clamping and reconciliation.
func fetchAdminList[T any](
	ctx context.Context,
	application *app.Application,
	fetch adminquery.Fetch[T],
	args []string,
) (adminquery.Snapshot[T], error) {
	fs := flag.NewFlagSet("admin-list", flag.ContinueOnError)
	search := fs.String("search", "", "free-text search")
	ordering := fs.String("ordering", "", "sort order")
	status := fs.String("status", "", "status filter")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return adminquery.Snapshot[T]{}, err
	}

	query := storesdk.ListQuery{
		Search:   *search,
		Ordering: *ordering,
		Page:     *page,
	}
	if *status != "" {
		query.Filters = map[string]string{"status": *status}
	}

	cfg := application.Config()
	ctrl := adminquery.New(fetch,
		adminquery.WithInitialQuery[T](query),
		adminquery.WithPageSize[T](cfg.PageSize),
		adminquery.WithDebounceInterval[T](cfg.Debounce),
	)
	defer ctrl.Close()

	done := make(chan adminquery.Snapshot[T], 1)
	ctrl.Subscribe(func(snap adminquery.Snapshot[T]) {
		if snap.State != adminquery.StateLoaded && snap.State != adminquery.StateFailed {
			return
		}
		select {
		case done <- snap:
		default:
		}
	})

	ctrl.Load(ctx)

	select {
	case snap := <-done:
		if snap.Err != nil {
			return snap, snap.Err
		}
		return snap, nil
	case <-ctx.Done():
		return adminquery.Snapshot[T]{}, ctx.Err()
	}
}
