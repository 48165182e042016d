package storesdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Admin mirrors of the catalog, order, user and image endpoints. All of
// these require a staff account; a non-staff token gets a plain 403.

func (q ListQuery) values() url.Values {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Ordering != "" {
		params.Set("ordering", q.Ordering)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	for key, value := range q.Filters {
		if value != "" {
			params.Set(key, value)
		}
	}
	return params
}

// DashboardStats returns the admin landing page counters.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.get(ctx, "/admin/dashboard/", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ============================================================================
// Products
// ============================================================================

// AdminProducts lists products including inactive ones.
func (c *Client) AdminProducts(ctx context.Context, q ListQuery) (Page[Product], error) {
	var page Page[Product]
	err := c.get(ctx, withQuery("/admin/products/", q.values()), &page)
	return page, err
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, write ProductWrite) (*Product, error) {
	var product Product
	if err := c.post(ctx, "/admin/products/", write, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces a product's fields.
func (c *Client) UpdateProduct(ctx context.Context, id int64, write ProductWrite) (*Product, error) {
	var product Product
	if err := c.put(ctx, fmt.Sprintf("/admin/products/%d/", id), write, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/admin/products/%d/", id))
}

// ============================================================================
// Categories
// ============================================================================

// AdminCategories lists categories including inactive ones.
func (c *Client) AdminCategories(ctx context.Context, q ListQuery) (Page[Category], error) {
	var page Page[Category]
	err := c.get(ctx, withQuery("/admin/categories/", q.values()), &page)
	return page, err
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, write CategoryWrite) (*Category, error) {
	var category Category
	if err := c.post(ctx, "/admin/categories/", write, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory replaces a category's fields.
func (c *Client) UpdateCategory(ctx context.Context, id int64, write CategoryWrite) (*Category, error) {
	var category Category
	if err := c.put(ctx, fmt.Sprintf("/admin/categories/%d/", id), write, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/admin/categories/%d/", id))
}

// ============================================================================
// Orders
// ============================================================================

// AdminOrders lists all orders. Supported filters: "status".
func (c *Client) AdminOrders(ctx context.Context, q ListQuery) (Page[Order], error) {
	var page Page[Order]
	err := c.get(ctx, withQuery("/admin/orders/", q.values()), &page)
	return page, err
}

// UpdateOrderStatus transitions an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*Order, error) {
	var order Order
	body := map[string]string{"status": status}
	if err := c.patch(ctx, fmt.Sprintf("/admin/orders/%d/", id), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ============================================================================
// Users
// ============================================================================

// AdminUsers lists accounts. Supported filters: "is_staff", "is_active".
func (c *Client) AdminUsers(ctx context.Context, q ListQuery) (Page[User], error) {
	var page Page[User]
	err := c.get(ctx, withQuery("/admin/users/", q.values()), &page)
	return page, err
}

// CreateUser creates an account. Password and confirmation must match.
func (c *Client) CreateUser(ctx context.Context, write UserWrite) (*User, error) {
	if write.Password != write.PasswordConfirm {
		return nil, newValidationError("password confirmation does not match")
	}

	var user User
	if err := c.post(ctx, "/admin/users/", write, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an account's profile and flags.
func (c *Client) UpdateUser(ctx context.Context, id int64, write UserWrite) (*User, error) {
	var user User
	if err := c.put(ctx, fmt.Sprintf("/admin/users/%d/", id), write, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/admin/users/%d/", id))
}

// ============================================================================
// Images
// ============================================================================

// AdminImages lists uploaded product images.
func (c *Client) AdminImages(ctx context.Context, q ListQuery) (Page[ProductImage], error) {
	var page Page[ProductImage]
	err := c.get(ctx, withQuery("/admin/images/", q.values()), &page)
	return page, err
}

// UploadImage registers an externally hosted image by URL.
func (c *Client) UploadImage(ctx context.Context, imageURL, altText string) (*ProductImage, error) {
	body := map[string]string{"image": imageURL, "alt_text": altText}

	var image ProductImage
	if err := c.post(ctx, "/admin/images/", body, &image); err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes an uploaded image.
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/admin/images/%d/", id))
}
