package storesdk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Products lists the public catalog, filtered and ordered by q.
func (c *Client) Products(ctx context.Context, q ProductQuery) (Page[Product], error) {
	params := url.Values{}
	if q.Category > 0 {
		params.Set("category", strconv.FormatInt(q.Category, 10))
	}
	if q.Subcategory > 0 {
		params.Set("subcategory", strconv.FormatInt(q.Subcategory, 10))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Ordering != "" {
		params.Set("ordering", q.Ordering)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var page Page[Product]
	err := c.get(ctx, withQuery("/products/", params), &page)
	return page, err
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d/", id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// FeaturedProducts returns the home page selection.
func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	var page Page[Product]
	if err := c.get(ctx, "/products/featured/", &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Categories lists the top-level categories with their subcategories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var page Page[Category]
	if err := c.get(ctx, "/products/categories/", &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Subcategories lists the direct children of a category.
func (c *Client) Subcategories(ctx context.Context, categoryID int64) ([]Category, error) {
	var page Page[Category]
	path := fmt.Sprintf("/products/categories/%d/subcategories/", categoryID)
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// withQuery appends encoded params to path when any are set.
func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
