package sdk

import (
	"context"
	"fmt"
)

// DiscountInput carries the discount form. Value is a fraction in [0, 1].
type DiscountInput struct {
	MuseumID    int64   `json:"museum_id"`
	Value       float64 `json:"discount"`
	Description string  `json:"description"`
}

// GetDiscount returns one discount.
func (c *Client) GetDiscount(ctx context.Context, id int64) (*Discount, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/api/discounts/%d", id))
	if err != nil {
		return nil, err
	}
	var discount Discount
	if err := resp.Decode(&discount); err != nil {
		return nil, err
	}
	return &discount, nil
}

// CreateDiscount attaches a discount to a museum.
func (c *Client) CreateDiscount(ctx context.Context, in DiscountInput) (*Discount, error) {
	if err := ValidateDiscount(in).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, "/api/discounts", in)
	if err != nil {
		return nil, err
	}
	return decodeOptional[Discount](resp)
}

// UpdateDiscount edits a discount. The API routes discount updates through
// POST with a "_method" override, like the multipart resources.
func (c *Client) UpdateDiscount(ctx context.Context, id int64, in DiscountInput) (*Discount, error) {
	if err := ValidateDiscount(in).Err(); err != nil {
		return nil, err
	}
	body := struct {
		DiscountInput
		Method string `json:"_method"`
	}{DiscountInput: in, Method: "PUT"}

	resp, err := c.Post(ctx, fmt.Sprintf("/api/discounts/%d", id), body)
	if err != nil {
		return nil, err
	}
	return decodeOptional[Discount](resp)
}

// DeleteDiscount removes a discount.
func (c *Client) DeleteDiscount(ctx context.Context, id int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/discounts/%d", id))
	return err
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	resp, err := c.Get(ctx, "/api/categories")
	if err != nil {
		return nil, err
	}
	var categories []Category
	if err := resp.Decode(&categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if err := ValidateCategory(name).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, "/api/categories", categoryRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return decodeOptional[Category](resp)
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, name string) (*Category, error) {
	if err := ValidateCategory(name).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Put(ctx, fmt.Sprintf("/api/categories/%d", id), categoryRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return decodeOptional[Category](resp)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/categories/%d", id))
	return err
}
