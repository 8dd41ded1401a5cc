package sdk

import (
	"context"
	"fmt"
	"strings"
)

// UserInput carries the user form. On update an empty Password keeps the
// current one.
type UserInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password,omitempty"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

// CurrentUser returns the account that owns the session token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.Get(ctx, CurrentUserPath)
	if err != nil {
		return nil, err
	}
	var user User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every administrator account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	resp, err := c.Get(ctx, "/api/users")
	if err != nil {
		return nil, err
	}
	var users []User
	if err := resp.Decode(&users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser adds an administrator account.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (*User, error) {
	if err := ValidateUser(in, true).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, "/api/users", in)
	if err != nil {
		return nil, err
	}
	return decodeOptional[User](resp)
}

// UpdateUser edits an account. The password is only sent when set.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserInput) (*User, error) {
	if err := ValidateUser(in, false).Err(); err != nil {
		return nil, err
	}
	if in.Password == "" {
		in.PasswordConfirmation = ""
	}
	resp, err := c.Put(ctx, fmt.Sprintf("/api/users/%d", id), in)
	if err != nil {
		return nil, err
	}
	return decodeOptional[User](resp)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/users/%d", id))
	return err
}

// ListQuotes returns visitor quotes.
func (c *Client) ListQuotes(ctx context.Context) ([]Quote, error) {
	resp, err := c.Get(ctx, "/api/cotizaciones")
	if err != nil {
		return nil, err
	}
	var quotes []Quote
	if err := resp.Decode(&quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// FilterQuotes keeps quotes whose museum name contains museum, ignoring
// case. An empty museum keeps everything.
func FilterQuotes(quotes []Quote, museum string) []Quote {
	museum = strings.ToLower(strings.TrimSpace(museum))
	if museum == "" {
		return quotes
	}
	out := quotes[:0:0]
	for _, q := range quotes {
		if strings.Contains(strings.ToLower(q.MuseumName), museum) {
			out = append(out, q)
		}
	}
	return out
}
