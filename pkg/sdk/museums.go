package sdk

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
)

// MuseumInput carries the museum form. Numeric fields stay strings until
// validated, as they arrive from flags and HTML forms.
type MuseumInput struct {
	Name        string
	Description string
	OpeningTime string
	ClosingTime string
	Latitude    string
	Longitude   string
	TicketPrice string
	URL         string
	Status      string
	CategoryIDs []int64
	// Image is required on create and optional on update.
	Image *Upload
}

// MuseumFieldMap translates museum 422 field names into MuseumInput field
// names as reported by ValidateMuseum.
var MuseumFieldMap = map[string]string{
	"clossing_time": "closing_time",
	"category_ids":  "categories",
}

func (in MuseumInput) form(method string) *MultipartForm {
	f := NewMultipartForm()
	if method != "" {
		f.Add("_method", method)
	}
	f.Add("name", in.Name).
		Add("opening_time", in.OpeningTime).
		Add("clossing_time", in.ClosingTime).
		Add("latitude", in.Latitude).
		Add("longitude", in.Longitude).
		Add("description", in.Description).
		Add("ticket_price", in.TicketPrice).
		Add("url", in.URL).
		Add("status", in.Status)
	for _, id := range in.CategoryIDs {
		f.Add("category_ids[]", strconv.FormatInt(id, 10))
	}
	if in.Image != nil {
		upload := *in.Image
		upload.Field = "image"
		f.Attach(upload)
	}
	return f
}

// ListMuseums returns every museum.
func (c *Client) ListMuseums(ctx context.Context) ([]Museum, error) {
	resp, err := c.Get(ctx, "/api/museums")
	if err != nil {
		return nil, err
	}
	var museums []Museum
	if err := resp.Decode(&museums); err != nil {
		return nil, err
	}
	return museums, nil
}

// GetMuseum returns one museum with its rooms, categories and discounts.
func (c *Client) GetMuseum(ctx context.Context, id int64) (*Museum, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/api/museums/%d", id))
	if err != nil {
		return nil, err
	}
	var museum Museum
	if err := resp.Decode(&museum); err != nil {
		return nil, err
	}
	return &museum, nil
}

// CreateMuseum validates in and submits it as a multipart form.
func (c *Client) CreateMuseum(ctx context.Context, in MuseumInput) (*Museum, error) {
	if err := ValidateMuseum(in, true).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, "/api/museums", in.form(""))
	if err != nil {
		return nil, err
	}
	return decodeOptional[Museum](resp)
}

// UpdateMuseum submits in with a "_method=PUT" override over POST, since
// the API only parses multipart bodies on POST.
func (c *Client) UpdateMuseum(ctx context.Context, id int64, in MuseumInput) (*Museum, error) {
	if err := ValidateMuseum(in, false).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, fmt.Sprintf("/api/museums/%d", id), in.form("PUT"))
	if err != nil {
		return nil, err
	}
	return decodeOptional[Museum](resp)
}

// DeleteMuseum removes a museum.
func (c *Client) DeleteMuseum(ctx context.Context, id int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/museums/%d", id))
	return err
}

// RoomInput carries the room form.
type RoomInput struct {
	MuseumID    int64
	Name        string
	Description string
	Image       *Upload
}

func (in RoomInput) form(method string) *MultipartForm {
	f := NewMultipartForm()
	if method != "" {
		f.Add("_method", method)
	}
	f.Add("name", in.Name).
		Add("description", in.Description).
		Add("museum_id", strconv.FormatInt(in.MuseumID, 10))
	if in.Image != nil {
		upload := *in.Image
		upload.Field = "image"
		f.Attach(upload)
	}
	return f
}

// GetRoom returns one room.
func (c *Client) GetRoom(ctx context.Context, id int64) (*Room, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/api/rooms/%d", id))
	if err != nil {
		return nil, err
	}
	var room Room
	if err := resp.Decode(&room); err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateRoom adds a room to a museum.
func (c *Client) CreateRoom(ctx context.Context, in RoomInput) (*Room, error) {
	if err := ValidateRoom(in, true).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, "/api/rooms", in.form(""))
	if err != nil {
		return nil, err
	}
	return decodeOptional[Room](resp)
}

// UpdateRoom edits a room using the multipart "_method=PUT" override.
func (c *Client) UpdateRoom(ctx context.Context, id int64, in RoomInput) (*Room, error) {
	if err := ValidateRoom(in, false).Err(); err != nil {
		return nil, err
	}
	resp, err := c.Post(ctx, fmt.Sprintf("/api/rooms/%d", id), in.form("PUT"))
	if err != nil {
		return nil, err
	}
	return decodeOptional[Room](resp)
}

// DeleteRoom removes a room.
func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	_, err := c.Delete(ctx, fmt.Sprintf("/api/rooms/%d", id))
	return err
}

// decodeOptional decodes a write response. Some endpoints answer 201/204
// without a body, in which case nil is returned.
func decodeOptional[T any](resp *Response) (*T, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}
	var v T
	if err := resp.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
