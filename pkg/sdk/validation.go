package sdk

import (
	"net/mail"
	"strconv"
	"strings"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateMuseum applies the museum form rules. The image is mandatory
// only when creating.
func ValidateMuseum(in MuseumInput, creating bool) FieldErrors {
	errs := FieldErrors{}
	if len(strings.TrimSpace(in.Name)) < 3 {
		errs.Add("name", "must be at least 3 characters")
	}
	validateImage(errs, in.Image, creating)
	if !isNumber(in.Latitude) {
		errs.Add("latitude", "must be a number")
	}
	if !isNumber(in.Longitude) {
		errs.Add("longitude", "must be a number")
	}
	if price, err := strconv.ParseFloat(strings.TrimSpace(in.TicketPrice), 64); err != nil || price < 0 {
		errs.Add("ticket_price", "must be a number greater than or equal to 0")
	}
	if in.URL != "" && !strings.HasPrefix(in.URL, "http://") && !strings.HasPrefix(in.URL, "https://") {
		errs.Add("url", "must start with http:// or https://")
	}
	if len(in.CategoryIDs) == 0 {
		errs.Add("categories", "select at least one category")
	}
	return errs
}

// ValidateRoom applies the room form rules.
func ValidateRoom(in RoomInput, creating bool) FieldErrors {
	errs := FieldErrors{}
	if in.MuseumID <= 0 {
		errs.Add("museum_id", "is required")
	}
	if len(strings.TrimSpace(in.Name)) < 3 {
		errs.Add("name", "must be at least 3 characters")
	}
	validateImage(errs, in.Image, creating)
	return errs
}

// ValidateDiscount applies the discount form rules.
func ValidateDiscount(in DiscountInput) FieldErrors {
	errs := FieldErrors{}
	if in.MuseumID <= 0 {
		errs.Add("museum_id", "is required")
	}
	if in.Value < 0 || in.Value > 1 {
		errs.Add("discount", "must be a fraction between 0 and 1 (0.15 for 15%)")
	}
	if len(strings.TrimSpace(in.Description)) < 5 {
		errs.Add("description", "must be at least 5 characters")
	}
	return errs
}

// ValidateCategory applies the category form rules.
func ValidateCategory(name string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "must not be empty")
	}
	return errs
}

// ValidateUser applies the user form rules. A password is required only
// when creating; when given it must match its confirmation.
func ValidateUser(in UserInput, creating bool) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		errs.Add("email", "is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		errs.Add("email", "is not a valid address")
	}
	if creating && strings.TrimSpace(in.Password) == "" {
		errs.Add("password", "is required")
	}
	if in.Password != in.PasswordConfirmation {
		errs.Add("password_confirmation", "does not match the password")
	}
	return errs
}

func validateImage(errs FieldErrors, img *Upload, required bool) {
	switch {
	case img == nil && required:
		errs.Add("image", "an image is required")
	case img != nil && !allowedImageTypes[img.ContentType]:
		errs.Add("image", "must be a JPG, PNG or WebP file")
	}
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
