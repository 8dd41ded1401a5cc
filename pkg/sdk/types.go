package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// The catalog API has answered with Spanish and English field names over
// time ("nombre"/"name", "imagen"/"image", ...) and sometimes encodes
// numbers as strings. Every resource below decodes through a wire struct
// that accepts all known spellings and is normalized into one canonical
// shape. The canonical JSON tags are themselves accepted by the wire
// structs, so canonical values round-trip.

// Museum is the canonical museum record.
type Museum struct {
	ID          int64      `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string     `json:"image,omitempty" yaml:"image,omitempty"`
	OpeningTime string     `json:"opening_time,omitempty" yaml:"opening_time,omitempty"`
	ClosingTime string     `json:"closing_time,omitempty" yaml:"closing_time,omitempty"`
	Latitude    float64    `json:"latitude" yaml:"latitude"`
	Longitude   float64    `json:"longitude" yaml:"longitude"`
	TicketPrice float64    `json:"ticket_price" yaml:"ticket_price"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	Status      string     `json:"status,omitempty" yaml:"status,omitempty"`
	RoomCount   int        `json:"rooms_count" yaml:"rooms_count"`
	Categories  []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
	Rooms       []Room     `json:"rooms,omitempty" yaml:"rooms,omitempty"`
	Discounts   []Discount `json:"discounts,omitempty" yaml:"discounts,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string     `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type museumWire struct {
	ID             flexInt    `json:"id"`
	Name           flexString `json:"name"`
	Nombre         flexString `json:"nombre"`
	Description    flexString `json:"description"`
	Descripcion    flexString `json:"descripcion"`
	Image          flexString `json:"image"`
	Imagen         flexString `json:"imagen"`
	OpeningTime    flexString `json:"opening_time"`
	HoraDeApertura flexString `json:"hora_de_apertura"`
	ClosingTime    flexString `json:"closing_time"`
	ClossingTime   flexString `json:"clossing_time"`
	HoraDeCierre   flexString `json:"hora_de_cierre"`
	Latitude       flexFloat  `json:"latitude"`
	Latitud        flexFloat  `json:"latitud"`
	Longitude      flexFloat  `json:"longitude"`
	Longitud       flexFloat  `json:"longitud"`
	TicketPrice    flexFloat  `json:"ticket_price"`
	Precio         flexFloat  `json:"precio"`
	URL            flexString `json:"url"`
	Status         flexString `json:"status"`
	Estado         flexString `json:"estado"`
	RoomsCount     flexInt    `json:"rooms_count"`
	NumeroDeSalas  flexInt    `json:"numero_de_salas"`
	Categories     []Category `json:"categories"`
	Rooms          []Room     `json:"rooms"`
	Salas          []Room     `json:"salas"`
	Discounts      []Discount `json:"discounts"`
	Descuentos     []Discount `json:"descuentos_asociados"`
	CreatedAt      flexString `json:"created_at"`
	Creado         flexString `json:"creado"`
	UpdatedAt      flexString `json:"updated_at"`
	Actualizado    flexString `json:"actualizado"`
}

// UnmarshalJSON normalizes any known museum payload shape.
func (m *Museum) UnmarshalJSON(data []byte) error {
	var w museumWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Museum{
		ID:          int64(w.ID),
		Name:        firstString(w.Name, w.Nombre),
		Description: firstString(w.Description, w.Descripcion),
		Image:       firstString(w.Image, w.Imagen),
		OpeningTime: firstString(w.OpeningTime, w.HoraDeApertura),
		ClosingTime: firstString(w.ClosingTime, w.ClossingTime, w.HoraDeCierre),
		Latitude:    firstFloat(w.Latitude, w.Latitud),
		Longitude:   firstFloat(w.Longitude, w.Longitud),
		TicketPrice: firstFloat(w.TicketPrice, w.Precio),
		URL:         string(w.URL),
		Status:      firstString(w.Status, w.Estado),
		Categories:  w.Categories,
		Rooms:       w.Rooms,
		Discounts:   w.Discounts,
		CreatedAt:   firstString(w.CreatedAt, w.Creado),
		UpdatedAt:   firstString(w.UpdatedAt, w.Actualizado),
	}
	if len(m.Rooms) == 0 {
		m.Rooms = w.Salas
	}
	if len(m.Discounts) == 0 {
		m.Discounts = w.Descuentos
	}
	m.RoomCount = int(w.RoomsCount)
	if m.RoomCount == 0 {
		m.RoomCount = int(w.NumeroDeSalas)
	}
	if m.RoomCount == 0 {
		m.RoomCount = len(m.Rooms)
	}
	return nil
}

// Room is the canonical room record.
type Room struct {
	ID          int64  `json:"id" yaml:"id"`
	MuseumID    int64  `json:"museum_id,omitempty" yaml:"museum_id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// UnmarshalJSON normalizes any known room payload shape.
func (r *Room) UnmarshalJSON(data []byte) error {
	var w struct {
		ID          flexInt    `json:"id"`
		MuseumID    flexInt    `json:"museum_id"`
		Name        flexString `json:"name"`
		Nombre      flexString `json:"nombre"`
		Description flexString `json:"description"`
		Descripcion flexString `json:"descripcion"`
		Image       flexString `json:"image"`
		Imagen      flexString `json:"imagen"`
		CreatedAt   flexString `json:"created_at"`
		Creado      flexString `json:"creado"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Room{
		ID:          int64(w.ID),
		MuseumID:    int64(w.MuseumID),
		Name:        firstString(w.Name, w.Nombre),
		Description: firstString(w.Description, w.Descripcion),
		Image:       firstString(w.Image, w.Imagen),
		CreatedAt:   firstString(w.CreatedAt, w.Creado),
	}
	return nil
}

// Discount is the canonical discount record. Value is a fraction in [0, 1].
type Discount struct {
	ID          int64   `json:"id" yaml:"id"`
	MuseumID    int64   `json:"museum_id,omitempty" yaml:"museum_id,omitempty"`
	Value       float64 `json:"discount" yaml:"discount"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// UnmarshalJSON normalizes any known discount payload shape.
func (d *Discount) UnmarshalJSON(data []byte) error {
	var w struct {
		ID                    flexInt    `json:"id"`
		MuseumID              flexInt    `json:"museum_id"`
		Discount              flexFloat  `json:"discount"`
		ValorDescuento        flexFloat  `json:"valor_descuento"`
		Description           flexString `json:"description"`
		Descripcion           flexString `json:"descripcion"`
		DescripcionAplicacion flexString `json:"descripcion_aplicacion"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = Discount{
		ID:          int64(w.ID),
		MuseumID:    int64(w.MuseumID),
		Value:       firstFloat(w.Discount, w.ValorDescuento),
		Description: firstString(w.Description, w.DescripcionAplicacion, w.Descripcion),
	}
	return nil
}

// Category is the canonical category record.
type Category struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// UnmarshalJSON normalizes any known category payload shape.
func (c *Category) UnmarshalJSON(data []byte) error {
	var w struct {
		ID     flexInt    `json:"id"`
		Name   flexString `json:"name"`
		Nombre flexString `json:"nombre"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Category{ID: int64(w.ID), Name: firstString(w.Name, w.Nombre)}
	return nil
}

// User is an administrator account.
type User struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// UnmarshalJSON normalizes any known user payload shape.
func (u *User) UnmarshalJSON(data []byte) error {
	var w struct {
		ID        flexInt    `json:"id"`
		Name      flexString `json:"name"`
		Nombre    flexString `json:"nombre"`
		Email     flexString `json:"email"`
		CreatedAt flexString `json:"created_at"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = User{
		ID:        int64(w.ID),
		Name:      firstString(w.Name, w.Nombre),
		Email:     string(w.Email),
		CreatedAt: string(w.CreatedAt),
	}
	return nil
}

// Quote is a visitor quote ("cotización"). Fields keeps the complete
// record for detail views since its schema is not fixed.
type Quote struct {
	ID         int64          `json:"id" yaml:"id"`
	UniqueID   string         `json:"unique_id" yaml:"unique_id"`
	MuseumName string         `json:"museum" yaml:"museum"`
	Fields     map[string]any `json:"-" yaml:"-"`
}

// UnmarshalJSON normalizes a quote; "museum" may be a name or an object.
func (q *Quote) UnmarshalJSON(data []byte) error {
	var w struct {
		ID       flexInt         `json:"id"`
		UniqueID flexString      `json:"unique_id"`
		Museum   json.RawMessage `json:"museum"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*q = Quote{ID: int64(w.ID), UniqueID: string(w.UniqueID), Fields: fields}

	raw := bytes.TrimSpace(w.Museum)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var m Museum
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		q.MuseumName = m.Name
	default:
		var s flexString
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		q.MuseumName = string(s)
	}
	return nil
}

// flexString accepts a JSON string, number, bool or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return fmt.Errorf("expected scalar, got %s", data)
	}
	*s = flexString(data)
	return nil
}

// flexFloat accepts a JSON number, a numeric string, an empty string or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", string(s), err)
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts a JSON integer or integer string.
type flexInt int64

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = flexInt(int64(f))
	return nil
}

func firstString(values ...flexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

func firstFloat(values ...flexFloat) float64 {
	for _, v := range values {
		if v != 0 {
			return float64(v)
		}
	}
	return 0
}
