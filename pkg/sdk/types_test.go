package sdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/GeovanniVera/chamus/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuseum_DecodesEitherSpelling(t *testing.T) {
	spanish := `{
		"id": "12",
		"nombre": "Museo Soumaya",
		"descripcion": "Arte europeo",
		"imagen": "museums/soumaya.webp",
		"hora_de_apertura": "10:00",
		"clossing_time": "18:30",
		"latitud": "19.4406",
		"longitud": -99.2047,
		"precio": "0",
		"estado": "activo",
		"numero_de_salas": "6",
		"categories": [{"id": 1, "nombre": "Arte"}],
		"descuentos_asociados": [{"id": 3, "valor_descuento": "0.15", "descripcion_aplicacion": "Estudiantes"}]
	}`
	english := `{
		"id": 12,
		"name": "Museo Soumaya",
		"description": "Arte europeo",
		"image": "museums/soumaya.webp",
		"opening_time": "10:00",
		"closing_time": "18:30",
		"latitude": 19.4406,
		"longitude": "-99.2047",
		"ticket_price": 0,
		"status": "activo",
		"rooms_count": 6,
		"categories": [{"id": "1", "name": "Arte"}],
		"discounts": [{"id": 3, "discount": 0.15, "description": "Estudiantes"}]
	}`

	var a, b sdk.Museum
	require.NoError(t, json.Unmarshal([]byte(spanish), &a))
	require.NoError(t, json.Unmarshal([]byte(english), &b))
	assert.Equal(t, a, b)

	assert.Equal(t, int64(12), a.ID)
	assert.Equal(t, "Museo Soumaya", a.Name)
	assert.Equal(t, "18:30", a.ClosingTime)
	assert.InDelta(t, 19.4406, a.Latitude, 1e-9)
	assert.Equal(t, 6, a.RoomCount)
	require.Len(t, a.Categories, 1)
	assert.Equal(t, "Arte", a.Categories[0].Name)
	require.Len(t, a.Discounts, 1)
	assert.InDelta(t, 0.15, a.Discounts[0].Value, 1e-9)
	assert.Equal(t, "Estudiantes", a.Discounts[0].Description)
}

func TestMuseum_RoomCountFallsBackToRooms(t *testing.T) {
	var m sdk.Museum
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"X","salas":[{"id":1,"nombre":"A"},{"id":2,"name":"B"}]}`), &m))
	assert.Equal(t, 2, m.RoomCount)
	assert.Equal(t, "A", m.Rooms[0].Name)
	assert.Equal(t, "B", m.Rooms[1].Name)
}

func TestMuseum_CanonicalRoundTrip(t *testing.T) {
	in := sdk.Museum{ID: 4, Name: "MUNAL", Latitude: 19.43, Longitude: -99.14, TicketPrice: 90, RoomCount: 3}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out sdk.Museum
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMuseum_RejectsGarbageNumber(t *testing.T) {
	var m sdk.Museum
	err := json.Unmarshal([]byte(`{"id":1,"latitude":"north"}`), &m)
	require.Error(t, err)
}

func TestQuote_MuseumShapes(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"string", `{"id":1,"unique_id":"Q-1","museum":"MUNAL"}`, "MUNAL"},
		{"object", `{"id":1,"unique_id":"Q-1","museum":{"id":2,"nombre":"MUNAL"}}`, "MUNAL"},
		{"missing", `{"id":1,"unique_id":"Q-1"}`, ""},
		{"null", `{"id":1,"unique_id":"Q-1","museum":null}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q sdk.Quote
			require.NoError(t, json.Unmarshal([]byte(tt.json), &q))
			assert.Equal(t, tt.want, q.MuseumName)
			assert.Equal(t, "Q-1", q.UniqueID)
			assert.Equal(t, "Q-1", q.Fields["unique_id"])
		})
	}
}

func TestResponse_DecodeUnwrapsDataEnvelope(t *testing.T) {
	for name, payload := range map[string]any{
		"bare":     []map[string]any{{"id": 1, "nombre": "Arte"}},
		"envelope": map[string]any{"data": []map[string]any{{"id": 1, "name": "Arte"}}},
	} {
		t.Run(name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handle(http.MethodGet, "/api/categories", jsonHandler(http.StatusOK, payload))

			categories, err := sdk.NewClient(api.server.URL).ListCategories(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []sdk.Category{{ID: 1, Name: "Arte"}}, categories)
		})
	}
}

func TestFilterQuotes(t *testing.T) {
	quotes := []sdk.Quote{
		{ID: 1, MuseumName: "Museo Soumaya"},
		{ID: 2, MuseumName: "Museo Frida Kahlo"},
		{ID: 3},
	}

	assert.Len(t, sdk.FilterQuotes(quotes, ""), 3)

	got := sdk.FilterQuotes(quotes, "  soumaya ")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	assert.Empty(t, sdk.FilterQuotes(quotes, "anahuacalli"))
	assert.Len(t, quotes, 3, "input must not be modified")
}
