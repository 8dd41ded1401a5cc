package sdk_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/GeovanniVera/chamus/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMuseum_MethodOverride(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/museums/5", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "PUT", r.FormValue("_method"))
		assert.Equal(t, "Museo Frida Kahlo", r.FormValue("name"))
		assert.Equal(t, "17:45", r.FormValue("clossing_time"))
		assert.Equal(t, []string{"1", "4"}, r.MultipartForm.Value["category_ids[]"])
		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "casa-azul.png", header.Filename)
		jsonHandler(http.StatusOK, map[string]any{"data": map[string]any{"id": 5, "nombre": "Museo Frida Kahlo"}})(w, r)
	})

	in := validMuseumInput()
	in.Image = pngUpload()
	museum, err := sdk.NewClient(api.server.URL).UpdateMuseum(context.Background(), 5, in)
	require.NoError(t, err)
	require.NotNil(t, museum)
	assert.Equal(t, int64(5), museum.ID)
	assert.Equal(t, "Museo Frida Kahlo", museum.Name)
}

func TestCreateRoom_EmptyBody(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.FormValue("_method"))
		assert.Equal(t, "3", r.FormValue("museum_id"))
		w.WriteHeader(http.StatusCreated)
	})

	room, err := sdk.NewClient(api.server.URL).CreateRoom(context.Background(),
		sdk.RoomInput{MuseumID: 3, Name: "Sala Diego", Image: pngUpload()})
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestUpdateDiscount_JSONOverride(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/discounts/2", jsonHandler(http.StatusOK, map[string]any{"id": 2, "valor_descuento": "0.2"}))

	d, err := sdk.NewClient(api.server.URL).UpdateDiscount(context.Background(), 2,
		sdk.DiscountInput{MuseumID: 3, Value: 0.2, Description: "Adultos mayores"})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, d.Value, 1e-9)

	var body map[string]any
	require.NoError(t, json.Unmarshal(api.lastBody(), &body))
	assert.Equal(t, "PUT", body["_method"])
	assert.EqualValues(t, 3, body["museum_id"])
	assert.Equal(t, "application/json", api.lastRequest().Header.Get("Content-Type"))
}

func TestUpdateMuseum_LogsOverriddenMethod(t *testing.T) {
	api := newFakeAPI(t)
	api.handle(http.MethodPost, "/api/museums/5", jsonHandler(http.StatusOK, map[string]any{"id": 5}))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := sdk.NewClient(api.server.URL, sdk.WithLogger(logger))

	_, err := client.UpdateMuseum(context.Background(), 5, validMuseumInput())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "method=PUT")
	assert.Contains(t, buf.String(), "path=/api/museums/5")
}

func TestMultipartForm_Value(t *testing.T) {
	form := sdk.NewMultipartForm().Add("_method", "PUT").Add("name", "first").Add("name", "second")

	v, ok := form.Value("_method")
	require.True(t, ok)
	assert.Equal(t, "PUT", v)

	v, ok = form.Value("name")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = form.Value("missing")
	assert.False(t, ok)
}
