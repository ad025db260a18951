package server_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/drsam94/mmbccr/internal/romtest"
	"github.com/drsam94/mmbccr/internal/server"
	"github.com/drsam94/mmbccr/pkg/rom"
)

const conf = "[ChipRange]\nap = 30\n\n[Encounters]\nrandomizeChips = true\n"

func post(t *testing.T, h http.Handler, confText string, image []byte, seed string) *httptest.ResponseRecorder {
	t.Helper()

	body := append([]byte(confText), image...)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set(server.HeaderConfLength, strconv.Itoa(len(confText)))

	if seed != "" {
		req.Header.Set(server.HeaderSeed, seed)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func Test_Handler_Returns_Randomized_Image_When_Request_Is_Valid(t *testing.T) {
	t.Parallel()

	h := server.NewHandler(server.Config{})
	input := romtest.BCC(t, 1).Bytes()

	first := post(t, h, conf, input, "1234")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "1234", first.Header().Get(server.HeaderSeed))
	assert.Equal(t, "*", first.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, server.HeaderSeed, first.Header().Get("Access-Control-Expose-Headers"))
	assert.Len(t, first.Body.Bytes(), len(input))
	assert.False(t, bytes.Equal(input, first.Body.Bytes()))

	_, err := rom.New(first.Body.Bytes())
	require.NoError(t, err)

	second := post(t, h, conf, input, "1234")
	require.Equal(t, http.StatusOK, second.Code)
	assert.True(t, bytes.Equal(first.Body.Bytes(), second.Body.Bytes()), "same seed, same image")
}

func Test_Handler_Picks_Seed_When_None_Is_Sent(t *testing.T) {
	t.Parallel()

	h := server.NewHandler(server.Config{})
	input := romtest.BCC(t, 2).Bytes()

	first := post(t, h, conf, input, "")
	require.Equal(t, http.StatusOK, first.Code)

	seed := first.Header().Get(server.HeaderSeed)
	_, err := strconv.ParseUint(seed, 10, 64)
	require.NoError(t, err)

	again := post(t, h, conf, input, seed)
	assert.True(t, bytes.Equal(first.Body.Bytes(), again.Body.Bytes()))
}

func Test_Handler_Maps_Errors_To_Status_When_Request_Is_Bad(t *testing.T) {
	t.Parallel()

	h := server.NewHandler(server.Config{})
	good := romtest.BCC(t, 3).Bytes()

	junk := bytes.Clone(good)
	copy(junk[rom.SignatureOffset:], "NOT A GAME HEAD!")

	tests := []struct {
		name   string
		conf   string
		image  []byte
		seed   string
		status int
	}{
		{"unknown rom", conf, junk, "", http.StatusUnprocessableEntity},
		{"short rom", conf, []byte{1, 2, 3}, "", http.StatusUnprocessableEntity},
		{"bad options", "[ChipRange]\nattack = 5\n", good, "", http.StatusBadRequest},
		{"bad seed", conf, good, "soon", http.StatusBadRequest},
		{"unsupported option", "[Encounters]\nrandomizePanels = true\n", romtest.BN2(t, 3).Bytes(), "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := post(t, h, tt.conf, tt.image, tt.seed)
		assert.Equal(t, tt.status, rec.Code, "%s: %s", tt.name, rec.Body.String())
		assert.Empty(t, rec.Header().Get(server.HeaderSeed), tt.name)
	}
}

func Test_Handler_Rejects_ConfLength_When_Malformed(t *testing.T) {
	t.Parallel()

	h := server.NewHandler(server.Config{})

	for _, v := range []string{"x", "-1", "999"} {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
		req.Header.Set(server.HeaderConfLength, v)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
	}
}

func Test_Handler_Caps_Body_When_Too_Large(t *testing.T) {
	t.Parallel()

	h := server.NewHandler(server.Config{MaxBodyBytes: 1024})

	rec := post(t, h, "", romtest.BCC(t, 4).Bytes(), "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func Test_Handler_Answers_Preflight_And_Health_When_Asked(t *testing.T) {
	t.Parallel()

	h := server.NewHandler(server.Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET,POST,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type,ConfLength,Seed", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func Test_Handler_Uses_Server_Name_Pool_When_Names_Are_Randomized(t *testing.T) {
	t.Parallel()

	confText := `{"names": {"randomizeNames": true, "chipNames": "/etc/passwd"}}`
	input := romtest.BCC(t, 5).Bytes()

	rec := post(t, server.NewHandler(server.Config{}), confText, input, "5")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no pool configured")

	rec = post(t, server.NewHandler(server.Config{NamePool: []string{"Zap"}}), confText, input, "5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, bytes.Equal(input, rec.Body.Bytes()))
}

func Test_Handler_Logs_Requests_When_Logger_Is_Set(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	h := server.NewHandler(server.Config{Logger: zap.New(core)})

	rec := post(t, h, conf, romtest.BCC(t, 6).Bytes(), "6")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "6", fields["seed"])
	assert.Equal(t, http.MethodPost, fields["method"])
}

func Test_ListenAndServe_Stops_When_Context_Is_Canceled(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- server.ListenAndServe(ctx, addr, server.NewHandler(server.Config{}), nil) }()

	var resp *http.Response

	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + addr + "/health")

		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
