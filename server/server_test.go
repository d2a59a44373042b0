package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mobile-next/touchsweep/commands"
	"github.com/mobile-next/touchsweep/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withRegistry installs a fresh surface registry for the duration of a test
func withRegistry(t *testing.T) *surface.Registry {
	t.Helper()
	registry, err := surface.NewRegistry(16)
	require.NoError(t, err)

	previous := commands.GetRegistry()
	commands.SetRegistry(registry)
	t.Cleanup(func() { commands.SetRegistry(previous) })
	return registry
}

func newTestHTTPServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	withRegistry(t)
	server := httptest.NewServer(NewHandler(opts))
	t.Cleanup(server.Close)
	return server
}

func postRPC(t *testing.T, url string, payload interface{}) JSONRPCResponse {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))
	return jsonResp
}

func rpcCall(method string, params interface{}) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}
}

func resultMap(t *testing.T, resp JSONRPCResponse) map[string]interface{} {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %v", resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "result should be an object")
	return result
}

func errorMap(t *testing.T, resp JSONRPCResponse) map[string]interface{} {
	t.Helper()
	require.NotNil(t, resp.Error)
	m, ok := resp.Error.(map[string]interface{})
	require.True(t, ok)
	return m
}

func TestRootEndpoint(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))

	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, Version, data["version"])
}

func TestRPCEndpointMethods(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	resp, err := http.Get(server.URL + "/rpc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestJSONRPCValidation(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	tests := []struct {
		name    string
		payload interface{}
		code    int
		data    string
	}{
		{
			name:    "invalid jsonrpc version",
			payload: map[string]interface{}{"jsonrpc": "1.0", "method": "classify", "id": 1},
			code:    ErrCodeInvalidRequest,
			data:    errMsgInvalidJSONRPC,
		},
		{
			name:    "missing id",
			payload: map[string]interface{}{"jsonrpc": "2.0", "method": "classify"},
			code:    ErrCodeInvalidRequest,
			data:    errMsgIDRequired,
		},
		{
			name:    "missing method",
			payload: map[string]interface{}{"jsonrpc": "2.0", "id": 1},
			code:    ErrCodeInvalidRequest,
			data:    errMsgMethodRequired,
		},
		{
			name:    "websocket only method",
			payload: rpcCall("surface_subscribe", map[string]interface{}{"surfaceId": "x"}),
			code:    ErrCodeMethodNotFound,
		},
		{
			name:    "unknown method",
			payload: rpcCall("devices", nil),
			code:    ErrCodeMethodNotFound,
			data:    "Method 'devices' not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMap := errorMap(t, postRPC(t, server.URL, tt.payload))
			assert.Equal(t, float64(tt.code), errMap["code"])
			if tt.data != "" {
				assert.Equal(t, tt.data, errMap["data"])
			}
		})
	}
}

func TestJSONRPCParseError(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	resp, err := http.Post(server.URL+"/rpc", "application/json", bytes.NewBufferString(""))
	require.NoError(t, err)
	defer resp.Body.Close()

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))

	errMap := errorMap(t, jsonResp)
	assert.Equal(t, float64(ErrCodeParseError), errMap["code"])
	assert.Equal(t, errMsgParseError, errMap["data"])
}

func TestClassifyMethod(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	result := resultMap(t, postRPC(t, server.URL, rpcCall("classify", map[string]interface{}{
		"x1": 100, "y1": 100, "x2": 100, "y2": 40,
	})))

	assert.Equal(t, "swipeup", result["gesture"])
	assert.Equal(t, "up", result["direction"])
	assert.Equal(t, 40.0, result["threshold"])
	assert.Equal(t, "y", result["axis"])
}

func TestClassifyMethod_InvalidParams(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	tests := []struct {
		name   string
		params interface{}
	}{
		{"no params", nil},
		{"missing y2", map[string]interface{}{"x1": 1, "y1": 1, "x2": 1}},
		{"wrong type", map[string]interface{}{"x1": "a", "y1": 1, "x2": 1, "y2": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMap := errorMap(t, postRPC(t, server.URL, rpcCall("classify", tt.params)))
			assert.Equal(t, float64(ErrCodeInvalidParams), errMap["code"])
		})
	}
}

func TestSurfaceMethods(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	created := resultMap(t, postRPC(t, server.URL, rpcCall("surface_create", map[string]interface{}{
		"name": "board", "data": map[string]interface{}{"card": 7},
	})))
	id, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "board", created["name"])
	assert.Equal(t, "idle", created["state"])

	list := resultMap(t, postRPC(t, server.URL, rpcCall("surface_list", nil)))
	assert.Len(t, list["surfaces"], 1)

	out := resultMap(t, postRPC(t, server.URL, rpcCall("input", map[string]interface{}{
		"surfaceId": id,
		"events": []map[string]interface{}{
			{"type": "touchstart", "changedTouches": []map[string]interface{}{{"screenX": 10, "screenY": 200}}},
			{"type": "touchmove", "changedTouches": []map[string]interface{}{{"screenX": 12, "screenY": 150}}},
			{"type": "touchend", "changedTouches": []map[string]interface{}{{"screenX": 14, "screenY": 100}}},
		},
	})))

	events := out["events"].([]interface{})
	require.Len(t, events, 2)
	assert.Equal(t, "swipemove", events[0].(map[string]interface{})["name"])
	last := events[1].(map[string]interface{})
	assert.Equal(t, "swipeup", last["name"])
	assert.Equal(t, map[string]interface{}{"card": 7.0}, last["detail"])

	info := resultMap(t, postRPC(t, server.URL, rpcCall("surface_info", map[string]interface{}{"surfaceId": id})))
	assert.Equal(t, "idle", info["state"])

	resultMap(t, postRPC(t, server.URL, rpcCall("surface_destroy", map[string]interface{}{"surfaceId": id})))

	errMap := errorMap(t, postRPC(t, server.URL, rpcCall("surface_info", map[string]interface{}{"surfaceId": id})))
	assert.Equal(t, float64(ErrCodeServerError), errMap["code"])
}

func TestInputMethod_MissingSurface(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	errMap := errorMap(t, postRPC(t, server.URL, rpcCall("input", map[string]interface{}{
		"event": map[string]interface{}{"type": "mousedown"},
	})))
	assert.Equal(t, float64(ErrCodeInvalidParams), errMap["code"])
}

func TestShutdownMethod(t *testing.T) {
	called := make(chan struct{}, 1)
	server := newTestHTTPServer(t, Options{OnShutdown: func() { called <- struct{}{} }})

	result := resultMap(t, postRPC(t, server.URL, rpcCall("server.shutdown", nil)))
	assert.Equal(t, "ok", result["status"])

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback was not called")
	}
}

func TestShutdownMethod_Unsupported(t *testing.T) {
	server := newTestHTTPServer(t, Options{})

	errMap := errorMap(t, postRPC(t, server.URL, rpcCall("server.shutdown", nil)))
	assert.Equal(t, float64(ErrCodeServerError), errMap["code"])
}

func TestAuthToken(t *testing.T) {
	server := newTestHTTPServer(t, Options{AuthToken: "s3cret"})

	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"surface_list","id":1}`)
	resp, err := http.Post(server.URL+"/rpc", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/rpc", bytes.NewBufferString(`{"jsonrpc":"2.0","method":"surface_list","id":1}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, server.URL+"/rpc", bytes.NewBufferString(`{"jsonrpc":"2.0","method":"surface_list","id":1}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// banner stays public
	resp, err = http.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	server := newTestHTTPServer(t, Options{EnableCORS: true})

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/rpc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestStartServer_ContextCancel(t *testing.T) {
	withRegistry(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, "localhost:0", Options{})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
