package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mobile-next/touchsweep/commands"
	"github.com/mobile-next/touchsweep/surface"
	"github.com/mobile-next/touchsweep/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// error titles and messages shared by the HTTP and WebSocket transports
const (
	errTitleParseError    = "Parse error"
	errTitleInvalidReq    = "Invalid Request"
	errTitleMethodNotFnd  = "Method not found"
	errTitleServerError   = "Server error"
	errTitleInvalidParams = "Invalid params"

	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
	errMsgTextOnly       = "only text messages accepted for requests"
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 60 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// Version is reported by the banner endpoint
var Version = "dev"

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// JSONRPCNotification is a server-initiated message without an id
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// Options configure the HTTP handler
type Options struct {
	EnableCORS bool
	// AuthToken, when set, is required as a bearer token on /rpc and /ws
	AuthToken string
	// OnShutdown is called when a client sends server.shutdown
	OnShutdown func()
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewHandler builds the HTTP handler serving /, /rpc and /ws
func NewHandler(opts Options) http.Handler {
	s := &rpcServer{opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("/", sendBanner)
	mux.Handle("/rpc", requireToken(opts.AuthToken, http.HandlerFunc(s.handleJSONRPC)))
	mux.Handle("/ws", requireToken(opts.AuthToken, http.HandlerFunc(s.handleWebSocket)))

	var handler http.Handler = mux
	if opts.EnableCORS {
		handler = corsMiddleware(mux)
	}
	return handler
}

// StartServer serves until a shutdown request or until ctx is done. The
// surface registry must be set on the commands package beforehand.
func StartServer(ctx context.Context, addr string, opts Options) error {
	addr, err := utils.NormalizeListenAddr(addr)
	if err != nil {
		return err
	}

	hooks := surface.NewShutdownHook()
	if registry := commands.GetRegistry(); registry != nil {
		hooks.RegisterRegistry(registry)
	}

	shutdownRequested := make(chan struct{}, 1)
	userShutdown := opts.OnShutdown
	opts.OnShutdown = func() {
		if userShutdown != nil {
			userShutdown()
		}
		select {
		case shutdownRequested <- struct{}{}:
		default:
		}
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      NewHandler(opts),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	hooks.Register("http", func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-shutdownRequested:
		utils.Info("Shutdown requested by client")
	case <-ctx.Done():
		utils.Info("Shutting down server")
	}

	if err := hooks.Shutdown(); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type rpcServer struct {
	opts Options
}

// lookup resolves a method for either transport
func (s *rpcServer) lookup(method string) (HandlerFunc, bool) {
	if method == "server.shutdown" {
		return s.handleShutdown, true
	}

	handler, exists := GetMethodRegistry()[method]
	return handler, exists
}

func (s *rpcServer) handleShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	if s.opts.OnShutdown == nil {
		return nil, fmt.Errorf("shutdown is not supported by this server")
	}

	// respond first, then stop
	go s.opts.OnShutdown()
	return okResponse, nil
}

func (s *rpcServer) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if req.JSONRPC != "2.0" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		sendJSONRPCError(w, nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	if isWebSocketOnly(req.Method) {
		sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, "Method not supported", req.Method+" is only available over WebSocket, use the /ws endpoint")
		return
	}

	utils.WithFields(map[string]interface{}{
		"transport": "http",
		"id":        req.ID,
		"method":    req.Method,
		"params":    string(req.Params),
	}).Info("JSON-RPC request")

	handler, exists := s.lookup(req.Method)
	if !exists {
		sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, errTitleMethodNotFnd, fmt.Sprintf("Method '%s' not found", req.Method))
		return
	}

	result, err := handler(r.Context(), req.Params)
	if err != nil {
		utils.Warn("Error executing method %s: %v", req.Method, err)
		code, title := errorCode(err)
		sendJSONRPCError(w, req.ID, code, title, err.Error())
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": Version,
	})
}
