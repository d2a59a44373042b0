package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/touchsweep/commands"
	"github.com/mobile-next/touchsweep/gesture"
	"github.com/mobile-next/touchsweep/surface"
	"github.com/mobile-next/touchsweep/utils"
)

// surfaceEventMethod is the notification method used to push surface events
const surfaceEventMethod = "surface_event"

// notificationWriteTimeout bounds how long a push may block the dispatching surface
const notificationWriteTimeout = 5 * time.Second

// SubscribeRequest represents the parameters of surface_subscribe
type SubscribeRequest struct {
	SurfaceID string   `json:"surfaceId"`
	Events    []string `json:"events,omitempty"`
}

// UnsubscribeRequest represents the parameters of surface_unsubscribe
type UnsubscribeRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

type subscription struct {
	surface   *surface.Surface
	listeners []string
}

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	subMu         sync.Mutex
	subscriptions map[string]*subscription
}

func isWebSocketOnly(method string) bool {
	return method == "surface_subscribe" || method == "surface_unsubscribe"
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

func (s *rpcServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := newUpgrader(s.opts.EnableCORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{
		conn:          conn,
		subscriptions: make(map[string]*subscription),
	}
	defer wsConn.unsubscribeAll()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}

		if messageType != websocket.TextMessage {
			wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		s.handleWSMessage(r.Context(), wsConn, message)
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func (s *rpcServer) handleWSMessage(ctx context.Context, wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if req.JSONRPC != "2.0" {
		wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		wsConn.sendError(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	utils.WithFields(map[string]interface{}{
		"transport": "ws",
		"id":        req.ID,
		"method":    req.Method,
		"params":    string(req.Params),
	}).Info("JSON-RPC request")

	var handler HandlerFunc
	switch req.Method {
	case "surface_subscribe":
		handler = wsConn.handleSubscribe
	case "surface_unsubscribe":
		handler = wsConn.handleUnsubscribe
	default:
		var exists bool
		handler, exists = s.lookup(req.Method)
		if !exists {
			wsConn.sendError(req.ID, ErrCodeMethodNotFound, errTitleMethodNotFnd, req.Method+" not found")
			return
		}
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		utils.Warn("Error executing method %s: %v", req.Method, err)
		code, title := errorCode(err)
		wsConn.sendError(req.ID, code, title, err.Error())
		return
	}

	wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) handleSubscribe(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req SubscribeRequest
	if err := decodeParams(params, &req, "surfaceId, events"); err != nil {
		return nil, err
	}

	if req.SurfaceID == "" {
		return nil, invalidParams("'surfaceId' is required")
	}

	s, err := commands.FindSurface(req.SurfaceID)
	if err != nil {
		return nil, err
	}

	names, err := subscribedEvents(req.Events)
	if err != nil {
		return nil, err
	}

	sub := &subscription{surface: s}
	for _, name := range names {
		sub.listeners = append(sub.listeners, s.AddListener(name, wsc.pushEvent))
	}

	id := fmt.Sprintf("sub-%s", sub.listeners[0])

	wsc.subMu.Lock()
	wsc.subscriptions[id] = sub
	wsc.subMu.Unlock()

	utils.Verbose("Subscribed %s to surface %s events %v", id, s.ID(), names)

	return map[string]interface{}{
		"subscriptionId": id,
	}, nil
}

// subscribedEvents maps the requested filter to surface event names. Gestures
// may be given by event name or by direction, "move" selects progress
// notifications and an empty filter selects everything.
func subscribedEvents(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return []string{surface.AllEvents}, nil
	}

	names := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, raw := range requested {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case surface.AllEvents:
		case gesture.EventMove, "move":
			name = gesture.EventMove
		default:
			k, err := gesture.ParseKind(name)
			if err != nil || k == gesture.KindNone {
				return nil, invalidParams("unknown event: %q", raw)
			}
			name = k.String()
		}

		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names, nil
}

func (wsc *wsConnection) handleUnsubscribe(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req UnsubscribeRequest
	if err := decodeParams(params, &req, "subscriptionId"); err != nil {
		return nil, err
	}

	wsc.subMu.Lock()
	sub, ok := wsc.subscriptions[req.SubscriptionID]
	delete(wsc.subscriptions, req.SubscriptionID)
	wsc.subMu.Unlock()

	if !ok {
		return nil, invalidParams("unknown subscription: %s", req.SubscriptionID)
	}

	sub.remove()
	return okResponse, nil
}

func (wsc *wsConnection) unsubscribeAll() {
	wsc.subMu.Lock()
	subs := wsc.subscriptions
	wsc.subscriptions = make(map[string]*subscription)
	wsc.subMu.Unlock()

	for _, sub := range subs {
		sub.remove()
	}
}

func (sub *subscription) remove() {
	for _, id := range sub.listeners {
		sub.surface.RemoveListener(id)
	}
}

func (wsc *wsConnection) pushEvent(e surface.Event) {
	err := wsc.sendJSONWithDeadline(JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  surfaceEventMethod,
		Params:  e,
	}, notificationWriteTimeout)
	if err != nil {
		utils.Verbose("Failed to push %s event: %v", e.Name, err)
	}
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	return wsc.conn.WriteJSON(v)
}

func (wsc *wsConnection) sendJSONWithDeadline(v interface{}, timeout time.Duration) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()

	_ = wsc.conn.SetWriteDeadline(time.Now().Add(timeout))
	defer func() { _ = wsc.conn.SetWriteDeadline(time.Time{}) }()

	return wsc.conn.WriteJSON(v)
}
