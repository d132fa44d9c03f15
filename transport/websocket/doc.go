// Package websocket pushes grid updates to browsers and other viewers.
//
// A Hub owns every connection. Clients attach to one session with
// /ws?session=<id> and receive a JSON Message each time that session's grid
// changes:
//
//	{"session_id":"a1b2","event":"state_update","state":{...GridState...}}
//
// Clients do not send commands over the socket; edits go through the REST
// API or MCP tools, which broadcast the resulting state here. Incoming frames
// are read only to drive ping/pong keepalive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Broadcasts never block the caller: a full queue drops the message and a
// client that cannot keep up is disconnected.
package websocket
