package websocket

// Frame defines the structure for websocket frames.
type Frame struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}
