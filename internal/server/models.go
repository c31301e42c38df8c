package server

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RevealResponse carries the recovered text.
type RevealResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Framing string `json:"framing"`
	Bytes   int    `json:"bytes"`
}

// FramingCapacity is the largest message one framing can carry.
type FramingCapacity struct {
	Framing  string `json:"framing"`
	MaxBytes int    `json:"max_bytes"`
}

// CapacityResponse describes how much an uploaded image can hold.
type CapacityResponse struct {
	Success  bool              `json:"success"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Channels int               `json:"channels"`
	Slots    int               `json:"slots"`
	Framings []FramingCapacity `json:"framings"`
}
