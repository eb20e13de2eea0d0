package api

type Session struct {
	CameraOpen  bool   `json:"camera_open"`
	PhotoShown  bool   `json:"photo_shown"`
	LastLocator string `json:"last_locator,omitempty"`
}

type CameraProto struct {
	Open *bool `json:"open" binding:"required"`
}

type CaptureErrorProto struct {
	Error string `json:"error" binding:"required"`
}
