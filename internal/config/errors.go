package config

import "errors"

var (
	ErrNoDevices       = errors.New("config: at least one device is required")
	ErrInvalidRate     = errors.New("config: rates must be positive")
	ErrUnknownMode     = errors.New("config: unknown haptics mode")
	ErrUnknownVariant  = errors.New("config: unknown fluid variant model")
	ErrUnknownSource   = errors.New("config: unknown proximity source")
	ErrUnknownMotion   = errors.New("config: unknown device motion")
	ErrUnknownAudio    = errors.New("config: unknown audio variant")
	ErrInvalidVector   = errors.New("config: vectors need three components")
	ErrInvalidCollider = errors.New("config: collider radius must be positive")
	ErrInvalidMesh     = errors.New("config: mesh indices must be triangles within the vertex list")
)
