package bus

// Event types published by the simulation and the dispatcher.
const (
	EventCollisionBegin = "collision.begin"
	EventCollisionEnd   = "collision.end"
	EventDeviceAttached = "device.attached"
	EventDeviceReleased = "device.released"
)

// CollisionPayload is carried by collision.begin and collision.end events.
// ColliderID is opaque to the core; Tag is the collider's surface tag name.
type CollisionPayload struct {
	ColliderID string
	Tag        string
}

// DevicePayload is carried by device lifecycle events.
type DevicePayload struct {
	Index int
	ID    string
}
