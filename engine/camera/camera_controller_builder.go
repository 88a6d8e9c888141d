package camera

// CameraControllerOption is a functional option used to configure a CameraController during construction.
type CameraControllerOption func(*flyController)

// WithMoveSpeed sets the translation speed in world units per second.
//
// Parameters:
//   - speed: units per second
//
// Returns:
//   - CameraControllerOption: a function that sets the move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *flyController) {
		cc.moveSpeed = speed
	}
}

// WithLookSensitivity scales how far the view turns per pixel dragged. 1 keeps the point under the cursor
// approximately fixed.
//
// Parameters:
//   - sensitivity: the drag multiplier
//
// Returns:
//   - CameraControllerOption: a function that sets the look sensitivity
func WithLookSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *flyController) {
		cc.sensitivity = sensitivity
	}
}
