package pkg

// turn sign overlay
const (
	// sign image starts to appear at this distance, fully transparent, and fades in gradually
	DRAW_TURN_MIN_DISTANCE_METERS = 250.0
	ALPHA_FADE_DISTANCE_METERS    = 50.0

	// a maneuver is passed after ADVANCE_STREAK consecutive fixes moving away from it while closer than
	// ADVANCE_DISTANCE_METERS
	ADVANCE_DISTANCE_METERS = 50.0
	ADVANCE_STREAK          = 5

	// sign size and position above the ground
	SIGN_SIZE_METERS         = 8.0
	SIGN_ABOVE_GROUND_METERS = 2.0

	MAX_ALPHA = 255
)

// reference camera frame the projection service reports pixels in
const (
	REFERENCE_FRAME_WIDTH  = 1280
	REFERENCE_FRAME_HEIGHT = 720
)
