package turn

// Error is a rejection reported to the requesting connection. Its text is
// sent verbatim as the error event message.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrRoomNotFound       Error = "Room not found"
	ErrThemeRequired      Error = "A theme is required to start the game"
	ErrNotYourTurn        Error = "Not your turn"
	ErrLetterAlreadyUsed  Error = "Letter already used"
	ErrLetterNotSelected  Error = "You must select a letter first"
	ErrInvalidLetter      Error = "Invalid letter"
	errRoomCodesExhausted Error = "could not allocate a room code"
)
