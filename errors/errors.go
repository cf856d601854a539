package errors

import "fmt"

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
	ErrMissingField  = fmt.Errorf("username and room are required")
	ErrAlreadyJoined = fmt.Errorf("connection already joined a room")
	ErrNameTaken     = fmt.Errorf("username is already taken in this room")
	ErrNotJoined     = fmt.Errorf("join a room before sending")
	ErrProfanity     = fmt.Errorf("profanity is not allowed")
)
