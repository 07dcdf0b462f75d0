// internal/errors/errors.go
package appErrors

import "fmt"

// ErrBotNotFound is a sentinel error
type ErrBotNotFound struct {
	BotID int
}

func (e *ErrBotNotFound) Error() string {
	return fmt.Sprintf("bot with ID %d not found", e.BotID)
}

// Helper constructor
func NewBotNotFound(id int) error {
	return &ErrBotNotFound{BotID: id}
}

// ErrTokenDecrypt wraps a credential decryption failure. Fatal to a
// verification run: the run is marked FAILED, never silently skipped.
type ErrTokenDecrypt struct {
	BotID int
	Cause error
}

func (e *ErrTokenDecrypt) Error() string {
	return fmt.Sprintf("failed to decrypt token for bot %d: %v", e.BotID, e.Cause)
}

func (e *ErrTokenDecrypt) Unwrap() error { return e.Cause }

func NewTokenDecrypt(botID int, cause error) error {
	return &ErrTokenDecrypt{BotID: botID, Cause: cause}
}
