package mcstatus

import (
	"errors"
	"fmt"
)

// Закрытый набор ошибок получения статуса. Диспетчер сопоставляет их
// через errors.Is и превращает в текстовый ответ пользователю.
var (
	// ErrTimeout превышено время ожидания ответа статус-API
	ErrTimeout = errors.New("status api timeout")
	// ErrConnection сетевая ошибка или ошибка уровня HTTP
	ErrConnection = errors.New("status api connection error")
	// ErrParse некорректное тело ответа
	ErrParse = errors.New("status api parse error")
	// ErrUnreachable API ответил, но сам не дождался ответа от сервера (ping=false)
	ErrUnreachable = errors.New("no response from server")
)

// FetchError привязывает ошибку получения статуса к запрошенному адресу.
type FetchError struct {
	Address string
	Reason  error // один из сентинелов выше
	cause   error
}

func (e *FetchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fetch %q: %v: %v", e.Address, e.Reason, e.cause)
	}
	return fmt.Sprintf("fetch %q: %v", e.Address, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Reason
}

func newFetchError(address string, reason, cause error) *FetchError {
	return &FetchError{Address: address, Reason: reason, cause: cause}
}
