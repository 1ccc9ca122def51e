package service

import "errors"

// ErrValidation marks request-level precondition failures detected in the
// service layer (as opposed to the state-machine errors in internal/model).
// Handlers map it to the validation kind; it is never retried.
var ErrValidation = errors.New("requisição inválida")
