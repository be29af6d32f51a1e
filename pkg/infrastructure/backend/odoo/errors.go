package odoo

import "fmt"

// RPCError is a failure reported by the remote system or its transport.
// Retryable errors (network faults, timeouts, 5xx responses) are retried
// by the client's backoff loop; application errors (validation,
// authorization, state conflicts) surface immediately.
type RPCError struct {
	Code      int
	Message   string
	Detail    string
	Retryable bool
}

func (e *RPCError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("rpc error %d: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsRetryable reports whether err is a transient RPC failure.
func IsRetryable(err error) bool {
	if rpcErr, ok := err.(*RPCError); ok {
		return rpcErr.Retryable
	}
	return false
}
