package mq

import "errors"

// errMalformed — тело сообщения не JSON; такое сообщение не повторяется.
var errMalformed = errors.New("malformed message")

func isMalformed(err error) bool {
	return errors.Is(err, errMalformed)
}
