package transfer

import (
	"errors"
	"net/textproto"
)

// IsPermanent reports whether err is a permanent negative reply (5xx), the
// class servers use for "no such directory" and "permission denied".
func IsPermanent(err error) bool {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply.Code >= 500 && reply.Code < 600
	}
	return false
}

// ReplyCode returns the FTP reply code carried by err, or 0.
func ReplyCode(err error) int {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply.Code
	}
	return 0
}
