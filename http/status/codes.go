package status

/*
INFO: a subset of net/http/status.go. Kept separately so that the error
taxonomy below carries codes without importing net/http.
*/

type (
	Code   uint16
	Status string
)

// HTTP status codes as registered with IANA.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	OK                    Code = 200 // RFC 9110, 15.3.1
	BadRequest            Code = 400 // RFC 9110, 15.5.1
	MethodNotAllowed      Code = 405 // RFC 9110, 15.5.6
	RequestEntityTooLarge Code = 413 // RFC 9110, 15.5.14
	UnsupportedMediaType  Code = 415 // RFC 9110, 15.5.16
	InternalServerError   Code = 500 // RFC 9110, 15.6.1
)

// Text returns a text for the HTTP status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case MethodNotAllowed:
		return "Method Not Allowed"
	case RequestEntityTooLarge:
		return "Request Entity Too Large"
	case UnsupportedMediaType:
		return "Unsupported Media Type"
	case InternalServerError:
		return "Internal Server Error"
	}

	return ""
}
