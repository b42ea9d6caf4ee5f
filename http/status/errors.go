package status

import "errors"

// Kind classifies errors by their cause. Every error a parsing session produces is terminal,
// kinds only tell the caller what went wrong.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindFormat is a malformed or missing mandatory header, unrecognized transfer-encoding,
	// missing boundary or an unsupported content type.
	KindFormat
	// KindResourceLimit is memory, disk or content-length ceiling being exceeded.
	KindResourceLimit
	// KindProtocol is a stream which doesn't start with a boundary or ends without terminator.
	KindProtocol
	// KindTruncation is a decoded value which exceeds the requested read limit.
	KindTruncation
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindResourceLimit:
		return "resource limit"
	case KindProtocol:
		return "protocol"
	case KindTruncation:
		return "truncation"
	default:
		return "unknown"
	}
}

type HTTPError struct {
	Message string
	Code    Code
	Kind    Kind
}

func NewError(code Code, kind Kind, message string) error {
	return HTTPError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// KindOf returns the kind of the error, if it's (or wraps) an HTTPError.
func KindOf(err error) Kind {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}

	return KindUnknown
}

// CodeOf returns the status code the error should be answered with. Errors not produced
// by the package are considered internal.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrMethodNotAllowed      = NewError(MethodNotAllowed, KindFormat, "request method other than POST or PUT")
	ErrNoContentType         = NewError(BadRequest, KindFormat, "missing Content-Type header")
	ErrUnsupportedMediaType  = NewError(UnsupportedMediaType, KindFormat, "unsupported content type")
	ErrNoBoundary            = NewError(BadRequest, KindFormat, "no boundary for multipart/form-data")
	ErrBoundaryTooLong       = NewError(BadRequest, KindFormat, "boundary does not fit into buffer size")
	ErrNoDisposition         = NewError(BadRequest, KindFormat, "Content-Disposition header is missing")
	ErrHeaderSyntax          = NewError(BadRequest, KindFormat, "syntax error in header: no colon")
	ErrHeaderNotClosed       = NewError(BadRequest, KindFormat, "incomplete part: header section not closed")
	ErrHeaderTooLong         = NewError(BadRequest, KindFormat, "unexpected end of line in header")
	ErrBadContentLength      = NewError(BadRequest, KindFormat, "invalid Content-Length header of a part")
	ErrBadTransferEncoding   = NewError(BadRequest, KindFormat, "invalid Content-Transfer-Encoding")
	ErrEncodedLineTooLong    = NewError(BadRequest, KindFormat, "line too long on transfer-encoded part")
	ErrBadEncoding           = NewError(BadRequest, KindFormat, "malformed transfer-encoded data")
	ErrUnsupportedCharset    = NewError(BadRequest, KindFormat, "unsupported charset")
	ErrURLDecoding           = NewError(BadRequest, KindFormat, "invalid urlencoded sequence")
	ErrBadBase64Body         = NewError(BadRequest, KindFormat, "body is not valid base64")
	ErrMemoryLimit           = NewError(RequestEntityTooLarge, KindResourceLimit, "memory limit reached")
	ErrDiskLimit             = NewError(RequestEntityTooLarge, KindResourceLimit, "disk limit reached")
	ErrBodyTooLarge          = NewError(RequestEntityTooLarge, KindResourceLimit, "request too big, increase memory limit")
	ErrContentLengthTooLarge = NewError(RequestEntityTooLarge, KindResourceLimit, "declared content length exceeds the limit")
	ErrPartTooLarge          = NewError(RequestEntityTooLarge, KindResourceLimit, "size of body exceeds Content-Length header")
	ErrNoBoundaryPrefix      = NewError(BadRequest, KindProtocol, "stream does not start with boundary")
	ErrUnexpectedEOF         = NewError(BadRequest, KindProtocol, "unexpected end of multipart stream")
	ErrValueTooLarge         = NewError(RequestEntityTooLarge, KindTruncation, "value exceeds the read limit")
)
