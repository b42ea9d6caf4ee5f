package mime

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	XML            MIME = "text/xml"
	JSON           MIME = "application/json"
	YAML           MIME = "application/yaml"
	PDF            MIME = "application/pdf"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	// URLEncoded is a legacy alias of FormUrlencoded some clients still send.
	URLEncoded MIME = "application/x-url-encoded"
	Multipart  MIME = "multipart/form-data"
	ZIP        MIME = "application/zip"
	GZIP       MIME = "application/gzip"
	ZSTD       MIME = "application/zstd"
	AVIF       MIME = "image/avif"
	CSS        MIME = "text/css"
	GIF        MIME = "image/gif"
	JPEG       MIME = "image/jpeg"
	PNG        MIME = "image/png"
	SVG        MIME = "image/svg+xml"
	ICO        MIME = "image/vnd.microsoft.icon"
	WEBP       MIME = "image/webp"
	JavaScript MIME = "text/javascript"
	WASM       MIME = "application/wasm"
)

// Urlencoded tells whether the MIME is any of known urlencoded body types.
func Urlencoded(mime MIME) bool {
	return mime == FormUrlencoded || mime == URLEncoded
}
