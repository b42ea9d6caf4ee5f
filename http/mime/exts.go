package mime

import "path/filepath"

var Extension = map[string]MIME{
	".avif": AVIF,
	".css":  CSS,
	".gif":  GIF,
	".htm":  HTML,
	".html": HTML,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".json": JSON,
	".pdf":  PDF,
	".png":  PNG,
	".svg":  SVG,
	".txt":  Plain,
	".wasm": WASM,
	".webp": WEBP,
	".xml":  XML,
	".gz":   GZIP,
	".yaml": YAML,
	".yml":  YAML,
	".zip":  ZIP,
	".zstd": ZSTD,
	".ico":  ICO,
}

// ByFilename looks the MIME up by the filename extension. Empty string is returned
// if the extension is unknown.
func ByFilename(filename string) MIME {
	return Extension[filepath.Ext(filename)]
}
