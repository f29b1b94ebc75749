// Package media pushes locally buffered uploads to the media host and hands
// back their public URL.
package media

import (
	"context"
	"path/filepath"
	"strings"
)

// UploadResult describes a stored object. A nil *UploadResult means the
// upload failed.
type UploadResult struct {
	URL string
	Key string
}

// Uploader stores the file at localPath and always removes the local file
// afterwards, whether the upload succeeded or not. It never returns an error:
// failures are logged and reported as a nil result.
type Uploader interface {
	Upload(ctx context.Context, localPath string) *UploadResult
}

var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".avif": "image/avif",
	".heic": "image/heic",
}

func detectContentType(name string) string {
	if ct, ok := contentTypeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
