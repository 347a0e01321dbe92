package imageenc

import (
	"context"
	"io"
	"mime/multipart"
	"path"

	"github.com/viant/afs"
)

var fileSystem = afs.New()

// FromURL selects an image by location. Plain paths, file:// and remote
// schemes registered with afs (http, https) are accepted.
func FromURL(url string) File {
	return urlFile{url: url}
}

type urlFile struct {
	url string
}

func (u urlFile) Name() string { return path.Base(u.url) }

// MIMEType is left to content sniffing; file extensions are not trusted.
func (u urlFile) MIMEType() string { return "" }

func (u urlFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return fileSystem.OpenURL(ctx, u.url)
}

// FromMultipart wraps an uploaded form file.
func FromMultipart(fh *multipart.FileHeader) File {
	return multipartFile{fh: fh}
}

type multipartFile struct {
	fh *multipart.FileHeader
}

func (m multipartFile) Name() string     { return m.fh.Filename }
func (m multipartFile) MIMEType() string { return m.fh.Header.Get("Content-Type") }

func (m multipartFile) Open(context.Context) (io.ReadCloser, error) {
	return m.fh.Open()
}
