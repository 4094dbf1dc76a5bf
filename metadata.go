package swiftgate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of a file is inspected when its content type is not
// declared.
const sniffLen = 512

// NewFileUpload extracts the metadata of a multipart file part. When the part
// declares no usable Content-Type, the first bytes of the body are sniffed
// and the filename extension is used as a fallback. Sniffed bytes stay in
// the returned Body; nothing is consumed.
func NewFileUpload(part *multipart.Part) (*FileUpload, error) {
	if part == nil {
		return nil, fmt.Errorf("file upload: %w: nil part", ErrInvalidInput)
	}

	meta := FileMetadata{
		Name:     part.FormName(),
		Filename: path.Base(part.FileName()),
	}
	if meta.Filename == "." || meta.Filename == "/" {
		meta.Filename = ""
	}

	meta.ContentType, meta.Charset = parseContentType(part.Header.Get("Content-Type"))

	body := bufio.NewReaderSize(part, sniffLen)
	if meta.ContentType == "" || meta.ContentType == defaultContentType {
		head, err := body.Peek(sniffLen)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("file upload: sniff content type: %w", err)
		}

		detected, charset := detectContentType(head, meta.Filename)
		meta.ContentType = detected
		if meta.Charset == "" {
			meta.Charset = charset
		}
	}

	return &FileUpload{Body: body, Metadata: meta}, nil
}

// detectContentType sniffs head, then falls back to the extension of filename.
func detectContentType(head []byte, filename string) (string, string) {
	if len(head) > 0 {
		if mt := mimetype.Detect(head); mt != nil && !mt.Is(defaultContentType) {
			return parseContentType(mt.String())
		}
	}

	if ext := path.Ext(filename); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return parseContentType(byExt)
		}
	}

	return defaultContentType, ""
}

// parseContentType splits a Content-Type value into media type and charset.
func parseContentType(v string) (string, string) {
	if v == "" {
		return "", ""
	}
	mediaType, params, err := mime.ParseMediaType(v)
	if err != nil {
		return "", ""
	}
	return mediaType, params["charset"]
}

// headerContentType renders the Content-Type header for an outbound PUT,
// keeping the charset parameter when one was declared or detected.
func headerContentType(meta FileMetadata) string {
	ct := orDefault(meta.ContentType, defaultContentType)
	if meta.Charset == "" {
		return ct
	}
	if v := mime.FormatMediaType(ct, map[string]string{"charset": meta.Charset}); v != "" {
		return v
	}
	return ct
}
