package swiftgate

import (
	"net/http"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLength bounds accounts, containers and object ids.
const maxNameLength = 256

// IsValidName validates a single path segment used upstream (account,
// container or object id). It checks that the name:
//   - is not empty, "." or ".." and is at most 256 bytes
//   - does not contain "/" or any of \ ? # %
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20), DEL (0x7f), or whitespace
func IsValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	if len(name) > maxNameLength {
		return false
	}

	if strings.ContainsAny(name, `/\?#%`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// objectPath builds /v1/{account}/{container}/{id}. Segments are validated
// before they get here.
func objectPath(account, container, id string) string {
	return "/v1/" + account + "/" + container + "/" + id
}

// NameWithExtension computes the filename presented to a downloading client.
// downloadName wins over the metadata filename; when the chosen name has no
// extension the extension of the metadata filename is appended.
func NameWithExtension(downloadName string, meta *FileMetadata) string {
	var original string
	if meta != nil {
		original = meta.Filename
	}

	name := strings.TrimSpace(downloadName)
	if name == "" {
		name = original
	}
	if name == "" {
		return "download"
	}

	if path.Ext(name) == "" && original != "" {
		if ext := path.Ext(original); ext != "" {
			name += ext
		}
	}
	return name
}

// ContentDisposition renders an attachment header for name.
func ContentDisposition(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.ReplaceAll(name, `\`, `\\`)
	name = strings.ReplaceAll(name, `"`, `\"`)
	return `attachment; filename="` + name + `"`
}

// statusMessage returns the reason phrase of resp ("Not Found" for
// "404 Not Found"), falling back to the standard text.
func statusMessage(resp *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}
