package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Formatter renders command results.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatPresign(w io.Writer, rawURL string) error
	FormatError(w io.Writer, err error) error
	FormatProfiles(w io.Writer, cf *ConfigFile, showSecrets bool) error
	FormatProfile(w io.Writer, p Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the JSON formatter when jsonOutput is set and the
// human one otherwise.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// gatewayDefault stands in for an unset container.
const gatewayDefault = "(gateway default)"

// objectRef names an object as container/id, or id alone when the gateway
// picks the container.
func objectRef(container, id string) string {
	if container == "" {
		return id
	}
	return container + "/" + id
}

// profileView is a profile as shown to the user, secrets masked on request.
type profileView struct {
	Name      string `json:"name"`
	Endpoint  string `json:"endpoint"`
	Container string `json:"container,omitempty"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Signed    bool   `json:"signed"`
	Default   bool   `json:"default"`
}

func newProfileView(p Profile, isDefault, showSecrets bool) profileView {
	return profileView{
		Name:      p.Name,
		Endpoint:  p.Endpoint,
		Container: p.Container,
		AccessKey: maskSecret(p.AccessKey, showSecrets),
		SecretKey: maskSecret(p.SecretKey, showSecrets),
		Signed:    p.Signed(),
		Default:   isDefault,
	}
}

func profileViews(cf *ConfigFile, showSecrets bool) []profileView {
	def := cf.DefaultName()
	views := make([]profileView, len(cf.Profiles))
	for i, p := range cf.Profiles {
		views[i] = newProfileView(p, p.Name == def, showSecrets)
	}
	return views
}

// HumanFormatter writes plain text. Quiet drops everything but errors and
// the requested data itself.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if f.Quiet {
			continue
		}
		_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s, %s)\n",
			r.LocalPath, objectRef(r.Container, r.ID), formatSize(r.Size), r.ContentType)
		if r.ETag != "" {
			_, _ = fmt.Fprintf(w, "  ETag: %s\n", r.ETag)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	ref := objectRef(result.Container, result.ID)
	switch {
	case result.NotModified:
		_, _ = fmt.Fprintf(w, "Not modified: %s\n", ref)
		return nil
	case result.LocalPath == "-":
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", ref, formatSize(result.Size))
	default:
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", ref, result.LocalPath, formatSize(result.Size))
	}
	if result.ETag != "" {
		_, _ = fmt.Fprintf(w, "  ETag: %s\n", result.ETag)
	}
	return nil
}

// FormatList prints one row per recorded upload, grouped under a header
// line for each container in the order they first appear.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No objects found")
		return nil
	}

	idWidth, nameWidth := len("ID"), len("FILENAME")
	var containers []string
	byContainer := map[string][]ObjectInfo{}
	for _, item := range result.Items {
		idWidth = max(idWidth, len(item.ID))
		nameWidth = max(nameWidth, len(item.Filename))
		if _, seen := byContainer[item.Container]; !seen {
			containers = append(containers, item.Container)
		}
		byContainer[item.Container] = append(byContainer[item.Container], item)
	}
	nameWidth = min(nameWidth, 48)

	for i, container := range containers {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s:\n", orGatewayDefault(container))
		_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %10s  %s\n", idWidth, "ID", nameWidth, "FILENAME", "SIZE", "CREATED")
		for _, item := range byContainer[container] {
			_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %10s  %s\n",
				idWidth, item.ID,
				nameWidth, truncate(item.Filename, nameWidth),
				formatSize(item.Size),
				item.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d object(s) in %d container(s), %s total\n",
		len(result.Items), len(containers), formatSize(result.TotalSize()))
	if result.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
	}
	return nil
}

// FormatPresign prints the URL alone so it can be piped.
func (f *HumanFormatter) FormatPresign(w io.Writer, rawURL string) error {
	_, _ = fmt.Fprintln(w, rawURL)
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfiles lists the saved profiles, marking the default with "*".
func (f *HumanFormatter) FormatProfiles(w io.Writer, cf *ConfigFile, showSecrets bool) error {
	views := profileViews(cf, showSecrets)

	nameWidth, endpointWidth, containerWidth := len("NAME"), len("ENDPOINT"), len("CONTAINER")
	for _, v := range views {
		nameWidth = max(nameWidth, len(v.Name))
		endpointWidth = max(endpointWidth, len(v.Endpoint))
		containerWidth = max(containerWidth, len(orGatewayDefault(v.Container)))
	}
	nameWidth, endpointWidth = min(nameWidth, 20), min(endpointWidth, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-*s  %s\n",
		nameWidth, "NAME", endpointWidth, "ENDPOINT", containerWidth, "CONTAINER", "ACCESS KEY")
	for _, v := range views {
		marker := " "
		if v.Default {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-*s  %s\n", marker,
			nameWidth, truncate(v.Name, nameWidth),
			endpointWidth, truncate(v.Endpoint, endpointWidth),
			containerWidth, orGatewayDefault(v.Container),
			v.AccessKey)
	}
	return nil
}

func (f *HumanFormatter) FormatProfile(w io.Writer, p Profile, isDefault, showSecrets bool) error {
	v := newProfileView(p, isDefault, showSecrets)

	name := v.Name
	if v.Default {
		name += " (default)"
	}
	mode := "unsigned"
	if v.Signed {
		mode = "presigned"
	}

	_, _ = fmt.Fprintf(w, "Name:       %s\n", name)
	_, _ = fmt.Fprintf(w, "Endpoint:   %s\n", v.Endpoint)
	_, _ = fmt.Fprintf(w, "Container:  %s\n", orGatewayDefault(v.Container))
	_, _ = fmt.Fprintf(w, "Requests:   %s\n", mode)
	_, _ = fmt.Fprintf(w, "Access Key: %s\n", v.AccessKey)
	_, _ = fmt.Fprintf(w, "Secret Key: %s\n", v.SecretKey)
	return nil
}

// JSONFormatter writes indented JSON documents.
type JSONFormatter struct{}

// uploadView is an upload result with its error flattened to text.
type uploadView struct {
	LocalPath   string `json:"local_path"`
	ID          string `json:"id,omitempty"`
	Container   string `json:"container,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag,omitempty"`
	Size        int64  `json:"size_bytes,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	views := make([]uploadView, 0, len(results))
	for _, r := range results {
		v := uploadView{LocalPath: r.LocalPath, Container: r.Container}
		if r.Err != nil {
			v.Error = r.Err.Error()
		} else {
			v.ID, v.Filename, v.ContentType = r.ID, r.Filename, r.ContentType
			v.ETag, v.Size = r.ETag, r.Size
		}
		views = append(views, v)
	}
	return writeJSON(w, views)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatPresign(w io.Writer, rawURL string) error {
	return writeJSON(w, map[string]string{"url": rawURL})
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

func (f *JSONFormatter) FormatProfiles(w io.Writer, cf *ConfigFile, showSecrets bool) error {
	return writeJSON(w, map[string]any{
		"default":  cf.DefaultName(),
		"profiles": profileViews(cf, showSecrets),
	})
}

func (f *JSONFormatter) FormatProfile(w io.Writer, p Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newProfileView(p, isDefault, showSecrets))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize renders n in binary units. A negative n is an unknown length.
func formatSize(n int64) string {
	if n < 0 {
		return "unknown size"
	}
	return humanize.IBytes(uint64(n))
}

func orGatewayDefault(container string) string {
	if container == "" {
		return gatewayDefault
	}
	return container
}

func truncate(s string, width int) string {
	if len(s) <= width || width < 4 {
		return s
	}
	return s[:width-3] + "..."
}

// maskSecret keeps the first and last four characters of a long secret.
func maskSecret(secret string, show bool) string {
	switch {
	case show:
		return secret
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return strings.Repeat("*", 8)
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
