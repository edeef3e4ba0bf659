package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// App is one launchable application on the device
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type parseState int

const (
	outsideApp parseState = iota
	insideApp
)

const appElement = "app"

// Parse decodes an apps document held in memory.
// It returns nil when the document is not well-formed; otherwise the entries
// in document order (possibly empty, never nil).
func Parse(data []byte) []App {
	apps, err := ParseReader(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return apps
}

// ParseReader decodes an apps document from r, returning an error when the
// document is not well-formed.
func ParseReader(r io.Reader) ([]App, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	apps := make([]App, 0)
	state := outsideApp
	depth := 0
	appDepth := 0
	sawRoot := false
	rootClosed := false

	var (
		id   string
		name strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed catalog XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("malformed catalog XML: element <%s> after the root element", t.Name.Local)
			}
			depth++
			sawRoot = true
			if state == outsideApp && t.Name.Local == appElement {
				state = insideApp
				appDepth = depth
				id = attr(t, "id")
				name.Reset()
			}

		case xml.EndElement:
			if state == insideApp && depth == appDepth {
				state = outsideApp
				trimmed := strings.TrimSpace(name.String())
				if id != "" && trimmed != "" {
					apps = append(apps, App{ID: id, Name: trimmed})
				}
			}
			depth--
			if depth == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if depth == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New("malformed catalog XML: text outside the root element")
				}
				continue
			}
			if state == insideApp {
				name.Write(t)
			}
		}
	}

	if !sawRoot || depth != 0 {
		return nil, errors.New("malformed catalog XML: missing or unclosed root element")
	}
	return apps, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Find returns the first app whose name matches name case-insensitively.
func Find(apps []App, name string) (App, bool) {
	for _, app := range apps {
		if strings.EqualFold(app.Name, name) {
			return app, true
		}
	}
	return App{}, false
}
