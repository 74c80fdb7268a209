// Package session assembles the full pipeline: parse a layout document,
// build the tab sequence and keybind table, and validate the result. The
// whole pipeline is a single pure forward pass over a bounded text blob; a
// Session is built once, held immutably, and replaced wholesale on reload.
package session

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"layout-lens/internal/document"
	"layout-lens/internal/keybind"
	"layout-lens/internal/layout"
	"layout-lens/internal/validate"
)

// Session is the immutable result of one build: the ordered tab sequence and
// the keybind table, ready to hand to a consumer. ID changes on every build
// so consumers can tell reloads apart.
type Session struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Tabs     []layout.Tab   `json:"tabs"`
	Keybinds *keybind.Table `json:"-"`
	LoadedAt time.Time      `json:"loaded_at"`
}

// InvalidDocumentError carries every violation found in a document. The
// caller gets all problems at once; no partial session is produced.
type InvalidDocumentError struct {
	Name       string
	Violations []validate.Violation
}

func (e *InvalidDocumentError) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("%s: %d violation(s)", e.Name, len(e.Violations)))
	for _, v := range e.Violations {
		lines = append(lines, "  "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Build runs the pipeline over raw document text. name is used in error
// messages (typically the file path). Build refuses to produce a session for
// an invalid document: it returns either a *document.ParseError, an
// *InvalidDocumentError with every violation, or a builder error for the
// rare structural problems the validator does not cover.
func Build(name string, src []byte) (*Session, error) {
	doc, err := document.Parse(name, src)
	if err != nil {
		return nil, err
	}

	if violations := validate.Check(doc); len(violations) > 0 {
		return nil, &InvalidDocumentError{Name: name, Violations: violations}
	}

	var tabs []layout.Tab
	if layoutNode := doc.First("layout"); layoutNode != nil {
		tabs, err = layout.Build(layoutNode)
		if err != nil {
			return nil, err
		}
	}

	var table *keybind.Table
	if keybindsNode := doc.First("keybinds"); keybindsNode != nil {
		table, err = keybind.Build(keybindsNode)
		if err != nil {
			return nil, err
		}
	}

	return &Session{
		ID:       uuid.NewString(),
		Source:   name,
		Tabs:     tabs,
		Keybinds: table,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// Load reads a document file and builds a session from it.
func Load(path string) (*Session, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout document: %w", err)
	}
	return Build(path, src)
}
