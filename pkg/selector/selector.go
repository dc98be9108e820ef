// pkg/selector/selector.go

// Package selector defines the declarative description of a UI control that
// the helper layer hands to the in-page resolver. The library never
// interprets matcher internals; it validates the shape, serializes the
// structure, and composes derived selectors (e.g. a dropdown item built from
// its combo box).
package selector

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Matcher holds arbitrary property matchers keyed by property name. Values
// are forwarded verbatim to the in-page registry.
type Matcher map[string]any

// Descriptor describes one control in the tree.
type Descriptor struct {
	// Metadata is the control's type name in the framework registry.
	Metadata string `json:"metadata,omitempty"`
	// ViewName scopes matching to controls owned by a view.
	ViewName string `json:"viewName,omitempty"`
	// ID matches the control id, or a suffix of it when it starts
	// with "*".
	ID string `json:"id,omitempty"`
	// BindingContextPath matches the control's element binding context.
	BindingContextPath string `json:"bindingContextPath,omitempty"`
	// Properties are forwarded to the registry's property matchers.
	Properties Matcher `json:"properties,omitempty"`
}

// IsZero reports whether the descriptor constrains nothing.
func (d Descriptor) IsZero() bool {
	return d.Metadata == "" && d.ViewName == "" && d.ID == "" &&
		d.BindingContextPath == "" && len(d.Properties) == 0
}

// Selector is the full declarative description: the target control plus
// optional structural constraints relative to it.
type Selector struct {
	Element    Descriptor  `json:"elementProperties"`
	Parent     *Descriptor `json:"parentProperties,omitempty"`
	Ancestor   *Descriptor `json:"ancestorProperties,omitempty"`
	Child      *Descriptor `json:"childProperties,omitempty"`
	Descendant *Descriptor `json:"descendantProperties,omitempty"`
	Sibling    *Descriptor `json:"siblingProperties,omitempty"`

	// Index picks the index-th match when the description is ambiguous.
	// Timeout, when positive, replaces the configured wait timeout for
	// every call made with this selector. Both stay on this side of the
	// bridge; only the descriptors travel to the page.
	Index   int           `json:"-"`
	Timeout time.Duration `json:"-"`
}

// New starts a selector for a control type.
func New(metadata string) Selector {
	return Selector{Element: Descriptor{Metadata: metadata}}
}

// InView returns a copy scoped to the given view.
func (s Selector) InView(viewName string) Selector {
	s.Element.ViewName = viewName
	return s
}

// WithID returns a copy constrained to the given control id (or "*suffix").
func (s Selector) WithID(id string) Selector {
	s.Element.ID = id
	return s
}

// WithProperty returns a copy with one more property matcher. The receiver's
// matcher map is not shared with the copy.
func (s Selector) WithProperty(name string, value any) Selector {
	props := make(Matcher, len(s.Element.Properties)+1)
	for k, v := range s.Element.Properties {
		props[k] = v
	}
	props[name] = value
	s.Element.Properties = props
	return s
}

// AtIndex returns a copy that picks the index-th match.
func (s Selector) AtIndex(index int) Selector {
	s.Index = index
	return s
}

// WithTimeout returns a copy carrying its own wait timeout. A per-call
// option still takes precedence over it.
func (s Selector) WithTimeout(timeout time.Duration) Selector {
	s.Timeout = timeout
	return s
}

// Within returns a copy constrained to descendants of the given ancestor.
func (s Selector) Within(ancestor Descriptor) Selector {
	a := ancestor
	s.Ancestor = &a
	return s
}

// Item composes the selector for an entry inside this control's popup or
// aggregation: the item's own descriptor, anchored to this control as its
// ancestor. Used for dropdown and list item selection.
func (s Selector) Item(itemMetadata string, props Matcher) Selector {
	parent := s.Element
	return Selector{
		Element:  Descriptor{Metadata: itemMetadata, Properties: props},
		Ancestor: &parent,
	}
}

// Validate rejects selectors the resolver cannot act on.
func (s Selector) Validate() error {
	if s.Element.IsZero() {
		return fmt.Errorf("selector: elementProperties must constrain at least one attribute")
	}
	if s.Index < 0 {
		return fmt.Errorf("selector: index must not be negative, got %d", s.Index)
	}
	return nil
}

// Encode serializes the selector for the in-page bridge.
func (s Selector) Encode() (string, error) {
	raw, err := json.MarshalToString(s)
	if err != nil {
		return "", fmt.Errorf("selector: encode: %w", err)
	}
	return raw, nil
}

// Summary renders a short human-readable form for logs and error messages.
func (s Selector) Summary() string {
	var sb strings.Builder
	d := s.Element
	if d.Metadata != "" {
		sb.WriteString(d.Metadata)
	} else {
		sb.WriteString("<any>")
	}
	if d.ViewName != "" {
		fmt.Fprintf(&sb, " in %s", d.ViewName)
	}
	if d.ID != "" {
		fmt.Fprintf(&sb, " id=%s", d.ID)
	}
	if len(d.Properties) > 0 {
		fmt.Fprintf(&sb, " props=%d", len(d.Properties))
	}
	if s.Ancestor != nil && s.Ancestor.Metadata != "" {
		fmt.Fprintf(&sb, " under %s", s.Ancestor.Metadata)
	}
	return sb.String()
}
