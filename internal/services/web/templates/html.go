// Package templates renders the HTML shell and the shared building blocks
// that views compose into pages.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Attr is one HTML attribute. Boolean attributes render without a value.
type Attr struct {
	Key     string
	Value   string
	Boolean bool
}

// A builds a valued attribute.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// Flag builds a boolean attribute that renders only when on is true.
func Flag(key string, on bool) Attr {
	if !on {
		return Attr{}
	}
	return Attr{Key: key, Boolean: true}
}

// Class builds a class attribute.
func Class(value string) Attr {
	return A("class", value)
}

// El renders <tag attrs>children</tag>.
func El(tag string, attrs []Attr, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := openTag(w, tag, attrs); err != nil {
			return err
		}
		for _, child := range children {
			if child == nil {
				continue
			}
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

// Void renders a self-closing element such as <input> or <meta>.
func Void(tag string, attrs ...Attr) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return openTag(w, tag, attrs)
	})
}

func openTag(w io.Writer, tag string, attrs []Attr) error {
	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		var err error
		if attr.Boolean {
			_, err = io.WriteString(w, " "+attr.Key)
		} else {
			_, err = io.WriteString(w, " "+attr.Key+`="`+templ.EscapeString(attr.Value)+`"`)
		}
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">")
	return err
}

// Text renders escaped text.
func Text(value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}

// Textf renders escaped formatted text.
func Textf(format string, args ...any) templ.Component {
	return Text(fmt.Sprintf(format, args...))
}

// Join renders components in order.
func Join(children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, child := range children {
			if child == nil {
				continue
			}
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Each renders one component per item.
func Each[T any](items []T, render func(int, T) templ.Component) templ.Component {
	children := make([]templ.Component, 0, len(items))
	for i, item := range items {
		children = append(children, render(i, item))
	}
	return Join(children...)
}

// If renders component when cond holds.
func If(cond bool, component templ.Component) templ.Component {
	if !cond {
		return templ.NopComponent
	}
	return component
}
