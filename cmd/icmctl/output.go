package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/5hells/icm/internal/protocol"
)

// emit writes v as YAML or hands the writer to text.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.output == "yaml" {
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = a.out.Write(b)
		return err
	}
	text(a.out)
	return nil
}

type messageDoc struct {
	Time      string           `yaml:"time,omitempty"`
	Direction string           `yaml:"direction,omitempty"`
	Type      string           `yaml:"type"`
	Message   protocol.Message `yaml:"message"`
}

// emitMessage prints one decoded message as a line of text or a YAML
// document in a stream.
func (a *app) emitMessage(at time.Time, direction string, msg protocol.Message) error {
	if a.output == "yaml" {
		doc := messageDoc{Direction: direction, Type: msg.Type().String(), Message: msg}
		if !at.IsZero() {
			doc.Time = at.Format(time.RFC3339Nano)
		}
		b, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.out, "---\n%s", b)
		return err
	}
	var prefix []string
	if !at.IsZero() {
		prefix = append(prefix, at.Format("15:04:05.000"))
	}
	if direction != "" {
		prefix = append(prefix, direction)
	}
	prefix = append(prefix, msg.Type().String())
	_, err := fmt.Fprintf(a.out, "%s %s\n", strings.Join(prefix, " "), describe(msg))
	return err
}

func describe(msg protocol.Message) string {
	return strings.TrimPrefix(fmt.Sprintf("%+v", msg), "&")
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
