package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// ConsoleWriter turns zerolog's JSON events into single coloured lines.
type ConsoleWriter struct {
	out       io.Writer
	colorize  colorstring.Colorize
	debugDump bool

	buffer strings.Builder
	lock   sync.Mutex
}

// NewConsoleWriter returns a writer for out. With debugDump set every event field
// is printed below the message.
func NewConsoleWriter(out io.Writer, color, debugDump bool) *ConsoleWriter {
	return &ConsoleWriter{
		out: out,
		colorize: colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !color,
			Reset:   false,
		},
		debugDump: debugDump,
	}
}

// ColorEnabled reports whether colours should be used for f.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	if err = d.Decode(&evt); err != nil {
		return 0, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	switch evt[zerolog.LevelFieldName] {
	case "fatal", "panic", "error":
		w.buffer.WriteString(w.colorize.Color("[red]"))
	case "warn":
		w.buffer.WriteString(w.colorize.Color("[yellow]"))
	case "debug", "trace":
		w.buffer.WriteString(w.colorize.Color("[blue]"))
	default:
		w.buffer.WriteString(w.colorize.Color("[green]"))
	}

	if variant, ok := evt["variant"].(string); ok {
		w.buffer.WriteString(variant + ": ")
	}
	if evt[zerolog.LevelFieldName] == "error" {
		w.buffer.WriteString("Error: ")
	}

	msg, _ := evt[zerolog.MessageFieldName].(string)
	w.buffer.WriteString(msg)

	if details, ok := evt[zerolog.ErrorFieldName]; ok {
		w.buffer.WriteString("\n")
		w.buffer.WriteString(fmt.Sprint(details))
	}

	if w.debugDump {
		keys := make([]string, 0, len(evt))
		for k := range evt {
			switch k {
			case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.ErrorFieldName:
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.buffer.WriteString(fmt.Sprintf("\n  %s: %+v", k, evt[k]))
		}
	}

	w.buffer.WriteString(w.colorize.Color("[reset]"))
	w.buffer.WriteString("\n")
	if _, err = io.WriteString(w.out, w.buffer.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}
