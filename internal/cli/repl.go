package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/drsam94/mmbccr/pkg/records"
	"github.com/drsam94/mmbccr/pkg/rom"
)

const historyName = ".mmrando_history"

// lineReader is the part of liner.State the prompt loop uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// scanReader reads commands from a non-terminal input such as a pipe.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}

	if err := r.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

type repl struct {
	o     *IO
	data  []byte
	game  rom.Game
	kinds []records.Kind
	lines lineReader
	saveH func()
}

func runREPL(ctx context.Context, o *IO, g *Globals, data []byte, game rom.Game) error {
	r := &repl{o: o, data: data, game: game, kinds: records.Kinds(game)}

	if isTerminal(g.In) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		state.SetCompleter(r.complete)

		history := historyPath(g.Env)
		if history != "" {
			if f, err := os.Open(history); err == nil {
				_, _ = state.ReadHistory(f)
				_ = f.Close()
			}
		}

		r.lines = state
		r.saveH = func() {
			if history == "" {
				return
			}

			if f, err := os.Create(history); err == nil {
				_, _ = state.WriteHistory(f)
				_ = f.Close()
			}
		}
	} else {
		in := g.In
		if in == nil {
			in = strings.NewReader("")
		}

		r.lines = &scanReader{sc: bufio.NewScanner(in)}
		r.saveH = func() {}
	}

	defer func() { _ = r.lines.Close() }()

	o.Printf("%s image, %d kinds. Type 'help' for commands.\n", game, len(r.kinds))

	return r.loop(ctx)
}

func historyPath(env map[string]string) string {
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, historyName)
	}

	return ""
}

func (r *repl) loop(ctx context.Context) error {
	defer r.saveH()

	for ctx.Err() == nil {
		line, err := r.lines.Prompt("mmrando> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.lines.AppendHistory(line)

		fields := strings.Fields(line)

		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			r.o.Println("  kinds              list the kinds of this image")
			r.o.Println("  <kind>             print every record of a kind")
			r.o.Println("  <kind> <index>     print one record")
			r.o.Println("  quit               leave")
		case "kinds":
			printKinds(r.o, r.game)
		default:
			r.show(fields)
		}
	}

	return ctx.Err()
}

// show prints the records a line asks for. Errors are reported and the
// prompt continues.
func (r *repl) show(fields []string) {
	if len(fields) > 2 {
		r.o.Println("error: expected <kind> [index]")

		return
	}

	kind, err := kindFor(r.game, fields[0])
	if err != nil {
		r.o.Println("error:", err)

		return
	}

	if len(fields) == 1 {
		err = printRecords(r.o, r.data, kind, false)
	} else {
		index, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			r.o.Println("error: index must be a number:", fields[1])

			return
		}

		err = printRecord(r.o, r.data, kind, index, false)
	}

	if err != nil {
		r.o.Println("error:", err)
	}
}

// complete offers commands and kind names matching the line's first word.
func (r *repl) complete(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}

	candidates := []string{"kinds", "help", "quit"}
	for _, k := range r.kinds {
		candidates = append(candidates, k.String())
	}

	var out []string

	lower := strings.ToLower(line)
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}

	return out
}

// isTerminal reports whether in is stdin attached to a terminal. liner only
// drives the process's own stdin, so any other reader is scanned line by line.
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)

	return ok && f == os.Stdin && term.IsTerminal(int(f.Fd()))
}
