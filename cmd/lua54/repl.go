package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/term"

	"git.lolli.tech/lollipopkit/lua54/rt"
)

// runREPL recreates the teacher's repl.go loop, but picks between a
// tview-driven interactive terminal UI and a plain stdin/stdout pipe
// loop depending on whether stdout is actually a terminal, per the
// x/term wiring decided for this CLI.
func runREPL(r *rt.Runtime) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		runTviewREPL(r)
		return
	}
	runPipeREPL(r)
}

func runPipeREPL(r *rt.Runtime) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			return
		}
		evalAndPrint(r, line, func(s string) { fmt.Print(s) })
	}
}

// evalAndPrint runs one REPL statement. It first tries evaluating it as
// an expression (prefixing "return "), matching the reference REPL's
// "bare expression prints its value" convenience, and falls back to
// running it as a plain statement chunk.
func evalAndPrint(r *rt.Runtime, line string, out func(string)) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if results, err := rt.RunMain(r, []byte("return "+trimmed), "=stdin", nil); err == nil {
		printResults(r, results, out)
		return
	}

	if _, err := rt.RunMain(r, []byte(trimmed), "=stdin", nil); err != nil {
		out(errorMessage(err) + "\n")
	}
}

func printResults(r *rt.Runtime, results []rt.Value, out func(string)) {
	if len(results) == 0 {
		return
	}
	parts := make([]string, len(results))
	for i, v := range results {
		parts[i] = rt.ToStringMeta(r, v)
	}
	out(strings.Join(parts, "\t") + "\n")
}

func errorMessage(err error) string {
	if le, ok := err.(*rt.LuaError); ok {
		return fmt.Sprintf("%v", le.Value)
	}
	return err.Error()
}

// runTviewREPL is the interactive terminal REPL: one scrollback TextView
// above one InputField, submitted lines routed through evalAndPrint with
// output appended to the scrollback and basic up/down history recall.
func runTviewREPL(r *rt.Runtime) {
	app := tview.NewApplication()

	output := tview.NewTextView()
	output.SetDynamicColors(true)
	output.SetScrollable(true)
	fmt.Fprintf(output, "[cyan]%s[-]\n", version)

	var history []string
	histPos := 0

	input := tview.NewInputField()
	input.SetLabel("> ")

	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := input.GetText()
		input.SetText("")
		if strings.TrimSpace(line) == "" {
			return
		}
		history = append(history, line)
		histPos = len(history)

		fmt.Fprintf(output, "[yellow]> %s[-]\n", tview.Escape(line))
		evalAndPrint(r, line, func(s string) {
			fmt.Fprint(output, tview.Escape(s))
		})
		output.ScrollToEnd()
	})

	input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp:
			if histPos > 0 {
				histPos--
				input.SetText(history[histPos])
			}
			return nil
		case tcell.KeyDown:
			if histPos < len(history)-1 {
				histPos++
				input.SetText(history[histPos])
			} else {
				histPos = len(history)
				input.SetText("")
			}
			return nil
		case tcell.KeyCtrlC, tcell.KeyEscape:
			app.Stop()
			return nil
		}
		return event
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(output, 0, 1, false).
		AddItem(input, 1, 0, true)

	if err := app.SetRoot(flex, true).SetFocus(input).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
