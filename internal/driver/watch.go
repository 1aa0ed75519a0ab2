package driver

import (
	"fmt"
	"io"

	"github.com/peterh/liner"
)

// Watch runs analyze once, then repeatedly re-runs it on an explicit
// keypress, using liner for the interactive prompt the same way the
// teacher's REPL does (NewLiner/defer Close/Prompt). This is not part of
// the original distillation; it supplements `analyze` for iterating on a
// single file without re-invoking the binary by hand. "q" or EOF (Ctrl-D)
// ends the loop.
func Watch(entryFile string, extraDefines []string, quiet bool, compilerDir string, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		if _, err := RunAnalyze(entryFile, extraDefines, quiet, compilerDir, out); err != nil {
			return err
		}

		input, err := line.Prompt("[enter] re-check, q quit> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Fprintln(out, "\nstopped watching")
			return nil
		}
		if err != nil {
			return err
		}
		if input == "q" {
			return nil
		}
	}
}
