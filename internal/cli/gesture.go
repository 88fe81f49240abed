package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"formbuilder/internal/dnd"
	"formbuilder/internal/format"
	"formbuilder/internal/model"
	"formbuilder/internal/outline"
)

type replayStep struct {
	Line       int                 `json:"line"`
	Event      string              `json:"event"`
	Outcome    dnd.Outcome         `json:"outcome"`
	Phase      string              `json:"phase"`
	Projection *outline.Projection `json:"projection,omitempty"`
	Error      string              `json:"error,omitempty"`
}

type replayView struct {
	Steps []replayStep `json:"steps"`
	Tree  []model.Node `json:"tree"`
}

func (v replayView) Text() string {
	var b strings.Builder
	for _, s := range v.Steps {
		fmt.Fprintf(&b, "%3d %-6s %-9s", s.Line, s.Event, s.Outcome)
		if s.Projection != nil {
			b.WriteString(" " + describeProjection(*s.Projection))
		}
		if s.Error != "" {
			b.WriteString(" error: " + s.Error)
		}
		b.WriteByte('\n')
	}
	b.WriteString(format.RenderTree(v.Tree, format.TreeOptions{ShowIDs: true}))
	return b.String()
}

func newGestureCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gesture",
		Short: "Drive the drag state machine from recorded events",
	}

	var strict bool
	replay := &cobra.Command{
		Use:   "replay <file|->",
		Short: "Replay JSON-lines gesture events against the outline",
		Long: strings.TrimSpace(`
Each non-blank line is one event: {"type":"start|move|over|end|cancel", ...}.
Lines starting with # are ignored. See "formbuilder docs gestures".
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader
			if args[0] == "-" {
				in = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				in = f
			}

			c, err := app.loadController()
			if err != nil {
				return writeErr(cmd, err)
			}
			view, err := replayEvents(c, in, strict)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: view})
		},
	}
	replay.Flags().BoolVar(&strict, "strict", false, "Stop at the first event that fails")
	cmd.AddCommand(replay)
	return cmd
}

// replayEvents feeds each decoded line to c. Event errors are recorded on their step;
// with strict they abort the replay. Malformed lines always abort.
func replayEvents(c *dnd.Controller, in io.Reader, strict bool) (replayView, error) {
	view := replayView{Steps: []replayStep{}}
	sc := bufio.NewScanner(in)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		ev, err := dnd.DecodeEvent([]byte(raw))
		if err != nil {
			return view, fmt.Errorf("line %d: %w", line, err)
		}
		res, herr := c.Handle(ev)
		step := replayStep{
			Line:    line,
			Event:   dnd.Kind(ev),
			Outcome: res.Outcome,
			Phase:   c.State().Phase.String(),
		}
		if p, ok := c.Projection(); ok {
			step.Projection = &p
		}
		if herr != nil {
			step.Error = herr.Error()
		}
		view.Steps = append(view.Steps, step)
		if herr != nil && strict {
			return view, fmt.Errorf("line %d: %w", line, herr)
		}
	}
	if err := sc.Err(); err != nil {
		return view, err
	}
	view.Tree = c.Tree()
	return view, nil
}
