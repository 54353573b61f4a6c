package inspect

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/npillmayer/avltree"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"golang.org/x/term"
)

// Palette holds the colors used for console output.
type Palette struct {
	Leaf     *color.Color // leaves
	Balanced *color.Color // nodes with balance 0
	Leaning  *color.Color // nodes with balance ±1
	Broken   *color.Color // nodes violating the AVL condition
}

// DefaultPalette returns the standard set of colors.
func DefaultPalette() Palette {
	return Palette{
		Leaf:     color.New(color.FgBlue),
		Balanced: color.New(color.FgGreen),
		Leaning:  color.New(color.FgYellow),
		Broken:   color.New(color.FgRed, color.Bold),
	}
}

// Config controls console output.
type Config struct {
	Colored      bool           // use ANSI colors
	LineWidth    int            // lines are cut at this display width, 0 for unlimited
	ShowPayloads bool           // print leaf payloads
	Palette      Palette        // colors, if Colored is set
	Context      *uax11.Context // context for display widths; nil for uax11.LatinContext
}

// ConfigFor creates a console configuration for w. If w is a terminal,
// colors are switched on and the line width is taken from the terminal.
// Display widths follow the language context of the environment.
func ConfigFor(w io.Writer) *Config {
	config := &Config{
		Palette: DefaultPalette(),
		Context: uax11.ContextFromEnvironment(),
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return config
	}
	config.Colored = true
	for _, c := range []*color.Color{config.Palette.Leaf, config.Palette.Balanced,
		config.Palette.Leaning, config.Palette.Broken} {
		c.EnableColor() // w may be a terminal even if stdout is not
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 10 {
		config.LineWidth = width
	}
	tracer().Debugf("inspect: console output with line width %d", config.LineWidth)
	return config
}

// Fprint writes an indented listing of the tree structure to w, using a
// configuration derived from w.
func Fprint[K avltree.Key, L, N any](w io.Writer, tree *avltree.Tree[K, L, N]) error {
	return FprintWith(w, tree, ConfigFor(w))
}

// FprintWith writes an indented listing of the tree structure to w. Every
// item is printed on a line of its own, children below their parent, with
// the left child first.
func FprintWith[K avltree.Key, L, N any](w io.Writer, tree *avltree.Tree[K, L, N], config *Config) error {
	if tree.IsEmpty() {
		_, err := io.WriteString(w, "(empty)\n")
		return err
	}
	context := config.Context
	if context == nil {
		context = uax11.LatinContext
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	return tree.Walk(func(v avltree.Visit[K, L, N]) error {
		var label string
		var c *color.Color
		if v.IsLeaf {
			label = fmt.Sprintf("[%v]", v.Key)
			if config.ShowPayloads {
				label += fmt.Sprintf(" %v", v.Leaf)
			}
			c = config.Palette.Leaf
		} else {
			label = fmt.Sprintf("(%v) %+d", v.Key, v.Balance)
			switch v.Balance {
			case 0:
				c = config.Palette.Balanced
			case -1, 1:
				c = config.Palette.Leaning
			default:
				c = config.Palette.Broken
			}
		}
		prefix := strings.Repeat("  ", v.Depth)
		if v.Depth > 0 {
			prefix += "LR"[v.Side:v.Side+1] + " "
		}
		line := clip(prefix+label, config.LineWidth, context)
		if config.Colored && c != nil && strings.HasPrefix(line, prefix) {
			line = prefix + c.Sprint(line[len(prefix):])
		}
		_, err := io.WriteString(w, line+"\n")
		return err
	})
}

var setupGraphemes sync.Once

// clip cuts s to at most width terminal columns, marking the cut with an
// ellipsis. Widths are measured per grapheme.
func clip(s string, width int, context *uax11.Context) string {
	if width <= 0 {
		return s
	}
	gstr := grapheme.StringFromString(s)
	if uax11.StringWidth(gstr, context) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	for i := 0; i < gstr.Len(); i++ {
		g := gstr.Nth(i)
		gw := uax11.StringWidth(grapheme.StringFromString(g), context)
		if used+gw > width-1 {
			break
		}
		b.WriteString(g)
		used += gw
	}
	return b.String() + "…"
}
