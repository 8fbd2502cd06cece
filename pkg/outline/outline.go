// Package outline reads and writes hierarchies as indented text, one item
// code per line, children indented deeper than their parent.
package outline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go-pmptt/pkg/model"
	"go-pmptt/util/stl"

	"github.com/pkg/errors"
)

const indent = "    "

type Builder interface {
	CreateItem(code, parent string) (model.Item, error)
}

type Reader interface {
	GetRootItems() ([]model.Item, error)
	GetChildItems(code string) ([]model.Item, error)
}

type entry struct {
	indent int
	code   string
}

// Load creates items of the outline in the order they are listed. Blank
// lines are skipped.
func Load(r io.Reader, b Builder) error {
	parents := stl.NewStack[entry]()
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		code := strings.TrimLeft(line, " \t")
		if code == "" {
			continue
		}
		depth := len(line) - len(code)

		for parents.Size() > 0 {
			top, _ := parents.Top()
			if top.indent < depth {
				break
			}
			parents.Pop()
		}

		parent := ""
		if top, err := parents.Top(); err == nil {
			parent = top.code
		}
		if _, err := b.CreateItem(code, parent); err != nil {
			return errors.Wrapf(err, "line %d", n)
		}
		parents.Push(entry{indent: depth, code: code})
	}
	return errors.Wrap(scanner.Err(), "failed to read outline")
}

// Store writes items in order, indenting every level by four spaces.
func Store(w io.Writer, r Reader) error {
	return store(w, r, func(item model.Item) string {
		return item.Code
	})
}

// StoreWithBounds writes items like Store followed by their bounds.
func StoreWithBounds(w io.Writer, r Reader) error {
	return store(w, r, func(item model.Item) string {
		return fmt.Sprintf("%s (%d-%d)", item.Code, item.LeftBound, item.RightBound)
	})
}

func store(w io.Writer, r Reader, format func(item model.Item) string) error {
	roots, err := r.GetRootItems()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var write func(items []model.Item) error
	write = func(items []model.Item) error {
		for _, item := range items {
			if _, err := fmt.Fprintf(bw, "%s%s\n", strings.Repeat(indent, item.Level-1), format(item)); err != nil {
				return err
			}
			if item.NumberOfChildren == 0 {
				continue
			}
			children, err := r.GetChildItems(item.Code)
			if err != nil {
				return err
			}
			if err := write(children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write(roots); err != nil {
		return err
	}
	return bw.Flush()
}
