package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go-pmptt/config"
	"go-pmptt/pkg/hierarchy"
	"go-pmptt/pkg/listener"
	"go-pmptt/pkg/outline"
	"go-pmptt/pkg/pmptt"
	"go-pmptt/pkg/storage"
	"go-pmptt/pkg/storage/badgerstore"
	"go-pmptt/pkg/storage/memory"
	"go-pmptt/util/helpers"
	"go-pmptt/util/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const usage = `usage: pmptt [-config file] <command> [arguments]

commands:
  load <file>                      create items listed in the outline file
  print [-bounds]                  print the hierarchy as an outline
  add [-parent p] [-before b] [code]
                                   create an item, code defaults to a random uuid
  remove <code>                    remove the item with its subtree
  move [-parent p | -root] [-before b | -after a | -first | -last] <code>
                                   move the item, -parent and -root move it between levels
  leaves                           print leaves in reading order
  drop                             remove the hierarchy
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("pmptt", flag.ContinueOnError)
	configPath := flags.String("config", "pmptt.yaml", "path to the config file")
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("command is missing")
	}

	configs, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := logger.SetLevel(configs.Log.Level); err != nil {
		return err
	}

	s, closer, err := openStorage(configs.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer(); err != nil {
			logger.L.WithError(err).Error("failed to close storage")
		}
	}()

	p := pmptt.New(s)
	p.RegisterChangeListener(listener.NewLogging(logger.L))

	hc := configs.Hierarchy
	command, rest := flags.Arg(0), flags.Args()[1:]
	if command == "drop" {
		return p.RemoveHierarchy(hc.Code)
	}

	h, err := p.GetOrCreateHierarchy(hc.Code, hc.Levels, hc.SectionSize)
	if err != nil {
		return err
	}

	switch command {
	case "load":
		return load(h, rest)
	case "print":
		return printOutline(h, rest, out)
	case "add":
		return add(h, rest, out)
	case "remove":
		if len(rest) != 1 {
			return errors.New("remove expects an item code")
		}
		return h.RemoveItem(rest[0])
	case "move":
		return move(h, rest)
	case "leaves":
		leaves, err := h.GetAllLeafItems()
		if err != nil {
			return err
		}
		for _, leaf := range leaves {
			fmt.Fprintln(out, leaf.Code)
		}
		return nil
	}
	return errors.Errorf("unknown command %q", command)
}

func openStorage(c *config.StoreConfig) (storage.Storage, func() error, error) {
	if c.Backend == config.BackendMemory {
		return memory.New(), func() error { return nil }, nil
	}

	if err := helpers.CreateDir(c.Path); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create data dir %q", c.Path)
	}
	s, err := badgerstore.Open(&badgerstore.Options{Path: c.Path})
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func load(h *hierarchy.Hierarchy, args []string) error {
	if len(args) != 1 {
		return errors.New("load expects an outline file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	return outline.Load(f, h)
}

func printOutline(h *hierarchy.Hierarchy, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("print", flag.ContinueOnError)
	bounds := flags.Bool("bounds", false, "print bounds of every item")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *bounds {
		return outline.StoreWithBounds(out, h)
	}
	return outline.Store(out, h)
}

func add(h *hierarchy.Hierarchy, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	parent := flags.String("parent", "", "parent item, root level when empty")
	before := flags.String("before", "", "sibling to insert before, appends when empty")
	if err := flags.Parse(args); err != nil {
		return err
	}

	code := flags.Arg(0)
	if code == "" {
		code = uuid.NewString()
	}
	item, err := h.CreateItemBefore(code, *parent, *before)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, item)
	return nil
}

func move(h *hierarchy.Hierarchy, args []string) error {
	flags := flag.NewFlagSet("move", flag.ContinueOnError)
	parent := flags.String("parent", "", "new parent, moves between levels when set")
	root := flags.Bool("root", false, "move to the root level")
	before := flags.String("before", "", "sibling to move before")
	after := flags.String("after", "", "sibling to move after")
	first := flags.Bool("first", false, "move to the first position")
	last := flags.Bool("last", false, "move to the last position")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("move expects an item code")
	}
	code := flags.Arg(0)

	if *parent != "" || *root {
		switch {
		case *before != "":
			return h.MoveItemBetweenLevelsBefore(code, *parent, *before)
		case *after != "":
			return h.MoveItemBetweenLevelsAfter(code, *parent, *after)
		case *first:
			return h.MoveItemBetweenLevelsFirst(code, *parent)
		}
		return h.MoveItemBetweenLevelsLast(code, *parent)
	}

	switch {
	case *before != "":
		return h.MoveItemBefore(code, *before)
	case *after != "":
		return h.MoveItemAfter(code, *after)
	case *first:
		return h.MoveItemToFirst(code)
	case *last:
		return h.MoveItemToLast(code)
	}
	return errors.New("move expects one of -before, -after, -first or -last")
}
