// urdftool is a CLI utility for inspecting and editing robot descriptions.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/urdf2iv/internal/assets"
	"github.com/Faultbox/urdf2iv/internal/config"
	"github.com/Faultbox/urdf2iv/internal/meshconv"
	"github.com/Faultbox/urdf2iv/internal/scene"
	"github.com/Faultbox/urdf2iv/pkg/transform"
	"github.com/Faultbox/urdf2iv/pkg/traverser"
	"github.com/Faultbox/urdf2iv/pkg/urdf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tree":
		cmdTree(args)
	case "joints":
		cmdJoints(args)
	case "find":
		cmdFind(args)
	case "poses":
		cmdPoses(args)
	case "scale":
		cmdScale(args)
	case "remove", "rm":
		cmdRemove(args)
	case "probe":
		cmdProbe(args)
	case "materials":
		fmt.Println(strings.Join(meshconv.MaterialNames(), "\n"))
	case "config":
		cmdConfig()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`urdftool - robot description utility

Usage:
  urdftool <command> [options]

Commands:
  info <robot.urdf>                        Show model summary
  tree <robot.urdf> [-from link]           Print the link tree
  joints <robot.urdf> [-from link] [-movable]
                                           List joints below a link
  find <robot.urdf> <pattern> [-from link] First link matching a name pattern
  poses <robot.urdf> [-from link]          Link poses at zero joint positions
  scale <robot.urdf> <factor> [-from link] [-o out.urdf]
                                           Scale translations
  remove <robot.urdf> <link> [-o out.urdf] Remove a link and its subtree
  probe <image>...                         Show texture type and size
  materials                                List material override names
  config                                   Print the default converter config

Examples:
  urdftool tree arm.urdf
  urdftool joints arm.urdf -movable
  urdftool scale arm.urdf 0.001 -o arm_m.urdf
  urdftool find arm.urdf "*camera*"`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// load parses the description named by the first positional argument.
func load(fs *flag.FlagSet, usage string) (*urdf.Model, *traverser.Traverser) {
	if fs.NArg() < 1 {
		fail("Usage: urdftool %s", usage)
	}
	m, err := urdf.ParseFile(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	return m, traverser.New(m)
}

// startLink returns from, or the root when from is empty.
func startLink(t *traverser.Traverser, from string) string {
	if from == "" {
		return t.RootName()
	}
	return from
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	m, t := load(fs, "info <robot.urdf>")

	jointTypes := make(map[string]int)
	for _, j := range m.Joints {
		jointTypes[j.Type.String()]++
	}
	deepest, depth, err := t.Deepest(t.RootName())
	if err != nil {
		fail("Error: %v", err)
	}
	fixed, _ := t.HasFixedJoints(t.RootName())

	fmt.Printf("Robot:     %s\n", m.Name)
	fmt.Printf("Root:      %s\n", t.RootName())
	fmt.Printf("Links:     %d\n", len(m.Links))
	fmt.Printf("Joints:    %d\n", len(m.Joints))
	fmt.Printf("Meshes:    %d\n", m.MeshCount())
	fmt.Printf("Materials: %d\n", len(m.Materials))
	fmt.Printf("Depth:     %d (%s)\n", depth, deepest.Name)
	fmt.Printf("Fixed:     %v\n", fixed)
	fmt.Println()
	fmt.Println("Joints by type:")

	types := make([]string, 0, len(jointTypes))
	for typ := range jointTypes {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool {
		return jointTypes[types[i]] > jointTypes[types[j]]
	})
	for _, typ := range types {
		fmt.Printf("  %-12s %d\n", typ, jointTypes[typ])
	}
}

func cmdTree(args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	from := fs.String("from", "", "Start link (default: root)")
	fs.Parse(reorder(args))
	_, t := load(fs, "tree <robot.urdf> [-from link]")

	err := t.TopDown(startLink(t, *from), func(_ *urdf.Model, p traverser.Params) (traverser.Action, error) {
		b := p.Current()
		line := strings.Repeat("  ", b.Depth) + b.Link.Name
		if b.Depth > 0 {
			j := b.Link.ParentJoint
			line += fmt.Sprintf("  [%s %s]", j.Name, j.Type)
		}
		if n := len(b.Link.Visuals); n > 0 {
			line += fmt.Sprintf("  visuals=%d", n)
		}
		fmt.Println(line)
		return traverser.Continue, nil
	}, &traverser.LinkParams{})
	if err != nil {
		fail("Error: %v", err)
	}
}

func cmdJoints(args []string) {
	fs := flag.NewFlagSet("joints", flag.ExitOnError)
	from := fs.String("from", "", "Start link (default: root)")
	movable := fs.Bool("movable", false, "Only list movable joints")
	fs.Parse(reorder(args))
	_, t := load(fs, "joints <robot.urdf> [-from link] [-movable]")

	names, err := t.JointNames(startLink(t, *from), *movable)
	if err != nil {
		fail("Error: %v", err)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	fmt.Fprintf(os.Stderr, "\n(%d joints)\n", len(names))
}

func cmdFind(args []string) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	from := fs.String("from", "", "Start link (default: root)")
	fs.Parse(reorder(args))
	if fs.NArg() < 2 {
		fail("Usage: urdftool find <robot.urdf> <pattern> [-from link]")
	}
	_, t := load(fs, "")

	pattern := strings.ToLower(fs.Arg(1))
	l, err := t.FindLink(startLink(t, *from), func(l *urdf.Link) bool {
		name := strings.ToLower(l.Name)
		matched, _ := matchName(pattern, name)
		return matched || strings.Contains(name, pattern)
	})
	if err != nil {
		fail("Error: %v", err)
	}
	if l == nil {
		fail("No link matches %q", fs.Arg(1))
	}
	fmt.Println(l.Name)
}

func cmdPoses(args []string) {
	fs := flag.NewFlagSet("poses", flag.ExitOnError)
	from := fs.String("from", "", "Reference link (default: root)")
	fs.Parse(reorder(args))
	_, t := load(fs, "poses <robot.urdf> [-from link]")

	start := startLink(t, *from)
	poses, err := scene.WorldPoses(t, start)
	if err != nil {
		fail("Error: %v", err)
	}
	names, _ := t.LinkNames(start)
	fmt.Printf("%-24s %28s %28s\n", "link", "xyz", "rpy")
	for _, n := range names {
		p := poses[n]
		rpy := p.RPY()
		fmt.Printf("%-24s %8.4f %8.4f %8.4f   %8.4f %8.4f %8.4f\n",
			n, p.Position[0], p.Position[1], p.Position[2], rpy[0], rpy[1], rpy[2])
	}
}

func cmdScale(args []string) {
	fs := flag.NewFlagSet("scale", flag.ExitOnError)
	from := fs.String("from", "", "Scale only below this link")
	out := fs.String("o", "", "Output file (default: stdout)")
	fs.Parse(reorder(args))
	if fs.NArg() < 2 {
		fail("Usage: urdftool scale <robot.urdf> <factor> [-from link] [-o out.urdf]")
	}
	factor, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil || factor <= 0 {
		fail("Invalid factor: %s", fs.Arg(1))
	}
	m, t := load(fs, "")
	orig, err := m.Clone()
	if err != nil {
		fail("Error: %v", err)
	}

	if *from == "" {
		err = transform.ScaleModel(m, factor)
	} else {
		err = transform.ScaleSubtree(t, *from, factor)
	}
	if err != nil {
		fail("Error: %v", err)
	}
	changed := 0
	for _, j := range m.Joints {
		if o, ok := orig.Joint(j.Name); ok && !o.Origin.ApproxEqual(j.Origin, 1e-12) {
			changed++
		}
	}
	fmt.Fprintf(os.Stderr, "Scaled %d of %d joint origins by %g\n", changed, len(m.Joints), factor)
	write(m, *out)
}

func cmdRemove(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default: stdout)")
	fs.Parse(reorder(args))
	if fs.NArg() < 2 {
		fail("Usage: urdftool remove <robot.urdf> <link> [-o out.urdf]")
	}
	m, t := load(fs, "")

	removed, err := t.RemoveSubtree(fs.Arg(1))
	if err != nil {
		fail("Error: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Removed %d links: %s\n", len(removed), strings.Join(removed, ", "))
	write(m, *out)
}

func cmdProbe(args []string) {
	if len(args) < 1 {
		fail("Usage: urdftool probe <image>...")
	}
	for _, path := range args {
		info, err := assets.Probe(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		mime := info.MIME
		if mime == "" {
			mime = "unknown"
		}
		fmt.Printf("%-40s %-12s %dx%d\n", path, mime, info.Width, info.Height)
	}
}

func cmdConfig() {
	data, err := config.Default().Marshal()
	if err != nil {
		fail("Error: %v", err)
	}
	os.Stdout.Write(data)
}

func write(m *urdf.Model, out string) {
	if out != "" {
		if err := urdf.WriteFile(m, out); err != nil {
			fail("Error writing %s: %v", out, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
		return
	}
	data, err := urdf.Marshal(m)
	if err != nil {
		fail("Error: %v", err)
	}
	os.Stdout.Write(data)
}
