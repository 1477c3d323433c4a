package inventor

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

type writer struct {
	b      strings.Builder
	indent int
}

func (w *writer) line(parts ...string) {
	if len(parts) == 0 {
		w.b.WriteByte('\n')
		return
	}
	for i := 0; i < w.indent; i++ {
		w.b.WriteString("  ")
	}
	for i, p := range parts {
		if i > 0 {
			w.b.WriteByte(' ')
		}
		w.b.WriteString(p)
	}
	w.b.WriteByte('\n')
}

func (w *writer) open(name string) {
	w.line(name, "{")
	w.indent++
}

// openArray starts a multiple-value field: "field [".
func (w *writer) openArray(field string) {
	w.line(field, "[")
	w.indent++
}

func (w *writer) close() {
	w.indent--
	w.line("}")
}

func (w *writer) children(nodes []Node) {
	for _, n := range nodes {
		if n != nil {
			n.write(w)
		}
	}
}

// Marshal returns the ASCII form of root, starting with the file header.
func Marshal(root Node) string {
	w := &writer{}
	w.line(Header)
	w.line()
	root.write(w)
	return w.b.String()
}

// MarshalNode returns the ASCII form of n without a file header.
func MarshalNode(n Node) string {
	w := &writer{}
	n.write(w)
	return w.b.String()
}

// Write writes root as an Inventor file to out.
func Write(out io.Writer, root Node) error {
	bw := bufio.NewWriter(out)
	if _, err := bw.WriteString(Marshal(root)); err != nil {
		return err
	}
	return bw.Flush()
}

// Quote returns s as an Inventor string literal.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Inventor stores single precision values.
func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 32)
}

func formatFloats(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

func (s *Separator) write(w *writer) {
	if s.Name != "" {
		w.open("DEF " + defName(s.Name) + " Separator")
	} else {
		w.open("Separator")
	}
	w.children(s.Children)
	w.close()
}

// defName makes name a legal Inventor identifier: it must not start with a
// digit and may not contain control characters, spaces or +'"\{}.
func defName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r <= ' ' || strings.ContainsRune(`+'"\{}.`, r):
			b.WriteByte('_')
		case i == 0 && r >= '0' && r <= '9':
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (t *Transform) write(w *writer) {
	w.open("Transform")
	w.line("translation", formatFloats(t.Translation[:]...))
	w.line("rotation", formatFloats(t.Rotation[:]...))
	w.line("scaleFactor", formatFloats(t.ScaleFactor[:]...))
	w.close()
}

func (m *Material) write(w *writer) {
	w.open("Material")
	w.line("ambientColor", formatFloats(m.Ambient[:]...))
	w.line("diffuseColor", formatFloats(m.Diffuse[:]...))
	w.line("specularColor", formatFloats(m.Specular[:]...))
	w.line("emissiveColor", formatFloats(m.Emissive[:]...))
	w.line("shininess", formatFloat(m.Shininess))
	w.line("transparency", formatFloat(m.Transparency))
	w.close()
}

func (t *Texture2) write(w *writer) {
	w.open("Texture2")
	w.line("filename", Quote(t.Filename))
	w.close()
}

func (c *Coordinate3) write(w *writer) {
	w.open("Coordinate3")
	w.openArray("point")
	for i, p := range c.Points {
		w.line(formatFloats(p[:]...) + separator(i, len(c.Points)))
	}
	w.indent--
	w.line("]")
	w.close()
}

func (c *TextureCoordinate2) write(w *writer) {
	w.open("TextureCoordinate2")
	w.openArray("point")
	for i, p := range c.Points {
		w.line(formatFloats(p[:]...) + separator(i, len(c.Points)))
	}
	w.indent--
	w.line("]")
	w.close()
}

func (f *IndexedFaceSet) write(w *writer) {
	w.open("IndexedFaceSet")
	writeIndices(w, "coordIndex", f.CoordIndex)
	if len(f.TextureCoordIndex) > 0 {
		writeIndices(w, "textureCoordIndex", f.TextureCoordIndex)
	}
	w.close()
}

// writeIndices writes one face per line.
func writeIndices(w *writer, field string, idx []int) {
	w.openArray(field)
	var face []string
	for i, v := range idx {
		face = append(face, strconv.Itoa(v))
		if v == -1 {
			w.line(strings.Join(face, ", ") + separator(i, len(idx)))
			face = face[:0]
		}
	}
	if len(face) > 0 {
		w.line(strings.Join(face, ", "))
	}
	w.indent--
	w.line("]")
}

func separator(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func (c *Cube) write(w *writer) {
	w.open("Cube")
	w.line("width", formatFloat(c.Width))
	w.line("height", formatFloat(c.Height))
	w.line("depth", formatFloat(c.Depth))
	w.close()
}

func (c *Cylinder) write(w *writer) {
	w.open("Cylinder")
	w.line("radius", formatFloat(c.Radius))
	w.line("height", formatFloat(c.Height))
	w.close()
}

func (s *Sphere) write(w *writer) {
	w.open("Sphere")
	w.line("radius", formatFloat(s.Radius))
	w.close()
}

func (f *File) write(w *writer) {
	w.open("File")
	w.line("name", Quote(f.Name))
	w.close()
}

func (i *Info) write(w *writer) {
	w.open("Info")
	w.line("string", Quote(i.String))
	w.close()
}

func (r *Raw) write(w *writer) {
	for _, l := range strings.Split(strings.TrimRight(r.Text, "\n"), "\n") {
		if strings.TrimSpace(l) == "" {
			w.line()
			continue
		}
		w.line(l)
	}
}
