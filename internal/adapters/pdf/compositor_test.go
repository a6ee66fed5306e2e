package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	os.Exit(m.Run())
}

// recordingLogger captures warnings for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(msg string, fields ...ports.Field) {}
func (l *recordingLogger) Info(msg string, fields ...ports.Field)  {}
func (l *recordingLogger) Error(msg string, fields ...ports.Field) {}
func (l *recordingLogger) Warn(msg string, fields ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

// writeTemplate renders a legal-size PDF with the given number of pages.
func writeTemplate(t *testing.T, path string, pages int) {
	t.Helper()
	doc := gofpdf.New("P", "pt", "Legal", "")
	doc.SetFont("Helvetica", "", 14)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Text(72, 72, "OFFICIAL STAMP")
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

// drawnContent returns the decoded content of every stream in the PDF at
// path: page contents and form XObjects alike.
func drawnContent(t *testing.T, path string) []byte {
	t.Helper()
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("ReadContextFile(%s) error = %v", path, err)
	}
	var buf bytes.Buffer
	for _, entry := range ctx.XRefTable.Table {
		if entry == nil || entry.Free {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		buf.Write(sd.Content)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// drawsText reports whether content shows text as a literal or hex string.
func drawsText(content []byte, text string) bool {
	if bytes.Contains(content, []byte("("+text+")")) {
		return true
	}
	hex := []byte(fmt.Sprintf("<%X>", text))
	return bytes.Contains(bytes.ToUpper(content), hex)
}

func placementPattern(x, y int) *regexp.Regexp {
	f := func(n int) string { return fmt.Sprintf(`%d(\.0+)?`, n) }
	return regexp.MustCompile(f(1) + " " + f(0) + " " + f(0) + " " + f(1) + " " + f(x) + " " + f(y) + " cm")
}

func TestCompose_DrawsLabelAtPlacement(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	dst := filepath.Join(tmp, "stamp_00007.pdf")
	writeTemplate(t, src, 1)

	c := NewCompositor(Config{Font: "Helvetica", Paper: domain.PaperLegal}, &recordingLogger{})
	if _, err := c.Compose(context.Background(), src, dst, 7); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	content := drawnContent(t, dst)
	if !drawsText(content, "00007") {
		t.Errorf("label 00007 not drawn:\n%s", content)
	}
	if !placementPattern(268, 680).Match(content) {
		t.Errorf("label not placed at 268 680:\n%s", content)
	}
	if drawsText(content, "00008") {
		t.Error("unexpected label 00008 drawn")
	}
}

func TestCompose_CustomPlacement(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	dst := filepath.Join(tmp, "stamp_00003.pdf")
	writeTemplate(t, src, 1)

	c := NewCompositor(Config{
		Font:      "Helvetica",
		Paper:     domain.PaperA4,
		Placement: map[domain.PaperSize]Point{domain.PaperA4: {X: 100, Y: 500}},
	}, &recordingLogger{})
	if _, err := c.Compose(context.Background(), src, dst, 3); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if !placementPattern(100, 500).Match(drawnContent(t, dst)) {
		t.Error("label not placed at 100 500")
	}
}

func TestCompose_SinglePageWithLabel(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	dst := filepath.Join(tmp, "stamp_00007.pdf")
	writeTemplate(t, src, 1)

	before, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}

	c := NewCompositor(Config{Font: "Helvetica"}, &recordingLogger{})
	stamp, err := c.Compose(context.Background(), src, dst, 7)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if stamp.Label != "00007" {
		t.Errorf("Label = %q, want 00007", stamp.Label)
	}
	if stamp.Path != dst {
		t.Errorf("Path = %q, want %q", stamp.Path, dst)
	}

	n, err := api.PageCountFile(dst)
	if err != nil {
		t.Fatalf("PageCountFile() error = %v", err)
	}
	if n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}

	ok, err := api.HasWatermarksFile(dst, nil)
	if err != nil {
		t.Fatalf("HasWatermarksFile() error = %v", err)
	}
	if !ok {
		t.Error("composed page carries no stamp")
	}

	after, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("source document was modified")
	}
}

func TestCompose_KeepsFirstPageOnly(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	dst := filepath.Join(tmp, "stamp_00001.pdf")
	writeTemplate(t, src, 3)

	c := NewCompositor(Config{Font: "Helvetica"}, &recordingLogger{})
	if _, err := c.Compose(context.Background(), src, dst, 1); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	n, err := api.PageCountFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
}

func TestCompose_SameSerialTwice(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	writeTemplate(t, src, 1)

	c := NewCompositor(Config{Font: "Helvetica"}, &recordingLogger{})

	var labels []string
	for _, name := range []string{"a.pdf", "b.pdf"} {
		dst := filepath.Join(tmp, name)
		stamp, err := c.Compose(context.Background(), src, dst, 123456)
		if err != nil {
			t.Fatalf("Compose(%s) error = %v", name, err)
		}
		if !drawsText(drawnContent(t, dst), "123456") {
			t.Errorf("%s: label 123456 not drawn", name)
		}
		labels = append(labels, stamp.Label)
	}

	if labels[0] != labels[1] || labels[0] != "123456" {
		t.Errorf("labels = %v, want both 123456", labels)
	}
}

func TestCompose_FontFallback(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	writeTemplate(t, src, 1)

	logger := &recordingLogger{}
	c := NewCompositor(Config{Font: "NoSuchFontFamily", FontSize: 12}, logger)

	for i, serial := range []int{1, 2} {
		stamp, err := c.Compose(context.Background(), src, filepath.Join(tmp, domain.Unit{Serial: serial}.OutputName()), serial)
		if err != nil {
			t.Fatalf("Compose() #%d error = %v", i, err)
		}
		if stamp.Font != DefaultFallbackFont {
			t.Errorf("Font = %q, want %q", stamp.Font, DefaultFallbackFont)
		}
	}

	if got := logger.Warnings(); len(got) != 1 {
		t.Errorf("warnings = %v, want exactly one fallback warning", got)
	}
}

func TestCompose_CoreFontNoWarning(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "converted.pdf")
	writeTemplate(t, src, 1)

	logger := &recordingLogger{}
	c := NewCompositor(Config{Font: "Courier"}, logger)
	stamp, err := c.Compose(context.Background(), src, filepath.Join(tmp, "out.pdf"), 5)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if stamp.Font != "Courier" {
		t.Errorf("Font = %q, want Courier", stamp.Font)
	}
	if len(logger.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", logger.Warnings())
	}
}

func TestCompose_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "out.pdf")

	c := NewCompositor(DefaultConfig(), &recordingLogger{})
	if _, err := c.Compose(context.Background(), filepath.Join(tmp, "missing.pdf"), dst, 1); err == nil {
		t.Fatal("Compose() error = nil, want error")
	}
	if _, err := os.Stat(dst); err == nil {
		t.Error("output written despite failure")
	}
}

func TestCompose_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCompositor(DefaultConfig(), &recordingLogger{})
	if _, err := c.Compose(ctx, "in.pdf", "out.pdf", 1); err == nil {
		t.Fatal("Compose() error = nil, want context error")
	}
}

func TestCompositor_Point(t *testing.T) {
	c := NewCompositor(Config{Paper: domain.PaperA4}, &recordingLogger{})
	if c.Point() != DefaultPoint {
		t.Errorf("Point() = %v, want default %v", c.Point(), DefaultPoint)
	}

	custom := Point{X: 100, Y: 500}
	c = NewCompositor(Config{
		Paper:     domain.PaperA4,
		Placement: map[domain.PaperSize]Point{domain.PaperA4: custom},
	}, &recordingLogger{})
	if c.Point() != custom {
		t.Errorf("Point() = %v, want %v", c.Point(), custom)
	}
	if got := c.description("Helvetica"); got != "fontname:Helvetica, points:12, position:bl, offset:100 500, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1" {
		t.Errorf("description() = %q", got)
	}
}
