package aspects_test

import (
	"fmt"
	"io"
	"log/slog"

	aspects "github.com/reglet-dev/reglet-aspects"
	"github.com/reglet-dev/reglet-aspects/capability"
)

type Reader interface {
	Read() string
}

type Writer interface {
	Write(s string) int
}

type Closer interface {
	Close() error
}

// Both is a view target only; it is not a registered capability.
type Both interface {
	Read() string
	Write(s string) int
}

type reader struct {
	content string
}

func (r *reader) Read() string { return r.content }

type writer struct {
	name string
}

func (w *writer) Write(s string) int { return len(s) }

type otherWriter struct {
	name string
}

func (w *otherWriter) Write(s string) int { return 2 * len(s) }

type scaledWriter struct {
	factor int
}

func (w *scaledWriter) Write(s string) int { return w.factor * len(s) }

// lazyWriter carries Write but opts out of it.
type lazyWriter struct {
	name string
}

func (w *lazyWriter) Write(s string) int { return 3 * len(s) }

func (w *lazyWriter) NotImplemented() []string { return []string{"Write"} }

type closer struct {
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

type panicker struct {
	msg string
}

func (p *panicker) Write(string) int { panic(p.msg) }

type namedReader struct {
	content string
}

func (r *namedReader) Read() string   { return r.content }
func (r *namedReader) String() string { return "reader:" + r.content }

type bothView struct{ *aspects.View }

func (b bothView) Read() string       { return aspects.Result[string](b.Call("Read"), 0) }
func (b bothView) Write(s string) int { return aspects.Result[int](b.Call("Write", s), 0) }

// Structural-only targets: the providers below fit them without implementing
// them in the Go sense.

type Fetcher interface {
	Fetch(key string) ([]byte, error)
}

type memFetcher struct {
	data map[string][]byte
}

// Fetch declares no failure; the view fills the error slot with nil.
func (m *memFetcher) Fetch(key string) []byte { return m.data[key] }

type strictFetcher struct{}

type fetchError struct{ key string }

func (e *fetchError) Error() string { return "fetch " + e.key }

func (s *strictFetcher) Fetch(key string) ([]byte, *fetchError) {
	if key == "" {
		return nil, &fetchError{key: key}
	}
	return []byte(key), nil
}

type fetcherView struct{ *aspects.View }

func (f fetcherView) Fetch(key string) ([]byte, error) {
	out := f.Call("Fetch", key)
	return aspects.Result[[]byte](out, 0), aspects.Err(out, 1)
}

type Labeled interface {
	Label() fmt.Stringer
}

type tag struct{ value string }

func (t *tag) String() string { return "#" + t.value }

type labeler struct{ value string }

func (l *labeler) Label() *tag { return &tag{value: l.value} }

type labeledView struct{ *aspects.View }

func (l labeledView) Label() fmt.Stringer { return aspects.Result[fmt.Stringer](l.Call("Label"), 0) }

type Named interface {
	Label() any
}

type namedView struct{ *aspects.View }

func (n namedView) Label() any { return aspects.Result[any](n.Call("Label"), 0) }

type Describer interface {
	Read() string
	String() string
}

type describerView struct{ *aspects.View }

func (d describerView) Read() string   { return aspects.Result[string](d.Call("Read"), 0) }
func (d describerView) String() string { return aspects.Result[string](d.Call("String"), 0) }

func init() {
	capability.MustRegister[Reader]()
	capability.MustRegister[Writer]()
	capability.MustRegister[Closer]()

	aspects.MustRegisterView(func(v *aspects.View) Both { return bothView{v} })
	aspects.MustRegisterView(func(v *aspects.View) Fetcher { return fetcherView{v} })
	aspects.MustRegisterView(func(v *aspects.View) Labeled { return labeledView{v} })
	aspects.MustRegisterView(func(v *aspects.View) Named { return namedView{v} })
	aspects.MustRegisterView(func(v *aspects.View) Describer { return describerView{v} })
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newComposer(opts ...aspects.ComposerOption) *aspects.Composer {
	return aspects.NewComposer(append([]aspects.ComposerOption{aspects.WithLogger(newTestLogger())}, opts...)...)
}
