package session_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthands/pyint/pkg/compiler/lexer"
	"github.com/agenthands/pyint/pkg/compiler/parser"
	"github.com/agenthands/pyint/pkg/session"
	"github.com/agenthands/pyint/pkg/tracedump"
	"github.com/agenthands/pyint/pkg/vm"
)

func newSession(out *bytes.Buffer) *session.Session {
	return session.New(session.Options{Out: out, MaxDepth: vm.DefaultMaxDepth})
}

// TestPrograms runs whole programs through the pipeline and checks their
// output and resulting globals.
func TestPrograms(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   string
		verify func(t *testing.T, m *vm.Machine)
	}{
		{
			name: "Counting Loop",
			src: `
i = 0
while i < 3:
    print(i)
    i += 1
`,
			want: "0\n1\n2\n",
		},
		{
			name: "Function Call",
			src: `
def f(a, b):
    return a + b
print(f(2, 3))
`,
			want: "5\n",
		},
		{
			name: "Comparison Chains",
			src:  "print(3 > 2 > 1)\nprint(1 > 2 > 3)\nprint(5 == 5 != 4)\n",
			want: "True\nFalse\nTrue\n",
		},
		{
			name: "Type Laws",
			src:  "print('a' + 'b')\nprint(1 + 1.5)\nprint(1 == '1')\n",
			want: "ab\n2.5\nFalse\n",
		},
		{
			name: "Parameter Mutation Does Not Leak",
			src: `
x = 1
def f(x):
    x = 99
    return x
print(f(x), x)
`,
			want: "99 1\n",
			verify: func(t *testing.T, m *vm.Machine) {
				if v, _ := m.Global("x"); v.Int() != 1 {
					t.Errorf("global x = %s", v)
				}
			},
		},
		{
			name: "Global Mutation Visible To Caller",
			src: `
count = 0
def bump(n):
    global count
    count += n
bump(2)
bump(3)
print(count)
`,
			want: "5\n",
		},
		{
			name: "Break In Nested If",
			src: `
i = 0
total = 0
while i < 10:
    if i == 4:
        if True:
            break
    total += i
    i += 1
print(i, total)
`,
			want: "4 6\n",
		},
		{
			name: "Recursive Fibonacci",
			src: `
def fib(n):
    if n < 2:
        return n
    return fib(n - 1) + fib(n - 2)
print(fib(15))
`,
			want: "610\n",
		},
		{
			name: "Comments Inside Blocks",
			src: `
# leading comment
def f(n):
    # only a comment
    /* a multi-line
       comment */
    return n * 2 # trailing
print(f(21)) /* after */
`,
			want: "42\n",
		},
		{
			name: "Elif Chain",
			src: `
def grade(n):
    if n >= 90:
        return 'A'
    elif n >= 80:
        return 'B'
    elif n >= 70:
        return 'C'
    else:
        return 'F'
print(grade(95), grade(85), grade(75), grade(10))
`,
			want: "A B C F\n",
		},
		{
			name: "String Building",
			src: `
s = ''
i = 0
while i < 3:
    s += 'ab'
    i += 1
line = '-'
line *= 5
print(s, line)
print('tab\there', 'it\'s')
`,
			want: "ababab -----\ntab\there it's\n",
		},
		{
			name: "Float Arithmetic",
			src:  "print(7 / 2, 6 / 3, 0.1 + 0.2, -2.5 * 2)\n",
			want: "3.5 2.0 0.30000000000000004 -5.0\n",
		},
		{
			name: "Function Defined Inside Function Is Global",
			src: `
def outer():
    def inner():
        return 7
    return inner()
print(outer(), inner())
`,
			want: "7 7\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := newSession(&out)
			if err := s.Exec([]byte(tt.src)); err != nil {
				t.Fatalf("Exec() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output:\n got  %q\n want %q", out.String(), tt.want)
			}
			if tt.verify != nil {
				tt.verify(t, s.Machine())
			}
		})
	}
}

func TestMalformedDedent(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)
	err := s.Exec([]byte("if True:\n    x = 1\n  print(x)\n"))

	var lexErr *lexer.Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T: %v", err, err)
	}
	if lexErr.Line != 3 || lexErr.Column != 3 {
		t.Errorf("position: got %d:%d, want 3:3", lexErr.Line, lexErr.Column)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should run after a lexical error, got %q", out.String())
	}
}

func TestSyntaxErrorRunsNothing(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)
	err := s.Exec([]byte("print('first')\nwhile True\n    pass\n"))

	var parseErr *parser.Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *parser.Error, got %T: %v", err, err)
	}
	if out.Len() != 0 {
		t.Errorf("got output %q", out.String())
	}
}

// A comment-only line still takes part in indentation, so a comment at a
// shallower column closes the enclosing block.
func TestCommentColumnClosesBlock(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)
	err := s.Exec([]byte("def f():\n    x = 1\n# note\n    return x\n"))

	var parseErr *parser.Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *parser.Error, got %T: %v", err, err)
	}
	if parseErr.Line != 4 || !strings.Contains(parseErr.Msg, "got INDENT") {
		t.Errorf("got %v", parseErr)
	}
}

func TestRuntimeErrorKeepsEarlierEffects(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)
	err := s.Exec([]byte("print('before')\nprint('a' - 'b')\nprint('after')\n"))
	if !errors.Is(err, vm.ErrTypeMismatch) {
		t.Fatalf("got %v", err)
	}
	if out.String() != "before\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestPersistentGlobals(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out)
	entries := []string{
		"total = 0\n",
		"def add(n):\n    global total\n    total += n\n\n",
		"add(4)\n",
		"oops(1)\n",
		"add(5)\nprint(total)\n",
	}
	for i, entry := range entries {
		err := s.Exec([]byte(entry))
		if i == 3 {
			if !errors.Is(err, vm.ErrUndefinedName) {
				t.Fatalf("entry %d: got %v, want ErrUndefinedName", i, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
	}
	if out.String() != "9\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestSinks(t *testing.T) {
	var out, table bytes.Buffer
	dbPath := filepath.Join(t.TempDir(), "trace.db")
	db, err := tracedump.OpenSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := session.New(session.Options{
		Out:   &out,
		Sinks: []tracedump.Sink{tracedump.NewTextSink(&table), db},
	})
	if err := s.Exec([]byte("x = 1 # one\nprint(x)\n")); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(table.String(), "COMMENT_SINGLE    # one") {
		t.Errorf("text table misses the comment token:\n%s", table.String())
	}
	rows, err := db.Entries(db.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 11 {
		t.Errorf("got %d rows, want 11", len(rows))
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		entry string
		want  bool
	}{
		{"x = 1\n", true},
		{"print('a:')\n", true},
		{"x = 1 # note:\n", true},
		{"if x:\n", false},
		{"if x:\n    y = 1\n", false},
		{"if x:\n    y = 1\n\n", true},
		{"def f(): # body follows\n", false},
		{"while True:\n    pass\n\n", true},
	}
	for _, tt := range tests {
		if got := session.Complete(tt.entry); got != tt.want {
			t.Errorf("Complete(%q) = %v, want %v", tt.entry, got, tt.want)
		}
	}
}
