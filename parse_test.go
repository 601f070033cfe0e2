package con

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var cmpValue = cmp.Comparer(func(a, b Value) bool { return a.Equal(b) })

func TestDeserializeWorkedExamples(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		text string
		want Value
	}{
		{
			desc: "SimpleObject",
			text: "name: John\nage: 30\nactive: true\n",
			want: Obj(
				Pair{Key: "name", Value: Str("John")},
				Pair{Key: "age", Value: Num(30)},
				Pair{Key: "active", Value: Bool(true)},
			),
		},
		{
			desc: "TabularArrayOfObjects",
			text: "users[2]{name,age,city}:\n  Alice,30,NYC\n  Bob,25,SF\n",
			want: Obj(Pair{Key: "users", Value: Arr(
				Obj(Pair{Key: "name", Value: Str("Alice")}, Pair{Key: "age", Value: Num(30)}, Pair{Key: "city", Value: Str("NYC")}),
				Obj(Pair{Key: "name", Value: Str("Bob")}, Pair{Key: "age", Value: Num(25)}, Pair{Key: "city", Value: Str("SF")}),
			)}),
		},
		{
			desc: "InlinePrimitiveArray",
			text: "tags[3]: a,b,c\n",
			want: Obj(Pair{Key: "tags", Value: Arr(Str("a"), Str("b"), Str("c"))}),
		},
		{
			desc: "NestedObject",
			text: "a:\n  b:\n    c: 1\n",
			want: Obj(Pair{Key: "a", Value: Obj(Pair{Key: "b", Value: Obj(Pair{Key: "c", Value: Num(1)})})}),
		},
		{
			desc: "MixedList",
			text: "mixed[3]:\n  - 1\n  - x\n  - k: true\n",
			want: Obj(Pair{Key: "mixed", Value: Arr(Num(1), Str("x"), Obj(Pair{Key: "k", Value: Bool(true)}))}),
		},
		{
			desc: "HeadlessTabularArray",
			text: "[2]:\n  first,middle,last\n  John,,Doe\n  Jane,M,Smith",
			want: Arr(
				Obj(Pair{Key: "first", Value: Str("John")}, Pair{Key: "middle", Value: Str("")}, Pair{Key: "last", Value: Str("Doe")}),
				Obj(Pair{Key: "first", Value: Str("Jane")}, Pair{Key: "middle", Value: Str("M")}, Pair{Key: "last", Value: Str("Smith")}),
			),
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			got, err := Deserialize(tc.text, Options{})
			if err != nil {
				t.Fatalf("Deserialize() error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, cmpValue); diff != "" {
				t.Errorf("Deserialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeserializeEmptyInput(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\n  \n"} {
		_, err := Deserialize(text, Options{})
		if err != ErrEmptyInput {
			t.Errorf("Deserialize(%q) error = %v, want ErrEmptyInput", text, err)
		}
	}
}

func TestDeserializeStrictModeCountMismatch(t *testing.T) {
	t.Parallel()

	_, err := Deserialize("tags[3]: a,b\n", Options{Strict: true})
	var mismatch *CountMismatchError
	if !asCountMismatch(err, &mismatch) {
		t.Fatalf("Deserialize() error = %v, want *CountMismatchError", err)
	}
	if mismatch.Expected != 3 || mismatch.Actual != 2 {
		t.Errorf("CountMismatchError = %+v, want Expected=3 Actual=2", mismatch)
	}
}

func TestDeserializeNonStrictModeToleratesCountMismatch(t *testing.T) {
	t.Parallel()

	v, err := Deserialize("tags[3]: a,b\n", Options{})
	if err != nil {
		t.Fatalf("Deserialize() error: %v", err)
	}
	want := Obj(Pair{Key: "tags", Value: Arr(Str("a"), Str("b"))})
	if diff := cmp.Diff(want, v, cmpValue); diff != "" {
		t.Errorf("Deserialize() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserializeStrictModeRejectsTabs(t *testing.T) {
	t.Parallel()

	_, err := Deserialize("a:\n\tb: 1\n", Options{Strict: true})
	var synErr *SyntaxError
	if !asSyntaxError(err, &synErr) {
		t.Fatalf("Deserialize() error = %v, want *SyntaxError", err)
	}
}

func TestDeserializeUnterminatedQuotedString(t *testing.T) {
	t.Parallel()

	_, err := Deserialize(`name: "unterminated`, Options{})
	var synErr *SyntaxError
	if !asSyntaxError(err, &synErr) {
		t.Fatalf("Deserialize() error = %v, want *SyntaxError", err)
	}
}

func asSyntaxError(err error, target **SyntaxError) bool {
	se, ok := err.(*SyntaxError)
	if ok {
		*target = se
	}
	return ok
}

func asCountMismatch(err error, target **CountMismatchError) bool {
	ce, ok := err.(*CountMismatchError)
	if ok {
		*target = ce
	}
	return ok
}
