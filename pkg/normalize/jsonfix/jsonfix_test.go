package jsonfix

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare keys single quotes trailing comma",
			in:   "{ a: 1, b: 'x', }",
			want: `{"a":1,"b":"x"}`,
		},
		{
			name: "underscore and one-letter keys",
			in:   "{ _id: 1, x: 2 }",
			want: `{"_id":1,"x":2}`,
		},
		{
			name: "already valid keeps null",
			in:   `{"a": null, "b": [1, "two", true]}`,
			want: `{"a":null,"b":[1,"two",true]}`,
		},
		{
			name: "identifier values become strings",
			in:   "{ type: String, ref: Models.Hero }",
			want: `{"type":"String","ref":"Models.Hero"}`,
		},
		{
			name: "null becomes a string once keys needed quoting",
			in:   `{ "a": null, b: 1 }`,
			want: `{"a":"null","b":1}`,
		},
		{
			name: "boolean values survive",
			in:   "{ required: true, hidden: false }",
			want: `{"required":true,"hidden":false}`,
		},
		{
			name: "multiline with nested object and trailing commas",
			in:   "{\n\tname: 'hero',\n\tsize: { min: 1, max: 10, },\n}",
			want: `{"name":"hero","size":{"min":1,"max":10}}`,
		},
		{
			name: "key order is preserved",
			in:   "{ zeta: 1, alpha: 2, mid: 3 }",
			want: `{"zeta":1,"alpha":2,"mid":3}`,
		},
		{
			name: "method call reference is quoted",
			in:   "{ factory: Hero.create() }",
			want: `{"factory":" Hero.create()"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decode(tt.in, discard())
			require.NotNil(t, v)
			assert.JSONEq(t, tt.want, toJSON(t, v))
			assert.Equal(t, tt.want, toJSON(t, v), "key order")
		})
	}
}

func TestDecode_Lambda(t *testing.T) {
	in := "{\n  onSave: () => {\n    save('x');\n  },\n  title: 'Hero'\n}"

	v := Decode(in, discard())
	require.NotNil(t, v)

	obj, ok := v.(*Object)
	require.True(t, ok)

	marker, ok := obj.Get("onSave")
	require.True(t, ok)
	m, ok := marker.(*Object)
	require.True(t, ok)

	typ, _ := m.Get("type")
	content, _ := m.Get("content")
	assert.Equal(t, LambdaType, typ)
	assert.Equal(t, "() => {save('x');}", content)

	title, _ := obj.Get("title")
	assert.Equal(t, "Hero", title)
}

func TestDecode_SingleLineLambda(t *testing.T) {
	v := Decode(`{ handler: () => { alert("hi"); }, label: 'x' }`, discard())
	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"handler", "label"}, keys(obj))

	h, _ := obj.Get("handler")
	marker := h.(*Object)
	content, _ := marker.Get("content")
	assert.Equal(t, "() => { alert('hi'); }", content)
}

func keys(obj *Object) []string {
	var out []string
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestDecode_GivesUp(t *testing.T) {
	// "a:" is rewritten inside "ba:" before "ba:" itself is quoted.
	assert.Nil(t, Decode("{ a: 1, ba: 2 }", discard()))
	assert.Nil(t, Decode("{ spread: ...rest }", discard()))
}

func TestPrepare(t *testing.T) {
	assert.Equal(t, `{ a: "x"}`, Prepare("{ a: 'x',}"))
	assert.Equal(t, "{ a: [1,2]\n}", Prepare("{ a: [1,2],\n}"))
	assert.Equal(t, `{ f:" A.b()", g: C.d() }`, Prepare("{ f: A.b(), g: C.d() }"))
}

func TestQuoteIdentifiers(t *testing.T) {
	assert.Equal(t, `{ "a": "Foo", "b.c": 1 }`, QuoteIdentifiers("{ a: Foo, b.c: 1 }"))
	assert.Equal(t, `{ "on": true }`, QuoteIdentifiers("{ on: true }"))
}

func TestReplaceLambdas_NoLambda(t *testing.T) {
	s := `{"a": 1}`
	assert.Equal(t, s, ReplaceLambdas(s))
}

func TestParse(t *testing.T) {
	v, err := Parse(`[1, {"k": "v", "n": {"x": null}}, "s"]`)
	require.NoError(t, err)
	assert.Equal(t, `[1,{"k":"v","n":{"x":null}},"s"]`, toJSON(t, v))

	_, err = Parse(`{a: 1}`)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	v, err = Parse(`"A\n"`)
	require.NoError(t, err)
	assert.Equal(t, "A\n", v)
}

func TestParse_EscapedKeys(t *testing.T) {
	v, err := Parse(`{"\u0061": 1, "b\"c": 2, "d\\e": 3}`)
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"a", `b"c`, `d\e`}, keys(obj))

	got, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, got)
}
