package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncMeteorMethodsShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		async string
		want  string
	}{
		{
			name:  "shorthand method",
			src:   "Meteor.methods({ myMethod() {} });",
			async: "Meteor.methods({ async myMethod() {} });",
			want:  "Meteor.methods({ async myMethod() {} });",
		},
		{
			name:  "function expression",
			src:   "Meteor.methods({ myMethod: function () {} });",
			async: "Meteor.methods({ myMethod: async function () {} });",
			want:  "Meteor.methods({ myMethod: async function () {} });",
		},
		{
			name:  "arrow function",
			src:   "Meteor.methods({ myMethod: () => {} });",
			async: "Meteor.methods({ myMethod: async () => {} });",
			want:  "Meteor.methods({ myMethod: async () => {} });",
		},
		{
			name:  "arrow with bare parameter",
			src:   "Meteor.methods({ myMethod: id => id });",
			async: "Meteor.methods({ myMethod: async id => id });",
			want:  "Meteor.methods({ myMethod: async id => id });",
		},
		{
			name:  "class method",
			src:   "Meteor.methods(new (class { myMethod() {} })());",
			async: "Meteor.methods(new (class { async myMethod() {} })());",
			want:  "Meteor.methods(new (class { async myMethod() {} })());",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diags := check(t, AsyncMeteorMethods, "/app/server/methods.js", tt.src, nil)
			require.Len(t, diags, 1)
			assert.Equal(t, "useAsyncMethodsWithName", diags[0].MessageID)
			assert.Equal(t, "myMethod", diags[0].Data["methodName"])
			assert.Equal(t, `Meteor method "myMethod" should be declared as async in Meteor 3`, diags[0].Message)
			require.NotNil(t, diags[0].Fix)

			assert.Equal(t, tt.want, fixed(t, AsyncMeteorMethods, "/app/server/methods.js", tt.src, nil))
			assert.Empty(t, check(t, AsyncMeteorMethods, "/app/server/methods.js", tt.async, nil))
		})
	}
}

func TestAsyncMeteorMethodsIgnorePatterns(t *testing.T) {
	t.Parallel()

	src := "Meteor.methods({ syncMethod() {}, other() {} });"
	opts := &AsyncMethodsOptions{IgnorePatterns: []string{"syncMethod"}}

	diags := check(t, AsyncMeteorMethods, "methods.js", src, opts)
	require.Len(t, diags, 1)
	assert.Equal(t, "other", diags[0].Data["methodName"])

	assert.Len(t, check(t, AsyncMeteorMethods, "methods.js", src, nil), 2)
}

func TestAsyncMeteorMethodsNotReported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"getter and setter", "Meteor.methods({ get value() { return 1; }, set value(v) {} });"},
		{"non-function value", "Meteor.methods({ limit: 10, name: 'x' });"},
		{"other receiver", "Foo.methods({ myMethod() {} });"},
		{"no argument", "Meteor.methods();"},
		{"unresolvable identifier", "Meteor.methods(imported);"},
		{"class constructor static and accessor", `Meteor.methods(new (class {
  constructor() {}
  static helper() {}
  get value() { return 1; }
  async done() {}
})());`},
		{"class outside Meteor.methods", "new (class { myMethod() {} })();"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, check(t, AsyncMeteorMethods, "methods.js", tt.src, nil))
		})
	}
}

func TestAsyncMeteorMethodsResolvesIdentifiers(t *testing.T) {
	t.Parallel()

	t.Run("object literal", func(t *testing.T) {
		t.Parallel()
		src := "const methods = { save() {} };\nMeteor.methods(methods);\n"
		diags := check(t, AsyncMeteorMethods, "methods.js", src, nil)
		require.Len(t, diags, 1)
		assert.Equal(t, "save", diags[0].Data["methodName"])
		assert.Equal(t, 1, diags[0].Line)
		assert.Equal(t,
			"const methods = { async save() {} };\nMeteor.methods(methods);\n",
			fixed(t, AsyncMeteorMethods, "methods.js", src, nil))
	})

	t.Run("class declaration", func(t *testing.T) {
		t.Parallel()
		src := "class Methods { save() {} }\nMeteor.methods(new Methods());\n"
		diags := check(t, AsyncMeteorMethods, "methods.js", src, nil)
		require.Len(t, diags, 1)
		assert.Equal(t, "save", diags[0].Data["methodName"])
	})
}

func TestAsyncMeteorMethodsKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		wantName string
		want     string
	}{
		{
			name:     "string key",
			src:      "Meteor.methods({ 'users.save'() {} });",
			wantName: "users.save",
			want:     "Meteor.methods({ async 'users.save'() {} });",
		},
		{
			name:     "computed string key",
			src:      "Meteor.methods({ ['users.save']: function () {} });",
			wantName: "users.save",
			want:     "Meteor.methods({ ['users.save']: async function () {} });",
		},
		{
			name:     "computed identifier key",
			src:      "Meteor.methods({ [SAVE]() { this.SAVE(); } });",
			wantName: "SAVE",
			want:     "Meteor.methods({ async [SAVE]() { this.SAVE(); } });",
		},
		{
			name:     "dynamic key",
			src:      "Meteor.methods({ [prefix + 'save']: () => {} });",
			wantName: "anonymous",
			want:     "Meteor.methods({ [prefix + 'save']: async () => {} });",
		},
		{
			name:     "generator",
			src:      "Meteor.methods({ *stream() {} });",
			wantName: "stream",
			want:     "Meteor.methods({ async *stream() {} });",
		},
		{
			name:     "name reused in body",
			src:      "Meteor.methods({ save() { return this.save; } });",
			wantName: "save",
			want:     "Meteor.methods({ async save() { return this.save; } });",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			diags := check(t, AsyncMeteorMethods, "methods.js", tt.src, nil)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.wantName, diags[0].Data["methodName"])
			assert.Equal(t, tt.want, fixed(t, AsyncMeteorMethods, "methods.js", tt.src, nil))
		})
	}
}

func TestAsyncMeteorMethodsTypeScript(t *testing.T) {
	t.Parallel()

	src := "Meteor.methods({ save(id: string): void {} });"
	diags := check(t, AsyncMeteorMethods, "methods.ts", src, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "Meteor.methods({ async save(id: string): void {} });",
		fixed(t, AsyncMeteorMethods, "methods.ts", src, nil))
}

func TestAsyncMethodsOptionsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&AsyncMethodsOptions{IgnorePatterns: []string{"^sync", "Legacy$"}}).Validate())
	assert.Error(t, (&AsyncMethodsOptions{IgnorePatterns: []string{"("}}).Validate())
}
