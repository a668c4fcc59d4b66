package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperErrorHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "await outside try",
			src:  "async function load() { const l = await Links.findOneAsync(id); }",
			want: []string{"useTryCatch"},
		},
		{
			name: "await inside try",
			src:  "async function load() { try { await Links.findOneAsync(id); } catch (e) {} }",
		},
		{
			name: "await in nested block inside try",
			src:  "async function load() { try { if (id) { await Links.removeAsync(id); } } catch (e) {} }",
		},
		{
			name: "await in catch clause",
			src:  "async function load() { try { x(); } catch (e) { await Logs.insertAsync(e); } }",
			want: []string{"useTryCatch"},
		},
		{
			name: "parenthesized await operand",
			src:  "async function load() { await (Links.findOneAsync(id)); }",
			want: []string{"useTryCatch"},
		},
		{
			name: "dropped promise in async function",
			src:  "async function save() { try { Links.insertAsync(doc); } catch (e) {} }",
			want: []string{"noUnhandledPromises"},
		},
		{
			name: "dropped promise in sync function",
			src:  "function save() { Links.insertAsync(doc); }",
		},
		{
			name: "dropped promise in sync callback of async function",
			src:  "async function save() { docs.forEach(function (d) { Links.insertAsync(d); }); }",
		},
		{
			name: "then handled",
			src:  "async function save() { Links.insertAsync(doc).then(done); }",
		},
		{
			name: "catch handled",
			src:  "const save = async () => { Links.insertAsync(doc).catch(report); };",
		},
		{
			name: "unknown method",
			src:  "async function save() { await fetchThing(); api.loadAsync(); }",
		},
		{
			name: "async method in object",
			src:  "Meteor.methods({ async save(doc) { Links.insertAsync(doc); } });",
			want: []string{"noUnhandledPromises"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			diags := check(t, ProperErrorHandling, "main.js", tt.src, nil)
			if len(tt.want) == 0 {
				assert.Empty(t, diags)
				return
			}
			assert.Equal(t, tt.want, messageIDs(diags))
			for _, d := range diags {
				assert.Nil(t, d.Fix)
			}
		})
	}
}

func TestUseAsyncAwait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		want   []string
		method string
	}{
		{
			name:   "callback argument",
			src:    "Meteor.callAsync('save', doc, (err, res) => {});",
			want:   []string{"useAsyncAwait"},
			method: "callAsync",
		},
		{
			name:   "function callback",
			src:    "Links.insertAsync(doc, function (err) {});",
			want:   []string{"useAsyncAwait"},
			method: "insertAsync",
		},
		{
			name:   "then chaining",
			src:    "Links.findOneAsync(id).then(link => show(link));",
			want:   []string{"noThenChaining"},
			method: "findOneAsync",
		},
		{
			name: "awaited",
			src:  "async function f() { const l = await Links.findOneAsync(id); }",
		},
		{
			name: "callback on other method",
			src:  "Links.find(sel, () => {}); load(id).then(show);",
		},
		{
			name: "callback not last",
			src:  "Meteor.callAsync('save', () => {}, doc);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			diags := check(t, UseAsyncAwait, "main.js", tt.src, nil)
			if len(tt.want) == 0 {
				assert.Empty(t, diags)
				return
			}
			require.Equal(t, tt.want, messageIDs(diags))
			assert.Equal(t, tt.method, diags[0].Data["method"])
		})
	}
}

func TestUseMeteorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string // fixed output; empty means no diagnostic
	}{
		{
			name: "new Error in shorthand method",
			src:  "Meteor.methods({ async save() { throw new Error('denied'); } });",
			want: "Meteor.methods({ async save() { throw new Meteor.Error('denied'); } });",
		},
		{
			name: "Error call thrown from arrow",
			src:  "Meteor.methods({ save: async () => { throw Error('denied'); } });",
			want: "Meteor.methods({ save: async () => { throw Meteor.Error('denied'); } });",
		},
		{
			name: "nested function inside method",
			src:  "Meteor.methods({ async save() { check(() => { return new Error('x'); }); } });",
			want: "Meteor.methods({ async save() { check(() => { return new Meteor.Error('x'); }); } });",
		},
		{
			name: "outside Meteor.methods",
			src:  "function save() { throw new Error('denied'); }",
		},
		{
			name: "already Meteor.Error",
			src:  "Meteor.methods({ async save() { throw new Meteor.Error('denied'); } });",
		},
		{
			name: "other error types",
			src:  "Meteor.methods({ async save() { throw new TypeError('denied'); } });",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			diags := check(t, UseMeteorError, "/app/server/methods.js", tt.src, nil)
			if tt.want == "" {
				assert.Empty(t, diags)
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, "useMeteorError", diags[0].MessageID)
			assert.Equal(t, tt.want, fixed(t, UseMeteorError, "/app/server/methods.js", tt.src, nil))
		})
	}
}
