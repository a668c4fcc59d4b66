package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoDeprecatedMethods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantID  string
		wantMsg string
		want    string // fixed output; empty means no fix
	}{
		{
			name:    "wrapAsync",
			src:     "const f = Meteor.wrapAsync(fn);",
			wantID:  "noDeprecatedMethods",
			wantMsg: "Meteor.wrapAsync is deprecated in Meteor 3. Use Promise-based APIs or util.promisify instead",
		},
		{
			name:    "setTimeout has no alternative",
			src:     "Meteor.setTimeout(fn, 100);",
			wantID:  "noDeprecatedMethodsNoAlt",
			wantMsg: "Meteor.setTimeout is deprecated in Meteor 3 and should not be used",
		},
		{
			name:    "environment flag",
			src:     "if (Meteor.isServer) { start(); }",
			wantID:  "noDeprecatedMethods",
			wantMsg: `Meteor.isServer is deprecated in Meteor 3. Use import { isServer } from "meteor/meteor" instead`,
		},
		{
			name:    "HTTP has no mechanical rename",
			src:     "HTTP.get(url);",
			wantID:  "noDeprecatedMethods",
			wantMsg: "HTTP.get is deprecated in Meteor 3. Use fetch API instead",
		},
		{
			name:    "publish call renamed",
			src:     "Meteor.publish('links', function () {});",
			wantID:  "noDeprecatedMethods",
			wantMsg: "Meteor.publish is deprecated in Meteor 3. Use Meteor.publishAsync instead",
			want:    "Meteor.publishAsync('links', function () {});",
		},
		{
			name:    "Email.send call renamed",
			src:     "Email.send({ to });",
			wantID:  "noDeprecatedMethods",
			wantMsg: "Email.send is deprecated in Meteor 3. Use Email.sendAsync instead",
			want:    "Email.sendAsync({ to });",
		},
		{
			name:    "publish reference not renamed",
			src:     "const publish = Meteor.publish;",
			wantID:  "noDeprecatedMethods",
			wantMsg: "Meteor.publish is deprecated in Meteor 3. Use Meteor.publishAsync instead",
		},
		{
			name:    "DDP invocation",
			src:     "const inv = DDP._CurrentMethodInvocation.get();",
			wantID:  "noDeprecatedMethods",
			wantMsg: "DDP._CurrentMethodInvocation is deprecated in Meteor 3. Use Meteor.EnvironmentVariable instead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diags := check(t, NoDeprecatedMethods, "client/main.js", tt.src, nil)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.wantID, diags[0].MessageID)
			assert.Equal(t, tt.wantMsg, diags[0].Message)
			assert.Equal(t, "meteor3/no-deprecated-methods", diags[0].Rule)

			if tt.want == "" {
				assert.Nil(t, diags[0].Fix)
				return
			}
			require.NotNil(t, diags[0].Fix)
			out := fixed(t, NoDeprecatedMethods, "client/main.js", tt.src, nil)
			assert.Equal(t, tt.want, out)
			assert.Empty(t, check(t, NoDeprecatedMethods, "client/main.js", out, nil))
		})
	}
}

func TestNoDeprecatedMethodsIgnoresOthers(t *testing.T) {
	t.Parallel()

	src := `Meteor.methods({});
Meteor.startup(() => {});
const t = setTimeout(fn, 10);
this.Meteor.wrapAsync(fn);
Meteor.publishAsync('links', () => {});
`
	assert.Empty(t, check(t, NoDeprecatedMethods, "main.js", src, nil))
}

func TestDeprecatedTables(t *testing.T) {
	t.Parallel()

	alt, ok := DeprecatedReplacement("Accounts.onLogin")
	require.True(t, ok)
	assert.Equal(t, "Accounts.onLoginAsync", alt)

	_, ok = DeprecatedReplacement("Meteor.setTimeout")
	assert.False(t, ok)
	assert.True(t, IsRemoved("Meteor.setTimeout"))
	assert.False(t, IsRemoved("Meteor.wrapAsync"))

	for symbol := range removedSymbols {
		_, dup := deprecatedSymbols[symbol]
		assert.False(t, dup, "%s is both deprecated and removed", symbol)
	}
	for symbol := range callRenames {
		_, ok := deprecatedSymbols[symbol]
		assert.True(t, ok, "rename for %s has no deprecation entry", symbol)
	}
}
