package rules

// The tables below are read only. They are unexported and reached through
// the lookup functions so no caller can mutate them.

// deprecatedSymbols maps a deprecated Object.property to its replacement.
var deprecatedSymbols = map[string]string{
	// Meteor core
	"Meteor.wrapAsync":        "Promise-based APIs or util.promisify",
	"Meteor.bindEnvironment":  "async/await with Meteor.EnvironmentVariable",
	"Meteor._noYieldsAllowed": "Meteor.EnvironmentVariable",
	"Meteor._sleepForMs":      "setTimeout with Promise",

	// DDP
	"DDP._CurrentMethodInvocation":      "Meteor.EnvironmentVariable",
	"DDP._CurrentPublicationInvocation": "Meteor.EnvironmentVariable",

	// Accounts
	"Accounts.onLogin":              "Accounts.onLoginAsync",
	"Accounts.validateLoginAttempt": "Accounts.validateLoginAttemptAsync",
	"Accounts.onCreateUser":         "Accounts.onCreateUserAsync",

	// Publications
	"Meteor.publish": "Meteor.publishAsync",

	// HTTP
	"HTTP.call": "fetch API",
	"HTTP.get":  "fetch API",
	"HTTP.post": "fetch API",
	"HTTP.put":  "fetch API",
	"HTTP.del":  "fetch API",

	// Email
	"Email.send": "Email.sendAsync",

	// Environment flags
	"Meteor.isClient":  `import { isClient } from "meteor/meteor"`,
	"Meteor.isServer":  `import { isServer } from "meteor/meteor"`,
	"Meteor.isCordova": `import { isCordova } from "meteor/meteor"`,
}

// removedSymbols have no replacement in Meteor 3.
var removedSymbols = map[string]struct{}{
	"Meteor.setTimeout":    {},
	"Meteor.setInterval":   {},
	"Meteor.clearTimeout":  {},
	"Meteor.clearInterval": {},
	"Meteor._debug":        {},
	"Meteor._setImmediate": {},
}

// callRenames are deprecated symbols that, when called, have a drop-in
// asynchronous property on the same object.
var callRenames = map[string]string{
	"Meteor.publish": "publishAsync",
	"Email.send":     "sendAsync",
}

// syncToAsync maps synchronous method names to their async counterparts.
var syncToAsync = map[string]string{
	// Collection methods
	"findOne":     "findOneAsync",
	"insert":      "insertAsync",
	"update":      "updateAsync",
	"remove":      "removeAsync",
	"upsert":      "upsertAsync",
	"createIndex": "createIndexAsync",
	// Cursor methods
	"forEach":        "forEachAsync",
	"map":            "mapAsync",
	"fetch":          "fetchAsync",
	"count":          "countAsync",
	"observe":        "observeAsync",
	"observeChanges": "observeChangesAsync",
	// Meteor methods
	"call":  "callAsync",
	"apply": "applyAsync",
	"user":  "userAsync",
	// Accounts methods
	"createUser":   "createUserAsync",
	"setPassword":  "setPasswordAsync",
	"addEmail":     "addEmailAsync",
	"replaceEmail": "replaceEmailAsync",
}

var (
	frameworkMethods  = set("call", "apply", "user")
	accountsMethods   = set("createUser", "setPassword", "addEmail", "replaceEmail")
	collectionMethods = set("findOne", "insert", "update", "remove", "upsert", "createIndex")
	cursorMethods     = set("forEach", "map", "fetch", "count", "observe", "observeChanges")
)

// asyncMethods are the promise-returning Meteor APIs whose results must be
// awaited.
var asyncMethods = set(
	"callAsync",
	"applyAsync",
	"userAsync",
	"findOneAsync",
	"insertAsync",
	"updateAsync",
	"removeAsync",
	"upsertAsync",
	"createIndexAsync",
	"forEachAsync",
	"mapAsync",
	"fetchAsync",
	"countAsync",
	"observeAsync",
	"observeChangesAsync",
	"createUserAsync",
	"setPasswordAsync",
	"addEmailAsync",
	"replaceEmailAsync",
)

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func has(m map[string]struct{}, name string) bool {
	_, ok := m[name]
	return ok
}

// DeprecatedReplacement returns the documented replacement for a deprecated
// Object.property symbol.
func DeprecatedReplacement(symbol string) (string, bool) {
	alt, ok := deprecatedSymbols[symbol]
	return alt, ok
}

// IsRemoved reports whether symbol was removed without replacement.
func IsRemoved(symbol string) bool {
	return has(removedSymbols, symbol)
}

// AsyncName returns the asynchronous name for a synchronous Meteor method.
func AsyncName(method string) (string, bool) {
	name, ok := syncToAsync[method]
	return name, ok
}

// IsAsyncMethod reports whether method is a promise-returning Meteor API.
func IsAsyncMethod(method string) bool {
	return has(asyncMethods, method)
}
