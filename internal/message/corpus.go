package message

// Built-in message corpora, keyed by style name. Messages are intentionally
// generic: they have to read plausibly against any repository.
var styles = map[string][]string{
	"default": {
		"Update documentation",
		"Fix typo",
		"Refactor internals",
		"Clean up unused code",
		"Improve error handling",
		"Add input validation",
		"Simplify control flow",
		"Update dependencies",
		"Fix edge case in parser",
		"Improve logging output",
		"Rename variables for clarity",
		"Extract helper function",
		"Tighten nil checks",
		"Adjust configuration defaults",
		"Polish CLI output",
		"Remove dead branch",
		"Restructure module layout",
		"Handle empty input",
		"Improve test coverage",
		"Address review feedback",
		"Small cleanup",
		"Tweak formatting",
		"Normalize whitespace",
		"Update README",
		"Fix off-by-one error",
	},
	"conventional": {
		"fix: handle empty input",
		"fix: correct off-by-one in range check",
		"fix: avoid nil dereference on close",
		"feat: add configuration option",
		"feat: support custom output path",
		"refactor: extract validation helper",
		"refactor: simplify branching logic",
		"refactor: split oversized function",
		"docs: update usage examples",
		"docs: clarify configuration section",
		"test: cover error paths",
		"test: add regression case",
		"chore: update dependencies",
		"chore: tidy module files",
		"style: normalize formatting",
		"perf: avoid repeated allocation",
		"ci: adjust workflow triggers",
		"build: pin toolchain version",
	},
	"emoji": {
		"🐛 Fix edge case",
		"✨ Add small feature",
		"♻️ Refactor internals",
		"📝 Update docs",
		"🎨 Improve formatting",
		"✅ Add tests",
		"🔧 Tweak configuration",
		"🚿 Clean up dead code",
		"⚡ Minor performance win",
		"🔥 Remove unused path",
		"📦 Update dependencies",
		"🚑 Hotfix",
	},
}
